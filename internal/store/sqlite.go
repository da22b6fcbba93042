package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPollInterval matches the pseudo-realtime refresh of the local
// backend: SubscribeAll re-reads the collection on this cadence.
const DefaultPollInterval = 2 * time.Second

// LocalStore is the offline backend: a single SQLite file that survives
// restarts but is not shared across devices. Writes are synchronous;
// SubscribeAll is simulated with an immediate read plus a fixed-interval
// re-read.
type LocalStore struct {
	db   *sql.DB
	j    journal
	poll time.Duration

	mu   sync.Mutex
	subs map[string]chan struct{} // closed to stop a subscriber's poll loop
}

func newLocalStore(db *sql.DB, poll time.Duration) *LocalStore {
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	return &LocalStore{db: db, j: journal{db: db}, poll: poll, subs: map[string]chan struct{}{}}
}

func (s *LocalStore) Online() bool { return false }

func (s *LocalStore) Get(ctx context.Context, key string) (UserRecord, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM students WHERE email=$1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, false, nil
	}
	if err != nil {
		return UserRecord{}, false, err
	}
	var rec UserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return UserRecord{}, false, err
	}
	return rec, true, nil
}

func (s *LocalStore) Put(ctx context.Context, key string, rec UserRecord) error {
	next, err := recordToDoc(rec)
	if err != nil {
		return err
	}
	err = s.withDoc(ctx, key, true, func(doc map[string]any) map[string]any {
		return mergeTop(doc, next)
	})
	if err != nil {
		return err
	}
	s.j.append(ctx, eventRecordPut, key)
	return nil
}

func (s *LocalStore) MergeField(ctx context.Context, key, field string, partial any) error {
	obj, err := toJSONObject(partial)
	if err != nil {
		return err
	}
	// Merges only into existing records: an orphan field write without a
	// registered student is dropped, like the original local fallback.
	err = s.withDoc(ctx, key, false, func(doc map[string]any) map[string]any {
		return mergeIntoField(doc, field, obj)
	})
	if err != nil {
		return err
	}
	s.j.append(ctx, eventFieldMerge, key)
	return nil
}

// withDoc runs a read-merge-write cycle on one document inside a transaction.
func (s *LocalStore) withDoc(ctx context.Context, key string, createMissing bool, fn func(map[string]any) map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var raw string
	doc := map[string]any{}
	err = tx.QueryRowContext(ctx, `SELECT doc FROM students WHERE email=$1`, key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !createMissing {
			return nil
		}
	case err != nil:
		return err
	default:
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return err
		}
	}

	buf, err := json.Marshal(fn(doc))
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO students (email, doc, created_at) VALUES ($1,$2,$3)
		 ON CONFLICT (email) DO UPDATE SET doc=$2`,
		key, string(buf), time.Now().Unix())
	if err != nil {
		return err
	}
	return tx.Commit()
}

func (s *LocalStore) listAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, doc FROM students ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var rec UserRecord
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			log.Printf("store: decode %s: %v", key, err)
			continue
		}
		out = append(out, Entry{Key: key, Record: rec})
	}
	return out, rows.Err()
}

func (s *LocalStore) SubscribeAll(cb func([]Entry)) (func(), error) {
	stop := make(chan struct{})
	id := uuid.NewString()

	s.mu.Lock()
	s.subs[id] = stop
	s.mu.Unlock()

	emit := func() {
		entries, err := s.listAll(context.Background())
		if err != nil {
			log.Printf("store: list: %v", err)
			return
		}
		cb(entries)
	}
	emit()

	go func() {
		t := time.NewTicker(s.poll)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				emit()
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(stop)
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
	return cancel, nil
}

func (s *LocalStore) Close() error {
	s.mu.Lock()
	for id, stop := range s.subs {
		close(stop)
		delete(s.subs, id)
	}
	s.mu.Unlock()
	return s.db.Close()
}
