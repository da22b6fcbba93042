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
	"github.com/jackc/pgx/v5"
)

const notifyChannel = "students_changed"

// PGStore is the remote, multi-writer backend. Writes are fire-and-forget
// from the caller's perspective: failures are logged, never surfaced, and the
// next full-state write implicitly retries. SubscribeAll is a true push
// stream via LISTEN/NOTIFY on a dedicated connection.
type PGStore struct {
	db  *sql.DB
	dsn string
	j   journal

	mu         sync.Mutex
	subs       map[string]func([]Entry)
	listenStop context.CancelFunc
}

func newPGStore(db *sql.DB, dsn string) *PGStore {
	return &PGStore{db: db, dsn: dsn, j: journal{db: db}, subs: map[string]func([]Entry){}}
}

func (s *PGStore) Online() bool { return true }

func (s *PGStore) Get(ctx context.Context, key string) (UserRecord, bool, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM students WHERE email=$1`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRecord{}, false, nil
	}
	if err != nil {
		log.Printf("store: read %s: %v", key, err)
		return UserRecord{}, false, nil
	}
	var rec UserRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Printf("store: decode %s: %v", key, err)
		return UserRecord{}, false, nil
	}
	return rec, true, nil
}

func (s *PGStore) Put(ctx context.Context, key string, rec UserRecord) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO students (email, doc, created_at) VALUES ($1, $2::jsonb, $3)
		 ON CONFLICT (email) DO UPDATE SET doc = students.doc || EXCLUDED.doc`,
		key, string(buf), time.Now().Unix())
	if err != nil {
		log.Printf("store: save %s: %v", key, err)
		return nil
	}
	s.j.append(ctx, eventRecordPut, key)
	s.notify(ctx)
	return nil
}

func (s *PGStore) MergeField(ctx context.Context, key, field string, partial any) error {
	buf, err := json.Marshal(partial)
	if err != nil {
		return err
	}
	// Merge one level deep into the named field; creates the document when
	// missing, matching the remote database's merge-write semantics.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO students (email, doc, created_at)
		 VALUES ($1, jsonb_build_object($2::text, $3::jsonb), $4)
		 ON CONFLICT (email) DO UPDATE
		 SET doc = jsonb_set(students.doc, ARRAY[$2::text],
		                     COALESCE(students.doc -> $2::text, '{}'::jsonb) || $3::jsonb, true)`,
		key, field, string(buf), time.Now().Unix())
	if err != nil {
		log.Printf("store: update %s.%s: %v", key, field, err)
		return nil
	}
	s.j.append(ctx, eventFieldMerge, key)
	s.notify(ctx)
	return nil
}

func (s *PGStore) notify(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, '')`, notifyChannel); err != nil {
		log.Printf("store: notify: %v", err)
	}
}

func (s *PGStore) listAll(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email, doc FROM students ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, err
		}
		var rec UserRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Printf("store: decode %s: %v", key, err)
			continue
		}
		out = append(out, Entry{Key: key, Record: rec})
	}
	return out, rows.Err()
}

func (s *PGStore) SubscribeAll(cb func([]Entry)) (func(), error) {
	s.mu.Lock()
	id := uuid.NewString()
	s.subs[id] = cb
	if s.listenStop == nil {
		ctx, cancel := context.WithCancel(context.Background())
		s.listenStop = cancel
		go s.listen(ctx)
	}
	s.mu.Unlock()

	// Initial emission.
	if entries, err := s.listAll(context.Background()); err == nil {
		cb(entries)
	} else {
		log.Printf("store: initial list: %v", err)
	}

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		if len(s.subs) == 0 && s.listenStop != nil {
			s.listenStop()
			s.listenStop = nil
		}
		s.mu.Unlock()
	}
	return cancel, nil
}

// listen holds a dedicated connection on LISTEN and fans a full re-read out
// to every subscriber on each notification. Reconnects after transient
// failures for as long as subscribers remain.
func (s *PGStore) listen(ctx context.Context) {
	for ctx.Err() == nil {
		conn, err := pgx.Connect(ctx, s.dsn)
		if err != nil {
			log.Printf("store: listener connect: %v", err)
			sleepCtx(ctx, 5*time.Second)
			continue
		}
		if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
			log.Printf("store: listen: %v", err)
			_ = conn.Close(ctx)
			sleepCtx(ctx, 5*time.Second)
			continue
		}
		for {
			if _, err := conn.WaitForNotification(ctx); err != nil {
				if ctx.Err() == nil {
					log.Printf("store: notification wait: %v", err)
				}
				break
			}
			s.broadcast(ctx)
		}
		_ = conn.Close(context.Background())
	}
}

func (s *PGStore) broadcast(ctx context.Context) {
	entries, err := s.listAll(ctx)
	if err != nil {
		log.Printf("store: list: %v", err)
		return
	}
	s.mu.Lock()
	cbs := make([]func([]Entry), 0, len(s.subs))
	for _, cb := range s.subs {
		cbs = append(cbs, cb)
	}
	s.mu.Unlock()
	for _, cb := range cbs {
		cb(entries)
	}
}

func (s *PGStore) Close() error {
	s.mu.Lock()
	if s.listenStop != nil {
		s.listenStop()
		s.listenStop = nil
	}
	s.subs = map[string]func([]Entry){}
	s.mu.Unlock()
	return s.db.Close()
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
