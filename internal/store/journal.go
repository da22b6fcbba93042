package store

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// Write journal for diagnostics: one row per store write. Best-effort, an
// append failure never fails the write that produced it.

const (
	eventRecordPut  = "record.put"
	eventFieldMerge = "field.merge"
)

type journal struct{ db *sql.DB }

func (j journal) append(ctx context.Context, typ, key string) {
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, created_at) VALUES ($1,$2,$3)`,
		typ, key, time.Now().Unix())
	if err != nil {
		log.Printf("event log append: %v", err)
	}
}
