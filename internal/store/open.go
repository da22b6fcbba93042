package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open selects the backend once for the lifetime of the process: Postgres
// when a remote DSN is configured, the local SQLite store otherwise. There is
// no runtime fallback from one to the other.
func Open(ctx context.Context, remoteDSN, dataDir string, pollInterval time.Duration) (RecordStore, error) {
	if strings.TrimSpace(remoteDSN) != "" {
		db, err := openDB(ctx, DriverPostgres, remoteDSN)
		if err != nil {
			return nil, err
		}
		return newPGStore(db, remoteDSN), nil
	}
	dsn := "file:" + filepath.Join(dataDir, "students.db") + "?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	db, err := openDB(ctx, DriverSQLite, dsn)
	if err != nil {
		return nil, err
	}
	return newLocalStore(db, pollInterval), nil
}

func openDB(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite"
	case DriverPostgres:
		drvName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS students (
  email TEXT PRIMARY KEY,
  doc TEXT NOT NULL,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS students (
  email TEXT PRIMARY KEY,
  doc JSONB NOT NULL,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  seq BIGSERIAL PRIMARY KEY,
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
