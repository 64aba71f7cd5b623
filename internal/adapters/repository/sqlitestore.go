package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/okian/taskrank/pkg/metrics"
)

// MemoryDSN opens a private in-memory SQLite database.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	external_id     TEXT PRIMARY KEY,
	title           TEXT NOT NULL DEFAULT '',
	due_date        TEXT NULL,
	estimated_hours REAL NOT NULL DEFAULT 1.0,
	importance      INTEGER NOT NULL DEFAULT 5,
	dependencies    TEXT NOT NULL DEFAULT '[]',
	created_at      INTEGER NOT NULL,
	updated_at      INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_updated_at ON tasks (updated_at DESC, external_id);
`

const upsertSQL = `
INSERT INTO tasks (external_id, title, due_date, estimated_hours, importance, dependencies, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (external_id) DO UPDATE SET
	title = excluded.title,
	due_date = excluded.due_date,
	estimated_hours = excluded.estimated_hours,
	importance = excluded.importance,
	dependencies = excluded.dependencies,
	updated_at = excluded.updated_at`

const selectColumns = `external_id, title, due_date, estimated_hours, importance, dependencies, created_at, updated_at`

// SQLiteStore is a Store backed by a SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists. Use MemoryDSN for a throwaway database.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path must not be empty")
	}
	if path != MemoryDSN {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	// journal_mode=WAL: readers do not block the writer
	// busy_timeout=5000: wait on lock instead of failing immediately
	dsn := path
	if strings.Contains(dsn, "?") {
		dsn += "&"
	} else {
		dsn += "?"
	}
	dsn += "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer; also keeps a :memory: database on a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

// Upsert implements Store.Upsert in a single transaction.
func (s *SQLiteStore) Upsert(ctx context.Context, records []Record) (n int, err error) {
	defer func() {
		if err != nil {
			metrics.RecordStoreError()
		}
	}()
	if len(records) == 0 {
		return 0, nil
	}
	now := s.opts.now().UTC().UnixNano()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, s.mapErr(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, upsertSQL)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, r := range records {
		deps := r.Dependencies
		if deps == nil {
			deps = []string{}
		}
		depsJSON, err := json.Marshal(deps)
		if err != nil {
			return 0, err
		}
		var due sql.NullString
		if r.DueDate != nil {
			due = sql.NullString{String: *r.DueDate, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ExternalID, r.Title, due, r.EstimatedHours, r.Importance, string(depsJSON), now, now,
		); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", r.ExternalID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}

	metrics.RecordStoreUpserts(len(records))
	if count, cerr := s.Count(ctx); cerr == nil {
		metrics.UpdateStoredTasks(count)
	}
	return len(records), nil
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(ctx context.Context, externalID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM tasks WHERE external_id = ?`, externalID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, s.mapErr(err)
	}
	return r, nil
}

// List implements Store.List.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM tasks ORDER BY updated_at DESC, external_id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, s.mapErr(err)
	}
	defer rows.Close()

	out := make([]Record, 0, min(limit, DefaultListLimit))
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count implements Store.Count.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, s.mapErr(err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) mapErr(err error) error {
	if errors.Is(err, sql.ErrConnDone) || strings.Contains(err.Error(), "database is closed") {
		return ErrClosed
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var (
		r                Record
		due              sql.NullString
		deps             string
		created, updated int64
	)
	if err := sc.Scan(&r.ExternalID, &r.Title, &due, &r.EstimatedHours, &r.Importance, &deps, &created, &updated); err != nil {
		return Record{}, err
	}
	if due.Valid {
		d := due.String
		r.DueDate = &d
	}
	if err := json.Unmarshal([]byte(deps), &r.Dependencies); err != nil {
		return Record{}, fmt.Errorf("decode dependencies of %q: %w", r.ExternalID, err)
	}
	r.CreatedAt = time.Unix(0, created).UTC()
	r.UpdatedAt = time.Unix(0, updated).UTC()
	return r, nil
}
