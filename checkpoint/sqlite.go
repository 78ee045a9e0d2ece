/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package checkpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-openapi/strfmt"
	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore keeps checkpoints in a SQLite database.
//
// Tables:
//
//	checkpoints(lease, continuation, updated_at)  PRIMARY KEY (lease)
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating checkpoint directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint database: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS checkpoints (
		lease TEXT PRIMARY KEY,
		continuation TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating checkpoints table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context, lease string) (Checkpoint, bool, error) {
	var continuation, updated string
	err := s.db.QueryRowContext(ctx,
		"SELECT continuation, updated_at FROM checkpoints WHERE lease = ?", lease,
	).Scan(&continuation, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, false, nil
	}
	if err != nil {
		return Checkpoint{}, false, fmt.Errorf("loading checkpoint %q: %w", lease, err)
	}

	cp := Checkpoint{Lease: lease, Continuation: continuation}
	if ts, err := strfmt.ParseDateTime(updated); err == nil {
		cp.UpdatedAt = ts
	}
	return cp, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, cp Checkpoint) error {
	updated := time.Time(cp.UpdatedAt)
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (lease, continuation, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(lease) DO UPDATE SET continuation = excluded.continuation, updated_at = excluded.updated_at`,
		cp.Lease, cp.Continuation, strfmt.DateTime(updated).String(),
	)
	if err != nil {
		return fmt.Errorf("saving checkpoint %q: %w", cp.Lease, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
