// Package sqlite keeps learner progress in a local SQLite file for
// single-machine deployments without Postgres or Redis.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kiddoland-quiz-service/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
CREATE TABLE IF NOT EXISTS learner_progress (
  learner_id TEXT NOT NULL,
  key TEXT NOT NULL,
  progress INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (learner_id, key)
);
`

// ProgressStore upserts learner progress into SQLite.
type ProgressStore struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*ProgressStore, error) {
	if dsn == "" {
		dsn = "file:kiddoland.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &ProgressStore{db: db, now: time.Now}, nil
}

func (s *ProgressStore) SaveProgress(ctx context.Context, learnerID, subject string, progress int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO learner_progress (learner_id, key, progress, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (learner_id, key) DO UPDATE SET progress=excluded.progress, updated_at=excluded.updated_at`,
		learnerID, domain.ProgressKey(subject), progress, s.now().Unix())
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// GetProgress reads back a stored value.
func (s *ProgressStore) GetProgress(ctx context.Context, learnerID, subject string) (int, error) {
	var progress int
	err := s.db.QueryRowContext(ctx, `SELECT progress FROM learner_progress WHERE learner_id=? AND key=?`,
		learnerID, domain.ProgressKey(subject)).Scan(&progress)
	if err != nil {
		return 0, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}

func (s *ProgressStore) Close() error {
	return s.db.Close()
}
