package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"kiddoland-quiz-service/internal/domain"
)

// ProgressStore upserts learner progress rows.
type ProgressStore struct {
	pool *pgxpool.Pool
}

func NewProgressStore(pool *pgxpool.Pool) *ProgressStore {
	return &ProgressStore{pool: pool}
}

func (s *ProgressStore) SaveProgress(ctx context.Context, learnerID, subject string, progress int) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO learner_progress (learner_id, key, progress, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (learner_id, key) DO UPDATE SET progress=EXCLUDED.progress, updated_at=EXCLUDED.updated_at`,
		learnerID, domain.ProgressKey(subject), progress)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// GetProgress reads back a stored value.
func (s *ProgressStore) GetProgress(ctx context.Context, learnerID, subject string) (int, error) {
	var progress int
	err := s.pool.QueryRow(ctx, `SELECT progress FROM learner_progress WHERE learner_id=$1 AND key=$2`,
		learnerID, domain.ProgressKey(subject)).Scan(&progress)
	if err != nil {
		return 0, fmt.Errorf("get progress: %w", err)
	}
	return progress, nil
}
