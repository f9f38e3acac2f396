package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"kiddoland-quiz-service/internal/domain"
)

// ProgressStore keeps learner progress in one hash per learner:
// HSET progress:{learnerID} progress_{subject} {value}
type ProgressStore struct {
	client *redis.Client
}

func NewProgressStore(client *redis.Client) *ProgressStore {
	return &ProgressStore{client: client}
}

func (s *ProgressStore) SaveProgress(ctx context.Context, learnerID, subject string, progress int) error {
	if err := s.client.HSet(ctx, s.key(learnerID), domain.ProgressKey(subject), progress).Err(); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) key(learnerID string) string {
	return "progress:" + learnerID
}
