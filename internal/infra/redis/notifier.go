package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"kiddoland-quiz-service/internal/domain"
)

// Notifier stores the live notification of a session under one key that
// expires on its own; SET overwrites whatever is in flight.
type Notifier struct {
	client *redis.Client
	ttl    time.Duration
}

func NewNotifier(client *redis.Client, ttl time.Duration) *Notifier {
	return &Notifier{client: client, ttl: ttl}
}

func (n *Notifier) Notify(ctx context.Context, sessionID string, note domain.Notification) error {
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	if err := n.client.Set(ctx, n.key(sessionID), data, n.ttl).Err(); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	return nil
}

// Latest returns the notification currently on screen for a session.
func (n *Notifier) Latest(ctx context.Context, sessionID string) (domain.Notification, bool, error) {
	data, err := n.client.Get(ctx, n.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Notification{}, false, nil
	}
	if err != nil {
		return domain.Notification{}, false, err
	}
	var note domain.Notification
	if err := json.Unmarshal(data, &note); err != nil {
		return domain.Notification{}, false, err
	}
	return note, true, nil
}

func (n *Notifier) key(sessionID string) string {
	return "quiz:notification:" + sessionID
}
