package memory

import (
	"context"
	"sync"
	"time"

	"kiddoland-quiz-service/internal/domain"
)

// Notifier holds at most one live notification per session. A new
// notification replaces the one in flight; entries vanish after ttl.
type Notifier struct {
	ttl   time.Duration
	clock func() time.Time

	mu      sync.Mutex
	current map[string]liveNotification
}

type liveNotification struct {
	n         domain.Notification
	expiresAt time.Time
}

func NewNotifier(ttl time.Duration) *Notifier {
	return &Notifier{
		ttl:     ttl,
		clock:   time.Now,
		current: make(map[string]liveNotification),
	}
}

func (n *Notifier) Notify(_ context.Context, sessionID string, note domain.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	now := n.clock()
	for id, live := range n.current {
		if !live.expiresAt.After(now) {
			delete(n.current, id)
		}
	}
	n.current[sessionID] = liveNotification{n: note, expiresAt: now.Add(n.ttl)}
	return nil
}

// Latest returns the notification currently on screen for a session.
func (n *Notifier) Latest(_ context.Context, sessionID string) (domain.Notification, bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	live, ok := n.current[sessionID]
	if !ok {
		return domain.Notification{}, false, nil
	}
	if !live.expiresAt.After(n.clock()) {
		delete(n.current, sessionID)
		return domain.Notification{}, false, nil
	}
	return live.n, true, nil
}
