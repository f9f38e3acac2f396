package memory

import (
	"context"
	"testing"
	"time"

	"kiddoland-quiz-service/internal/domain"
)

func TestNotifierReplacesAndExpires(t *testing.T) {
	n := NewNotifier(3 * time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n.clock = func() time.Time { return now }

	_ = n.Notify(context.Background(), "s1", domain.Notification{Message: "Try again! 💪", Kind: domain.NotificationError})
	_ = n.Notify(context.Background(), "s1", domain.Notification{Message: "Correct! 🎉", Kind: domain.NotificationSuccess})

	got, ok, _ := n.Latest(context.Background(), "s1")
	if !ok || got.Kind != domain.NotificationSuccess {
		t.Fatalf("expected replacement notification, got %+v %v", got, ok)
	}

	now = now.Add(3 * time.Second)
	if _, ok, _ := n.Latest(context.Background(), "s1"); ok {
		t.Fatalf("expected notification to expire")
	}
}

func TestNotifierSweepsExpiredEntries(t *testing.T) {
	n := NewNotifier(3 * time.Second)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n.clock = func() time.Time { return now }

	_ = n.Notify(context.Background(), "gone-1", domain.Notification{Message: "a"})
	_ = n.Notify(context.Background(), "gone-2", domain.Notification{Message: "b"})

	now = now.Add(5 * time.Second)
	_ = n.Notify(context.Background(), "s1", domain.Notification{Message: "c"})

	if len(n.current) != 1 {
		t.Fatalf("expected only the live entry to remain, got %d", len(n.current))
	}
}

func TestProgressStoreOverwrites(t *testing.T) {
	store := NewProgressStore()
	_ = store.SaveProgress(context.Background(), "kid-1", "math", 40)
	_ = store.SaveProgress(context.Background(), "kid-1", "math", 80)

	if v, ok := store.Get("kid-1", "math"); !ok || v != 80 {
		t.Fatalf("expected 80, got %d %v", v, ok)
	}
	if _, ok := store.Get("kid-2", "math"); ok {
		t.Fatalf("expected no progress for another learner")
	}
}
