package memory

import (
	"context"
	"sync"

	"kiddoland-quiz-service/internal/domain"
)

// ProgressStore keeps learner progress in process memory, keyed the way the
// site keyed local storage: progress_<subject>.
type ProgressStore struct {
	mu       sync.RWMutex
	progress map[string]map[string]int
}

func NewProgressStore() *ProgressStore {
	return &ProgressStore{progress: make(map[string]map[string]int)}
}

func (s *ProgressStore) SaveProgress(_ context.Context, learnerID, subject string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.progress[learnerID]
	if !ok {
		entries = make(map[string]int)
		s.progress[learnerID] = entries
	}
	entries[domain.ProgressKey(subject)] = progress
	return nil
}

// Get returns the last stored progress for a learner and subject.
func (s *ProgressStore) Get(learnerID, subject string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.progress[learnerID][domain.ProgressKey(subject)]
	return v, ok
}
