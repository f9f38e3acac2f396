package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"kiddoland-quiz-service/internal/domain"
	"kiddoland-quiz-service/internal/quiz"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// BankRepository loads question banks (from cache/backing store).
type BankRepository interface {
	GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// ProgressStore records per-subject progress for a learner. Writes are
// fire-and-forget from the quiz flow's point of view.
type ProgressStore interface {
	SaveProgress(ctx context.Context, learnerID, subject string, progress int) error
}

// Notifier shows a transient message; a new one may replace one in flight.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, n domain.Notification) error
}

// CompletionPublisher announces finished quizzes to other services.
type CompletionPublisher interface {
	PublishCompletion(ctx context.Context, event domain.CompletionEvent) error
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions  SessionRepository
	banks     BankRepository
	progress  ProgressStore
	notifier  Notifier
	publisher CompletionPublisher
	now       func() time.Time
}

// ServiceOption wires an optional collaborator.
type ServiceOption func(*QuizService)

func WithProgressStore(p ProgressStore) ServiceOption {
	return func(s *QuizService) { s.progress = p }
}

func WithNotifier(n Notifier) ServiceOption {
	return func(s *QuizService) { s.notifier = n }
}

func WithCompletionPublisher(p CompletionPublisher) ServiceOption {
	return func(s *QuizService) { s.publisher = p }
}

// WithClock is test-only for deterministic timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *QuizService) { s.now = now }
}

func NewQuizService(store SessionRepository, banks BankRepository, opts ...ServiceOption) *QuizService {
	s := &QuizService{sessions: store, banks: banks, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return newSessionWithClock(id, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return newSessionWithClock(id, now)
}

// Start loads the bank and (re)starts the quiz for a session.
func (s *QuizService) Start(ctx context.Context, sessionID, learnerID, bankID string) (domain.Snapshot, error) {
	bank, err := s.banks.GetBank(ctx, bankID)
	if err != nil {
		return domain.Snapshot{}, err
	}

	session := s.sessions.GetOrCreate(sessionID)
	snap, err := session.start(learnerID, bank)
	if err != nil {
		return domain.Snapshot{}, err
	}
	s.notify(ctx, sessionID, fmt.Sprintf("Starting %s quiz!", bank.Title), domain.NotificationInfo)
	return snap, nil
}

// Current returns the session's snapshot.
func (s *QuizService) Current(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.snapshot(), nil
}

// SubmitAnswer records an option for the current question.
func (s *QuizService) SubmitAnswer(ctx context.Context, sessionID string, option int) (domain.AnswerResult, domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.AnswerResult{}, domain.Snapshot{}, domain.ErrSessionNotFound
	}
	result, snap, err := session.submit(option)
	if err != nil {
		return domain.AnswerResult{}, domain.Snapshot{}, err
	}
	msg, kind := quiz.AnswerNotification(result)
	s.notify(ctx, sessionID, msg, kind)
	return result, snap, nil
}

// Advance moves to the next question; finishing the bank records progress.
func (s *QuizService) Advance(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	snap, completion, err := session.advance()
	if err != nil {
		return domain.Snapshot{}, err
	}
	if completion != nil {
		s.complete(ctx, *completion)
	}
	return snap, nil
}

// Results returns the final score and the matching feedback tier.
func (s *QuizService) Results(_ context.Context, sessionID string) (domain.Results, domain.Feedback, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Results{}, domain.Feedback{}, domain.ErrSessionNotFound
	}
	res, err := session.results()
	if err != nil {
		return domain.Results{}, domain.Feedback{}, err
	}
	return res, quiz.FeedbackFor(res), nil
}

// Restart fully reinitializes the session on the same bank.
func (s *QuizService) Restart(_ context.Context, sessionID string) (domain.Snapshot, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.Snapshot{}, domain.ErrSessionNotFound
	}
	return session.restart()
}

// Subscribe returns a channel that receives snapshots for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.Snapshot, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End drops the session.
func (s *QuizService) End(_ context.Context, sessionID string) {
	s.sessions.Delete(sessionID)
}

func (s *QuizService) complete(ctx context.Context, event domain.CompletionEvent) {
	event.CompletedAt = s.now()
	if s.progress != nil && event.LearnerID != "" {
		if err := s.progress.SaveProgress(ctx, event.LearnerID, event.Subject, event.Results.Percentage); err != nil {
			log.Printf("save progress for %s/%s: %v", event.LearnerID, event.Subject, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishCompletion(ctx, event); err != nil {
			log.Printf("publish completion for session %s: %v", event.SessionID, err)
		}
	}
	feedback := quiz.FeedbackFor(event.Results)
	s.notify(ctx, event.SessionID, fmt.Sprintf("Quiz completed! %d/%d. %s", event.Results.Score, event.Results.Total, feedback.Message), domain.NotificationSuccess)
}

func (s *QuizService) notify(ctx context.Context, sessionID, message string, kind domain.NotificationKind) {
	if s.notifier == nil {
		return
	}
	n := domain.Notification{Message: message, Kind: kind, CreatedAt: s.now()}
	if err := s.notifier.Notify(ctx, sessionID, n); err != nil {
		log.Printf("notify session %s: %v", sessionID, err)
	}
}

// Session owns one quiz engine and its subscribers.
type Session struct {
	id          string
	createdAt   time.Time
	now         func() time.Time
	mu          sync.Mutex
	learnerID   string
	engine      *quiz.Engine
	subscribers map[chan domain.Snapshot]struct{}
	closed      bool
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(id string, now func() time.Time) *Session {
	s := &Session{
		id:          id,
		createdAt:   now(),
		now:         now,
		subscribers: make(map[chan domain.Snapshot]struct{}),
	}
	// The observer runs inside engine calls, which always hold s.mu.
	s.engine = quiz.NewEngine(quiz.WithClock(now), quiz.WithObserver(s.broadcastLocked))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

func (s *Session) start(learnerID string, bank domain.QuestionBank) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Start(bank); err != nil {
		return domain.Snapshot{}, err
	}
	s.learnerID = learnerID
	return s.snapshotLocked(), nil
}

func (s *Session) restart() (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine.Phase() == domain.PhaseIdle {
		return domain.Snapshot{}, fmt.Errorf("%w: restart: quiz not started", domain.ErrInvalidInput)
	}
	if err := s.engine.Start(s.engine.Bank()); err != nil {
		return domain.Snapshot{}, err
	}
	return s.snapshotLocked(), nil
}

func (s *Session) submit(option int) (domain.AnswerResult, domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.engine.SubmitAnswer(option)
	if err != nil {
		return domain.AnswerResult{}, domain.Snapshot{}, err
	}
	return res, s.snapshotLocked(), nil
}

func (s *Session) advance() (domain.Snapshot, *domain.CompletionEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Advance(); err != nil {
		return domain.Snapshot{}, nil, err
	}
	snap := s.snapshotLocked()
	if !s.engine.IsTerminal() {
		return snap, nil, nil
	}
	res, err := s.engine.Results()
	if err != nil {
		return domain.Snapshot{}, nil, err
	}
	bank := s.engine.Bank()
	return snap, &domain.CompletionEvent{
		SessionID: s.id,
		LearnerID: s.learnerID,
		BankID:    bank.ID,
		Subject:   bank.Subject,
		Results:   res,
	}, nil
}

func (s *Session) results() (domain.Results, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Results()
}

func (s *Session) snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 8)

	// Seed under the lock so Close cannot close ch before the first send.
	s.mu.Lock()
	ch <- s.snapshotLocked()
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close releases all subscribers; later subscribers get a closed channel.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

func (s *Session) broadcastLocked(snap domain.Snapshot) {
	snap.SessionID = s.id
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// Slow subscriber: drop its oldest snapshot so the newest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Session) snapshotLocked() domain.Snapshot {
	snap := s.engine.Snapshot()
	snap.SessionID = s.id
	return snap
}
