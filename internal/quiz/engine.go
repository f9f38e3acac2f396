// Package quiz implements the single-player quiz state machine.
//
// An Engine moves through Idle -> AwaitingAnswer(0..n-1) -> Completed. It is
// owned by exactly one session and is not safe for concurrent use; callers
// serialize access.
package quiz

import (
	"fmt"
	"math"
	"time"

	"kiddoland-quiz-service/internal/domain"
)

const noSelection = -1

// Observer receives a snapshot after every state change.
type Observer func(domain.Snapshot)

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers a state-change observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithClock overrides the snapshot timestamp source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine holds the question bank, the current position and the score.
type Engine struct {
	bank     domain.QuestionBank
	started  bool
	index    int
	score    int
	answered bool
	selected int

	observer Observer
	now      func() time.Time
}

// NewEngine returns an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{selected: noSelection, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start resets the engine onto bank and presents question 0.
func (e *Engine) Start(bank domain.QuestionBank) error {
	if err := bank.Validate(); err != nil {
		return err
	}
	e.bank = copyBank(bank)
	e.started = true
	e.index = 0
	e.score = 0
	e.resetAnswer()
	e.emit()
	return nil
}

// Phase reports the current state machine phase.
func (e *Engine) Phase() domain.Phase {
	switch {
	case !e.started:
		return domain.PhaseIdle
	case e.IsTerminal():
		return domain.PhaseCompleted
	default:
		return domain.PhaseAwaitingAnswer
	}
}

// IsTerminal is true once every question has been advanced past.
func (e *Engine) IsTerminal() bool {
	return e.started && e.index >= e.bank.Len()
}

// CanAdvance is true when the current question has been answered.
func (e *Engine) CanAdvance() bool {
	return e.started && !e.IsTerminal() && e.answered
}

// Index returns the 0-based position of the current question.
func (e *Engine) Index() int { return e.index }

// Score returns the number of questions answered correctly on first try.
func (e *Engine) Score() int { return e.score }

// Bank returns a copy of the bank the engine was started with.
func (e *Engine) Bank() domain.QuestionBank { return copyBank(e.bank) }

// CurrentQuestion returns the question awaiting an answer.
func (e *Engine) CurrentQuestion() (domain.Question, error) {
	if err := e.requireAwaiting("current question"); err != nil {
		return domain.Question{}, err
	}
	return e.bank.Questions[e.index], nil
}

// SubmitAnswer records the learner's choice for the current question.
// Only the first submission per question contributes to the score; later
// ones just move the selection.
func (e *Engine) SubmitAnswer(option int) (domain.AnswerResult, error) {
	if err := e.requireAwaiting("submit answer"); err != nil {
		return domain.AnswerResult{}, err
	}
	q := e.bank.Questions[e.index]
	if option < 0 || option >= q.NumOptions() {
		return domain.AnswerResult{}, fmt.Errorf("%w: option %d out of range [0,%d)", domain.ErrInvalidInput, option, q.NumOptions())
	}

	correct := option == q.Correct()
	first := !e.answered
	if first && correct {
		e.score++
	}
	e.answered = true
	e.selected = option
	e.emit()

	return domain.AnswerResult{
		QuestionID: q.ID(),
		Index:      e.index,
		Option:     option,
		Correct:    correct,
		Scored:     first,
		Score:      e.score,
	}, nil
}

// Advance moves past the answered current question.
func (e *Engine) Advance() error {
	if err := e.requireAwaiting("advance"); err != nil {
		return err
	}
	if !e.answered {
		return fmt.Errorf("%w: advance before answering question %d", domain.ErrPreconditionViolation, e.index)
	}
	e.index++
	e.resetAnswer()
	e.emit()
	return nil
}

// Results returns the final score; valid only once terminal.
func (e *Engine) Results() (domain.Results, error) {
	if !e.started {
		return domain.Results{}, fmt.Errorf("%w: results: quiz not started", domain.ErrInvalidInput)
	}
	if !e.IsTerminal() {
		return domain.Results{}, fmt.Errorf("%w: results requested at question %d of %d", domain.ErrPreconditionViolation, e.index+1, e.bank.Len())
	}
	return newResults(e.score, e.bank.Len()), nil
}

// Snapshot returns a render-ready view of the current state.
func (e *Engine) Snapshot() domain.Snapshot {
	snap := domain.Snapshot{
		BankID:     e.bank.ID,
		Title:      e.bank.Title,
		Phase:      e.Phase(),
		Index:      e.index,
		Total:      e.bank.Len(),
		Score:      e.score,
		Answered:   e.answered,
		Selected:   e.selected,
		CanAdvance: e.CanAdvance(),
		UpdatedAt:  e.now(),
	}
	switch snap.Phase {
	case domain.PhaseAwaitingAnswer:
		view := e.bank.Questions[e.index].View()
		snap.Question = &view
	case domain.PhaseCompleted:
		res := newResults(e.score, e.bank.Len())
		snap.Results = &res
	}
	return snap
}

func (e *Engine) requireAwaiting(op string) error {
	if !e.started {
		return fmt.Errorf("%w: %s: quiz not started", domain.ErrInvalidInput, op)
	}
	if e.IsTerminal() {
		return fmt.Errorf("%w: %s: quiz completed", domain.ErrPreconditionViolation, op)
	}
	return nil
}

func (e *Engine) resetAnswer() {
	e.answered = false
	e.selected = noSelection
}

func (e *Engine) emit() {
	if e.observer != nil {
		e.observer(e.Snapshot())
	}
}

// Questions are immutable, so copying the slice is enough to pin the bank.
func copyBank(bank domain.QuestionBank) domain.QuestionBank {
	bank.Questions = append([]domain.Question(nil), bank.Questions...)
	return bank
}

func newResults(score, total int) domain.Results {
	return domain.Results{
		Score:      score,
		Total:      total,
		Percentage: Percentage(score, total),
	}
}

// Percentage returns round(100*score/total), rounding halves up.
func Percentage(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(score) / float64(total)))
}
