package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Question is a multiple-choice question with exactly one correct option.
// It is immutable once constructed; use NewQuestion.
type Question struct {
	id      string
	prompt  string
	options []string
	correct int
}

// NewQuestion validates and builds a Question. The options slice is copied.
func NewQuestion(id, prompt string, options []string, correct int) (Question, error) {
	if len(options) == 0 {
		return Question{}, fmt.Errorf("%w: question %q has no options", ErrInvalidInput, id)
	}
	if correct < 0 || correct >= len(options) {
		return Question{}, fmt.Errorf("%w: question %q correct index %d out of range [0,%d)", ErrInvalidInput, id, correct, len(options))
	}
	opts := make([]string, len(options))
	copy(opts, options)
	return Question{id: id, prompt: prompt, options: opts, correct: correct}, nil
}

// MustQuestion is NewQuestion for static content; it panics on invalid input.
func MustQuestion(id, prompt string, options []string, correct int) Question {
	q, err := NewQuestion(id, prompt, options, correct)
	if err != nil {
		panic(err)
	}
	return q
}

func (q Question) ID() string     { return q.id }
func (q Question) Prompt() string { return q.prompt }
func (q Question) Correct() int   { return q.correct }

// NumOptions returns how many options the question offers.
func (q Question) NumOptions() int { return len(q.options) }

// Options returns a copy of the option texts in presentation order.
func (q Question) Options() []string {
	out := make([]string, len(q.options))
	copy(out, q.options)
	return out
}

// View strips the answer key for clients.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.id, Prompt: q.prompt, Options: q.Options()}
}

type questionJSON struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
	Correct int      `json:"correct"`
}

// MarshalJSON encodes the full question including the answer key; it is used
// for storage, never for client payloads (see View).
func (q Question) MarshalJSON() ([]byte, error) {
	return json.Marshal(questionJSON{ID: q.id, Prompt: q.prompt, Options: q.options, Correct: q.correct})
}

func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewQuestion(raw.ID, raw.Prompt, raw.Options, raw.Correct)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// QuestionView is the client-facing form of a question.
type QuestionView struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []string `json:"options"`
}

// QuestionBank is the fixed, ordered set of questions for one quiz session.
type QuestionBank struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Subject   string     `json:"subject"`
	Questions []Question `json:"questions"`
}

// Validate reports whether the bank can be used to start a quiz.
func (b QuestionBank) Validate() error {
	if len(b.Questions) == 0 {
		return fmt.Errorf("%w: question bank %q is empty", ErrInvalidInput, b.ID)
	}
	return nil
}

// Len returns the number of questions in the bank.
func (b QuestionBank) Len() int { return len(b.Questions) }

// AnswerResult summarizes the outcome of a single submission.
type AnswerResult struct {
	QuestionID string `json:"questionId"`
	Index      int    `json:"index"`
	Option     int    `json:"option"`
	Correct    bool   `json:"correct"`
	// Scored is true only for the first submission on a question.
	Scored bool `json:"scored"`
	Score  int  `json:"score"`
}

// Results is the final summary of a completed quiz.
type Results struct {
	Score      int `json:"score"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Phase names a quiz state.
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	PhaseCompleted      Phase = "completed"
)

// Snapshot is a render-ready view of a quiz session.
type Snapshot struct {
	SessionID  string        `json:"sessionId,omitempty"`
	BankID     string        `json:"bankId"`
	Title      string        `json:"title"`
	Phase      Phase         `json:"phase"`
	Index      int           `json:"index"`
	Total      int           `json:"total"`
	Score      int           `json:"score"`
	Question   *QuestionView `json:"question,omitempty"`
	Answered   bool          `json:"answered"`
	Selected   int           `json:"selected"`
	CanAdvance bool          `json:"canAdvance"`
	Results    *Results      `json:"results,omitempty"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// NotificationKind classifies a transient notification.
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
	NotificationInfo    NotificationKind = "info"
)

// Notification is a transient message shown to the learner.
type Notification struct {
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"kind"`
	CreatedAt time.Time        `json:"createdAt"`
}

// CompletionEvent is emitted once a learner finishes a quiz.
type CompletionEvent struct {
	SessionID   string    `json:"sessionId"`
	LearnerID   string    `json:"learnerId"`
	BankID      string    `json:"bankId"`
	Subject     string    `json:"subject"`
	Results     Results   `json:"results"`
	CompletedAt time.Time `json:"completedAt"`
}

// ProgressKey is the per-subject progress key, e.g. "progress_math".
func ProgressKey(subject string) string {
	return "progress_" + subject
}

// Feedback is the encouragement shown alongside final results.
type Feedback struct {
	Badge   string `json:"badge"`
	Message string `json:"message"`
}
