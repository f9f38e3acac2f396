package quiz_test

import (
	"errors"
	"testing"

	"kiddoland-quiz-service/internal/domain"
	"kiddoland-quiz-service/internal/quiz"
)

func TestCompletesAfterBankLength(t *testing.T) {
	for n := 1; n <= 6; n++ {
		engine := quiz.NewEngine()
		if err := engine.Start(uniformBank(n, 1)); err != nil {
			t.Fatalf("start: %v", err)
		}
		for i := 0; i < n; i++ {
			if engine.IsTerminal() {
				t.Fatalf("bank %d: terminal too early at %d", n, i)
			}
			if _, err := engine.SubmitAnswer(0); err != nil {
				t.Fatalf("submit: %v", err)
			}
			if err := engine.Advance(); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		if !engine.IsTerminal() {
			t.Fatalf("bank %d: expected terminal", n)
		}
		if engine.Phase() != domain.PhaseCompleted {
			t.Fatalf("expected completed phase, got %s", engine.Phase())
		}
	}
}

func TestAllCorrect(t *testing.T) {
	engine := quiz.NewEngine()
	_ = engine.Start(uniformBank(5, 1))
	playAll(t, engine, 1)

	res, err := engine.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if res != (domain.Results{Score: 5, Total: 5, Percentage: 100}) {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestAllWrong(t *testing.T) {
	engine := quiz.NewEngine()
	_ = engine.Start(uniformBank(5, 1))
	playAll(t, engine, 3)

	res, _ := engine.Results()
	if res != (domain.Results{Score: 0, Total: 5, Percentage: 0}) {
		t.Fatalf("unexpected results %+v", res)
	}
}

func TestResubmitDoesNotDoubleCount(t *testing.T) {
	engine := quiz.NewEngine()
	_ = engine.Start(uniformBank(2, 1))

	first, err := engine.SubmitAnswer(1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !first.Correct || !first.Scored || first.Score != 1 {
		t.Fatalf("unexpected first result %+v", first)
	}

	second, err := engine.SubmitAnswer(1)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if second.Scored || second.Score != 1 {
		t.Fatalf("resubmit changed score: %+v", second)
	}

	// A wrong first answer stays wrong even if the right option is picked later.
	_ = engine.Advance()
	if _, err := engine.SubmitAnswer(0); err != nil {
		t.Fatalf("submit: %v", err)
	}
	fixed, _ := engine.SubmitAnswer(1)
	if !fixed.Correct || fixed.Scored || fixed.Score != 1 {
		t.Fatalf("unexpected corrected result %+v", fixed)
	}
	if snap := engine.Snapshot(); snap.Selected != 1 {
		t.Fatalf("expected selection to move to 1, got %d", snap.Selected)
	}
}

func TestSubmitOutOfRange(t *testing.T) {
	engine := quiz.NewEngine()
	_ = engine.Start(uniformBank(3, 1))

	for _, option := range []int{-1, 4, 100} {
		if _, err := engine.SubmitAnswer(option); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("option %d: expected invalid input, got %v", option, err)
		}
	}
	if engine.Score() != 0 || engine.Index() != 0 || engine.CanAdvance() {
		t.Fatalf("state mutated: score=%d index=%d canAdvance=%v", engine.Score(), engine.Index(), engine.CanAdvance())
	}
}

func TestPreconditions(t *testing.T) {
	engine := quiz.NewEngine()

	if _, err := engine.CurrentQuestion(); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input before start, got %v", err)
	}
	if err := engine.Start(domain.QuestionBank{ID: "empty"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected empty bank rejection, got %v", err)
	}

	_ = engine.Start(uniformBank(1, 0))
	if _, err := engine.Results(); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Fatalf("expected results precondition, got %v", err)
	}
	if err := engine.Advance(); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Fatalf("expected advance before answer to fail, got %v", err)
	}

	_, _ = engine.SubmitAnswer(0)
	_ = engine.Advance()
	if _, err := engine.CurrentQuestion(); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Fatalf("expected current question precondition, got %v", err)
	}
	if _, err := engine.SubmitAnswer(0); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Fatalf("expected submit after completion to fail, got %v", err)
	}
	if err := engine.Advance(); !errors.Is(err, domain.ErrPreconditionViolation) {
		t.Fatalf("expected advance after completion to fail, got %v", err)
	}
}

func TestRestartAfterCompletion(t *testing.T) {
	engine := quiz.NewEngine()
	bank := uniformBank(2, 1)
	_ = engine.Start(bank)
	playAll(t, engine, 1)

	if err := engine.Start(bank); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if engine.Index() != 0 || engine.Score() != 0 || engine.Phase() != domain.PhaseAwaitingAnswer {
		t.Fatalf("expected fresh state, got index=%d score=%d phase=%s", engine.Index(), engine.Score(), engine.Phase())
	}
	q, err := engine.CurrentQuestion()
	if err != nil || q.ID() != bank.Questions[0].ID() {
		t.Fatalf("expected first question, got %v %v", q.ID(), err)
	}
}

func TestBankIsPinnedAtStart(t *testing.T) {
	engine := quiz.NewEngine()
	bank := uniformBank(2, 1)
	_ = engine.Start(bank)

	bank.Questions[0] = domain.MustQuestion("other", "changed", []string{"x"}, 0)
	q, err := engine.CurrentQuestion()
	if err != nil {
		t.Fatalf("current question: %v", err)
	}
	if q.ID() != "a" || q.Prompt() != "Pick the right one" {
		t.Fatalf("caller edit leaked into running quiz: id=%s prompt=%q", q.ID(), q.Prompt())
	}

	held := engine.Bank()
	held.Questions[1] = domain.MustQuestion("other", "changed", []string{"x"}, 0)
	if got := engine.Bank().Questions[1].ID(); got != "b" {
		t.Fatalf("Bank() exposed internal questions, got %s", got)
	}
}

func TestObserverSeesTransitions(t *testing.T) {
	var phases []domain.Phase
	engine := quiz.NewEngine(quiz.WithObserver(func(s domain.Snapshot) {
		phases = append(phases, s.Phase)
	}))
	_ = engine.Start(uniformBank(1, 0))
	_, _ = engine.SubmitAnswer(0)
	_ = engine.Advance()

	want := []domain.Phase{domain.PhaseAwaitingAnswer, domain.PhaseAwaitingAnswer, domain.PhaseCompleted}
	if len(phases) != len(want) {
		t.Fatalf("expected %d notifications, got %v", len(want), phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Fatalf("notification %d: expected %s, got %s", i, want[i], phases[i])
		}
	}
}

func TestSnapshotHidesAnswerKey(t *testing.T) {
	engine := quiz.NewEngine()
	_ = engine.Start(quiz.MathBank())

	snap := engine.Snapshot()
	if snap.Question == nil || snap.Question.Prompt != "What is 2 + 3?" {
		t.Fatalf("expected first math question, got %+v", snap.Question)
	}
	if snap.CanAdvance || snap.Answered || snap.Selected != -1 {
		t.Fatalf("unexpected fresh snapshot %+v", snap)
	}

	_, _ = engine.SubmitAnswer(2)
	snap = engine.Snapshot()
	if !snap.CanAdvance || snap.Selected != 2 {
		t.Fatalf("expected answered snapshot, got %+v", snap)
	}
}

func TestPercentage(t *testing.T) {
	cases := []struct{ score, total, want int }{
		{4, 5, 80},
		{3, 5, 60},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13},
		{0, 0, 0},
	}
	for _, c := range cases {
		if got := quiz.Percentage(c.score, c.total); got != c.want {
			t.Fatalf("Percentage(%d,%d)=%d want %d", c.score, c.total, got, c.want)
		}
	}
}

func TestFeedbackTiers(t *testing.T) {
	if fb := quiz.FeedbackFor(domain.Results{Percentage: 80}); fb.Badge != "trophy" {
		t.Fatalf("expected trophy, got %+v", fb)
	}
	if fb := quiz.FeedbackFor(domain.Results{Percentage: 60}); fb.Badge != "star" {
		t.Fatalf("expected star, got %+v", fb)
	}
	if fb := quiz.FeedbackFor(domain.Results{Percentage: 59}); fb.Badge != "thumbs_up" {
		t.Fatalf("expected thumbs_up, got %+v", fb)
	}
}

func playAll(t *testing.T, engine *quiz.Engine, option int) {
	t.Helper()
	for !engine.IsTerminal() {
		if _, err := engine.SubmitAnswer(option); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if err := engine.Advance(); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}
}

func uniformBank(n, correct int) domain.QuestionBank {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.MustQuestion(
			string(rune('a'+i)),
			"Pick the right one",
			[]string{"w", "x", "y", "z"},
			correct,
		))
	}
	return domain.QuestionBank{ID: "bank", Title: "Test", Subject: "math", Questions: questions}
}
