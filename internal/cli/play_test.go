package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"kiddoland-quiz-service/internal/app"
	"kiddoland-quiz-service/internal/infra/memory"
	"kiddoland-quiz-service/internal/quiz"
)

func TestPlayQuizScoresAnswers(t *testing.T) {
	progress := memory.NewProgressStore()
	service := app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewBankRepository(memory.NewStaticBankLoader(quiz.DefaultBanks()), time.Minute),
		app.WithProgressStore(progress),
	)

	// 1-based input: junk, out of range, then 2,2,2,1,3 (four right).
	in := strings.NewReader("abc\n9\n2\n2\n2\n1\n3\n")
	var out bytes.Buffer
	if err := playQuiz(context.Background(), service, "kid-1", quiz.MathBankID, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Question 1/5: What is 2 + 3?",
		"Please type the number of an answer.",
		"Pick a number between 1 and 4.",
		"Your Score: 4/5 (80%)",
		"Excellent! You're a math star!",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
	if v, ok := progress.Get("kid-1", "math"); !ok || v != 80 {
		t.Fatalf("expected progress 80, got %d %v", v, ok)
	}
}

func TestPlayQuizQuit(t *testing.T) {
	service := app.NewQuizService(
		memory.NewSessionStore(),
		memory.NewBankRepository(memory.NewStaticBankLoader(quiz.DefaultBanks()), time.Minute),
	)
	var out bytes.Buffer
	if err := playQuiz(context.Background(), service, "kid-1", quiz.MathBankID, strings.NewReader("q\n"), &out); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "Bye!") {
		t.Fatalf("expected goodbye, got %s", out.String())
	}
}
