package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"kiddoland-quiz-service/internal/app"
	"kiddoland-quiz-service/internal/config"
	"kiddoland-quiz-service/internal/domain"
)

// NewPlayCmd runs a quiz interactively in the terminal.
func NewPlayCmd(configPath *string) *cobra.Command {
	var bankID, learnerID string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				if !errors.Is(err, os.ErrNotExist) {
					return err
				}
				log.Printf("config %s not found, using in-memory defaults", *configPath)
			}
			if bankID == "" {
				bankID = cfg.Quiz.DefaultBank
			}
			if bankID == "" {
				bankID = "math-quiz"
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()
			return playQuiz(cmd.Context(), d.service, learnerID, bankID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&bankID, "bank", "", "question bank to play (defaults to quiz.default_bank)")
	cmd.Flags().StringVar(&learnerID, "learner", "guest", "learner id progress is recorded under")
	return cmd
}

// playQuiz drives one session over a line-oriented reader/writer. Options
// are entered 1-based; "q" quits.
func playQuiz(ctx context.Context, service *app.QuizService, learnerID, bankID string, in io.Reader, out io.Writer) error {
	sessionID := uuid.NewString()
	snap, err := service.Start(ctx, sessionID, learnerID, bankID)
	if err != nil {
		return err
	}
	defer service.End(ctx, sessionID)

	scanner := bufio.NewScanner(in)
	for snap.Phase == domain.PhaseAwaitingAnswer {
		q := snap.Question
		fmt.Fprintf(out, "\nQuestion %d/%d: %s\n", snap.Index+1, snap.Total, q.Prompt)
		for i, opt := range q.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}
		fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			fmt.Fprintln(out, "Bye!")
			return nil
		}
		choice, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(out, "Please type the number of an answer.")
			continue
		}
		res, _, err := service.SubmitAnswer(ctx, sessionID, choice-1)
		if errors.Is(err, domain.ErrInvalidInput) {
			fmt.Fprintf(out, "Pick a number between 1 and %d.\n", len(q.Options))
			continue
		}
		if err != nil {
			return err
		}
		if res.Correct {
			fmt.Fprintln(out, "Correct! 🎉")
		} else {
			fmt.Fprintln(out, "Try again next time! 💪")
		}
		if snap, err = service.Advance(ctx, sessionID); err != nil {
			return err
		}
	}

	res, feedback, err := service.Results(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nQuiz Completed! 🎉\nYour Score: %d/%d (%d%%)\n%s\n", res.Score, res.Total, res.Percentage, feedback.Message)
	return nil
}
