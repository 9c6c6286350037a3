package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizmaster-console/internal/app"
	"quizmaster-console/internal/domain"
)

func newTakeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "take <quiz-id>",
		Short: "Take a quiz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			quizID := strings.ToUpper(strings.TrimSpace(args[0]))
			if !app.ValidQuizID(quizID) {
				return fmt.Errorf("%w: quiz id must be 6 characters A-Z or 0-9", domain.ErrValidation)
			}

			token, err := c.token(ctx)
			if err != nil {
				return err
			}

			stop := c.startHeartbeat(ctx)
			defer stop()

			attempt, err := c.take.Start(ctx, token, quizID)
			switch {
			case errors.Is(err, domain.ErrAlreadyAttempted):
				warn("you have already attempted this quiz")
				return nil
			case errors.Is(err, domain.ErrNoQuestions):
				warn("quiz %s has no questions", quizID)
				return nil
			case err != nil:
				return err
			}

			return c.runAttempt(cmd, attempt, token)
		},
	}
}

func (c *console) runAttempt(cmd *cobra.Command, attempt *app.Attempt, token string) error {
	ctx := cmd.Context()
	for {
		q, index, total := attempt.Current()
		fmt.Println()
		fmt.Println(color.HiWhiteString("[%d/%d] %s", index+1, total, q.Text))
		selected, _ := attempt.Selected()
		for _, label := range domain.OptionLabels {
			marker := "  "
			if label == selected {
				marker = color.GreenString("> ")
			}
			fmt.Printf("%s%s) %s\n", marker, label, q.Option(label))
		}

		input, err := c.prompt("answer A-D, (n)ext, (p)rev, (s)ubmit, (q)uit: ")
		if err != nil {
			return err
		}
		switch strings.ToUpper(input) {
		case "A", "B", "C", "D":
			if err := attempt.Select(strings.ToUpper(input)); err != nil {
				warn("%v", err)
				continue
			}
			attempt.Next()
		case "N":
			if attempt.AtLast() {
				warn("already at the last question")
				continue
			}
			attempt.Next()
		case "P":
			if attempt.AtFirst() {
				warn("already at the first question")
				continue
			}
			attempt.Prev()
		case "S":
			if attempt.Answered() < total {
				confirm, err := c.prompt(fmt.Sprintf("%d of %d answered, submit anyway? (y/N): ", attempt.Answered(), total))
				if err != nil {
					return err
				}
				if !strings.EqualFold(confirm, "y") {
					continue
				}
			}
			score, err := c.take.Submit(ctx, token, attempt)
			if err != nil {
				warn("submission failed: %v", err)
				warn("your answers are kept, submit again or quit")
				continue
			}
			success("score: %d/%d correct", score.CorrectAnswers, score.TotalQuestions)
			return nil
		case "Q":
			warn("attempt abandoned, nothing was submitted")
			return nil
		default:
			warn("unknown input %q", input)
		}
	}
}
