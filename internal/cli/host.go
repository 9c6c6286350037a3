package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizmaster-console/internal/app"
	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/session"
)

func newHostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "host",
		Short: "Create a quiz interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newConsole()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			token, err := c.token(ctx)
			if err != nil {
				return err
			}
			identity, err := session.Decode(token)
			if err != nil {
				return err
			}

			stop := c.startHeartbeat(ctx)
			defer stop()

			name, err := c.promptRequired("quiz name: ")
			if err != nil {
				return err
			}

			quizID, err := c.host.GenerateQuizID(ctx, token)
			if err != nil {
				return err
			}
			fmt.Println("quiz id:", color.HiWhiteString(quizID))

			draft := app.Draft{QuizID: quizID, Name: name}
			for {
				fmt.Println(color.HiBlackString("--- question %d (empty text to finish) ---", len(draft.Questions)+1))
				q, done, err := c.promptQuestion()
				if err != nil {
					return err
				}
				if done {
					break
				}
				if err := draft.AddQuestion(q); err != nil {
					warn("%v", err)
					continue
				}
			}

			report, err := c.host.Submit(ctx, token, identity.Username, draft)
			if errors.Is(err, domain.ErrPartialFailure) {
				warn("quiz %s created with gaps: %d submitted, %d failed", report.QuizID, report.Submitted, report.Failed)
				warn("re-add the missing questions with `quizmaster quiz add %s`", report.QuizID)
				return nil
			}
			if err != nil {
				return err
			}
			success("quiz %s created with %d questions", report.QuizID, report.Submitted)
			fmt.Println("share the id with participants:", color.HiWhiteString(report.QuizID))
			return nil
		},
	}
}

// promptQuestion collects one question draft; done is true when the author
// entered an empty text to finish the quiz.
func (c *console) promptQuestion() (app.QuestionDraft, bool, error) {
	text, err := c.prompt("question: ")
	if err != nil {
		return app.QuestionDraft{}, false, err
	}
	if text == "" {
		return app.QuestionDraft{}, true, nil
	}

	var q app.QuestionDraft
	q.Text = text
	if q.OptionA, err = c.promptRequired("  option A: "); err != nil {
		return q, false, err
	}
	if q.OptionB, err = c.promptRequired("  option B: "); err != nil {
		return q, false, err
	}
	if q.OptionC, err = c.promptRequired("  option C: "); err != nil {
		return q, false, err
	}
	if q.OptionD, err = c.promptRequired("  option D: "); err != nil {
		return q, false, err
	}
	correct, err := c.promptRequired("  correct (A-D): ")
	if err != nil {
		return q, false, err
	}
	q.CorrectAnswer = strings.ToUpper(correct)
	return q, false, nil
}
