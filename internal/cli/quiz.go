package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizmaster-console/internal/domain"
)

func newQuizCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiz",
		Short: "Manage your quizzes",
	}
	cmd.AddCommand(newQuizListCmd())
	cmd.AddCommand(newQuizShowCmd())
	cmd.AddCommand(newQuizAddCmd())
	cmd.AddCommand(newQuizEditCmd())
	cmd.AddCommand(newQuizDeleteQuestionCmd())
	cmd.AddCommand(newQuizDeleteCmd())
	cmd.AddCommand(newQuizParticipantsCmd())
	cmd.AddCommand(newQuizKickCmd())
	cmd.AddCommand(newQuizRetryCmd())
	return cmd
}

func newQuizListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List quizzes you host",
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
			quizzes, err := c.admin.MyQuizzes(ctx, token)
			if err != nil {
				return err
			}
			if len(quizzes) == 0 {
				warn("you host no quizzes yet, run `quizmaster host`")
				return nil
			}
			for _, q := range quizzes {
				line := fmt.Sprintf("%s  %s", color.HiWhiteString(q.QuizID), q.QuizName)
				if q.QuestionCount > 0 {
					line += color.HiBlackString("  (%d questions)", q.QuestionCount)
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newQuizShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <quiz-id>",
		Short: "Show a quiz's questions",
		Args:  cobra.ExactArgs(1),
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
			questions, err := c.admin.OpenQuiz(ctx, token, args[0])
			if errors.Is(err, domain.ErrQuizNotFound) {
				warn("quiz %s not found", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Println(color.HiWhiteString("%s — %s", args[0], questions[0].QuizName))
			for i, q := range questions {
				fmt.Printf("%d. %s %s\n", i+1, q.Text, color.HiBlackString("(id %s)", q.ID))
				for _, label := range domain.OptionLabels {
					mark := "  "
					if label == q.CorrectAnswer {
						mark = color.GreenString("✓ ")
					}
					fmt.Printf("   %s%s) %s\n", mark, label, q.Option(label))
				}
			}
			return nil
		},
	}
}

func newQuizAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <quiz-id>",
		Short: "Append a question to a quiz",
		Args:  cobra.ExactArgs(1),
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
			existing, err := c.admin.OpenQuiz(ctx, token, args[0])
			if err != nil {
				return err
			}

			draft, done, err := c.promptQuestion()
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			question := domain.Question{
				Text:          draft.Text,
				OptionA:       draft.OptionA,
				OptionB:       draft.OptionB,
				OptionC:       draft.OptionC,
				OptionD:       draft.OptionD,
				CorrectAnswer: draft.CorrectAnswer,
				QuizID:        args[0],
				QuizName:      existing[0].QuizName,
				HostUsername:  existing[0].HostUsername,
			}
			if err := c.admin.AddQuestion(ctx, token, question); err != nil {
				return err
			}
			success("question added to %s", args[0])
			return nil
		},
	}
}

func newQuizEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <quiz-id> <question-id>",
		Short: "Edit a question, blank input keeps the current value",
		Args:  cobra.ExactArgs(2),
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
			questions, err := c.admin.OpenQuiz(ctx, token, args[0])
			if err != nil {
				return err
			}

			var current *domain.Question
			for i := range questions {
				if questions[i].ID == args[1] {
					current = &questions[i]
					break
				}
			}
			if current == nil {
				warn("question %s not found in quiz %s", args[1], args[0])
				return nil
			}

			edited := *current
			if edited.Text, err = c.promptDefault("question", current.Text); err != nil {
				return err
			}
			if edited.OptionA, err = c.promptDefault("option A", current.OptionA); err != nil {
				return err
			}
			if edited.OptionB, err = c.promptDefault("option B", current.OptionB); err != nil {
				return err
			}
			if edited.OptionC, err = c.promptDefault("option C", current.OptionC); err != nil {
				return err
			}
			if edited.OptionD, err = c.promptDefault("option D", current.OptionD); err != nil {
				return err
			}
			correct, err := c.promptDefault("correct (A-D)", current.CorrectAnswer)
			if err != nil {
				return err
			}
			edited.CorrectAnswer = strings.ToUpper(correct)

			if err := c.admin.UpdateQuestion(ctx, token, edited); err != nil {
				return err
			}
			success("question %s updated", edited.ID)
			return nil
		},
	}
}

// promptDefault prompts with the current value shown; empty input keeps it.
func (c *console) promptDefault(label, current string) (string, error) {
	value, err := c.prompt(fmt.Sprintf("%s [%s]: ", label, current))
	if err != nil {
		return "", err
	}
	if value == "" {
		return current, nil
	}
	return value, nil
}

func newQuizDeleteQuestionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-question <quiz-id> <question-id>",
		Short: "Remove one question from a quiz",
		Args:  cobra.ExactArgs(2),
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
			if err := c.admin.DeleteQuestion(ctx, token, args[0], args[1]); err != nil {
				return err
			}
			success("question %s deleted", args[1])
			return nil
		},
	}
}

func newQuizDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <quiz-id>",
		Short: "Delete a quiz and its results",
		Args:  cobra.ExactArgs(1),
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

			if !yes {
				confirm, err := c.prompt(fmt.Sprintf("delete quiz %s and all its results? (y/N): ", args[0]))
				if err != nil {
					return err
				}
				if !strings.EqualFold(confirm, "y") {
					return nil
				}
			}

			err = c.admin.DeleteQuiz(ctx, token, args[0])
			if errors.Is(err, domain.ErrPartialFailure) {
				warn("%v", err)
				warn("run `quizmaster quiz retry` to replay the failed steps")
				return nil
			}
			if err != nil {
				return err
			}
			success("quiz %s deleted", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newQuizParticipantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "participants <quiz-id>",
		Short: "List participants and their scores",
		Args:  cobra.ExactArgs(1),
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
			results, err := c.admin.Participants(ctx, token, args[0])
			if err != nil {
				return err
			}
			if len(results) == 0 {
				warn("no submissions yet")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%-20s %d/%d  %s\n", r.StudentUsername, r.CorrectAnswers, r.TotalQuestions,
					color.HiBlackString(r.SubmittedAt.Format("2006-01-02 15:04")))
			}
			return nil
		},
	}
}

func newQuizKickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kick <quiz-id> <username>",
		Short: "Remove a participant's result so they can retake the quiz",
		Args:  cobra.ExactArgs(2),
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
			if err := c.admin.RemoveParticipant(ctx, token, args[0], args[1]); err != nil {
				return err
			}
			success("%s removed from quiz %s", args[1], args[0])
			return nil
		},
	}
}

func newQuizRetryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Replay pending delete steps from earlier partial failures",
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
			remaining, err := c.admin.RetryJournal(ctx, token)
			if err != nil {
				return err
			}
			if remaining > 0 {
				warn("%d steps still pending, retry later", remaining)
				return nil
			}
			success("journal clear")
			return nil
		},
	}
}
