package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"quizmaster-console/internal/app"
	"quizmaster-console/internal/config"
	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
)

const defaultConsoleRefresh = 30 * time.Second

func newConsoleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "System administration console",
	}
	cmd.AddCommand(newConsoleDashboardCmd())
	cmd.AddCommand(newConsoleUsersCmd())
	cmd.AddCommand(newConsoleBlockCmd())
	cmd.AddCommand(newConsolePromoteCmd())
	cmd.AddCommand(newConsoleDemoteCmd())
	cmd.AddCommand(newConsoleEditUserCmd())
	cmd.AddCommand(newConsoleDeleteUserCmd())
	cmd.AddCommand(newConsoleQuizzesCmd())
	cmd.AddCommand(newConsoleResultsCmd())
	cmd.AddCommand(newConsoleLogsCmd())
	cmd.AddCommand(newConsoleWatchCmd())
	return cmd
}

// authorize builds the console, checks the allow-list, and returns the token.
func authorizeConsole(cmd *cobra.Command) (*console, string, error) {
	c, err := newConsole()
	if err != nil {
		return nil, "", err
	}
	ctx := cmd.Context()
	token, err := c.token(ctx)
	if err != nil {
		return nil, "", err
	}
	if _, err := c.super.Authorize(ctx, token); err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return nil, "", fmt.Errorf("the system console requires an administrator account")
		}
		return nil, "", err
	}
	return c, token, nil
}

func newConsoleDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Platform headline numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			printDashboard(c.super.Dashboard(cmd.Context(), token))
			return nil
		},
	}
}

func printDashboard(dash app.Dashboard) {
	fmt.Println(color.HiWhiteString("users:   %d", dash.TotalUsers))
	fmt.Println(color.HiWhiteString("quizzes: %d", dash.TotalQuizzes))
	if dash.Placeholder {
		warn("some services were unreachable, counts may be placeholders")
	}
}

func newConsoleUsersCmd() *cobra.Command {
	var role, search string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			rows, err := c.super.Users(cmd.Context(), token)
			if err != nil {
				return err
			}
			rows = app.SearchUsers(app.FilterUsers(rows, role), search)
			if len(rows) == 0 {
				warn("no matching users")
				return nil
			}
			for _, r := range rows {
				printUserRow(r)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "filter by role")
	cmd.Flags().StringVar(&search, "search", "", "filter by username or email substring")
	return cmd
}

func printUserRow(r app.UserRow) {
	badges := []string{r.Role}
	if r.Protected {
		badges = append(badges, color.HiBlueString("protected"))
	}
	if r.Promoted {
		badges = append(badges, color.GreenString("promoted"))
	}
	if r.Blocked {
		badges = append(badges, color.RedString("blocked"))
	}
	status := string(r.OnlineStatus)
	switch r.OnlineStatus {
	case domain.StatusOnline:
		status = color.GreenString(status)
	case domain.StatusInactive:
		status = color.YellowString(status)
	}
	fmt.Printf("%-20s %-30s %-10s %s\n", r.Username, r.Email, status, strings.Join(badges, ", "))
}

// findUser resolves a username to its account record.
func findUser(ctx context.Context, c *console, token, username string) (domain.User, error) {
	rows, err := c.super.Users(ctx, token)
	if err != nil {
		return domain.User{}, err
	}
	for _, r := range rows {
		if strings.EqualFold(r.Username, username) {
			return r.User, nil
		}
	}
	return domain.User{}, fmt.Errorf("no account named %q", username)
}

func userActionCmd(use, short string, action func(ctx context.Context, c *console, token string, user domain.User) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <username>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			user, err := findUser(ctx, c, token, args[0])
			if err != nil {
				return err
			}
			if err := action(ctx, c, token, user); err != nil {
				if errors.Is(err, domain.ErrProtectedAccount) {
					warn("the %s account cannot be modified", user.Username)
					return nil
				}
				return err
			}
			return nil
		},
	}
}

func newConsoleBlockCmd() *cobra.Command {
	return userActionCmd("block", "Block or unblock an account", func(ctx context.Context, c *console, token string, user domain.User) error {
		if err := c.super.ToggleBlock(ctx, token, user); err != nil {
			return err
		}
		if user.Blocked {
			success("%s unblocked", user.Username)
		} else {
			success("%s blocked", user.Username)
		}
		return nil
	})
}

func newConsolePromoteCmd() *cobra.Command {
	return userActionCmd("promote", "Grant an account the admin role", func(ctx context.Context, c *console, token string, user domain.User) error {
		if err := c.super.Promote(ctx, token, user); err != nil {
			return err
		}
		success("%s promoted to admin", user.Username)
		return nil
	})
}

func newConsoleDemoteCmd() *cobra.Command {
	return userActionCmd("demote", "Revert an account to the student role", func(ctx context.Context, c *console, token string, user domain.User) error {
		if err := c.super.Demote(ctx, token, user); err != nil {
			return err
		}
		success("%s demoted", user.Username)
		return nil
	})
}

func newConsoleEditUserCmd() *cobra.Command {
	return userActionCmd("edit-user", "Edit an account, blank input keeps the current value", func(ctx context.Context, c *console, token string, user domain.User) error {
		// Re-fetch so the prompts show the record as the auth service
		// holds it right now.
		user, err := c.super.User(ctx, token, user.ID)
		if err != nil {
			return err
		}
		username, err := c.promptDefault("username", user.Username)
		if err != nil {
			return err
		}
		email, err := c.promptDefault("email", user.Email)
		if err != nil {
			return err
		}
		role, err := c.promptDefault("role", user.Role)
		if err != nil {
			return err
		}
		update := httpapi.UserUpdate{}
		if username != user.Username {
			update.Username = username
		}
		if email != user.Email {
			update.Email = email
		}
		if role != user.Role {
			update.Role = role
		}
		if update == (httpapi.UserUpdate{}) {
			warn("nothing changed")
			return nil
		}
		if err := c.super.EditUser(ctx, token, user, update); err != nil {
			return err
		}
		success("%s updated", user.Username)
		return nil
	})
}

func newConsoleDeleteUserCmd() *cobra.Command {
	return userActionCmd("delete-user", "Delete an account", func(ctx context.Context, c *console, token string, user domain.User) error {
		confirm, err := c.prompt(fmt.Sprintf("delete account %s? (y/N): ", user.Username))
		if err != nil {
			return err
		}
		if !strings.EqualFold(confirm, "y") {
			return nil
		}
		if err := c.super.DeleteUser(ctx, token, user); err != nil {
			return err
		}
		success("%s deleted", user.Username)
		return nil
	})
}

func newConsoleQuizzesCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List every quiz on the platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			rows, err := c.super.Quizzes(cmd.Context(), token)
			if err != nil {
				return err
			}
			rows = app.SearchQuizzes(rows, search)
			if len(rows) == 0 {
				warn("no matching quizzes")
				return nil
			}
			for _, r := range rows {
				line := fmt.Sprintf("%s  %-30s by %-15s %d questions, %d participants",
					color.HiWhiteString(r.QuizID), r.Title, r.Creator, r.Questions, r.Participants)
				if r.Degraded {
					line += color.YellowString("  (partial data)")
				}
				fmt.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "filter by id, title or creator substring")
	return cmd
}

func newConsoleResultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "results",
		Short: "Show every recorded submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			results, err := c.super.Results(cmd.Context(), token)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Printf("%s  %-15s %-8s %d/%d\n",
					color.HiBlackString(r.SubmittedAt.Format("2006-01-02 15:04:05")),
					r.StudentUsername, r.QuizID, r.CorrectAnswers, r.TotalQuestions)
			}
			return nil
		},
	}
}

func newConsoleLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs",
		Short: "Show the activity feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			logs, placeholder, err := c.super.Logs(cmd.Context(), token)
			if err != nil {
				return err
			}
			if placeholder {
				warn("log service unreachable, showing placeholder entries")
			}
			for _, l := range logs {
				fmt.Printf("%s  %-15s %-10s %s\n",
					color.HiBlackString(l.Timestamp.Format("2006-01-02 15:04:05")),
					l.User, l.Action, l.Resource)
			}
			return nil
		},
	}
}

func newConsoleWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the dashboard and user table periodically",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, token, err := authorizeConsole(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			stop := c.startHeartbeat(ctx)
			defer stop()

			refresh := config.Duration(c.cfg.Superadmin.Refresh, defaultConsoleRefresh)
			// Deliberately uncoordinated with the heartbeat ticker and with
			// no in-flight guard; a slow fetch just delays the next frame.
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()

			for {
				fmt.Println(color.HiBlackString("--- %s ---", time.Now().Format("15:04:05")))
				printDashboard(c.super.Dashboard(ctx, token))
				rows, err := c.super.Users(ctx, token)
				if err != nil {
					warn("user listing failed: %v", err)
				} else {
					for _, r := range rows {
						printUserRow(r)
					}
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
}
