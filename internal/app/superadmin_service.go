package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
	"quizmaster-console/internal/session"
)

// SuperadminService backs the system console: platform-wide dashboards, user
// administration, quiz oversight, and the activity feed. Everything here is
// read-mostly and tolerant of individual services being down; the console
// degrades to placeholders rather than failing whole screens.
type SuperadminService struct {
	users     UserAdminAPI
	questions QuestionAPI
	results   ResultAPI
	store     StateStore
	log       *slog.Logger
	now       func() time.Time
}

func NewSuperadminService(users UserAdminAPI, questions QuestionAPI, results ResultAPI, store StateStore, log *slog.Logger) *SuperadminService {
	if log == nil {
		log = slog.Default()
	}
	return &SuperadminService{
		users:     users,
		questions: questions,
		results:   results,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// Authorize gates entry to the console. It combines the token's role claim
// with the client-local promoted list; the services re-check every request,
// so a stale promoted entry only opens a console full of 403s.
func (s *SuperadminService) Authorize(ctx context.Context, token string) (session.Identity, error) {
	identity, err := session.Decode(token)
	if err != nil {
		return session.Identity{}, err
	}
	promoted, err := s.store.PromotedAdmins(ctx)
	if err != nil {
		s.log.Debug("could not read promoted list", "err", err)
	}
	if !session.Allowlist(identity, promoted) {
		return session.Identity{}, domain.ErrForbidden
	}
	return identity, nil
}

// Dashboard is the console landing screen's headline numbers.
type Dashboard struct {
	TotalUsers   int
	TotalQuizzes int
	// Placeholder marks counts that fell back because a service was
	// unreachable.
	Placeholder bool
}

// Fallback count shown when the user service is down, matching the original
// console's static placeholder.
const placeholderUserCount = 5

// Dashboard fetches the headline counts concurrently. A failed fetch is
// replaced by a placeholder instead of failing the screen.
func (s *SuperadminService) Dashboard(ctx context.Context, token string) Dashboard {
	// Each goroutine owns its result; merging happens after Wait so the
	// two fetches never touch the same field.
	var (
		userCount, quizCount           int
		usersDegraded, quizzesDegraded bool
	)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := s.users.CountUsers(ctx, token)
		if err != nil {
			s.log.Debug("user count unavailable", "err", err)
			usersDegraded = true
			return nil
		}
		userCount = count
		return nil
	})
	g.Go(func() error {
		ids, err := s.questions.AllQuizIDs(ctx, token)
		if err != nil {
			s.log.Debug("quiz count unavailable", "err", err)
			quizzesDegraded = true
			return nil
		}
		quizCount = len(ids)
		return nil
	})

	_ = g.Wait() // the goroutines never return errors, they degrade

	dash := Dashboard{TotalUsers: userCount, TotalQuizzes: quizCount}
	if usersDegraded {
		dash.TotalUsers = placeholderUserCount
		dash.Placeholder = true
	}
	if quizzesDegraded {
		dash.Placeholder = true
	}
	return dash
}

// UserRow is a console user listing row with derived display fields.
type UserRow struct {
	domain.User
	// Protected users cannot be blocked, demoted, edited, or deleted from
	// the console.
	Protected bool
	// Promoted reflects the client-local promoted list, not the server role.
	Promoted bool
}

// Users lists all accounts with console-side display flags attached.
func (s *SuperadminService) Users(ctx context.Context, token string) ([]UserRow, error) {
	users, err := s.users.ListUsers(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	promoted, err := s.store.PromotedAdmins(ctx)
	if err != nil {
		s.log.Debug("could not read promoted list", "err", err)
	}
	promotedSet := make(map[string]struct{}, len(promoted))
	for _, p := range promoted {
		promotedSet[strings.ToLower(p)] = struct{}{}
	}

	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		_, isPromoted := promotedSet[strings.ToLower(u.Username)]
		rows = append(rows, UserRow{
			User:      u,
			Protected: strings.EqualFold(u.Username, session.ProtectedUsername),
			Promoted:  isPromoted,
		})
	}
	return rows, nil
}

// ToggleBlock flips an account's blocked flag. The protected account cannot
// be blocked.
func (s *SuperadminService) ToggleBlock(ctx context.Context, token string, user domain.User) error {
	if strings.EqualFold(user.Username, session.ProtectedUsername) {
		return domain.ErrProtectedAccount
	}
	if err := s.users.ToggleStatus(ctx, token, user.ID); err != nil {
		return fmt.Errorf("toggle block for %s: %w", user.Username, err)
	}
	return nil
}

// Promote grants a user the admin role and records them in the client-local
// promoted list so the console affordance appears immediately.
func (s *SuperadminService) Promote(ctx context.Context, token string, user domain.User) error {
	if err := s.users.Promote(ctx, token, user.ID); err != nil {
		return fmt.Errorf("promote %s: %w", user.Username, err)
	}
	if err := s.store.AddPromotedAdmin(ctx, user.Username); err != nil {
		s.log.Debug("could not record promotion locally", "user", user.Username, "err", err)
	}
	return nil
}

// Demote reverts a user to the student role and drops them from the
// client-local promoted list. The protected account cannot be demoted.
func (s *SuperadminService) Demote(ctx context.Context, token string, user domain.User) error {
	if strings.EqualFold(user.Username, session.ProtectedUsername) {
		return domain.ErrProtectedAccount
	}
	if err := s.users.Demote(ctx, token, user.ID); err != nil {
		return fmt.Errorf("demote %s: %w", user.Username, err)
	}
	if err := s.store.RemovePromotedAdmin(ctx, user.Username); err != nil {
		s.log.Debug("could not drop local promotion", "user", user.Username, "err", err)
	}
	return nil
}

// User re-fetches a single account so edits start from the record as the
// auth service currently holds it, not from a listing row.
func (s *SuperadminService) User(ctx context.Context, token, id string) (domain.User, error) {
	user, err := s.users.GetUser(ctx, token, id)
	if err != nil {
		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return domain.User{}, fmt.Errorf("account %s no longer exists", id)
		}
		return domain.User{}, fmt.Errorf("load account %s: %w", id, err)
	}
	return user, nil
}

// EditUser updates an account's profile fields.
func (s *SuperadminService) EditUser(ctx context.Context, token string, user domain.User, update httpapi.UserUpdate) error {
	if strings.EqualFold(user.Username, session.ProtectedUsername) {
		return domain.ErrProtectedAccount
	}
	if err := s.users.UpdateUser(ctx, token, user.ID, update); err != nil {
		return fmt.Errorf("update %s: %w", user.Username, err)
	}
	return nil
}

// DeleteUser removes an account. The protected account cannot be deleted.
func (s *SuperadminService) DeleteUser(ctx context.Context, token string, user domain.User) error {
	if strings.EqualFold(user.Username, session.ProtectedUsername) {
		return domain.ErrProtectedAccount
	}
	if err := s.users.DeleteUser(ctx, token, user.ID); err != nil {
		return fmt.Errorf("delete %s: %w", user.Username, err)
	}
	if err := s.store.RemovePromotedAdmin(ctx, user.Username); err != nil {
		s.log.Debug("could not drop local promotion", "user", user.Username, "err", err)
	}
	return nil
}

// Quizzes assembles the platform-wide quiz oversight table. The id list is
// mandatory; metadata and participant counts are fetched per quiz and any
// failure degrades that single row instead of the table.
func (s *SuperadminService) Quizzes(ctx context.Context, token string) ([]domain.QuizRow, error) {
	ids, err := s.questions.AllQuizIDs(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	rows := make([]domain.QuizRow, 0, len(ids))
	for _, id := range ids {
		row := domain.QuizRow{QuizID: id, Title: id, Creator: "unknown"}

		meta, err := s.questions.QuizMetadata(ctx, token, id)
		if err != nil {
			s.log.Debug("quiz metadata unavailable", "quizId", id, "err", err)
			row.Degraded = true
		} else {
			row.Title = meta.QuizName
			row.Questions = meta.QuestionCount
		}

		questions, err := s.questions.QuizQuestions(ctx, token, id)
		if err == nil && len(questions) > 0 {
			row.Creator = questions[0].HostUsername
			if row.Questions == 0 {
				row.Questions = len(questions)
			}
		}

		results, err := s.results.QuizResults(ctx, token, id)
		if err != nil {
			var apiErr *httpapi.APIError
			if !errors.As(err, &apiErr) || !apiErr.NotFound() {
				s.log.Debug("quiz results unavailable", "quizId", id, "err", err)
				row.Degraded = true
			}
		} else {
			row.Participants = len(results)
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteQuizEverywhere is the console's cascade delete, reusing the host
// flow's journaled two-service deletion.
func (s *SuperadminService) DeleteQuizEverywhere(ctx context.Context, admin *AdminService, token, quizID string) error {
	return admin.DeleteQuiz(ctx, token, quizID)
}

// Logs returns the audit feed newest-first. When the logs endpoint is
// unavailable a feed synthesized from recent submissions stands in so the
// screen still renders; synthesized is reported to the caller.
func (s *SuperadminService) Logs(ctx context.Context, token string) (logs []domain.ActivityLog, synthesized bool, err error) {
	logs, err = s.users.ListLogs(ctx, token)
	if err != nil {
		s.log.Debug("activity logs unavailable", "err", err)
		logs = s.synthesizeLogs(ctx, token)
		synthesized = true
	}
	sort.Slice(logs, func(i, j int) bool {
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	return logs, synthesized, nil
}

// Results lists every recorded submission on the platform, newest first.
func (s *SuperadminService) Results(ctx context.Context, token string) ([]domain.ParticipantResult, error) {
	results, err := s.results.AllResults(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].SubmittedAt.After(results[j].SubmittedAt)
	})
	return results, nil
}

// synthesizeLogs rebuilds an approximate feed from the result service's
// recent submissions, falling back to a static trio when that is down too.
func (s *SuperadminService) synthesizeLogs(ctx context.Context, token string) []domain.ActivityLog {
	recent, err := s.results.RecentResults(ctx, token)
	if err == nil && len(recent) > 0 {
		logs := make([]domain.ActivityLog, 0, len(recent))
		for _, r := range recent {
			logs = append(logs, domain.ActivityLog{
				Timestamp: r.SubmittedAt,
				User:      r.StudentUsername,
				Action:    "submitted",
				Resource:  r.QuizID,
			})
		}
		return logs
	}

	now := s.now()
	return []domain.ActivityLog{
		{Timestamp: now.Add(-2 * time.Minute), User: "system", Action: "login", Resource: "console"},
		{Timestamp: now.Add(-15 * time.Minute), User: "admin", Action: "list", Resource: "users"},
		{Timestamp: now.Add(-1 * time.Hour), User: "system", Action: "startup", Resource: "auth-service"},
	}
}

// FilterUsers narrows a user listing by role name. Empty or "all" passes
// everything through. Purely presentational, applied to already-fetched rows.
func FilterUsers(rows []UserRow, role string) []UserRow {
	if role == "" || strings.EqualFold(role, "all") {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if strings.EqualFold(r.Role, role) {
			out = append(out, r)
		}
	}
	return out
}

// SearchUsers narrows a user listing by a case-insensitive substring of the
// username or email.
func SearchUsers(rows []UserRow, query string) []UserRow {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.Username), query) ||
			strings.Contains(strings.ToLower(r.Email), query) {
			out = append(out, r)
		}
	}
	return out
}

// SearchQuizzes narrows a quiz listing by a case-insensitive substring of the
// id, title, or creator.
func SearchQuizzes(rows []domain.QuizRow, query string) []domain.QuizRow {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.QuizID), query) ||
			strings.Contains(strings.ToLower(r.Title), query) ||
			strings.Contains(strings.ToLower(r.Creator), query) {
			out = append(out, r)
		}
	}
	return out
}
