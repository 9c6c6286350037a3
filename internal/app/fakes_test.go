package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
)

// fakeQuestionAPI is an in-memory question service double with per-method
// error injection.
type fakeQuestionAPI struct {
	mu        sync.Mutex
	questions []domain.Question
	nextID    int

	addErr           error
	addFailFor       map[string]error // question text -> error
	listErr          error
	quizQuestionsErr error
	detailedErr      error
	hostIDsErr       error
	metaErr          map[string]error // quizID -> error
	deleteErr        error
	deleteFailFor    map[string]error // question id -> error

	deleteQuestionCalls int
	deleteQuizCalls     int
}

func newFakeQuestionAPI() *fakeQuestionAPI {
	return &fakeQuestionAPI{
		addFailFor:    map[string]error{},
		metaErr:       map[string]error{},
		deleteFailFor: map[string]error{},
	}
}

func (f *fakeQuestionAPI) AddQuestion(_ context.Context, _ string, q domain.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	if err, ok := f.addFailFor[q.Text]; ok {
		return err
	}
	f.nextID++
	q.ID = fmt.Sprintf("q-%d", f.nextID)
	f.questions = append(f.questions, q)
	return nil
}

func (f *fakeQuestionAPI) QuizQuestions(_ context.Context, _, quizID string) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.quizQuestionsErr != nil {
		return nil, f.quizQuestionsErr
	}
	var out []domain.Question
	for _, q := range f.questions {
		if q.QuizID == quizID {
			out = append(out, q)
		}
	}
	if out == nil {
		return nil, &httpapi.APIError{Status: http.StatusNotFound, Message: "quiz not found"}
	}
	return out, nil
}

func (f *fakeQuestionAPI) QuizMetadata(_ context.Context, _, quizID string) (domain.QuizSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.metaErr[quizID]; ok {
		return domain.QuizSummary{}, err
	}
	count := 0
	name := ""
	for _, q := range f.questions {
		if q.QuizID == quizID {
			count++
			name = q.QuizName
		}
	}
	if count == 0 {
		return domain.QuizSummary{}, &httpapi.APIError{Status: http.StatusNotFound, Message: "quiz not found"}
	}
	return domain.QuizSummary{QuizID: quizID, QuizName: name, QuestionCount: count}, nil
}

func (f *fakeQuestionAPI) AllQuizIDs(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	seen := map[string]bool{}
	var ids []string
	for _, q := range f.questions {
		if !seen[q.QuizID] {
			seen[q.QuizID] = true
			ids = append(ids, q.QuizID)
		}
	}
	return ids, nil
}

func (f *fakeQuestionAPI) HostQuizIDs(_ context.Context, _, username string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hostIDsErr != nil {
		return nil, f.hostIDsErr
	}
	seen := map[string]bool{}
	var ids []string
	for _, q := range f.questions {
		if q.HostUsername == username && !seen[q.QuizID] {
			seen[q.QuizID] = true
			ids = append(ids, q.QuizID)
		}
	}
	return ids, nil
}

func (f *fakeQuestionAPI) HostQuizzesDetailed(_ context.Context, _, username string) ([]domain.QuizSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailedErr != nil {
		return nil, f.detailedErr
	}
	counts := map[string]int{}
	names := map[string]string{}
	var order []string
	for _, q := range f.questions {
		if q.HostUsername != username {
			continue
		}
		if counts[q.QuizID] == 0 {
			order = append(order, q.QuizID)
		}
		counts[q.QuizID]++
		names[q.QuizID] = q.QuizName
	}
	var out []domain.QuizSummary
	for _, id := range order {
		out = append(out, domain.QuizSummary{QuizID: id, QuizName: names[id], QuestionCount: counts[id]})
	}
	return out, nil
}

func (f *fakeQuestionAPI) UpdateQuestion(_ context.Context, _, questionID string, question domain.Question) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, q := range f.questions {
		if q.ID == questionID {
			question.ID = questionID
			f.questions[i] = question
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound, Message: "question not found"}
}

func (f *fakeQuestionAPI) DeleteQuestion(_ context.Context, _, questionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteQuestionCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if err, ok := f.deleteFailFor[questionID]; ok {
		return err
	}
	for i, q := range f.questions {
		if q.ID == questionID {
			f.questions = append(f.questions[:i], f.questions[i+1:]...)
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound, Message: "question not found"}
}

func (f *fakeQuestionAPI) DeleteQuiz(_ context.Context, _, quizID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteQuizCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	kept := f.questions[:0]
	for _, q := range f.questions {
		if q.QuizID != quizID {
			kept = append(kept, q)
		}
	}
	f.questions = kept
	return nil
}

// fakeResultAPI is an in-memory result service double.
type fakeResultAPI struct {
	mu      sync.Mutex
	results map[string][]domain.ParticipantResult // quizID -> results

	submitErr      error
	attemptedErr   error
	deleteErr      error
	graded         domain.Score
	lastSubmission domain.Submission
}

func newFakeResultAPI() *fakeResultAPI {
	return &fakeResultAPI{results: map[string][]domain.ParticipantResult{}}
}

func (f *fakeResultAPI) Submit(_ context.Context, _ string, sub domain.Submission) (domain.Score, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return domain.Score{}, f.submitErr
	}
	f.lastSubmission = sub
	score := f.graded
	if score.SubmittedAt.IsZero() {
		score.SubmittedAt = time.Now()
	}
	f.results[sub.QuizID] = append(f.results[sub.QuizID], domain.ParticipantResult{
		StudentUsername: sub.StudentUsername,
		QuizID:          sub.QuizID,
		CorrectAnswers:  score.CorrectAnswers,
		TotalQuestions:  score.TotalQuestions,
		SubmittedAt:     score.SubmittedAt,
	})
	return score, nil
}

func (f *fakeResultAPI) Attempted(_ context.Context, _, quizID, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attemptedErr != nil {
		return false, f.attemptedErr
	}
	for _, r := range f.results[quizID] {
		if r.StudentUsername == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeResultAPI) QuizResults(_ context.Context, _, quizID string) ([]domain.ParticipantResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[quizID], nil
}

func (f *fakeResultAPI) DeleteQuizResults(_ context.Context, _, quizID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.results, quizID)
	return nil
}

func (f *fakeResultAPI) DeleteUserResult(_ context.Context, _, quizID, username string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.results[quizID][:0]
	for _, r := range f.results[quizID] {
		if r.StudentUsername != username {
			kept = append(kept, r)
		}
	}
	f.results[quizID] = kept
	return nil
}

func (f *fakeResultAPI) RecentResults(_ context.Context, _ string) ([]domain.ParticipantResult, error) {
	return f.AllResults(context.Background(), "")
}

func (f *fakeResultAPI) AllResults(_ context.Context, _ string) ([]domain.ParticipantResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.ParticipantResult
	for _, rs := range f.results {
		out = append(out, rs...)
	}
	return out, nil
}

// fakeUserAPI is an in-memory auth admin surface double.
type fakeUserAPI struct {
	mu    sync.Mutex
	users []domain.User
	logs  []domain.ActivityLog

	countErr error
	listErr  error
	logsErr  error
}

func newFakeUserAPI(users ...domain.User) *fakeUserAPI {
	return &fakeUserAPI{users: users}
}

func (f *fakeUserAPI) ListUsers(context.Context, string) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.User, len(f.users))
	copy(out, f.users)
	return out, nil
}

func (f *fakeUserAPI) CountUsers(context.Context, string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.users), nil
}

func (f *fakeUserAPI) GetUser(_ context.Context, _, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) UpdateUser(_ context.Context, _, id string, update httpapi.UserUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			if update.Username != "" {
				u.Username = update.Username
			}
			if update.Email != "" {
				u.Email = update.Email
			}
			if update.Role != "" {
				u.Role = update.Role
			}
			f.users[i] = u
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) DeleteUser(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) ToggleStatus(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Blocked = !f.users[i].Blocked
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) Promote(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Role = "admin"
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) Demote(_ context.Context, _, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users[i].Role = "student"
			return nil
		}
	}
	return &httpapi.APIError{Status: http.StatusNotFound}
}

func (f *fakeUserAPI) ListLogs(context.Context, string) ([]domain.ActivityLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	out := make([]domain.ActivityLog, len(f.logs))
	copy(out, f.logs)
	return out, nil
}

// passthroughCache forwards every read to the source and records
// invalidations.
type passthroughCache struct {
	source      QuestionAPI
	invalidated []string
}

func (p *passthroughCache) QuizQuestions(ctx context.Context, token, quizID string) ([]domain.Question, error) {
	return p.source.QuizQuestions(ctx, token, quizID)
}

func (p *passthroughCache) Invalidate(_ context.Context, quizID string) {
	p.invalidated = append(p.invalidated, quizID)
}
