package app

import (
	"context"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
)

// QuestionAPI is the question service surface the flows consume.
type QuestionAPI interface {
	AddQuestion(ctx context.Context, token string, question domain.Question) error
	QuizQuestions(ctx context.Context, token, quizID string) ([]domain.Question, error)
	QuizMetadata(ctx context.Context, token, quizID string) (domain.QuizSummary, error)
	AllQuizIDs(ctx context.Context, token string) ([]string, error)
	HostQuizIDs(ctx context.Context, token, username string) ([]string, error)
	HostQuizzesDetailed(ctx context.Context, token, username string) ([]domain.QuizSummary, error)
	UpdateQuestion(ctx context.Context, token, questionID string, question domain.Question) error
	DeleteQuestion(ctx context.Context, token, questionID string) error
	DeleteQuiz(ctx context.Context, token, quizID string) error
}

// ResultAPI is the result service surface the flows consume.
type ResultAPI interface {
	Submit(ctx context.Context, token string, submission domain.Submission) (domain.Score, error)
	Attempted(ctx context.Context, token, quizID, username string) (bool, error)
	QuizResults(ctx context.Context, token, quizID string) ([]domain.ParticipantResult, error)
	DeleteQuizResults(ctx context.Context, token, quizID string) error
	DeleteUserResult(ctx context.Context, token, quizID, username string) error
	RecentResults(ctx context.Context, token string) ([]domain.ParticipantResult, error)
	AllResults(ctx context.Context, token string) ([]domain.ParticipantResult, error)
}

// UserAdminAPI is the auth service's user administration surface.
type UserAdminAPI interface {
	ListUsers(ctx context.Context, token string) ([]domain.User, error)
	CountUsers(ctx context.Context, token string) (int, error)
	GetUser(ctx context.Context, token, id string) (domain.User, error)
	UpdateUser(ctx context.Context, token, id string, update httpapi.UserUpdate) error
	DeleteUser(ctx context.Context, token, id string) error
	ToggleStatus(ctx context.Context, token, id string) error
	Promote(ctx context.Context, token, id string) error
	Demote(ctx context.Context, token, id string) error
	ListLogs(ctx context.Context, token string) ([]domain.ActivityLog, error)
}

// QuizCache sits between the flows and QuestionAPI.QuizQuestions.
type QuizCache interface {
	QuizQuestions(ctx context.Context, token, quizID string) ([]domain.Question, error)
	Invalidate(ctx context.Context, quizID string)
}
