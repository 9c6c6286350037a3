package httpapi

import (
	"context"
	"net/http"

	"quizmaster-console/internal/domain"
)

// QuestionClient consumes the question service.
type QuestionClient struct {
	c    *Client
	base string
}

func NewQuestionClient(c *Client, base string) *QuestionClient {
	return &QuestionClient{c: c, base: base}
}

// AddQuestion creates one question record. Quiz creation has no endpoint of
// its own; a quiz exists once its first question does.
func (q *QuestionClient) AddQuestion(ctx context.Context, token string, question domain.Question) error {
	return q.c.do(ctx, http.MethodPost, q.base+"/add", token, question, nil)
}

// QuizQuestions returns the ordered question set for a quiz.
func (q *QuestionClient) QuizQuestions(ctx context.Context, token, quizID string) ([]domain.Question, error) {
	var questions []domain.Question
	if err := q.c.do(ctx, http.MethodGet, q.base+"/quiz/"+quizID, token, nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// QuizMetadata returns the summary record for a quiz; a 404 *APIError means
// no quiz has that identifier.
func (q *QuestionClient) QuizMetadata(ctx context.Context, token, quizID string) (domain.QuizSummary, error) {
	var meta domain.QuizSummary
	if err := q.c.do(ctx, http.MethodGet, q.base+"/quiz/"+quizID+"/metadata", token, nil, &meta); err != nil {
		return domain.QuizSummary{}, err
	}
	if meta.QuizID == "" {
		meta.QuizID = quizID
	}
	return meta, nil
}

// AllQuizIDs enumerates every quiz identifier known to the service.
func (q *QuestionClient) AllQuizIDs(ctx context.Context, token string) ([]string, error) {
	var ids []string
	if err := q.c.do(ctx, http.MethodGet, q.base+"/quiz/all", token, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// HostQuizIDs lists the quiz identifiers a host owns.
func (q *QuestionClient) HostQuizIDs(ctx context.Context, token, username string) ([]string, error) {
	var ids []string
	if err := q.c.do(ctx, http.MethodGet, q.base+"/host/"+username, token, nil, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// HostQuizzesDetailed is the richer owner listing; not every deployment of
// the question service has it.
func (q *QuestionClient) HostQuizzesDetailed(ctx context.Context, token, username string) ([]domain.QuizSummary, error) {
	var quizzes []domain.QuizSummary
	if err := q.c.do(ctx, http.MethodGet, q.base+"/host/"+username+"/detailed", token, nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// UpdateQuestion replaces a question record in full.
func (q *QuestionClient) UpdateQuestion(ctx context.Context, token, questionID string, question domain.Question) error {
	return q.c.do(ctx, http.MethodPut, q.base+"/"+questionID, token, question, nil)
}

func (q *QuestionClient) DeleteQuestion(ctx context.Context, token, questionID string) error {
	return q.c.do(ctx, http.MethodDelete, q.base+"/"+questionID, token, nil, nil)
}

// DeleteQuiz removes a whole quiz in one call where the service supports it.
func (q *QuestionClient) DeleteQuiz(ctx context.Context, token, quizID string) error {
	return q.c.do(ctx, http.MethodDelete, q.base+"/quiz/"+quizID, token, nil, nil)
}
