package httpapi

import (
	"context"
	"net/http"

	"quizmaster-console/internal/domain"
)

// ResultClient consumes the result service.
type ResultClient struct {
	c    *Client
	base string
}

func NewResultClient(c *Client, base string) *ResultClient {
	return &ResultClient{c: c, base: base}
}

// Submit posts the accumulated answers and returns the graded score.
func (r *ResultClient) Submit(ctx context.Context, token string, submission domain.Submission) (domain.Score, error) {
	var score domain.Score
	if err := r.c.do(ctx, http.MethodPost, r.base+"/submit", token, submission, &score); err != nil {
		return domain.Score{}, err
	}
	return score, nil
}

// Attempted reports whether the student already has a recorded attempt.
func (r *ResultClient) Attempted(ctx context.Context, token, quizID, username string) (bool, error) {
	var attempted bool
	if err := r.c.do(ctx, http.MethodGet, r.base+"/attempted/"+quizID+"/"+username, token, nil, &attempted); err != nil {
		return false, err
	}
	return attempted, nil
}

// QuizResults lists every participant result for a quiz.
func (r *ResultClient) QuizResults(ctx context.Context, token, quizID string) ([]domain.ParticipantResult, error) {
	var results []domain.ParticipantResult
	if err := r.c.do(ctx, http.MethodGet, r.base+"/quiz/"+quizID, token, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteQuizResults drops all results for a quiz.
func (r *ResultClient) DeleteQuizResults(ctx context.Context, token, quizID string) error {
	return r.c.do(ctx, http.MethodDelete, r.base+"/quiz/"+quizID, token, nil, nil)
}

// DeleteUserResult removes a single participant's result, re-admitting them.
func (r *ResultClient) DeleteUserResult(ctx context.Context, token, quizID, username string) error {
	return r.c.do(ctx, http.MethodDelete, r.base+"/quiz/"+quizID+"/user/"+username, token, nil, nil)
}

func (r *ResultClient) RecentResults(ctx context.Context, token string) ([]domain.ParticipantResult, error) {
	var results []domain.ParticipantResult
	if err := r.c.do(ctx, http.MethodGet, r.base+"/admin/results/recent", token, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ResultClient) AllResults(ctx context.Context, token string) ([]domain.ParticipantResult, error) {
	var results []domain.ParticipantResult
	if err := r.c.do(ctx, http.MethodGet, r.base+"/admin/results/all", token, nil, &results); err != nil {
		return nil, err
	}
	return results, nil
}
