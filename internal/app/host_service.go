package app

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
)

const (
	// quizIDChars is the identifier alphabet shared by all three services.
	quizIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// QuizIDLength is the fixed identifier length.
	QuizIDLength = 6

	// maxIDAttempts bounds the uniqueness-probe loop before the
	// time-derived fallback takes over.
	maxIDAttempts = 10
)

// HostService drives the quiz authoring flow: identifier generation,
// draft composition, and the per-question submission.
type HostService struct {
	questions QuestionAPI
	store     StateStore
	log       *slog.Logger
	now       func() time.Time
}

func NewHostService(questions QuestionAPI, store StateStore, log *slog.Logger) *HostService {
	if log == nil {
		log = slog.Default()
	}
	return &HostService{questions: questions, store: store, log: log, now: time.Now}
}

// QuestionDraft is one authored question before submission.
type QuestionDraft struct {
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectAnswer string
}

// Validate rejects a draft with any required field empty after trimming, or
// a correct-answer label outside A-D. Nothing touches the network until a
// draft validates.
func (d QuestionDraft) Validate() error {
	fields := map[string]string{
		"question text": d.Text,
		"option A":      d.OptionA,
		"option B":      d.OptionB,
		"option C":      d.OptionC,
		"option D":      d.OptionD,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
		}
	}
	switch d.CorrectAnswer {
	case "A", "B", "C", "D":
		return nil
	}
	return fmt.Errorf("%w: correct answer must be one of A, B, C, D", domain.ErrValidation)
}

// Draft is a quiz under composition.
type Draft struct {
	QuizID    string
	Name      string
	Questions []QuestionDraft
}

// AddQuestion validates and appends one question to the draft.
func (d *Draft) AddQuestion(q QuestionDraft) error {
	if err := q.Validate(); err != nil {
		return err
	}
	d.Questions = append(d.Questions, q)
	return nil
}

// GenerateQuizID draws 6-character identifiers until one is confirmed
// unused. A 404 from the metadata probe confirms uniqueness; a 2xx means the
// identifier is taken; a transport failure is inconclusive and never counts
// as proof of uniqueness — it just consumes an attempt. After the attempt
// budget, a time-derived suffix forces uniqueness deterministically.
func (s *HostService) GenerateQuizID(ctx context.Context, token string) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := randomQuizID(QuizIDLength)
		if err != nil {
			return "", err
		}

		unique, err := s.isQuizIDUnique(ctx, token, id)
		if err != nil {
			s.log.Debug("uniqueness probe inconclusive", "quizId", id, "err", err)
			continue
		}
		if unique {
			return id, nil
		}
	}

	prefix, err := randomQuizID(2)
	if err != nil {
		return "", err
	}
	millis := fmt.Sprintf("%d", s.now().UnixMilli())
	return prefix + millis[len(millis)-4:], nil
}

func (s *HostService) isQuizIDUnique(ctx context.Context, token, quizID string) (bool, error) {
	_, err := s.questions.QuizMetadata(ctx, token, quizID)
	if err == nil {
		return false, nil
	}
	var apiErr *httpapi.APIError
	if errors.As(err, &apiErr) && apiErr.NotFound() {
		return true, nil
	}
	return false, err
}

// ValidQuizID reports whether id has the canonical length and alphabet.
func ValidQuizID(id string) bool {
	if len(id) != QuizIDLength {
		return false
	}
	for _, r := range id {
		if !strings.ContainsRune(quizIDChars, r) {
			return false
		}
	}
	return true
}

func randomQuizID(length int) (string, error) {
	result := make([]byte, length)
	max := big.NewInt(int64(len(quizIDChars)))
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate quiz id: %w", err)
		}
		result[i] = quizIDChars[n.Int64()]
	}
	return string(result), nil
}

// SubmitReport summarizes a partially tolerant submission.
type SubmitReport struct {
	QuizID    string
	Submitted int
	Failed    int
}

// Submit creates each question as an independent request in draft order.
// There is no transaction: failures are counted, reported, and the caller is
// still pointed at the edit view to repair gaps by hand.
func (s *HostService) Submit(ctx context.Context, token, hostUsername string, draft Draft) (SubmitReport, error) {
	report := SubmitReport{QuizID: draft.QuizID}

	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.QuizID) == "" {
		return report, fmt.Errorf("%w: quiz name and id are required", domain.ErrValidation)
	}
	if len(draft.Questions) == 0 {
		return report, fmt.Errorf("%w: at least one question is required", domain.ErrValidation)
	}
	for _, q := range draft.Questions {
		if err := q.Validate(); err != nil {
			return report, err
		}
	}

	for _, q := range draft.Questions {
		question := domain.Question{
			Text:          strings.TrimSpace(q.Text),
			OptionA:       strings.TrimSpace(q.OptionA),
			OptionB:       strings.TrimSpace(q.OptionB),
			OptionC:       strings.TrimSpace(q.OptionC),
			OptionD:       strings.TrimSpace(q.OptionD),
			CorrectAnswer: q.CorrectAnswer,
			QuizID:        draft.QuizID,
			QuizName:      draft.Name,
			HostUsername:  hostUsername,
		}
		if err := s.questions.AddQuestion(ctx, token, question); err != nil {
			s.log.Warn("failed to add question", "quizId", draft.QuizID, "err", err)
			report.Failed++
			continue
		}
		report.Submitted++
	}

	if err := s.store.SetCurrentQuizID(ctx, draft.QuizID); err != nil {
		s.log.Debug("could not remember current quiz id", "err", err)
	}

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d questions created", domain.ErrPartialFailure,
			report.Submitted, report.Submitted+report.Failed)
	}
	return report, nil
}
