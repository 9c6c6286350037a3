package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/httpapi"
	"quizmaster-console/internal/session"
)

// AdminService covers a host's management of their own quizzes: listing,
// editing questions, removing participants, and deleting whole quizzes.
type AdminService struct {
	questions QuestionAPI
	results   ResultAPI
	cache     QuizCache
	store     StateStore
	log       *slog.Logger
	now       func() time.Time
}

func NewAdminService(questions QuestionAPI, results ResultAPI, cache QuizCache, store StateStore, log *slog.Logger) *AdminService {
	if log == nil {
		log = slog.Default()
	}
	return &AdminService{
		questions: questions,
		results:   results,
		cache:     cache,
		store:     store,
		log:       log,
		now:       time.Now,
	}
}

// MyQuizzes lists the caller's quizzes. The question service has grown its
// listing endpoints over time, so three shapes are tried in order: a detailed
// listing, then bare ids enriched one metadata fetch at a time, then bare ids
// with the name pulled from each quiz's first question. Later tiers lose
// information but never the list itself.
func (s *AdminService) MyQuizzes(ctx context.Context, token string) ([]domain.QuizSummary, error) {
	identity, err := session.Decode(token)
	if err != nil {
		return nil, err
	}

	summaries, err := s.questions.HostQuizzesDetailed(ctx, token, identity.Username)
	if err == nil {
		return summaries, nil
	}
	s.log.Debug("detailed quiz listing unavailable", "err", err)

	ids, err := s.questions.HostQuizIDs(ctx, token, identity.Username)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	summaries = make([]domain.QuizSummary, 0, len(ids))
	for _, id := range ids {
		meta, err := s.questions.QuizMetadata(ctx, token, id)
		if err != nil {
			s.log.Debug("quiz metadata unavailable", "quizId", id, "err", err)
			summaries = append(summaries, s.summaryFromQuestions(ctx, token, id))
			continue
		}
		summaries = append(summaries, meta)
	}
	return summaries, nil
}

// summaryFromQuestions reconstructs a listing row from the quiz's first
// question when the metadata endpoint cannot supply one.
func (s *AdminService) summaryFromQuestions(ctx context.Context, token, quizID string) domain.QuizSummary {
	questions, err := s.cache.QuizQuestions(ctx, token, quizID)
	if err != nil || len(questions) == 0 {
		s.log.Debug("quiz questions unavailable", "quizId", quizID, "err", err)
		return domain.QuizSummary{QuizID: quizID, QuizName: "Untitled Quiz"}
	}
	return domain.QuizSummary{
		QuizID:        quizID,
		QuizName:      questions[0].QuizName,
		QuestionCount: len(questions),
	}
}

// OpenQuiz loads a quiz's questions for editing and remembers which quiz is
// being edited. Ownership is enforced server-side; the console only checks
// that the quiz exists and has questions.
func (s *AdminService) OpenQuiz(ctx context.Context, token, quizID string) ([]domain.Question, error) {
	questions, err := s.cache.QuizQuestions(ctx, token, quizID)
	if err != nil {
		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("load quiz %s: %w", quizID, err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	summary := domain.QuizSummary{
		QuizID:        quizID,
		QuizName:      questions[0].QuizName,
		QuestionCount: len(questions),
	}
	if err := s.store.SetEditingQuiz(ctx, summary); err != nil {
		s.log.Debug("could not remember editing quiz", "err", err)
	}
	return questions, nil
}

// UpdateQuestion replaces a question's full record and drops the quiz from
// the cache so the next read sees the edit.
func (s *AdminService) UpdateQuestion(ctx context.Context, token string, question domain.Question) error {
	draft := QuestionDraft{
		Text:          question.Text,
		OptionA:       question.OptionA,
		OptionB:       question.OptionB,
		OptionC:       question.OptionC,
		OptionD:       question.OptionD,
		CorrectAnswer: question.CorrectAnswer,
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := s.questions.UpdateQuestion(ctx, token, question.ID, question); err != nil {
		return fmt.Errorf("update question %s: %w", question.ID, err)
	}
	s.cache.Invalidate(ctx, question.QuizID)
	return nil
}

// AddQuestion appends one question to an existing quiz.
func (s *AdminService) AddQuestion(ctx context.Context, token string, question domain.Question) error {
	draft := QuestionDraft{
		Text:          question.Text,
		OptionA:       question.OptionA,
		OptionB:       question.OptionB,
		OptionC:       question.OptionC,
		OptionD:       question.OptionD,
		CorrectAnswer: question.CorrectAnswer,
	}
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := s.questions.AddQuestion(ctx, token, question); err != nil {
		return fmt.Errorf("add question: %w", err)
	}
	s.cache.Invalidate(ctx, question.QuizID)
	return nil
}

// DeleteQuestion removes a single question from a quiz.
func (s *AdminService) DeleteQuestion(ctx context.Context, token, quizID, questionID string) error {
	if err := s.questions.DeleteQuestion(ctx, token, questionID); err != nil {
		return fmt.Errorf("delete question %s: %w", questionID, err)
	}
	s.cache.Invalidate(ctx, quizID)
	return nil
}

// DeleteQuiz removes a quiz question by question and then its recorded
// results. The steps span two services and cannot be atomic, so every
// sub-operation is journaled before it runs and removed once it succeeds;
// whatever remains in the journal after a partial failure can be replayed
// with RetryJournal. A failing question delete does not stop the later ones,
// so after a partial failure the surviving questions are exactly the ones
// still journaled.
func (s *AdminService) DeleteQuiz(ctx context.Context, token, quizID string) error {
	questions, err := s.questions.QuizQuestions(ctx, token, quizID)
	var steps []domain.JournalEntry
	switch {
	case err == nil:
		steps = make([]domain.JournalEntry, 0, len(questions)+1)
		for _, q := range questions {
			steps = append(steps, domain.JournalEntry{
				ID:         uuid.NewString(),
				Kind:       domain.JournalDeleteQuestion,
				QuizID:     quizID,
				QuestionID: q.ID,
				CreatedAt:  s.now(),
			})
		}
	default:
		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return domain.ErrQuizNotFound
		}
		// The listing endpoint is down. An entry without a question id
		// falls back to the bulk quiz delete.
		s.log.Debug("question listing unavailable, deleting in bulk", "quizId", quizID, "err", err)
		steps = append(steps, domain.JournalEntry{
			ID:        uuid.NewString(),
			Kind:      domain.JournalDeleteQuestion,
			QuizID:    quizID,
			CreatedAt: s.now(),
		})
	}
	steps = append(steps, domain.JournalEntry{
		ID:        uuid.NewString(),
		Kind:      domain.JournalDeleteResults,
		QuizID:    quizID,
		CreatedAt: s.now(),
	})
	for _, step := range steps {
		if err := s.store.AppendJournal(ctx, step); err != nil {
			return fmt.Errorf("journal delete of quiz %s: %w", quizID, err)
		}
	}

	var failed int
	for _, step := range steps {
		if err := s.runJournalEntry(ctx, token, step); err != nil {
			s.log.Warn("quiz delete step failed", "quizId", quizID, "kind", step.Kind, "err", err)
			failed++
			continue
		}
		if err := s.store.RemoveJournal(ctx, step.ID); err != nil {
			s.log.Debug("could not clear journal entry", "id", step.ID, "err", err)
		}
	}

	s.cache.Invalidate(ctx, quizID)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d delete steps failed for quiz %s", domain.ErrPartialFailure, failed, len(steps), quizID)
	}
	return nil
}

// RetryJournal replays every pending journal entry and reports how many
// remain. Entries that succeed are removed; entries that fail stay for the
// next retry.
func (s *AdminService) RetryJournal(ctx context.Context, token string) (remaining int, err error) {
	entries, err := s.store.Journal(ctx)
	if err != nil {
		return 0, fmt.Errorf("read journal: %w", err)
	}
	for _, entry := range entries {
		if err := s.runJournalEntry(ctx, token, entry); err != nil {
			s.log.Warn("journal replay failed", "id", entry.ID, "kind", entry.Kind, "err", err)
			remaining++
			continue
		}
		if err := s.store.RemoveJournal(ctx, entry.ID); err != nil {
			s.log.Debug("could not clear journal entry", "id", entry.ID, "err", err)
		}
		s.cache.Invalidate(ctx, entry.QuizID)
	}
	return remaining, nil
}

func (s *AdminService) runJournalEntry(ctx context.Context, token string, entry domain.JournalEntry) error {
	switch entry.Kind {
	case domain.JournalDeleteQuestion:
		if entry.QuestionID != "" {
			return s.questions.DeleteQuestion(ctx, token, entry.QuestionID)
		}
		return s.questions.DeleteQuiz(ctx, token, entry.QuizID)
	case domain.JournalDeleteResults:
		err := s.results.DeleteQuizResults(ctx, token, entry.QuizID)
		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			// No results recorded for the quiz is a clean outcome.
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown journal kind %q", entry.Kind)
	}
}

// Participants lists everyone who has submitted the quiz.
func (s *AdminService) Participants(ctx context.Context, token, quizID string) ([]domain.ParticipantResult, error) {
	results, err := s.results.QuizResults(ctx, token, quizID)
	if err != nil {
		var apiErr *httpapi.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return nil, nil
		}
		return nil, fmt.Errorf("list participants of quiz %s: %w", quizID, err)
	}
	return results, nil
}

// RemoveParticipant deletes one student's result for the quiz, letting them
// attempt it again.
func (s *AdminService) RemoveParticipant(ctx context.Context, token, quizID, username string) error {
	if err := s.results.DeleteUserResult(ctx, token, quizID, username); err != nil {
		return fmt.Errorf("remove %s from quiz %s: %w", username, quizID, err)
	}
	return nil
}
