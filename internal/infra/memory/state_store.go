package memory

import (
	"context"
	"strings"
	"sync"

	"quizmaster-console/internal/domain"
)

// StateStore is an in-memory implementation of app.StateStore. State lives
// only as long as the process, which suits one-shot commands and tests.
type StateStore struct {
	mu            sync.RWMutex
	token         string
	username      string
	promoted      []string
	lastResult    *domain.Score
	currentQuizID string
	editingQuiz   *domain.QuizSummary
	journal       []domain.JournalEntry
}

func NewStateStore() *StateStore {
	return &StateStore{}
}

func (s *StateStore) Token(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, nil
}

func (s *StateStore) SetToken(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *StateStore) Username(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username, nil
}

func (s *StateStore) SetUsername(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.username = username
	return nil
}

func (s *StateStore) PromotedAdmins(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.promoted))
	copy(out, s.promoted)
	return out, nil
}

func (s *StateStore) AddPromotedAdmin(_ context.Context, username string) error {
	username = strings.ToLower(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.promoted {
		if p == username {
			return nil
		}
	}
	s.promoted = append(s.promoted, username)
	return nil
}

func (s *StateStore) RemovePromotedAdmin(_ context.Context, username string) error {
	username = strings.ToLower(username)
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.promoted[:0]
	for _, p := range s.promoted {
		if p != username {
			kept = append(kept, p)
		}
	}
	s.promoted = kept
	return nil
}

func (s *StateStore) LastResult(context.Context) (*domain.Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastResult == nil {
		return nil, nil
	}
	score := *s.lastResult
	return &score, nil
}

func (s *StateStore) SetLastResult(_ context.Context, score domain.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResult = &score
	return nil
}

func (s *StateStore) CurrentQuizID(context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentQuizID, nil
}

func (s *StateStore) SetCurrentQuizID(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentQuizID = quizID
	return nil
}

func (s *StateStore) EditingQuiz(context.Context) (*domain.QuizSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.editingQuiz == nil {
		return nil, nil
	}
	quiz := *s.editingQuiz
	return &quiz, nil
}

func (s *StateStore) SetEditingQuiz(_ context.Context, quiz domain.QuizSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingQuiz = &quiz
	return nil
}

func (s *StateStore) Journal(context.Context) ([]domain.JournalEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.JournalEntry, len(s.journal))
	copy(out, s.journal)
	return out, nil
}

func (s *StateStore) AppendJournal(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal = append(s.journal, entry)
	return nil
}

func (s *StateStore) RemoveJournal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.journal[:0]
	for _, e := range s.journal {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.journal = kept
	return nil
}

func (s *StateStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.username = ""
	s.lastResult = nil
	s.currentQuizID = ""
	s.editingQuiz = nil
	s.journal = nil
	// The promoted list survives logout, as the browser's did.
	return nil
}
