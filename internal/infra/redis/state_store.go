package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/redis/go-redis/v9"

	"quizmaster-console/internal/domain"
)

// StateStore is a Redis-backed implementation of app.StateStore, used when
// session state should survive individual console invocations. Values are
// plain keys under a "console:" prefix; last write wins, matching the
// guarantees browser storage gave the web client.
type StateStore struct {
	client *redis.Client
	prefix string
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client, prefix: "console:"}
}

func (s *StateStore) key(name string) string {
	return s.prefix + name
}

func (s *StateStore) getString(ctx context.Context, name string) (string, error) {
	val, err := s.client.Get(ctx, s.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *StateStore) Token(ctx context.Context) (string, error) {
	return s.getString(ctx, "token")
}

func (s *StateStore) SetToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, s.key("token"), token, 0).Err()
}

func (s *StateStore) Username(ctx context.Context) (string, error) {
	return s.getString(ctx, "username")
}

func (s *StateStore) SetUsername(ctx context.Context, username string) error {
	return s.client.Set(ctx, s.key("username"), username, 0).Err()
}

func (s *StateStore) PromotedAdmins(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key("adminList")).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return members, err
}

func (s *StateStore) AddPromotedAdmin(ctx context.Context, username string) error {
	return s.client.SAdd(ctx, s.key("adminList"), strings.ToLower(username)).Err()
}

func (s *StateStore) RemovePromotedAdmin(ctx context.Context, username string) error {
	return s.client.SRem(ctx, s.key("adminList"), strings.ToLower(username)).Err()
}

func (s *StateStore) LastResult(ctx context.Context) (*domain.Score, error) {
	raw, err := s.getString(ctx, "lastResult")
	if err != nil || raw == "" {
		return nil, err
	}
	var score domain.Score
	if err := json.Unmarshal([]byte(raw), &score); err != nil {
		return nil, err
	}
	return &score, nil
}

func (s *StateStore) SetLastResult(ctx context.Context, score domain.Score) error {
	data, err := json.Marshal(score)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("lastResult"), data, 0).Err()
}

func (s *StateStore) CurrentQuizID(ctx context.Context) (string, error) {
	return s.getString(ctx, "currentQuizId")
}

func (s *StateStore) SetCurrentQuizID(ctx context.Context, quizID string) error {
	return s.client.Set(ctx, s.key("currentQuizId"), quizID, 0).Err()
}

func (s *StateStore) EditingQuiz(ctx context.Context) (*domain.QuizSummary, error) {
	raw, err := s.getString(ctx, "currentEditingQuiz")
	if err != nil || raw == "" {
		return nil, err
	}
	var quiz domain.QuizSummary
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (s *StateStore) SetEditingQuiz(ctx context.Context, quiz domain.QuizSummary) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key("currentEditingQuiz"), data, 0).Err()
}

func (s *StateStore) Journal(ctx context.Context) ([]domain.JournalEntry, error) {
	raw, err := s.client.HGetAll(ctx, s.key("journal")).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	entries := make([]domain.JournalEntry, 0, len(raw))
	for _, data := range raw {
		var entry domain.JournalEntry
		if err := json.Unmarshal([]byte(data), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *StateStore) AppendJournal(ctx context.Context, entry domain.JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.HSet(ctx, s.key("journal"), entry.ID, data).Err()
}

func (s *StateStore) RemoveJournal(ctx context.Context, id string) error {
	return s.client.HDel(ctx, s.key("journal"), id).Err()
}

func (s *StateStore) Clear(ctx context.Context) error {
	// adminList deliberately survives logout.
	return s.client.Del(ctx,
		s.key("token"),
		s.key("username"),
		s.key("lastResult"),
		s.key("currentQuizId"),
		s.key("currentEditingQuiz"),
		s.key("journal"),
	).Err()
}
