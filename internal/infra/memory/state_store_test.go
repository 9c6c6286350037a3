package memory

import (
	"context"
	"testing"
	"time"

	"quizmaster-console/internal/domain"
)

func TestStateStoreSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	if err := s.SetToken(ctx, "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if err := s.SetUsername(ctx, "alice"); err != nil {
		t.Fatalf("set username: %v", err)
	}

	token, err := s.Token(ctx)
	if err != nil || token != "tok" {
		t.Fatalf("token = %q, err = %v", token, err)
	}
	username, err := s.Username(ctx)
	if err != nil || username != "alice" {
		t.Fatalf("username = %q, err = %v", username, err)
	}
}

func TestStateStorePromotedAdmins(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	_ = s.AddPromotedAdmin(ctx, "Carol")
	_ = s.AddPromotedAdmin(ctx, "carol") // duplicate, case-insensitive

	promoted, err := s.PromotedAdmins(ctx)
	if err != nil {
		t.Fatalf("promoted: %v", err)
	}
	if len(promoted) != 1 || promoted[0] != "carol" {
		t.Fatalf("promoted = %v", promoted)
	}

	_ = s.RemovePromotedAdmin(ctx, "CAROL")
	promoted, _ = s.PromotedAdmins(ctx)
	if len(promoted) != 0 {
		t.Fatalf("expected empty list, got %v", promoted)
	}
}

func TestStateStoreClearKeepsPromoted(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	_ = s.SetToken(ctx, "tok")
	_ = s.SetCurrentQuizID(ctx, "AB12CD")
	_ = s.SetLastResult(ctx, domain.Score{CorrectAnswers: 2, TotalQuestions: 3})
	_ = s.AddPromotedAdmin(ctx, "carol")

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	token, _ := s.Token(ctx)
	if token != "" {
		t.Fatalf("token survived clear: %q", token)
	}
	last, _ := s.LastResult(ctx)
	if last != nil {
		t.Fatalf("last result survived clear: %+v", last)
	}
	promoted, _ := s.PromotedAdmins(ctx)
	if len(promoted) != 1 {
		t.Fatalf("promoted list should survive clear, got %v", promoted)
	}
}

func TestStateStoreJournal(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	now := time.Now()
	_ = s.AppendJournal(ctx, domain.JournalEntry{ID: "1", Kind: domain.JournalDeleteQuestion, QuizID: "AB12CD", CreatedAt: now})
	_ = s.AppendJournal(ctx, domain.JournalEntry{ID: "2", Kind: domain.JournalDeleteResults, QuizID: "AB12CD", CreatedAt: now})

	entries, err := s.Journal(ctx)
	if err != nil || len(entries) != 2 {
		t.Fatalf("journal = %v, err = %v", entries, err)
	}

	if err := s.RemoveJournal(ctx, "1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	entries, _ = s.Journal(ctx)
	if len(entries) != 1 || entries[0].ID != "2" {
		t.Fatalf("journal after remove = %v", entries)
	}
}

func TestStateStoreLastResultIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewStateStore()

	_ = s.SetLastResult(ctx, domain.Score{CorrectAnswers: 1})
	first, _ := s.LastResult(ctx)
	first.CorrectAnswers = 99

	second, _ := s.LastResult(ctx)
	if second.CorrectAnswers != 1 {
		t.Fatalf("stored result was mutated through the returned pointer")
	}
}
