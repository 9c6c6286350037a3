package app

import (
	"context"

	"quizmaster-console/internal/domain"
)

// StateStore is the console's client-local key-value state, the analog of the
// browser storage the web client kept its session in. Implementations are
// last-write-wins with no cross-process locking; none of this state is
// authoritative.
type StateStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error

	Username(ctx context.Context) (string, error)
	SetUsername(ctx context.Context, username string) error

	// PromotedAdmins is the client-local list of usernames granted elevated
	// console affordances. It is a UI hint only and can desynchronize from
	// the server-side role; the services never consult it.
	PromotedAdmins(ctx context.Context) ([]string, error)
	AddPromotedAdmin(ctx context.Context, username string) error
	RemovePromotedAdmin(ctx context.Context, username string) error

	LastResult(ctx context.Context) (*domain.Score, error)
	SetLastResult(ctx context.Context, score domain.Score) error

	CurrentQuizID(ctx context.Context) (string, error)
	SetCurrentQuizID(ctx context.Context, quizID string) error

	EditingQuiz(ctx context.Context) (*domain.QuizSummary, error)
	SetEditingQuiz(ctx context.Context, quiz domain.QuizSummary) error

	// Journal holds pending destructive sub-operations from batch flows so
	// partial failures can be replayed.
	Journal(ctx context.Context) ([]domain.JournalEntry, error)
	AppendJournal(ctx context.Context, entry domain.JournalEntry) error
	RemoveJournal(ctx context.Context, id string) error

	// Clear discards the whole session state on logout.
	Clear(ctx context.Context) error
}
