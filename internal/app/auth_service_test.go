package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/infra/memory"
)

type fakeAuthAPI struct {
	mu       sync.Mutex
	token    string
	loginErr error
	regErr   error

	registered []string
	logouts    int
	logoutErr  error
}

func (f *fakeAuthAPI) Login(_ context.Context, username, password string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return f.token, nil
}

func (f *fakeAuthAPI) Register(_ context.Context, username, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.regErr != nil {
		return f.regErr
	}
	f.registered = append(f.registered, username)
	return nil
}

func (f *fakeAuthAPI) Logout(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func TestLoginStoresSession(t *testing.T) {
	ctx := context.Background()
	token := testToken(t, "alice", "teacher")
	auth := &fakeAuthAPI{token: token}
	store := memory.NewStateStore()
	svc := NewAuthService(auth, store, nil)

	identity, err := svc.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity.Username != "alice" || identity.Role != "teacher" {
		t.Fatalf("identity = %+v", identity)
	}

	stored, _ := store.Token(ctx)
	if stored != token {
		t.Fatal("token not stored")
	}
	username, _ := store.Username(ctx)
	if username != "alice" {
		t.Fatalf("username = %q", username)
	}
}

func TestLoginOpaqueTokenFallsBackToTypedUsername(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuthAPI{token: "opaque-session-id"}
	store := memory.NewStateStore()
	svc := NewAuthService(auth, store, nil)

	identity, err := svc.Login(ctx, "bob", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if identity.Username != "bob" || identity.Role != "student" {
		t.Fatalf("identity = %+v", identity)
	}
	stored, _ := store.Token(ctx)
	if stored != "opaque-session-id" {
		t.Fatal("opaque token must still be stored")
	}
}

func TestLoginValidation(t *testing.T) {
	svc := NewAuthService(&fakeAuthAPI{}, memory.NewStateStore(), nil)
	if _, err := svc.Login(context.Background(), "  ", "x"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Login(context.Background(), "alice", ""); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuthAPI{}
	svc := NewAuthService(auth, memory.NewStateStore(), nil)

	cases := []struct {
		name                      string
		username, email, password string
	}{
		{"missing email", "alice", "", "secret1"},
		{"short password", "alice", "alice@quiz.local", "abc"},
		{"bad email", "alice", "not-an-email", "secret1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := svc.Register(ctx, tc.username, tc.email, tc.password); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(auth.registered) != 0 {
		t.Fatalf("invalid registrations reached the service: %v", auth.registered)
	}

	if err := svc.Register(ctx, "alice", "alice@quiz.local", "secret1"); err != nil {
		t.Fatalf("valid register: %v", err)
	}
}

func TestLogoutClearsStateEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	auth := &fakeAuthAPI{logoutErr: errors.New("auth down")}
	store := memory.NewStateStore()
	svc := NewAuthService(auth, store, nil)

	_ = store.SetToken(ctx, "tok")
	_ = store.SetUsername(ctx, "alice")

	if err := svc.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if auth.logouts != 1 {
		t.Fatalf("logouts = %d", auth.logouts)
	}
	token, _ := store.Token(ctx)
	if token != "" {
		t.Fatal("token survived logout")
	}
}

func TestWhoami(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStateStore()
	svc := NewAuthService(&fakeAuthAPI{}, store, nil)

	if _, err := svc.Whoami(ctx); !errors.Is(err, domain.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	_ = store.SetToken(ctx, testToken(t, "alice", "teacher"))
	identity, err := svc.Whoami(ctx)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if identity.Username != "alice" {
		t.Fatalf("identity = %+v", identity)
	}
}
