package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"quizmaster-console/internal/domain"
	"quizmaster-console/internal/session"
)

const minPasswordLength = 6

// AuthAPI is the credential surface of the auth service.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Register(ctx context.Context, username, email, password string) error
	Logout(ctx context.Context, token, username string) error
}

// AuthService handles the sign-in lifecycle: login, register, logout, and
// reporting who is signed in.
type AuthService struct {
	auth  AuthAPI
	store StateStore
	log   *slog.Logger
}

func NewAuthService(auth AuthAPI, store StateStore, log *slog.Logger) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{auth: auth, store: store, log: log}
}

// Login exchanges credentials for a token and persists the session.
func (s *AuthService) Login(ctx context.Context, username, password string) (session.Identity, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return session.Identity{}, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}

	token, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return session.Identity{}, fmt.Errorf("login: %w", err)
	}

	identity, err := session.Decode(token)
	if err != nil {
		// A token we cannot decode still authenticates requests; fall back
		// to the typed username for display.
		s.log.Debug("token claims not decodable", "err", err)
		identity = session.Identity{Username: username, Role: session.RoleStudent}
	}

	if err := s.store.SetToken(ctx, token); err != nil {
		return session.Identity{}, fmt.Errorf("store token: %w", err)
	}
	if err := s.store.SetUsername(ctx, identity.Username); err != nil {
		return session.Identity{}, fmt.Errorf("store username: %w", err)
	}
	return identity, nil
}

// Register creates an account. The caller logs in separately afterwards.
func (s *AuthService) Register(ctx context.Context, username, email, password string) error {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	switch {
	case username == "" || email == "" || password == "":
		return fmt.Errorf("%w: username, email and password are required", domain.ErrValidation)
	case len(password) < minPasswordLength:
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return fmt.Errorf("%w: invalid email address", domain.ErrValidation)
	}
	if err := s.auth.Register(ctx, username, email, password); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	return nil
}

// Logout tells the auth service the user is gone, then clears local state.
// The remote call is best-effort; local state is cleared regardless.
func (s *AuthService) Logout(ctx context.Context) error {
	token, err := s.store.Token(ctx)
	if err == nil && token != "" {
		username, _ := s.store.Username(ctx)
		if err := s.auth.Logout(ctx, token, username); err != nil {
			s.log.Debug("remote logout failed", "err", err)
		}
	}
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Whoami returns the stored session's identity, or ErrNoToken when signed
// out.
func (s *AuthService) Whoami(ctx context.Context) (session.Identity, error) {
	token, err := s.store.Token(ctx)
	if err != nil {
		return session.Identity{}, fmt.Errorf("read token: %w", err)
	}
	return session.Decode(token)
}
