package httpapi

import (
	"context"
	"net/http"

	"quizmaster-console/internal/domain"
)

// AuthClient consumes the auth service: credentials, presence, and the user
// administration surface.
type AuthClient struct {
	c    *Client
	base string
}

func NewAuthClient(c *Client, base string) *AuthClient {
	return &AuthClient{c: c, base: base}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token.
func (a *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	var resp loginResponse
	err := a.c.do(ctx, http.MethodPost, a.base+"/login", "", loginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *AuthClient) Register(ctx context.Context, username, email, password string) error {
	return a.c.do(ctx, http.MethodPost, a.base+"/register", "", registerRequest{Username: username, Email: email, Password: password}, nil)
}

type usernamePayload struct {
	Username string `json:"username"`
}

// Heartbeat reports the session as still alive.
func (a *AuthClient) Heartbeat(ctx context.Context, token, username string) error {
	return a.c.do(ctx, http.MethodPost, a.base+"/heartbeat", token, usernamePayload{Username: username}, nil)
}

// Logout marks the user offline. Best-effort on the caller's side.
func (a *AuthClient) Logout(ctx context.Context, token, username string) error {
	return a.c.do(ctx, http.MethodPost, a.base+"/logout", token, usernamePayload{Username: username}, nil)
}

func (a *AuthClient) ListUsers(ctx context.Context, token string) ([]domain.User, error) {
	var users []domain.User
	if err := a.c.do(ctx, http.MethodGet, a.base+"/admin/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (a *AuthClient) CountUsers(ctx context.Context, token string) (int, error) {
	var resp struct {
		Count int `json:"count"`
		Total int `json:"total"`
	}
	if err := a.c.do(ctx, http.MethodGet, a.base+"/admin/users/count", token, nil, &resp); err != nil {
		return 0, err
	}
	if resp.Count > 0 {
		return resp.Count, nil
	}
	return resp.Total, nil
}

func (a *AuthClient) GetUser(ctx context.Context, token, id string) (domain.User, error) {
	var user domain.User
	if err := a.c.do(ctx, http.MethodGet, a.base+"/admin/users/"+id, token, nil, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UserUpdate is the editable subset of an account record.
type UserUpdate struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

func (a *AuthClient) UpdateUser(ctx context.Context, token, id string, update UserUpdate) error {
	return a.c.do(ctx, http.MethodPut, a.base+"/admin/users/"+id, token, update, nil)
}

func (a *AuthClient) DeleteUser(ctx context.Context, token, id string) error {
	return a.c.do(ctx, http.MethodDelete, a.base+"/admin/users/"+id, token, nil, nil)
}

// ToggleStatus flips an account between active and blocked.
func (a *AuthClient) ToggleStatus(ctx context.Context, token, id string) error {
	return a.c.do(ctx, http.MethodPut, a.base+"/admin/users/"+id+"/toggle-status", token, nil, nil)
}

func (a *AuthClient) Promote(ctx context.Context, token, id string) error {
	return a.c.do(ctx, http.MethodPut, a.base+"/admin/users/"+id+"/promote", token, nil, nil)
}

func (a *AuthClient) Demote(ctx context.Context, token, id string) error {
	return a.c.do(ctx, http.MethodPut, a.base+"/admin/users/"+id+"/demote", token, nil, nil)
}

// ListLogs fetches activity logs. The endpoint is optional server-side;
// callers treat failures as "synthesize a fallback".
func (a *AuthClient) ListLogs(ctx context.Context, token string) ([]domain.ActivityLog, error) {
	var logs []domain.ActivityLog
	if err := a.c.do(ctx, http.MethodGet, a.base+"/admin/logs", token, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
