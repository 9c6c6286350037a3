package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"quizmaster-console/internal/infra/httpapi"
)

// DefaultHeartbeatInterval matches the server's presence-detection window.
const DefaultHeartbeatInterval = 10 * time.Second

// beaconTimeout bounds the fire-and-forget offline notification.
const beaconTimeout = 2 * time.Second

// PresenceAPI is the slice of the auth service the heartbeat needs.
type PresenceAPI interface {
	Heartbeat(ctx context.Context, token, username string) error
	Logout(ctx context.Context, token, username string) error
}

// CredentialSource yields the stored bearer token and username. Empty values
// mean the session is gone and the heartbeat should stop.
type CredentialSource interface {
	Token(ctx context.Context) (string, error)
	Username(ctx context.Context) (string, error)
}

// Heartbeat periodically tells the auth service the session is still alive.
// It is pure client-reported liveness: a rejected beat stops the loop, a
// transport error is logged and the loop keeps going, and there is no retry
// or confirmation for the offline notification.
type Heartbeat struct {
	auth     PresenceAPI
	creds    CredentialSource
	interval time.Duration
	log      *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewHeartbeat(auth PresenceAPI, creds CredentialSource, interval time.Duration, log *slog.Logger) *Heartbeat {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	if log == nil {
		log = slog.Default()
	}
	return &Heartbeat{auth: auth, creds: creds, interval: interval, log: log}
}

// Run sends an immediate beat and then one per interval until the session is
// rejected, credentials disappear, Stop is called, or ctx is done.
func (h *Heartbeat) Run(ctx context.Context) {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.running = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		h.running = false
		h.mu.Unlock()
	}()

	if !h.beat(ctx) {
		return
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.beat(ctx) {
				return
			}
		}
	}
}

// beat reports whether the loop should continue.
func (h *Heartbeat) beat(ctx context.Context) bool {
	token, username, ok := h.credentials(ctx)
	if !ok {
		h.log.Debug("heartbeat: no credentials, stopping")
		return false
	}

	err := h.auth.Heartbeat(ctx, token, username)
	if err == nil {
		return true
	}

	var apiErr *httpapi.APIError
	if errors.As(err, &apiErr) {
		// The session was rejected server-side; no further beats until a
		// fresh session is established.
		h.log.Info("heartbeat rejected, stopping", "status", apiErr.Status)
		return false
	}

	h.log.Debug("heartbeat transport error", "err", err)
	return true
}

// Resume restarts the loop after a stop, e.g. when the console regains
// foreground attention. A loop that is still running is left alone.
func (h *Heartbeat) Resume(ctx context.Context) {
	h.mu.Lock()
	running := h.running
	h.mu.Unlock()
	if running {
		return
	}
	go h.Run(ctx)
}

// Stop cancels a running loop.
func (h *Heartbeat) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
	}
}

// Running reports whether the periodic loop is active.
func (h *Heartbeat) Running() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

// NotifyOffline is the page-unload analog: a fire-and-forget logout first,
// then a blocking fallback so the signal has a chance even while the process
// is exiting. Both are best-effort.
func (h *Heartbeat) NotifyOffline(ctx context.Context) {
	token, username, ok := h.credentials(ctx)
	if !ok {
		return
	}

	go func() {
		beaconCtx, cancel := context.WithTimeout(context.Background(), beaconTimeout)
		defer cancel()
		_ = h.auth.Logout(beaconCtx, token, username)
	}()

	if err := h.auth.Logout(ctx, token, username); err != nil {
		h.log.Debug("offline notification failed", "err", err)
	}
}

func (h *Heartbeat) credentials(ctx context.Context) (token, username string, ok bool) {
	token, err := h.creds.Token(ctx)
	if err != nil || token == "" {
		return "", "", false
	}
	username, err = h.creds.Username(ctx)
	if err != nil || username == "" {
		return "", "", false
	}
	return token, username, true
}
