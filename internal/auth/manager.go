// Package auth obtains and persists the platform session token.
package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/example/lessonsched/internal/pkg/clock"
)

// expirySkew treats tokens this close to expiry as already expired.
const expirySkew = time.Minute

type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

type Credentials struct {
	Username string
	Password string
}

// Manager hands out a bearer token, reusing the stored one until the
// platform rejects it or its JWT expiry passes.
type Manager struct {
	auth   Authenticator
	store  TokenStore
	creds  Credentials
	clock  clock.Clock
	logger *slog.Logger

	mu    sync.Mutex
	token string
}

func NewManager(a Authenticator, store TokenStore, creds Credentials, clk clock.Clock, logger *slog.Logger) *Manager {
	if clk == nil {
		clk = clock.NewRealClock()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{auth: a, store: store, creds: creds, clock: clk, logger: logger}
}

func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && !m.expired(m.token) {
		return m.token, nil
	}

	stored, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to load token", "error", err)
	}
	if stored != "" && !m.expired(stored) {
		m.logger.Info("token loaded from storage")
		m.token = stored
		return stored, nil
	}

	m.logger.Info("token invalid or missing, re-authenticating")
	return m.loginLocked(ctx)
}

// Login forces a fresh login and stores the resulting token.
func (m *Manager) Login(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginLocked(ctx)
}

func (m *Manager) loginLocked(ctx context.Context) (string, error) {
	tok, err := m.auth.Login(ctx, m.creds.Username, m.creds.Password)
	if err != nil {
		return "", err
	}
	if err := m.store.Save(tok); err != nil {
		m.logger.Error("failed to save token", "error", err)
	} else {
		m.logger.Info("token saved to storage")
	}
	m.token = tok
	return tok, nil
}

func (m *Manager) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.logger.Info("token cleared")
	return m.store.Clear()
}

// expired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire locally.
func (m *Manager) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !m.clock.Now().Add(expirySkew).Before(exp.Time)
}
