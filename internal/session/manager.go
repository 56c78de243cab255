// Package session owns the authentication state of the client: the bearer
// token, its durable copy, and the transitions between anonymous and
// authenticated.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/logging"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

// revokeTimeout bounds the background server-side logout.
const revokeTimeout = 5 * time.Second

// State is the authentication state of a Manager.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Authenticator is the remote side of authentication.
type Authenticator interface {
	SignIn(ctx context.Context, creds api.Credentials) (string, error)
	Register(ctx context.Context, reg api.Registration) (api.RegisterResult, error)
	Logout(ctx context.Context, token string) error
}

// Manager holds the session token. It is safe for concurrent use: TUI
// commands call into it from their own goroutines.
type Manager struct {
	auth  Authenticator
	store TokenStore
	log   zerolog.Logger

	mu     sync.Mutex
	token  string
	loaded bool

	revokes sync.WaitGroup
}

// NewManager creates a Manager. The stored token is not read until the
// session is first consulted.
func NewManager(auth Authenticator, store TokenStore) *Manager {
	return &Manager{
		auth:  auth,
		store: store,
		log:   logging.Component("session"),
	}
}

// loadLocked reads the durable token on first use. A storage failure leaves
// the session anonymous. Callers must hold m.mu.
func (m *Manager) loadLocked(ctx context.Context) {
	if m.loaded {
		return
	}
	m.loaded = true

	token, err := m.store.Load(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("could not read stored session, starting anonymous")
		return
	}
	m.token = token
	if token != "" {
		m.log.Debug().Msg("restored session from storage")
	}
}

// Token returns the current token and whether one is present.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadLocked(ctx)
	return m.token, m.token != ""
}

// IsAuthenticated reports whether a token is held in memory or storage.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	_, ok := m.Token(ctx)
	return ok
}

// State returns the current state.
func (m *Manager) State(ctx context.Context) State {
	if m.IsAuthenticated(ctx) {
		return Authenticated
	}
	return Anonymous
}

// Login signs in with email and password. Empty input is rejected with
// field errors before any request is made.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if err := validate.Credentials(email, password); err != nil {
		return err
	}

	token, err := m.auth.SignIn(ctx, api.Credentials{Email: strings.TrimSpace(email), Password: password})
	if err != nil {
		m.log.Info().Ctx(ctx).Err(err).Msg("sign in failed")
		return err
	}

	m.adopt(ctx, token)
	m.log.Info().Ctx(ctx).Msg("signed in")
	return nil
}

// Register creates an account and signs the new user in. Input is validated
// locally first and every invalid field is reported.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	if err := validate.Registration(name, email, password); err != nil {
		return err
	}

	email = strings.TrimSpace(email)
	result, err := m.auth.Register(ctx, api.Registration{
		Name:     strings.TrimSpace(name),
		Email:    email,
		Password: password,
	})
	if err != nil {
		m.log.Info().Ctx(ctx).Err(err).Msg("registration failed")
		return err
	}

	if result.Token != "" {
		m.adopt(ctx, result.Token)
		m.log.Info().Ctx(ctx).Msg("registered")
		return nil
	}

	token, err := m.auth.SignIn(ctx, api.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("account created but sign in failed: %w", err)
	}

	m.adopt(ctx, token)
	m.log.Info().Ctx(ctx).Msg("registered and signed in")
	return nil
}

// adopt makes token the current session and persists it. A storage failure
// keeps the in-memory session; the user will have to sign in again on the
// next start.
func (m *Manager) adopt(ctx context.Context, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.loaded = true

	if err := m.store.Save(ctx, token); err != nil {
		m.log.Error().Err(err).Msg("could not persist session")
	}
}

// Logout ends the session locally right away. Revoking the token on the
// server happens in the background; Close waits for it.
func (m *Manager) Logout(ctx context.Context) {
	token := m.clear(ctx)
	if token == "" {
		return
	}

	m.log.Info().Ctx(ctx).Msg("signed out")

	m.revokes.Add(1)
	go func() {
		defer m.revokes.Done()

		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), revokeTimeout)
		defer cancel()

		if err := m.auth.Logout(rctx, token); err != nil {
			m.log.Debug().Err(err).Msg("server logout failed")
		}
	}()
}

// Invalidate drops the session after the server rejected token. It only
// acts when token is still the current one, so a rejection of an old token
// cannot end a newer session.
func (m *Manager) Invalidate(ctx context.Context, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadLocked(ctx)
	if token == "" || token != m.token {
		return
	}

	m.clearLocked(ctx)
	m.log.Warn().Ctx(ctx).Msg("session rejected by server, signed out")
}

// clear empties memory and storage and returns the previous token.
func (m *Manager) clear(ctx context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loadLocked(ctx)
	return m.clearLocked(ctx)
}

// clearLocked is clear for callers that hold m.mu.
func (m *Manager) clearLocked(ctx context.Context) string {
	token := m.token
	m.token = ""

	if err := m.store.Clear(ctx); err != nil {
		m.log.Error().Err(err).Msg("could not clear stored session")
	}
	return token
}

// Close waits for background logouts to finish or for ctx to end.
func (m *Manager) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.revokes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
