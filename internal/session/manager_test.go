package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/validate"
)

type memStore struct {
	mu      sync.Mutex
	token   string
	loads   int
	loadErr error
}

func (s *memStore) Load(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	return s.token, s.loadErr
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *memStore) stored() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

type fakeAuth struct {
	mu sync.Mutex

	token     string
	signInErr error
	regResult api.RegisterResult
	regErr    error

	signIns   []api.Credentials
	registers []api.Registration
	logouts   []string
}

func (f *fakeAuth) SignIn(_ context.Context, creds api.Credentials) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signIns = append(f.signIns, creds)
	if f.signInErr != nil {
		return "", f.signInErr
	}
	return f.token, nil
}

func (f *fakeAuth) Register(_ context.Context, reg api.Registration) (api.RegisterResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registers = append(f.registers, reg)
	return f.regResult, f.regErr
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts = append(f.logouts, token)
	return nil
}

func (f *fakeAuth) calls() (signIns, registers, logouts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signIns), len(f.registers), len(f.logouts)
}

func TestManager_LazyRestore(t *testing.T) {
	store := &memStore{token: "persisted"}
	m := NewManager(&fakeAuth{}, store)

	assert.Equal(t, 0, store.loads, "storage is not read at construction")

	assert.True(t, m.IsAuthenticated(context.Background()))
	assert.True(t, m.IsAuthenticated(context.Background()))
	assert.Equal(t, Authenticated, m.State(context.Background()))
	assert.Equal(t, 1, store.loads)

	token, ok := m.Token(context.Background())
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestManager_StorageFailureStartsAnonymous(t *testing.T) {
	m := NewManager(&fakeAuth{}, &memStore{token: "x", loadErr: errors.New("disk gone")})
	assert.False(t, m.IsAuthenticated(context.Background()))
	assert.Equal(t, "anonymous", m.State(context.Background()).String())
}

func TestManager_Login(t *testing.T) {
	auth := &fakeAuth{token: "tok-1"}
	store := &memStore{}
	m := NewManager(auth, store)

	require.NoError(t, m.Login(context.Background(), "  a@b.com ", "secret1"))

	assert.True(t, m.IsAuthenticated(context.Background()))
	assert.Equal(t, "tok-1", store.stored())
	require.Len(t, auth.signIns, 1)
	assert.Equal(t, "a@b.com", auth.signIns[0].Email)
}

func TestManager_LoginValidationSkipsNetwork(t *testing.T) {
	auth := &fakeAuth{token: "tok"}
	m := NewManager(auth, &memStore{})

	err := m.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, validate.IsValidationError(err))

	signIns, _, _ := auth.calls()
	assert.Equal(t, 0, signIns)
	assert.False(t, m.IsAuthenticated(context.Background()))
}

func TestManager_LoginFailure(t *testing.T) {
	authErr := &api.AuthError{Reason: api.ReasonInvalidCredentials}
	m := NewManager(&fakeAuth{signInErr: authErr}, &memStore{})

	err := m.Login(context.Background(), "a@b.com", "wrong")
	assert.ErrorIs(t, err, authErr)
	assert.False(t, m.IsAuthenticated(context.Background()))
}

func TestManager_RegisterValidation(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth, &memStore{})

	err := m.Register(context.Background(), "Reader", "a@b.com", "abc")

	msgs := validate.FieldMessages(err)
	assert.Equal(t, map[string]string{validate.FieldPassword: "must be at least 6 characters"}, msgs)

	_, registers, _ := auth.calls()
	assert.Equal(t, 0, registers, "no network call on invalid input")
}

func TestManager_RegisterThenSignIn(t *testing.T) {
	auth := &fakeAuth{token: "tok-new", regResult: api.RegisterResult{Message: "user created"}}
	store := &memStore{}
	m := NewManager(auth, store)

	require.NoError(t, m.Register(context.Background(), " Reader ", "a@b.com", "secret1"))

	require.Len(t, auth.registers, 1)
	assert.Equal(t, "Reader", auth.registers[0].Name)
	require.Len(t, auth.signIns, 1)
	assert.Equal(t, "secret1", auth.signIns[0].Password)
	assert.Equal(t, "tok-new", store.stored())
}

func TestManager_RegisterAdoptsReturnedToken(t *testing.T) {
	auth := &fakeAuth{regResult: api.RegisterResult{Token: "from-register"}}
	store := &memStore{}
	m := NewManager(auth, store)

	require.NoError(t, m.Register(context.Background(), "Reader", "a@b.com", "secret1"))

	signIns, _, _ := auth.calls()
	assert.Equal(t, 0, signIns)
	assert.Equal(t, "from-register", store.stored())
}

func TestManager_RegisterSignInFails(t *testing.T) {
	auth := &fakeAuth{signInErr: &api.AuthError{Reason: api.ReasonServer}}
	m := NewManager(auth, &memStore{})

	err := m.Register(context.Background(), "Reader", "a@b.com", "secret1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "account created")
	assert.False(t, m.IsAuthenticated(context.Background()))
}

func TestManager_Logout(t *testing.T) {
	auth := &fakeAuth{token: "tok-1"}
	store := &memStore{}
	m := NewManager(auth, store)
	ctx := context.Background()

	require.NoError(t, m.Login(ctx, "a@b.com", "secret1"))

	m.Logout(ctx)

	assert.False(t, m.IsAuthenticated(ctx), "logout is synchronous")
	assert.Empty(t, store.stored())

	closeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, m.Close(closeCtx))

	_, _, logouts := auth.calls()
	assert.Equal(t, 1, logouts)
	assert.Equal(t, "tok-1", auth.logouts[0])
}

func TestManager_LogoutWhenAnonymous(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(auth, &memStore{})

	m.Logout(context.Background())
	require.NoError(t, m.Close(context.Background()))

	_, _, logouts := auth.calls()
	assert.Equal(t, 0, logouts)
}

func TestManager_InvalidateOnlyCurrentToken(t *testing.T) {
	store := &memStore{token: "current"}
	m := NewManager(&fakeAuth{}, store)
	ctx := context.Background()
	require.True(t, m.IsAuthenticated(ctx))

	m.Invalidate(ctx, "old")
	assert.True(t, m.IsAuthenticated(ctx))

	m.Invalidate(ctx, "current")
	assert.False(t, m.IsAuthenticated(ctx))
	assert.Empty(t, store.stored())
}

func TestManager_InvalidateRacingLogin(t *testing.T) {
	ctx := context.Background()

	for range 200 {
		store := &memStore{token: "old"}
		m := NewManager(&fakeAuth{token: "new"}, store)
		require.True(t, m.IsAuthenticated(ctx))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			m.Invalidate(ctx, "old")
		}()
		go func() {
			defer wg.Done()
			_ = m.Login(ctx, "a@b.com", "secret1")
		}()
		wg.Wait()

		token, ok := m.Token(ctx)
		require.True(t, ok, "rejecting the old token must not end the new session")
		require.Equal(t, "new", token)
		require.Equal(t, "new", store.stored())
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m := NewManager(&fakeAuth{token: "tok"}, &memStore{})
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = m.Login(ctx, "a@b.com", "secret1")
			} else {
				m.IsAuthenticated(ctx)
			}
		}()
	}
	wg.Wait()

	assert.True(t, m.IsAuthenticated(ctx))
}
