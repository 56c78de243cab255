package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/validate"
	"github.com/hay-kot/bookreview/internal/pager"
	"github.com/hay-kot/bookreview/pkg/tuitest"
)

type fakeSessions struct {
	mu        sync.Mutex
	authed    bool
	loginErr  error
	logins    int
	registers int
	loggedOut bool
}

func (s *fakeSessions) IsAuthenticated(context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authed
}

func (s *fakeSessions) Login(_ context.Context, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate.Credentials(email, password); err != nil {
		return err
	}
	s.logins++
	if s.loginErr != nil {
		return s.loginErr
	}
	s.authed = true
	return nil
}

func (s *fakeSessions) Register(_ context.Context, name, email, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validate.Registration(name, email, password); err != nil {
		return err
	}
	s.registers++
	s.authed = true
	return nil
}

func (s *fakeSessions) Logout(context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authed = false
	s.loggedOut = true
}

type fakeSource struct {
	mu      sync.Mutex
	reviews []review.Review
	listErr error
	calls   []int
}

func newFakeSource(n int) *fakeSource {
	src := &fakeSource{}
	for i := range n {
		src.reviews = append(src.reviews, review.Review{
			ID:           fmt.Sprintf("r%d", i),
			Title:        fmt.Sprintf("Review %d", i),
			URL:          fmt.Sprintf("https://example.com/books/%d", i),
			ReviewerName: "gopher",
			BodyText:     "A **fine** read.",
		})
	}
	return src
}

func (f *fakeSource) ListReviews(_ context.Context, offset, limit int) (api.ReviewPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, offset)
	if f.listErr != nil {
		return api.ReviewPage{}, f.listErr
	}

	items := []review.Review{}
	if offset < len(f.reviews) {
		items = append(items, f.reviews[offset:min(offset+limit, len(f.reviews))]...)
	}
	return api.ReviewPage{Reviews: items, Offset: offset, Limit: limit, TotalCount: len(f.reviews), TotalKnown: true}, nil
}

func (f *fakeSource) CreateReview(_ context.Context, d review.Draft) (review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r := review.Review{ID: "new", Title: d.Title, URL: d.URL, ReviewerName: d.ReviewerName, BodyText: d.BodyText}
	f.reviews = append([]review.Review{r}, f.reviews...)
	return r, nil
}

func (f *fakeSource) setListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// runCmd executes cmd and returns the messages it produced. Commands that
// do not finish promptly are timers (spinner, cursor blink, banner expiry)
// and are skipped.
func runCmd(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		switch msg := msg.(type) {
		case nil:
			return nil
		case tea.BatchMsg:
			var out []tea.Msg
			for _, c := range msg {
				out = append(out, runCmd(t, c)...)
			}
			return out
		default:
			return []tea.Msg{msg}
		}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// send feeds msg to the model, then keeps feeding it whatever its commands
// produce until nothing is left.
func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()

	queue := append([]tea.Msg(nil), msgs...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		updated, cmd := m.Update(next)
		m = updated.(Model)

		for _, out := range runCmd(t, cmd) {
			switch out.(type) {
			case spinner.TickMsg, bannerTickMsg, tea.QuitMsg:
				continue
			}
			queue = append(queue, out)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	return send(t, m, tuitest.Type(s)...)
}

func view(m Model) string {
	return tuitest.StripANSI(m.View())
}

// signedIn returns a model that has loaded its first page.
func signedIn(t *testing.T, src *fakeSource) (Model, *fakeSessions, *pager.Pager) {
	t.Helper()
	return signedInWith(t, src, Options{})
}

func signedInWith(t *testing.T, src *fakeSource, opts Options) (Model, *fakeSessions, *pager.Pager) {
	t.Helper()

	sessions := &fakeSessions{authed: true}
	pg := pager.New(src, sessions, 10)
	m := New(sessions, pg, opts)
	require.Equal(t, ViewList, m.ActiveView())

	m = send(t, m, tuitest.WindowSize(100, 40))
	for _, msg := range runCmd(t, m.Init()) {
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		m = send(t, m, msg)
	}
	require.True(t, m.loaded)
	return m, sessions, pg
}

func TestNew_AnonymousOpensLogin(t *testing.T) {
	sessions := &fakeSessions{}
	src := newFakeSource(3)
	m := New(sessions, pager.New(src, sessions, 10), Options{})

	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Nil(t, m.Init())
	assert.Contains(t, view(m), "Sign in")
	assert.Contains(t, view(m), "signed out")
	assert.Equal(t, 0, src.callCount())
}

func TestLogin_SuccessLoadsFirstPage(t *testing.T) {
	sessions := &fakeSessions{}
	src := newFakeSource(25)
	m := New(sessions, pager.New(src, sessions, 10), Options{})

	m = typeText(t, m, "demo@example.com")
	m = send(t, m, tuitest.KeyEnter())
	m = typeText(t, m, "demo1234")
	m = send(t, m, tuitest.KeyEnter())

	assert.Equal(t, 1, sessions.logins)
	assert.Equal(t, ViewList, m.ActiveView())
	assert.False(t, m.busy())

	out := view(m)
	assert.Contains(t, out, "Review 0")
	assert.Contains(t, out, "Review 9")
	assert.NotContains(t, out, "Review 10")
	assert.Contains(t, out, "Page 1 of 3 · 25 reviews")
	assert.Contains(t, out, "Signed in")
	assert.Empty(t, m.loginForm.Value(validate.FieldPassword), "password is not kept after sign in")
}

func TestLogin_EmptyFieldsShowInlineErrors(t *testing.T) {
	sessions := &fakeSessions{}
	src := newFakeSource(3)
	m := New(sessions, pager.New(src, sessions, 10), Options{})

	m = send(t, m, tuitest.KeyEnter(), tuitest.KeyEnter())

	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Equal(t, 0, sessions.logins)
	assert.Equal(t, 0, src.callCount())

	out := view(m)
	assert.Contains(t, out, "is required")
	assert.Contains(t, out, "Please fix the highlighted fields")
	assert.Equal(t, validate.FieldEmail, m.loginForm.Focused())
}

func TestLogin_InvalidCredentialsShowsBanner(t *testing.T) {
	sessions := &fakeSessions{loginErr: &api.AuthError{Reason: api.ReasonInvalidCredentials}}
	src := newFakeSource(3)
	m := New(sessions, pager.New(src, sessions, 10), Options{})

	m = typeText(t, m, "demo@example.com")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "wrong")
	m = send(t, m, tuitest.KeyEnter())

	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Contains(t, view(m), "Invalid email or password")
	assert.Equal(t, 0, src.callCount())
}

func TestRegister_SwitchAndCreateAccount(t *testing.T) {
	sessions := &fakeSessions{}
	src := newFakeSource(0)
	m := New(sessions, pager.New(src, sessions, 10), Options{})

	m = send(t, m, tuitest.Key(tea.KeyCtrlR))
	require.Equal(t, ViewRegister, m.ActiveView())
	assert.Contains(t, view(m), "Create an account")

	m = typeText(t, m, "Reader")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "not-an-email")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "abc")
	m = send(t, m, tuitest.KeyEnter())

	assert.Equal(t, ViewRegister, m.ActiveView())
	assert.Equal(t, 0, sessions.registers)
	out := view(m)
	assert.Contains(t, out, "must be a valid email address")
	assert.Contains(t, out, "must be at least 6 characters")
	assert.Equal(t, validate.FieldEmail, m.registerForm.Focused())

	m = typeText(t, m, ".fixed@example.com")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "defgh")
	m = send(t, m, tuitest.KeyEnter())

	// "not-an-email.fixed@example.com" is still a valid address.
	assert.Equal(t, 1, sessions.registers)
	assert.Equal(t, ViewList, m.ActiveView())
	assert.Contains(t, view(m), "No reviews yet")
}

func TestRegister_EscGoesBackToLogin(t *testing.T) {
	sessions := &fakeSessions{}
	m := New(sessions, pager.New(newFakeSource(0), sessions, 10), Options{})

	m = send(t, m, tuitest.Key(tea.KeyCtrlR))
	m = send(t, m, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.False(t, m.quitting)
}

func TestList_EmptyCollection(t *testing.T) {
	m, _, _ := signedIn(t, newFakeSource(0))

	out := view(m)
	assert.Contains(t, out, "No reviews yet")
	assert.Contains(t, out, "signed in")
}

func TestList_NextAndPrevious(t *testing.T) {
	src := newFakeSource(25)
	m, _, _ := signedIn(t, src)

	m = send(t, m, tuitest.KeyPress('n'))
	assert.Equal(t, 10, m.window.Offset)
	assert.Contains(t, view(m), "Review 10")
	assert.Contains(t, view(m), "Page 2 of 3")

	m = send(t, m, tuitest.Key(tea.KeyRight))
	assert.Equal(t, 20, m.window.Offset)
	assert.Len(t, m.window.Items, 5)

	calls := src.callCount()
	m = send(t, m, tuitest.KeyPress('n'))
	assert.Equal(t, calls, src.callCount(), "no request past the last page")
	assert.Equal(t, 20, m.window.Offset)

	m = send(t, m, tuitest.KeyPress('p'))
	assert.Equal(t, 10, m.window.Offset)

	m = send(t, m, tuitest.Key(tea.KeyLeft))
	assert.Equal(t, 0, m.window.Offset)

	calls = src.callCount()
	m = send(t, m, tuitest.KeyPress('p'))
	assert.Equal(t, calls, src.callCount(), "no request before the first page")
}

func TestList_StaleResultIgnored(t *testing.T) {
	src := newFakeSource(25)
	m, _, _ := signedIn(t, src)

	// Start a next-page load but do not run it yet.
	updated, nextCmd := m.Update(tuitest.KeyPress('n'))
	m = updated.(Model)
	assert.True(t, m.loading)

	// A reload of the first page supersedes it.
	updated, reloadCmd := m.Update(tuitest.KeyPress('r'))
	m = updated.(Model)

	// The older result lands first and is dropped.
	for _, msg := range runCmd(t, nextCmd) {
		if _, ok := msg.(pageLoadedMsg); ok {
			m = send(t, m, msg)
		}
	}
	assert.Equal(t, 0, m.window.Offset)
	assert.True(t, m.loading, "newer load still in flight")

	for _, msg := range runCmd(t, reloadCmd) {
		if _, ok := msg.(pageLoadedMsg); ok {
			m = send(t, m, msg)
		}
	}
	assert.Equal(t, 0, m.window.Offset)
	assert.False(t, m.loading)
	assert.Contains(t, view(m), "Review 0")
}

func TestList_FetchErrorKeepsWindow(t *testing.T) {
	src := newFakeSource(25)
	m, _, _ := signedIn(t, src)

	src.setListErr(&api.FetchError{Op: "load reviews", Status: 500})
	m = send(t, m, tuitest.KeyPress('n'))

	assert.Equal(t, ViewList, m.ActiveView())
	assert.Equal(t, 0, m.window.Offset)
	assert.Len(t, m.window.Items, 10)
	assert.Contains(t, view(m), "Could not load reviews: HTTP 500")

	m = send(t, m, tuitest.KeyPress('x'))
	assert.NotContains(t, view(m), "Could not load reviews")
}

func TestList_AuthErrorReturnsToLogin(t *testing.T) {
	src := newFakeSource(25)
	m, sessions, pg := signedIn(t, src)

	sessions.mu.Lock()
	sessions.authed = false
	sessions.mu.Unlock()
	src.setListErr(&api.AuthError{Reason: api.ReasonExpired, Err: api.ErrUnauthorized})

	m = send(t, m, tuitest.KeyPress('r'))

	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Empty(t, pg.Window().Items)
	assert.Contains(t, view(m), "Sign in to continue")
}

func TestList_ExpiredSessionDuringLoad(t *testing.T) {
	src := newFakeSource(25)
	m, _, pg := signedIn(t, src)

	src.setListErr(&api.AuthError{Reason: api.ReasonExpired, Err: api.ErrUnauthorized})
	m = send(t, m, tuitest.KeyPress('n'))

	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Empty(t, pg.Window().Items)
	assert.Contains(t, view(m), "Your session has expired, please sign in again")
}

func TestList_SelectionAndDetail(t *testing.T) {
	m, _, _ := signedIn(t, newFakeSource(3))

	m = send(t, m, tuitest.KeyPress('j'), tuitest.KeyPress('j'), tuitest.KeyPress('j'))
	assert.Equal(t, 2, m.selected, "selection stops at the last item")

	m = send(t, m, tuitest.KeyPress('k'))
	assert.Equal(t, 1, m.selected)

	m = send(t, m, tuitest.KeyEnter())
	assert.True(t, m.showDetail)
	assert.Contains(t, view(m), "https://example.com/books/1")

	m = send(t, m, tuitest.KeyEnter())
	assert.False(t, m.showDetail)
}

func TestCompose_ValidationThenPost(t *testing.T) {
	src := newFakeSource(12)
	m, _, _ := signedIn(t, src)

	m = send(t, m, tuitest.KeyPress('c'))
	require.Equal(t, ViewCompose, m.ActiveView())

	m = typeText(t, m, "Go in Action")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "not a url")
	m = send(t, m, tuitest.Key(tea.KeyCtrlS))

	assert.Equal(t, ViewCompose, m.ActiveView())
	out := view(m)
	assert.Contains(t, out, "must be an http(s) URL")
	assert.Contains(t, out, "Please fix the highlighted fields")
	assert.Equal(t, validate.FieldURL, m.composeForm.Focused())

	m.composeForm.Clear()
	m = typeText(t, m, "Go in Action")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "https://go.dev")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "gopher")
	m = send(t, m, tuitest.KeyTab())
	m = typeText(t, m, "Worth it.")
	m = send(t, m, tuitest.Key(tea.KeyCtrlS))

	assert.Equal(t, ViewList, m.ActiveView())
	require.NotEmpty(t, m.window.Items)
	assert.Equal(t, "Go in Action", m.window.Items[0].Title)
	assert.Len(t, m.window.Items, 10)
	assert.Equal(t, 13, m.window.TotalCount)
	assert.Contains(t, view(m), "Review posted")
	assert.Empty(t, m.composeForm.Value(validate.FieldTitle))
}

func TestCompose_EscKeepsDraft(t *testing.T) {
	m, _, _ := signedIn(t, newFakeSource(1))

	m = send(t, m, tuitest.KeyPress('c'))
	m = typeText(t, m, "Draft title")
	m = send(t, m, tuitest.Key(tea.KeyEsc))
	assert.Equal(t, ViewList, m.ActiveView())

	m = send(t, m, tuitest.KeyPress('c'))
	assert.Equal(t, "Draft title", m.composeForm.Value(validate.FieldTitle))
}

func TestLogout(t *testing.T) {
	m, sessions, pg := signedIn(t, newFakeSource(5))

	m = send(t, m, tuitest.KeyPress('L'))

	assert.True(t, sessions.loggedOut)
	assert.Equal(t, ViewLogin, m.ActiveView())
	assert.Empty(t, pg.Window().Items)
	assert.Contains(t, view(m), "Signed out")
}

func TestQuit(t *testing.T) {
	m, _, _ := signedIn(t, newFakeSource(1))

	updated, cmd := m.Update(tuitest.KeyPress('q'))
	m = updated.(Model)

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

type memHistory struct {
	mu    sync.Mutex
	saved []notify.Notification
}

func (h *memHistory) Save(_ context.Context, n notify.Notification) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saved = append(h.saved, n)
	return int64(len(h.saved)), nil
}

func (h *memHistory) List(context.Context, int) ([]notify.Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]notify.Notification(nil), h.saved...), nil
}

func (h *memHistory) Clear(context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.saved = nil
	return nil
}

func (h *memHistory) Count(context.Context) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(len(h.saved)), nil
}

func TestHistory_RecordsWarningsAndErrors(t *testing.T) {
	src := newFakeSource(25)
	history := &memHistory{}
	m, _, _ := signedInWith(t, src, Options{History: history})

	src.setListErr(&api.FetchError{Op: "load reviews", Status: 502})
	m = send(t, m, tuitest.KeyPress('n'))
	m = send(t, m, tuitest.KeyPress('L'))

	saved, err := history.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, saved, 1, "info banners are not recorded")
	assert.Equal(t, notify.LevelError, saved[0].Level)
	assert.Equal(t, "Could not load reviews: HTTP 502", saved[0].Message)
}
