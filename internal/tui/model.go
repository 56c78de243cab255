// Package tui implements the interactive book review client.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/hay-kot/bookreview/internal/core/logging"
	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/core/styles"
	"github.com/hay-kot/bookreview/internal/core/validate"
	"github.com/hay-kot/bookreview/internal/pager"
	"github.com/hay-kot/bookreview/internal/tui/components/form"
)

// ViewType identifies the screen being shown.
type ViewType int

const (
	ViewLogin ViewType = iota
	ViewRegister
	ViewList
	ViewCompose
)

func (v ViewType) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewList:
		return "list"
	case ViewCompose:
		return "compose"
	default:
		return "unknown"
	}
}

// Sessions is the part of the session manager the UI drives.
type Sessions interface {
	IsAuthenticated(ctx context.Context) bool
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout(ctx context.Context)
}

// Options configures the TUI behavior.
type Options struct {
	// Context is passed to every session and pager call. Defaults to
	// context.Background.
	Context context.Context

	// History records warning and error banners (optional).
	History notify.Store
}

// Model is the main Bubble Tea model for the TUI.
type Model struct {
	ctx      context.Context
	sessions Sessions
	pager    *pager.Pager
	history  notify.Store
	log      zerolog.Logger

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	banner  *BannerController

	view         ViewType
	loginForm    *form.Dialog
	registerForm *form.Dialog
	composeForm  *form.Dialog

	window     pager.Window
	loaded     bool
	selected   int
	showDetail bool

	loading    bool // page load in flight
	submitting bool // sign in, registration, or review post in flight

	width    int
	height   int
	quitting bool
}

// New creates the TUI model. It opens on the review list when a session is
// already present and on the sign-in form otherwise.
func New(sessions Sessions, pg *pager.Pager, opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.SpinnerStyle),
	)

	h := help.New()
	h.Styles.ShortKey = styles.HelpStyle.Bold(true)
	h.Styles.ShortDesc = styles.HelpStyle
	h.Styles.ShortSeparator = styles.HelpStyle

	m := Model{
		ctx:          ctx,
		sessions:     sessions,
		pager:        pg,
		history:      opts.History,
		log:          logging.Component("tui"),
		keys:         defaultKeyMap(),
		help:         h,
		spinner:      sp,
		banner:       NewBannerController(),
		view:         ViewLogin,
		loginForm:    newLoginForm(),
		registerForm: newRegisterForm(),
		composeForm:  newComposeForm(),
		window:       pg.Window(),
	}

	if sessions.IsAuthenticated(ctx) {
		m.view = ViewList
		m.loading = true
	}

	return m
}

// ActiveView returns the screen currently shown.
func (m Model) ActiveView() ViewType { return m.view }

// Init starts the first page load when signed in.
func (m Model) Init() tea.Cmd {
	if m.view != ViewList {
		return nil
	}

	req, err := m.pager.Begin(m.ctx, 0)
	if err != nil {
		return func() tea.Msg { return pageLoadedMsg{err: err} }
	}
	return tea.Batch(m.spinner.Tick, m.finishCmd(req))
}

// Update handles messages and key input.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.composeForm.SetWidth(min(max(msg.Width-4, 20), 80))
		return m, nil

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case bannerTickMsg:
		return m, m.banner.Tick(bannerTickInterval)

	case authDoneMsg:
		return m.handleAuthDone(msg)

	case pageLoadedMsg:
		return m.handlePageLoaded(msg)

	case submitDoneMsg:
		return m.handleSubmitDone(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// Cursor blink and other widget messages go to the active form.
	if d := m.activeForm(); d != nil {
		var cmd tea.Cmd
		_, cmd = d.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) busy() bool {
	return m.loading || m.submitting
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

func (m Model) activeForm() *form.Dialog {
	switch m.view {
	case ViewLogin:
		return m.loginForm
	case ViewRegister:
		return m.registerForm
	case ViewCompose:
		return m.composeForm
	default:
		return nil
	}
}

func newLoginForm() *form.Dialog {
	d := form.NewDialog("Sign in", []form.Field{
		form.NewTextField("Email", "you@example.com", ""),
		form.NewPasswordField("Password", ""),
	}, []string{validate.FieldEmail, validate.FieldPassword})
	d.Help = "tab: next field  enter: sign in  ctrl+r: create an account  esc: quit"
	return d
}

func newRegisterForm() *form.Dialog {
	d := form.NewDialog("Create an account", []form.Field{
		form.NewTextField("Name", "your display name", ""),
		form.NewTextField("Email", "you@example.com", ""),
		form.NewPasswordField("Password", "at least 6 characters"),
	}, []string{validate.FieldName, validate.FieldEmail, validate.FieldPassword})
	d.Help = "tab: next field  enter: register  ctrl+r: back to sign in  esc: back"
	return d
}

func newComposeForm() *form.Dialog {
	d := form.NewDialog("Write a review", []form.Field{
		form.NewTextField("Title", "book title", ""),
		form.NewTextField("URL", "https://", ""),
		form.NewTextField("Reviewer", "your name", ""),
		form.NewTextAreaField("Review", "what did you think? markdown is fine", ""),
	}, []string{validate.FieldTitle, validate.FieldURL, validate.FieldReviewer, validate.FieldBody})
	d.Help = "tab: next field  ctrl+s: post  esc: back to list"
	return d
}
