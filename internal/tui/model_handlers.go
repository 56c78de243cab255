package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hay-kot/bookreview/internal/api"
	"github.com/hay-kot/bookreview/internal/core/notify"
	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/validate"
	"github.com/hay-kot/bookreview/internal/pager"
)

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ForceQuit) {
		return m.quit()
	}

	switch m.view {
	case ViewLogin, ViewRegister:
		return m.handleAuthKey(msg)
	case ViewCompose:
		return m.handleComposeKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

func (m Model) handleAuthKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.SwitchForm) {
		if m.view == ViewLogin {
			m.view = ViewRegister
		} else {
			m.view = ViewLogin
		}
		return m, nil
	}

	d := m.activeForm()
	_, cmd := d.Update(msg)

	if d.Cancelled() {
		d.Acknowledge()
		if m.view == ViewRegister {
			m.view = ViewLogin
			return m, cmd
		}
		return m.quit()
	}

	if !d.Submitted() {
		return m, cmd
	}
	d.Acknowledge()

	if m.submitting {
		return m, cmd
	}

	values := d.FormValues()
	register := m.view == ViewRegister
	sessions, ctx := m.sessions, m.ctx

	m.submitting = true
	m.log.Debug().Bool("register", register).Msg("authenticating")

	return m, tea.Batch(cmd, m.spinner.Tick, func() tea.Msg {
		var err error
		if register {
			err = sessions.Register(ctx, values[validate.FieldName], values[validate.FieldEmail], values[validate.FieldPassword])
		} else {
			err = sessions.Login(ctx, values[validate.FieldEmail], values[validate.FieldPassword])
		}
		return authDoneMsg{register: register, err: err}
	})
}

func (m Model) handleAuthDone(msg authDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false

	d := m.loginForm
	if msg.register {
		d = m.registerForm
	}

	if msg.err != nil {
		if validate.IsValidationError(msg.err) {
			focus := d.SetErrors(validate.FieldMessages(msg.err))
			return m, tea.Batch(focus, m.pushBanner(notify.LevelWarning, api.Describe(msg.err)))
		}
		return m.handleError(msg.err)
	}

	m.loginForm.Clear()
	m.registerForm.Clear()
	m.view = ViewList

	text := "Signed in"
	if msg.register {
		text = "Account created, welcome!"
	}
	bannerCmd := m.pushBanner(notify.LevelInfo, text)

	m, loadCmd := m.load(0)
	return m, tea.Batch(bannerCmd, loadCmd)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Dismiss):
		m.banner.Dismiss()
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.window.Items)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Detail):
		if len(m.window.Items) > 0 {
			m.showDetail = !m.showDetail
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		req, ok, err := m.pager.BeginNext(m.ctx)
		return m.startLoad(req, ok, err)

	case key.Matches(msg, m.keys.Previous):
		req, ok, err := m.pager.BeginPrevious(m.ctx)
		return m.startLoad(req, ok, err)

	case key.Matches(msg, m.keys.Reload):
		return m.load(m.window.Offset)

	case key.Matches(msg, m.keys.Compose):
		m.view = ViewCompose
		m.composeForm.Acknowledge()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}

	return m, nil
}

func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	d := m.composeForm
	_, cmd := d.Update(msg)

	if d.Cancelled() {
		d.Acknowledge()
		d.ClearErrors()
		m.view = ViewList
		return m, cmd
	}

	if !d.Submitted() {
		return m, cmd
	}
	d.Acknowledge()

	if m.submitting {
		return m, cmd
	}

	values := d.FormValues()
	draft := review.Draft{
		Title:        values[validate.FieldTitle],
		URL:          values[validate.FieldURL],
		ReviewerName: values[validate.FieldReviewer],
		BodyText:     values[validate.FieldBody],
	}
	pg, ctx := m.pager, m.ctx

	m.submitting = true
	return m, tea.Batch(cmd, m.spinner.Tick, func() tea.Msg {
		created, w, err := pg.Submit(ctx, draft)
		return submitDoneMsg{created: created, window: w, err: err}
	})
}

func (m Model) handleSubmitDone(msg submitDoneMsg) (tea.Model, tea.Cmd) {
	m.submitting = false

	if msg.err != nil {
		if validate.IsValidationError(msg.err) {
			focus := m.composeForm.SetErrors(validate.FieldMessages(msg.err))
			return m, tea.Batch(focus, m.pushBanner(notify.LevelWarning, api.Describe(msg.err)))
		}
		// The draft stays in the form so it can be posted again.
		return m.handleError(msg.err)
	}

	m.composeForm.Clear()
	m.view = ViewList
	m.window = msg.window
	m.loaded = true
	m.selected = 0
	m.showDetail = false

	m.log.Info().Str("review_id", msg.created.ID).Msg("review posted")
	return m, m.pushBanner(notify.LevelInfo, "Review posted")
}

func (m Model) handlePageLoaded(msg pageLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.err, pager.ErrStale) {
		// A newer load is in flight and will report on its own.
		return m, nil
	}

	m.loading = false
	if msg.err != nil {
		return m.handleError(msg.err)
	}

	if msg.window.Offset != m.window.Offset || !m.loaded {
		m.selected = 0
		m.showDetail = false
	}
	m.window = msg.window
	m.loaded = true

	if m.selected >= len(m.window.Items) {
		m.selected = max(0, len(m.window.Items)-1)
	}
	if len(m.window.Items) == 0 {
		m.showDetail = false
	}
	return m, nil
}

// handleError turns err into a banner. Authentication failures also drop
// the window and return to the sign-in form.
func (m Model) handleError(err error) (Model, tea.Cmd) {
	m.log.Warn().Err(err).Str("view", m.view.String()).Msg("operation failed")

	if api.IsAuthError(err) {
		m.pager.Reset()
		m.window = m.pager.Window()
		m.loaded = false
		m.loading = false
		m.selected = 0
		m.showDetail = false
		if m.view != ViewRegister {
			m.view = ViewLogin
		}
	}

	return m, m.pushBanner(notify.LevelError, api.Describe(err))
}

func (m Model) load(offset int) (Model, tea.Cmd) {
	req, err := m.pager.Begin(m.ctx, offset)
	return m.startLoad(req, true, err)
}

func (m Model) startLoad(req pager.Request, ok bool, err error) (Model, tea.Cmd) {
	if err != nil {
		return m.handleError(err)
	}
	if !ok {
		return m, nil
	}

	var tick tea.Cmd
	if !m.busy() {
		tick = m.spinner.Tick
	}
	m.loading = true
	return m, tea.Batch(tick, m.finishCmd(req))
}

func (m Model) finishCmd(req pager.Request) tea.Cmd {
	pg, ctx := m.pager, m.ctx
	return func() tea.Msg {
		w, err := pg.Finish(ctx, req)
		return pageLoadedMsg{offset: req.Offset, window: w, err: err}
	}
}

func (m Model) logout() (Model, tea.Cmd) {
	m.sessions.Logout(context.WithoutCancel(m.ctx))
	m.pager.Reset()

	m.window = m.pager.Window()
	m.loaded = false
	m.loading = false
	m.selected = 0
	m.showDetail = false
	m.view = ViewLogin

	return m, m.pushBanner(notify.LevelInfo, "Signed out")
}

// pushBanner shows a banner. Warnings and errors are also written to the
// notification history when one is configured.
func (m Model) pushBanner(level notify.Level, msg string) tea.Cmd {
	n := notify.New(level, msg)
	cmd := m.banner.Push(n)
	if m.history == nil || level == notify.LevelInfo {
		return cmd
	}

	history, ctx, log := m.history, m.ctx, m.log
	return tea.Batch(cmd, func() tea.Msg {
		if _, err := history.Save(ctx, n); err != nil {
			log.Warn().Err(err).Msg("could not save notification")
		}
		return nil
	})
}
