package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/bookreview/internal/core/review"
	"github.com/hay-kot/bookreview/internal/core/styles"
)

const (
	defaultWidth  = 80
	maxFormWidth  = 80
	dateLayout    = "Jan 2, 2006"
	loadingPrompt = "Loading reviews…"
)

// View renders the current screen.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	parts := []string{m.renderHeader()}
	if b := m.banner.View(m.contentWidth()); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, "")

	switch m.view {
	case ViewLogin, ViewRegister, ViewCompose:
		parts = append(parts, m.renderForm())
	default:
		parts = append(parts, m.renderList())
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width
}

func (m Model) renderHeader() string {
	title := styles.AppTitleStyle.Render(styles.IconBook + " Book Reviews")

	status := styles.IconLock + " signed out"
	if m.view == ViewList || m.view == ViewCompose {
		status = styles.IconUser + " signed in"
	}

	return lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", styles.MetaStyle.Render(status))
}

func (m Model) renderForm() string {
	d := m.activeForm()
	body := d.View()
	if m.submitting {
		label := "Signing in…"
		switch m.view {
		case ViewRegister:
			label = "Creating account…"
		case ViewCompose:
			label = "Posting review…"
		}
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.spinner.View()+" "+label)
	}
	return lipgloss.NewStyle().MaxWidth(min(m.contentWidth(), maxFormWidth)).PaddingLeft(1).Render(body)
}

func (m Model) renderList() string {
	if !m.loaded {
		if m.loading {
			return m.spinner.View() + " " + loadingPrompt
		}
		return styles.EmptyStyle.Render("Press r to load reviews")
	}

	var body string
	if m.window.Empty() {
		body = styles.EmptyStyle.Render("No reviews yet\npress c to write the first one")
	} else {
		body = m.renderItems()
	}

	parts := []string{body}
	if m.showDetail && m.selected < len(m.window.Items) {
		parts = append(parts, "", m.renderDetail(m.window.Items[m.selected]))
	}

	parts = append(parts, "", m.renderStatus(), m.help.ShortHelpView(m.keys.listHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderItems() string {
	lines := make([]string, 0, len(m.window.Items))
	for i, r := range m.window.Items {
		line := r.Title + "  " + styles.MetaStyle.Render("by "+r.ReviewerName)
		if i == m.selected {
			lines = append(lines, styles.SelectedStyle.Render(line))
			continue
		}
		lines = append(lines, styles.ItemStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderDetail(r review.Review) string {
	width := min(m.contentWidth()-4, maxFormWidth)

	meta := styles.IconUser + " " + r.ReviewerName
	if !r.CreatedAt.IsZero() {
		meta += "  " + r.CreatedAt.Local().Format(dateLayout)
	}

	parts := []string{
		styles.HeaderStyle.Render(r.Title),
		styles.LinkStyle.Render(styles.IconLink + " " + r.URL),
		styles.MetaStyle.Render(meta),
		"",
		styles.RenderMarkdown(r.BodyText, width),
	}
	return styles.PanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) renderStatus() string {
	status := m.window.Status()
	if m.loading {
		status = m.spinner.View() + " " + status
	}
	return styles.PagerStyle.Render(status)
}
