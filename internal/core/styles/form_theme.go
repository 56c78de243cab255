package styles

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// FormTheme returns a huh theme using the active palette.
func FormTheme() *huh.Theme {
	t := huh.ThemeCharm()
	p := CurrentPalette

	t.Focused.Title = t.Focused.Title.Foreground(p.Primary).Bold(true)
	t.Focused.Description = t.Focused.Description.Foreground(p.Muted)
	t.Focused.ErrorMessage = t.Focused.ErrorMessage.Foreground(p.Error)
	t.Focused.ErrorIndicator = t.Focused.ErrorIndicator.Foreground(p.Error)
	t.Focused.TextInput.Cursor = t.Focused.TextInput.Cursor.Foreground(p.Secondary)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(p.Muted)

	t.Blurred.Title = t.Blurred.Title.Foreground(p.Foreground)
	t.Blurred.TextInput.Placeholder = lipgloss.NewStyle().Foreground(p.Muted)

	return t
}
