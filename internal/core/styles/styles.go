// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports. They are rebuilt by SetTheme.
var (
	// CLI styles.
	HeaderStyle  lipgloss.Style
	DividerStyle lipgloss.Style
	LinkStyle    lipgloss.Style
	SuccessStyle lipgloss.Style
	WarningStyle lipgloss.Style
	ErrorStyle   lipgloss.Style

	// TUI shared styles.
	AppTitleStyle   lipgloss.Style
	PanelStyle      lipgloss.Style
	ItemStyle       lipgloss.Style
	SelectedStyle   lipgloss.Style
	MetaStyle       lipgloss.Style
	HelpStyle       lipgloss.Style
	EmptyStyle      lipgloss.Style
	FieldLabelStyle lipgloss.Style
	FieldFocusStyle lipgloss.Style
	FieldErrorStyle lipgloss.Style
	SpinnerStyle    lipgloss.Style
	PagerStyle      lipgloss.Style

	// Banner styles, one per notification level.
	BannerInfoStyle    lipgloss.Style
	BannerWarningStyle lipgloss.Style
	BannerErrorStyle   lipgloss.Style
)

func init() {
	SetTheme(DefaultTheme)
}

// SetTheme switches the active palette and rebuilds every style. Unknown
// names fall back to the default theme and report false.
func SetTheme(name string) bool {
	p, ok := themes[name]
	if !ok {
		p = themes[DefaultTheme]
	}
	CurrentPalette = p
	build(p)
	return ok
}

func build(p Palette) {
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	DividerStyle = lipgloss.NewStyle().Foreground(p.Muted)
	LinkStyle = lipgloss.NewStyle().Foreground(p.Secondary).Underline(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(p.Success)
	WarningStyle = lipgloss.NewStyle().Foreground(p.Warning)
	ErrorStyle = lipgloss.NewStyle().Foreground(p.Error)

	AppTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Background).
		Background(p.Primary).
		Padding(0, 1)

	PanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Surface).
		Padding(0, 1)

	ItemStyle = lipgloss.NewStyle().Foreground(p.Foreground).PaddingLeft(2)
	SelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(p.Primary).
		PaddingLeft(1)

	MetaStyle = lipgloss.NewStyle().Foreground(p.Muted)
	HelpStyle = lipgloss.NewStyle().Foreground(p.Muted)
	EmptyStyle = lipgloss.NewStyle().Foreground(p.Muted).Italic(true).Padding(1, 2)

	FieldLabelStyle = lipgloss.NewStyle().Foreground(p.Foreground)
	FieldFocusStyle = lipgloss.NewStyle().Foreground(p.Primary).Bold(true)
	FieldErrorStyle = lipgloss.NewStyle().Foreground(p.Error).PaddingLeft(2)

	SpinnerStyle = lipgloss.NewStyle().Foreground(p.Secondary)
	PagerStyle = lipgloss.NewStyle().Foreground(p.Secondary)

	banner := lipgloss.NewStyle().Padding(0, 1).Bold(true)
	BannerInfoStyle = banner.Foreground(p.Background).Background(p.Success)
	BannerWarningStyle = banner.Foreground(p.Background).Background(p.Warning)
	BannerErrorStyle = banner.Foreground(p.Background).Background(p.Error)
}
