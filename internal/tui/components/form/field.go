package form

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/bookreview/internal/core/styles"
)

// Field is the interface implemented by all form field types.
type Field interface {
	Update(msg tea.Msg) (Field, tea.Cmd)
	View() string
	Focus() tea.Cmd
	Blur()
	Focused() bool
	Value() string
	SetValue(v string)
	Label() string

	// SetError attaches an inline message rendered under the input. An empty
	// string clears it.
	SetError(msg string)
	Error() string
}

// renderField lays out label, input, and the optional error line shared by
// every field type.
func renderField(label, input, errMsg string, focused bool) string {
	labelStyle := styles.FieldLabelStyle
	if focused {
		labelStyle = styles.FieldFocusStyle
	}

	parts := []string{labelStyle.Render(label), input}
	if errMsg != "" {
		parts = append(parts, styles.FieldErrorStyle.Render(styles.IconError+" "+errMsg))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
