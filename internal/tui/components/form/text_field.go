package form

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/bookreview/internal/core/styles"
)

// TextField is a single-line text input form field.
type TextField struct {
	input   textinput.Model
	label   string
	errMsg  string
	focused bool
}

// NewTextField creates a new single-line text input field.
func NewTextField(label, placeholder, defaultVal string) *TextField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	ti.Width = 40
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Muted)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(styles.CurrentPalette.Primary)
	ti.Cursor.SetMode(cursor.CursorStatic)

	if defaultVal != "" {
		ti.SetValue(defaultVal)
	}

	return &TextField{
		input: ti,
		label: label,
	}
}

// NewPasswordField creates a text field that masks its input.
func NewPasswordField(label, placeholder string) *TextField {
	f := NewTextField(label, placeholder, "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f *TextField) Update(msg tea.Msg) (Field, tea.Cmd) {
	if !f.focused {
		return f, nil
	}

	before := f.input.Value()

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)

	if f.input.Value() != before {
		f.errMsg = ""
	}
	return f, cmd
}

func (f *TextField) View() string {
	return renderField(f.label, f.input.View(), f.errMsg, f.focused)
}

func (f *TextField) Focus() tea.Cmd {
	f.focused = true
	return f.input.Focus()
}

func (f *TextField) Blur() {
	f.focused = false
	f.input.Blur()
}

func (f *TextField) Focused() bool       { return f.focused }
func (f *TextField) Value() string       { return f.input.Value() }
func (f *TextField) SetValue(v string)   { f.input.SetValue(v) }
func (f *TextField) Label() string       { return f.label }
func (f *TextField) SetError(msg string) { f.errMsg = msg }
func (f *TextField) Error() string       { return f.errMsg }
