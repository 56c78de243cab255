package form

import (
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// TextAreaField is a multi-line text input form field.
type TextAreaField struct {
	input   textarea.Model
	label   string
	errMsg  string
	focused bool
}

// NewTextAreaField creates a new multi-line text input field.
func NewTextAreaField(label, placeholder, defaultVal string) *TextAreaField {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	ta.SetWidth(60)
	ta.Cursor.SetMode(cursor.CursorStatic)

	if defaultVal != "" {
		ta.SetValue(defaultVal)
	}

	return &TextAreaField{
		input: ta,
		label: label,
	}
}

func (f *TextAreaField) Update(msg tea.Msg) (Field, tea.Cmd) {
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

func (f *TextAreaField) View() string {
	return renderField(f.label, f.input.View(), f.errMsg, f.focused)
}

func (f *TextAreaField) Focus() tea.Cmd {
	f.focused = true
	return f.input.Focus()
}

func (f *TextAreaField) Blur() {
	f.focused = false
	f.input.Blur()
}

// SetWidth resizes the editor, typically on terminal resize.
func (f *TextAreaField) SetWidth(w int) { f.input.SetWidth(w) }

func (f *TextAreaField) Focused() bool       { return f.focused }
func (f *TextAreaField) Value() string       { return f.input.Value() }
func (f *TextAreaField) SetValue(v string)   { f.input.SetValue(v) }
func (f *TextAreaField) Label() string       { return f.label }
func (f *TextAreaField) SetError(msg string) { f.errMsg = msg }
func (f *TextAreaField) Error() string       { return f.errMsg }
