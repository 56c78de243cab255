package form

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hay-kot/bookreview/internal/core/styles"
)

const defaultHelp = "tab: next  shift+tab: prev  enter: submit  esc: cancel"

// Dialog is a form container that manages focus cycling, submission, and
// cancellation across a set of form fields.
type Dialog struct {
	fields       []Field
	variables    []string // parallel slice: variable name for each field
	focusedField int
	submitted    bool
	cancelled    bool
	Title        string
	Help         string
}

// NewDialog creates a form dialog with the given fields and variable names.
// The first field is focused automatically.
func NewDialog(title string, fields []Field, variables []string) *Dialog {
	d := &Dialog{
		fields:    fields,
		variables: variables,
		Title:     title,
		Help:      defaultHelp,
	}
	if len(fields) > 0 {
		fields[0].Focus()
	}
	return d
}

// Update handles key input for the dialog, managing focus cycling and submit/cancel.
func (d *Dialog) Update(msg tea.Msg) (*Dialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d.updateFocusedField(msg)
	}

	switch keyMsg.String() {
	case "tab":
		return d.cycleFocus(1)
	case "shift+tab":
		return d.cycleFocus(-1)
	case "ctrl+s":
		d.submitted = true
		return d, nil
	case "enter":
		if d.isTextAreaFocused() {
			// Let textarea handle enter for newline insertion
			return d.updateFocusedField(msg)
		}
		return d.advanceFocus()
	case "esc":
		d.cancelled = true
		return d, nil
	}

	return d.updateFocusedField(msg)
}

// View renders the title, all fields vertically with spacing, and help text.
func (d *Dialog) View() string {
	var parts []string
	if d.Title != "" {
		parts = append(parts, styles.HeaderStyle.Render(d.Title), "")
	}
	for i, field := range d.fields {
		if i > 0 {
			parts = append(parts, "")
		}
		parts = append(parts, field.View())
	}

	if d.Help != "" {
		parts = append(parts, "", styles.HelpStyle.Render(d.Help))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// FormValues returns a map of variable names to field values.
func (d *Dialog) FormValues() map[string]string {
	result := make(map[string]string, len(d.fields))
	for i, field := range d.fields {
		result[d.variables[i]] = field.Value()
	}
	return result
}

// Value returns the value of the named field, or "" when no such field exists.
func (d *Dialog) Value(name string) string {
	if f := d.field(name); f != nil {
		return f.Value()
	}
	return ""
}

// SetErrors replaces every field's inline error with the messages keyed by
// variable name and moves focus to the first field that has one.
func (d *Dialog) SetErrors(msgs map[string]string) tea.Cmd {
	first := -1
	for i, field := range d.fields {
		msg := msgs[d.variables[i]]
		field.SetError(msg)
		if msg != "" && first < 0 {
			first = i
		}
	}

	if first < 0 || first == d.focusedField {
		return nil
	}
	return d.focus(first)
}

// ClearErrors removes all inline field errors.
func (d *Dialog) ClearErrors() {
	for _, field := range d.fields {
		field.SetError("")
	}
}

// HasErrors reports whether any field currently shows an error.
func (d *Dialog) HasErrors() bool {
	for _, field := range d.fields {
		if field.Error() != "" {
			return true
		}
	}
	return false
}

// Clear empties every field and error and refocuses the first field.
func (d *Dialog) Clear() tea.Cmd {
	for _, field := range d.fields {
		field.SetValue("")
		field.SetError("")
	}
	d.Acknowledge()
	if len(d.fields) == 0 {
		return nil
	}
	return d.focus(0)
}

// Acknowledge resets the submitted and cancelled flags once the owner has
// acted on them, leaving values intact.
func (d *Dialog) Acknowledge() {
	d.submitted = false
	d.cancelled = false
}

// SetWidth resizes multi-line fields to the available width.
func (d *Dialog) SetWidth(w int) {
	for _, field := range d.fields {
		if ta, ok := field.(*TextAreaField); ok {
			ta.SetWidth(w)
		}
	}
}

// Submitted returns whether the form was submitted.
func (d *Dialog) Submitted() bool { return d.submitted }

// Cancelled returns whether the form was cancelled.
func (d *Dialog) Cancelled() bool { return d.cancelled }

// Focused returns the variable name of the focused field.
func (d *Dialog) Focused() string {
	if len(d.fields) == 0 {
		return ""
	}
	return d.variables[d.focusedField]
}

func (d *Dialog) field(name string) Field {
	for i, v := range d.variables {
		if v == name {
			return d.fields[i]
		}
	}
	return nil
}

func (d *Dialog) advanceFocus() (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	next := d.focusedField + 1
	if next >= len(d.fields) {
		// Past the last field, submit
		d.submitted = true
		return d, nil
	}

	return d, d.focus(next)
}

func (d *Dialog) cycleFocus(delta int) (*Dialog, tea.Cmd) {
	n := len(d.fields)
	if n <= 1 {
		return d, nil
	}
	return d, d.focus((d.focusedField + delta + n) % n)
}

func (d *Dialog) focus(i int) tea.Cmd {
	d.fields[d.focusedField].Blur()
	d.focusedField = i
	return d.fields[d.focusedField].Focus()
}

func (d *Dialog) updateFocusedField(msg tea.Msg) (*Dialog, tea.Cmd) {
	if len(d.fields) == 0 {
		return d, nil
	}

	var cmd tea.Cmd
	d.fields[d.focusedField], cmd = d.fields[d.focusedField].Update(msg)
	return d, cmd
}

func (d *Dialog) isTextAreaFocused() bool {
	if len(d.fields) == 0 {
		return false
	}
	_, ok := d.fields[d.focusedField].(*TextAreaField)
	return ok
}
