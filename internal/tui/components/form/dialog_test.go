package form

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/hay-kot/bookreview/pkg/tuitest"
)

func TestDialog(t *testing.T) {
	t.Run("creation focuses first field", func(t *testing.T) {
		f1 := NewTextField("Name", "", "")
		f2 := NewTextField("Email", "", "")
		d := NewDialog("Test", []Field{f1, f2}, []string{"name", "email"})

		assert.True(t, f1.Focused())
		assert.False(t, f2.Focused())
		assert.False(t, d.Submitted())
		assert.False(t, d.Cancelled())
		assert.Equal(t, "name", d.Focused())
	})

	t.Run("empty dialog", func(t *testing.T) {
		d := NewDialog("Empty", []Field{}, []string{})
		d.Update(tuitest.KeyTab())
		assert.False(t, d.Submitted())
		assert.Empty(t, d.FormValues())
	})

	t.Run("tab cycles focus", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		f2 := NewTextField("B", "", "")
		f3 := NewTextField("C", "", "")
		d := NewDialog("Test", []Field{f1, f2, f3}, []string{"a", "b", "c"})

		d.Update(tuitest.KeyTab())
		assert.True(t, f2.Focused())

		d.Update(tuitest.KeyTab())
		assert.True(t, f3.Focused())

		d.Update(tuitest.KeyTab())
		assert.True(t, f1.Focused())
		assert.False(t, f3.Focused())
		assert.False(t, d.Submitted())
	})

	t.Run("shift+tab wraps backwards", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		f2 := NewTextField("B", "", "")
		d := NewDialog("Test", []Field{f1, f2}, []string{"a", "b"})

		d.Update(tuitest.Key(tea.KeyShiftTab))
		assert.True(t, f2.Focused())
		assert.False(t, f1.Focused())
	})

	t.Run("enter advances focus on non-textarea", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		f2 := NewTextField("B", "", "")
		d := NewDialog("Test", []Field{f1, f2}, []string{"a", "b"})

		d.Update(tuitest.KeyEnter())
		assert.True(t, f2.Focused())
	})

	t.Run("enter on last non-textarea field submits", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		d := NewDialog("Test", []Field{f1}, []string{"a"})

		d.Update(tuitest.KeyEnter())
		assert.True(t, d.Submitted())
	})

	t.Run("enter on textarea does not advance", func(t *testing.T) {
		f1 := NewTextAreaField("Body", "", "")
		f2 := NewTextField("Name", "", "")
		d := NewDialog("Test", []Field{f1, f2}, []string{"body", "name"})

		d.Update(tuitest.KeyEnter())
		assert.True(t, f1.Focused())
		assert.False(t, d.Submitted())
	})

	t.Run("ctrl+s submits from any field", func(t *testing.T) {
		f1 := NewTextAreaField("Body", "", "")
		d := NewDialog("Test", []Field{f1}, []string{"body"})

		d.Update(tuitest.Key(tea.KeyCtrlS))
		assert.True(t, d.Submitted())
	})

	t.Run("escape cancels", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		d := NewDialog("Test", []Field{f1}, []string{"a"})

		d.Update(tuitest.Key(tea.KeyEsc))
		assert.True(t, d.Cancelled())
		assert.False(t, d.Submitted())

		d.Acknowledge()
		assert.False(t, d.Cancelled())
	})

	t.Run("typing goes to focused field", func(t *testing.T) {
		f1 := NewTextField("A", "", "")
		f2 := NewTextField("B", "", "")
		d := NewDialog("Test", []Field{f1, f2}, []string{"a", "b"})

		d.Update(tuitest.KeyTab())
		for _, msg := range tuitest.Type("hi") {
			d.Update(msg)
		}

		assert.Equal(t, "", d.Value("a"))
		assert.Equal(t, "hi", d.Value("b"))
		assert.Equal(t, "", d.Value("missing"))
	})

	t.Run("FormValues extracts all values", func(t *testing.T) {
		f1 := NewTextField("Name", "", "Alice")
		f2 := NewTextField("Email", "", "alice@test.com")
		d := NewDialog("Test", []Field{f1, f2}, []string{"name", "email"})

		vals := d.FormValues()
		assert.Equal(t, "Alice", vals["name"])
		assert.Equal(t, "alice@test.com", vals["email"])
	})

	t.Run("SetErrors focuses first errored field", func(t *testing.T) {
		f1 := NewTextField("Name", "", "")
		f2 := NewTextField("Email", "", "")
		f3 := NewTextField("Password", "", "")
		d := NewDialog("Test", []Field{f1, f2, f3}, []string{"name", "email", "password"})

		d.SetErrors(map[string]string{"password": "too short", "email": "invalid"})

		assert.True(t, f2.Focused())
		assert.Equal(t, "invalid", f2.Error())
		assert.Equal(t, "too short", f3.Error())
		assert.Empty(t, f1.Error())
		assert.True(t, d.HasErrors())

		view := tuitest.StripANSI(d.View())
		assert.Contains(t, view, "invalid")
		assert.Contains(t, view, "too short")

		d.ClearErrors()
		assert.False(t, d.HasErrors())
	})

	t.Run("Clear resets values and focus", func(t *testing.T) {
		f1 := NewTextField("A", "", "one")
		f2 := NewTextField("B", "", "two")
		d := NewDialog("Test", []Field{f1, f2}, []string{"a", "b"})
		d.Update(tuitest.KeyTab())
		d.Update(tuitest.KeyEnter())
		assert.True(t, d.Submitted())

		d.Clear()

		assert.Equal(t, map[string]string{"a": "", "b": ""}, d.FormValues())
		assert.True(t, f1.Focused())
		assert.False(t, d.Submitted())
	})

	t.Run("view renders title fields and help", func(t *testing.T) {
		f1 := NewTextField("Name", "enter name", "")
		d := NewDialog("Test Form", []Field{f1}, []string{"name"})

		view := tuitest.StripANSI(d.View())
		assert.Contains(t, view, "Test Form")
		assert.Contains(t, view, "Name")
		assert.Contains(t, view, "tab")
	})
}
