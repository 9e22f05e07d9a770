package components

import (
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
)

// Field is one named input of a Form. Key matches the field name used in
// validation errors.
type Field struct {
	Key   string
	Input TextInput
}

// Form is a vertical stack of text inputs with one focused at a time.
type Form struct {
	Fields []Field
	Focus  int
}

// NewForm creates a form and focuses its first field.
func NewForm(fields ...Field) Form {
	f := Form{Fields: fields}
	f.focus(0)
	return f
}

func (f *Form) focus(i int) tea.Cmd {
	if len(f.Fields) == 0 {
		return nil
	}
	for j := range f.Fields {
		f.Fields[j].Input.Blur()
	}
	f.Focus = (i + len(f.Fields)) % len(f.Fields)
	return f.Fields[f.Focus].Input.Focus()
}

// FocusedKey returns the key of the focused field.
func (f Form) FocusedKey() string {
	if len(f.Fields) == 0 {
		return ""
	}
	return f.Fields[f.Focus].Key
}

// Update moves focus with tab/arrows and forwards everything else to the
// focused input.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd) {
	if len(f.Fields) == 0 {
		return f, nil
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "tab", "down":
			return f, f.focus(f.Focus + 1)
		case "shift+tab", "up":
			return f, f.focus(f.Focus - 1)
		}
	}
	var cmd tea.Cmd
	f.Fields[f.Focus].Input, cmd = f.Fields[f.Focus].Input.Update(msg)
	return f, cmd
}

// Value returns the trimmed value of the field with key.
func (f Form) Value(key string) string {
	for _, fl := range f.Fields {
		if fl.Key == key {
			return strings.TrimSpace(fl.Input.Value())
		}
	}
	return ""
}

// Raw returns the untrimmed value of the field with key. Passwords use it.
func (f Form) Raw(key string) string {
	for _, fl := range f.Fields {
		if fl.Key == key {
			return fl.Input.Value()
		}
	}
	return ""
}

// SetFieldError sets the inline error of one field.
func (f *Form) SetFieldError(key, msg string) {
	for i := range f.Fields {
		if f.Fields[i].Key == key {
			f.Fields[i].Input.Err = msg
		}
	}
}

// ApplyError copies per-field messages of a validation error onto the
// inputs and clears the rest. It reports whether err carried field errors.
func (f *Form) ApplyError(err error) bool {
	f.ClearErrors()
	var ve *api.ValidationError
	if !errors.As(err, &ve) || len(ve.Fields) == 0 {
		return false
	}
	matched := false
	for i := range f.Fields {
		if msg, ok := ve.Fields[f.Fields[i].Key]; ok {
			f.Fields[i].Input.Err = msg
			matched = true
		}
	}
	return matched
}

// ClearErrors removes every inline error.
func (f *Form) ClearErrors() {
	for i := range f.Fields {
		f.Fields[i].Input.Err = ""
	}
}

// View renders the fields separated by blank lines.
func (f Form) View() string {
	parts := make([]string, len(f.Fields))
	for i, fl := range f.Fields {
		parts[i] = fl.Input.View()
	}
	return strings.Join(parts, "\n\n")
}
