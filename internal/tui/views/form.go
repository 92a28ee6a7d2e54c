// Package views provides TUI view components for the ringcheck application.
package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ringcheck/ringcheck/internal/tui"
)

// Form is a vertical list of labelled text inputs with one focused field.
// Enter on the last field submits.
type Form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

// NewForm creates a form with one input per label. The first field is focused.
func NewForm(width int, labels ...string) Form {
	f := Form{labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i := range labels {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Width = inputWidth(width)
		ti.Prompt = "> "
		f.inputs[i] = ti
	}
	if len(f.inputs) > 0 {
		f.inputs[0].Focus()
	}
	return f
}

func inputWidth(width int) int {
	if width < 30 {
		return 20
	}
	return width - 10
}

// Secret masks field i.
func (f *Form) Secret(i int) {
	f.inputs[i].EchoMode = textinput.EchoPassword
	f.inputs[i].EchoCharacter = '•'
}

// Placeholder sets the placeholder of field i.
func (f *Form) Placeholder(i int, text string) {
	f.inputs[i].Placeholder = text
}

// Value returns the trimmed value of field i. Secret fields are not trimmed.
func (f Form) Value(i int) string {
	if f.inputs[i].EchoMode == textinput.EchoPassword {
		return f.inputs[i].Value()
	}
	return strings.TrimSpace(f.inputs[i].Value())
}

// SetValue replaces the value of field i.
func (f *Form) SetValue(i int, v string) {
	f.inputs[i].SetValue(v)
}

// Focused returns the index of the focused field.
func (f Form) Focused() int {
	return f.focus
}

// Reset clears every field and focuses the first.
func (f *Form) Reset() {
	for i := range f.inputs {
		f.inputs[i].Reset()
	}
	f.setFocus(0)
}

// SetWidth resizes every input.
func (f *Form) SetWidth(width int) {
	for i := range f.inputs {
		f.inputs[i].Width = inputWidth(width)
	}
}

func (f *Form) setFocus(i int) {
	n := len(f.inputs)
	if n == 0 {
		return
	}
	i = (i%n + n) % n
	f.inputs[f.focus].Blur()
	f.focus = i
	f.inputs[f.focus].Focus()
}

// Update moves focus or edits the focused field. submitted is true when
// enter was pressed on the last field.
func (f Form) Update(msg tea.Msg) (Form, tea.Cmd, bool) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, tui.DefaultKeyMap.Enter):
			if f.focus == len(f.inputs)-1 {
				return f, nil, true
			}
			f.setFocus(f.focus + 1)
			return f, textinput.Blink, false
		case key.Matches(msg, tui.DefaultKeyMap.NextField):
			f.setFocus(f.focus + 1)
			return f, textinput.Blink, false
		case key.Matches(msg, tui.DefaultKeyMap.PrevField):
			f.setFocus(f.focus - 1)
			return f, textinput.Blink, false
		}
	}

	if len(f.inputs) == 0 {
		return f, nil, false
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd, false
}

// View renders the labelled fields.
func (f Form) View() string {
	var b strings.Builder
	for i, label := range f.labels {
		if i == f.focus {
			b.WriteString(tui.SelectedStyle.Render(label))
		} else {
			b.WriteString(tui.DimStyle.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(f.inputs[i].View())
		b.WriteString("\n")
	}
	return b.String()
}
