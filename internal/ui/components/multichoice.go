package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// ChoiceMark is the verdict shown next to a verified option.
type ChoiceMark int

const (
	MarkNone ChoiceMark = iota
	MarkCorrect
	MarkIncorrect
)

// MultiChoice is a multiple-choice selector. It only moves a cursor; the
// owning screen decides what selecting and locking mean.
type MultiChoice struct {
	Question string
	Options  []string
	// Cursor is the highlighted option.
	Cursor int
	// Chosen is the selected option index, or -1.
	Chosen int
	Locked bool
	Mark   ChoiceMark
}

// NewMultiChoice creates a new multiple-choice component.
func NewMultiChoice(question string, options []string) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
		Chosen:   -1,
	}
}

// Update moves the cursor with arrows or jumps to an option by number.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Locked {
		return m, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Options)-1 {
			m.Cursor++
		}
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if idx := int(key[0] - '1'); idx < len(m.Options) {
				m.Cursor = idx
			}
		}
	}

	return m, nil
}

// View renders the question and its options.
func (m MultiChoice) View() string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Locked {
			prefix = "▸ "
		}
		box := "( )"
		if i == m.Chosen {
			box = "(•)"
		}
		line := fmt.Sprintf("%s%d. %s %s", prefix, i+1, box, opt)

		style := theme.Unselected
		switch {
		case m.Locked && i == m.Chosen && m.Mark == MarkCorrect:
			style = theme.Correct
			line += "  ✓"
		case m.Locked && i == m.Chosen && m.Mark == MarkIncorrect:
			style = theme.Incorrect
			line += "  ✗"
		case m.Locked:
			style = theme.Locked
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	return b.String()
}
