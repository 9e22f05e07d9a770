package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// ProgressBar shows Done out of Total as a "3/5 verified" label followed by
// a bar. A full bar is drawn in the success colour.
type ProgressBar struct {
	Done  int
	Total int
	Unit  string
	Width int
}

// NewProgressBar creates a bar for done of total. unit may be empty.
func NewProgressBar(done, total int, unit string, width int) ProgressBar {
	return ProgressBar{Done: done, Total: total, Unit: unit, Width: width}
}

// Label returns "done/total unit" with done capped at total.
func (p ProgressBar) Label() string {
	done := p.Done
	if p.Total > 0 && done > p.Total {
		done = p.Total
	}
	if done < 0 {
		done = 0
	}
	label := fmt.Sprintf("%d/%d", done, p.Total)
	if p.Unit != "" {
		label += " " + p.Unit
	}
	return label
}

// Fraction is Done/Total clamped to [0,1]; 0 when Total is not positive.
func (p ProgressBar) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Done) / float64(p.Total)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func (p ProgressBar) View() string {
	label := lipgloss.NewStyle().Foreground(theme.Text).Render(p.Label()) + "  "

	barWidth := max(p.Width-lipgloss.Width(label), 4)
	filled := int(float64(barWidth) * p.Fraction())
	fill := theme.Secondary
	if p.Total > 0 && filled == barWidth {
		fill = theme.Success
	}

	return label +
		lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", barWidth-filled))
}
