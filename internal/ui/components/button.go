package components

import (
	"strings"

	"github.com/abhisek/learnhub/internal/ui/theme"
)

// ButtonRow renders a horizontal row of buttons with one highlighted.
func ButtonRow(labels []string, selected int) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		if i == selected {
			parts[i] = theme.ButtonActive.Render("▸ " + l)
		} else {
			parts[i] = theme.ButtonInactive.Render(l)
		}
	}
	return strings.Join(parts, "  ")
}
