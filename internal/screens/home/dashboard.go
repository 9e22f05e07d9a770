package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// contentWidth returns the uniform inner width used for all sections.
// All boxes are rendered at this width so they visually align.
func contentWidth(frameWidth int) int {
	// Leave room for cabinet border (2) + inner padding (4)
	w := frameWidth - 6
	if w > 60 {
		w = 60
	}
	if w < 20 {
		w = 20
	}
	return w
}

func renderGreeting(user *api.User, cw int) string {
	name := "learner"
	if user != nil && user.Username != "" {
		name = user.Username
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Bold(true).
		Render(fmt.Sprintf("Welcome back, %s!", name))
}

// renderStatsBar renders score, rank, streak and completed courses in a
// bordered box matching content width.
func renderStatsBar(user *api.User, cw int, compact bool) string {
	var p api.Profile
	completed := 0
	if user != nil {
		p = user.Profile
		completed = len(user.CompletedCourseScores)
	}

	scoreStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	rankStyle := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	streakStyle := lipgloss.NewStyle().Foreground(theme.Warning).Bold(true)
	doneStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)

	rank := "-"
	if p.Rank > 0 {
		rank = fmt.Sprintf("#%d", p.Rank)
	}

	var stats string
	if compact {
		stats = strings.Join([]string{
			scoreStyle.Render(fmt.Sprintf("%d⭐", p.Score)),
			rankStyle.Render(rank),
			streakStyle.Render(fmt.Sprintf("🔥%d", p.LoginStreakDays)),
			doneStyle.Render(fmt.Sprintf("✓%d", completed)),
		}, " ")
	} else {
		stats = strings.Join([]string{
			scoreStyle.Render(fmt.Sprintf("%d⭐ SCORE", p.Score)),
			rankStyle.Render("RANK " + rank),
			streakStyle.Render(fmt.Sprintf("🔥 %d DAY STREAK", p.LoginStreakDays)),
			doneStyle.Render(fmt.Sprintf("✓ %d DONE", completed)),
		}, "  ")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw-2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderMenu renders each menu item as one line, the selected one
// highlighted.
func renderMenu(labels []string, selected int, cw int) string {
	var lines []string
	for i, label := range labels {
		var line string
		if i == selected {
			line = lipgloss.NewStyle().
				Foreground(theme.BgDark).
				Background(theme.Accent).
				Bold(true).
				Render(" ▸ " + label + " ")
		} else {
			line = lipgloss.NewStyle().
				Foreground(theme.Text).
				Render("   " + label + " ")
		}
		lines = append(lines, line)
	}
	block := strings.Join(lines, "\n")

	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(block)
}

// renderMascotBox renders the mascot centered in a box matching content width.
func renderMascotBox(variant MascotVariant, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(RenderMascot(variant))
}

// renderCabinetFrame wraps content in a double-border frame, centering
// vertically and horizontally within the given dimensions.
func renderCabinetFrame(content string, width, height int) string {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Primary).
		Width(width-2).
		Height(height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}
