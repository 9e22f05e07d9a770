package achievements

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/leaderboard"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Source returns achievements grouped by category.
type Source interface {
	Achievements(ctx context.Context) (leaderboard.Achievements, error)
}

type achievementsLoadedMsg struct {
	id   uint64
	data leaderboard.Achievements
	err  error
}

// AchievementsScreen displays achievement progress one group at a time.
type AchievementsScreen struct {
	id           uint64
	source       Source
	data         leaderboard.Achievements
	selected     int // index into data.Groups
	scrollOffset int
	loaded       bool
	errMsg       string
}

var _ screen.Screen = (*AchievementsScreen)(nil)
var _ screen.KeyHintProvider = (*AchievementsScreen)(nil)

// New creates a new AchievementsScreen.
func New(source Source) *AchievementsScreen {
	return &AchievementsScreen{id: screen.NextID(), source: source}
}

func (s *AchievementsScreen) Init() tea.Cmd {
	id := s.id
	return func() tea.Msg {
		data, err := s.source.Achievements(context.Background())
		return achievementsLoadedMsg{id: id, data: data, err: err}
	}
}

func (s *AchievementsScreen) Title() string {
	return "Achievements"
}

func (s *AchievementsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Switch group"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AchievementsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case achievementsLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.loaded = true
		if msg.err != nil {
			if cmd := screen.SessionEnded(msg.err); cmd != nil {
				return s, cmd
			}
			s.errMsg = api.Message(msg.err)
			return s, nil
		}
		s.data = msg.data
		s.selected = 0
		s.scrollOffset = 0
		return s, nil

	case tea.KeyMsg:
		n := len(s.data.Groups)
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "tab", "right", "l":
			if n > 0 {
				s.selected = (s.selected + 1) % n
				s.scrollOffset = 0
			}
		case "shift+tab", "left", "h":
			if n > 0 {
				s.selected = (s.selected - 1 + n) % n
				s.scrollOffset = 0
			}
		case "up", "k":
			if s.scrollOffset > 0 {
				s.scrollOffset--
			}
		case "down", "j":
			if items := s.items(); s.scrollOffset < len(items)-1 {
				s.scrollOffset++
			}
		}
	}
	return s, nil
}

func (s *AchievementsScreen) items() []api.Achievement {
	if s.selected >= len(s.data.Groups) {
		return nil
	}
	return s.data.Groups[s.selected].Items
}

func (s *AchievementsScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading achievements...")
	}

	var b strings.Builder

	total := 0
	for _, g := range s.data.Groups {
		total += len(g.Items)
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Accent).
		Render(fmt.Sprintf("\n🔥 %d day login streak", s.data.LoginStreakDays)))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(width).Align(lipgloss.Center).Foreground(theme.Text).
		Render(fmt.Sprintf("%d of %d unlocked", s.data.Unlocked(), total)))
	b.WriteString("\n\n")

	if len(s.data.Groups) == 0 {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("No achievements yet"))
		return b.String()
	}

	var tabs []string
	for i, g := range s.data.Groups {
		label := fmt.Sprintf("%s (%d)", g.Title, len(g.Items))
		if i == s.selected {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(label))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "     ")))
	b.WriteString("\n\n")

	cw := min(layout.ContentWidth(width), 60)
	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	items := s.items()
	// Each achievement takes three lines.
	maxVisible := max((height-12)/3, 1)
	start := s.scrollOffset
	end := min(start+maxVisible, len(items))

	for i := start; i < end; i++ {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, renderItem(items[i], cw)))
		b.WriteString("\n")
	}

	if end < len(items) {
		b.WriteString(lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render(fmt.Sprintf("... %d more", len(items)-end)))
	}

	return b.String()
}

func renderItem(a api.Achievement, cw int) string {
	mark := "  "
	title := theme.Locked
	if a.Unlocked {
		mark = "🏆"
		title = theme.Correct
	}
	head := title.Render(mark + " " + a.Title)
	if a.Description != "" {
		head += "  " + theme.Hint.Render(layout.Truncate(a.Description, cw-lipgloss.Width(head)-2))
	}
	pct := theme.Hint.Render(fmt.Sprintf("%3.0f%%", leaderboard.Percent(a)*100))
	bar := components.NewProgressBar(a.Progress, a.Target, "", cw-lipgloss.Width(pct)-1).View() + " " + pct
	return lipgloss.NewStyle().Width(cw).Render(head + "\n" + bar + "\n")
}
