// Package ranking shows the leaderboard.
package ranking

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

// Source returns the leaderboard in display order.
type Source interface {
	Ranking(ctx context.Context) ([]api.RankEntry, error)
}

// Viewer identifies whose row is highlighted.
type Viewer interface {
	User() *api.User
}

type rankingLoadedMsg struct {
	id      uint64
	entries []api.RankEntry
	err     error
}

// RankingScreen displays the leaderboard table.
type RankingScreen struct {
	id      uint64
	source  Source
	viewer  Viewer
	entries []api.RankEntry
	offset  int
	loading bool
	errMsg  string
}

var _ screen.Screen = (*RankingScreen)(nil)
var _ screen.KeyHintProvider = (*RankingScreen)(nil)

// New creates a RankingScreen.
func New(source Source, viewer Viewer) *RankingScreen {
	return &RankingScreen{id: screen.NextID(), source: source, viewer: viewer}
}

func (s *RankingScreen) Init() tea.Cmd {
	return s.load()
}

func (s *RankingScreen) load() tea.Cmd {
	s.loading = true
	s.errMsg = ""
	id := s.id
	return func() tea.Msg {
		entries, err := s.source.Ranking(context.Background())
		return rankingLoadedMsg{id: id, entries: entries, err: err}
	}
}

func (s *RankingScreen) Title() string {
	return "Ranking"
}

func (s *RankingScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "R", Description: "Refresh"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *RankingScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case rankingLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.loading = false
		if msg.err != nil {
			if cmd := screen.SessionEnded(msg.err); cmd != nil {
				return s, cmd
			}
			s.errMsg = api.Message(msg.err)
			return s, nil
		}
		s.entries = msg.entries
		s.offset = 0
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			if s.loading {
				return s, nil
			}
			return s, s.load()
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.entries)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *RankingScreen) own() int {
	if s.viewer == nil {
		return -1
	}
	u := s.viewer.User()
	if u == nil {
		return -1
	}
	return leaderboard.Highlight(s.entries, u.Username)
}

func (s *RankingScreen) View(width, height int) string {
	if s.loading && len(s.entries) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading ranking...")
	}

	cw := min(layout.ContentWidth(width), 60)
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Heading.Render("Leaderboard"))
	b.WriteString("\n\n")

	if s.errMsg != "" {
		b.WriteString(components.ErrorLine(s.errMsg, true, cw))
		b.WriteString("\n\n")
	}

	if len(s.entries) == 0 {
		if s.errMsg == "" {
			b.WriteString(theme.Hint.Render("Nobody has scored yet."))
		}
		return layout.Center(lipgloss.NewStyle().Width(cw).Render(b.String()), width)
	}

	nameWidth := cw - 20
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%-6s %-*s %10s", "RANK", nameWidth, "LEARNER", "SCORE")))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n")

	maxVisible := max(height-10, 3)
	end := min(s.offset+maxVisible, len(s.entries))
	own := s.own()
	for i := s.offset; i < end; i++ {
		e := s.entries[i]
		line := fmt.Sprintf("#%-5d %-*s %9d⭐", e.Rank, nameWidth, layout.Truncate(e.Username, nameWidth), e.Score)
		style := theme.Unselected
		if i == own {
			style = theme.Own
			line = strings.TrimRight(line, " ") + "  ◂ you"
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	if end < len(s.entries) {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("... %d more", len(s.entries)-end)))
		b.WriteString("\n")
	}
	if own < 0 && s.viewer != nil {
		if u := s.viewer.User(); u != nil && u.Profile.Rank > 0 {
			b.WriteString("\n")
			b.WriteString(theme.Own.Render(fmt.Sprintf("Your rank: #%d with %d⭐", u.Profile.Rank, u.Profile.Score)))
		}
	}

	return layout.Center(lipgloss.NewStyle().Width(cw).Render(b.String()), width)
}
