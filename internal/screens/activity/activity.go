// Package activity lists recent API requests recorded in the local store.
package activity

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/store"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

const recentLimit = 100

// Source reads the request log.
type Source interface {
	RecentRequests(ctx context.Context, limit int) ([]store.APIRequestEvent, error)
}

type activityLoadedMsg struct {
	id     uint64
	events []store.APIRequestEvent
	err    error
}

// ActivityScreen displays recent requests, newest first.
type ActivityScreen struct {
	id       uint64
	source   Source
	events   []store.APIRequestEvent
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*ActivityScreen)(nil)
var _ screen.KeyHintProvider = (*ActivityScreen)(nil)

// New creates a new ActivityScreen.
func New(source Source) *ActivityScreen {
	return &ActivityScreen{
		id:       screen.NextID(),
		source:   source,
		expanded: make(map[int]bool),
	}
}

func (s *ActivityScreen) Init() tea.Cmd {
	id := s.id
	return func() tea.Msg {
		events, err := s.source.RecentRequests(context.Background(), recentLimit)
		return activityLoadedMsg{id: id, events: events, err: err}
	}
}

func (s *ActivityScreen) Title() string {
	return "Activity"
}

func (s *ActivityScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "R", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ActivityScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case activityLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.errMsg = ""
			s.events = msg.events
			s.selected = 0
			s.expanded = make(map[int]bool)
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "r":
			s.loaded = false
			return s, s.Init()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *ActivityScreen) View(width, height int) string {
	if s.errMsg != "" {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Loading activity...")
	}
	if len(s.events) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).Italic(true).
			Render("\n\n  No requests recorded yet.")
	}

	var b strings.Builder
	b.WriteString("\n")

	maxVisible := max(height-4, 3)
	start := 0
	if s.selected >= maxVisible {
		start = s.selected - maxVisible + 1
	}
	end := min(start+maxVisible, len(s.events))

	for i := start; i < end; i++ {
		e := s.events[i]
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}

		status := fmt.Sprintf("%d", e.Status)
		if e.Status == 0 {
			status = "---"
		}
		line := fmt.Sprintf("%s%s  %-6s %-32s %s  %5dms",
			prefix, e.Timestamp.Format("Jan 02 15:04:05"), e.Method,
			layout.Truncate(e.Path, 32), status, e.LatencyMs)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		if !e.Success {
			style = style.Foreground(theme.Error)
		}
		if i == s.selected {
			style = style.Bold(true)
			if e.Success {
				style = style.Foreground(theme.Primary)
			}
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			detail := "    request " + e.RequestID
			if e.ErrorMessage != "" {
				detail += "\n    " + e.ErrorMessage
			}
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
				lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render(detail)))
			b.WriteString("\n")
		}
	}

	return b.String()
}
