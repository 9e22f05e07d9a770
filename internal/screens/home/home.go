package home

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// LoggedOutNotice is shown on the login screen after an explicit logout.
const LoggedOutNotice = "You have been logged out."

// Session is the part of the session manager the home screen uses.
type Session interface {
	User() *api.User
	RefreshUser(ctx context.Context) (*api.User, error)
	Logout(ctx context.Context)
}

// Route is one destination in the home menu.
type Route struct {
	Label string
	Open  func() screen.Screen
}

type userRefreshedMsg struct {
	id   uint64
	user *api.User
	err  error
}

// HomeScreen is the main menu shown after login.
type HomeScreen struct {
	id       uint64
	session  Session
	menu     components.Menu
	labels   []string
	user     *api.User
	errMsg   string
	loggedIn bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a HomeScreen with routes followed by "Log out" and "Quit".
func New(session Session, routes []Route) *HomeScreen {
	h := &HomeScreen{
		id:       screen.NextID(),
		session:  session,
		user:     session.User(),
		loggedIn: true,
	}

	var items []components.MenuItem
	for _, r := range routes {
		open := r.Open
		items = append(items, components.MenuItem{Label: r.Label, Action: func() tea.Cmd {
			return router.Push(open())
		}})
		h.labels = append(h.labels, r.Label)
	}
	items = append(items,
		components.MenuItem{Label: "Log out", Action: h.logout},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	h.labels = append(h.labels, "Log out", "Quit")
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) logout() tea.Cmd {
	if !h.loggedIn {
		return nil
	}
	h.loggedIn = false
	s := h.session
	return func() tea.Msg {
		s.Logout(context.Background())
		return screen.SessionEndedMsg{Notice: LoggedOutNotice}
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume refetches the user so score and streak reflect finished lessons.
func (h *HomeScreen) Resume() tea.Cmd {
	id, s := h.id, h.session
	return func() tea.Msg {
		user, err := s.RefreshUser(context.Background())
		return userRefreshedMsg{id: id, user: user, err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case userRefreshedMsg:
		if msg.id != h.id {
			return h, nil
		}
		if msg.err != nil {
			h.errMsg = api.Message(msg.err)
			return h, nil
		}
		if msg.user == nil {
			// RefreshUser returns nil after a 401 ended the session.
			return h, func() tea.Msg { return screen.SessionEndedMsg{Notice: screen.ExpiredNotice} }
		}
		h.errMsg = ""
		h.user = msg.user
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) mascot() MascotVariant {
	switch {
	case h.errMsg != "":
		return MascotAlert
	case h.user != nil && h.user.Profile.LoginStreakDays >= 3:
		return MascotCelebrating
	}
	return MascotIdle
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; estimate full terminal height
	// by adding back header (3) + footer (3) + frame gaps
	termHeight := height + 8
	compact := termHeight < layout.CompactHeightThreshold || layout.IsCompactWidth(width)

	cw := contentWidth(width)

	var sections []string
	sections = append(sections, renderGreeting(h.user, cw))
	if !compact {
		sections = append(sections, renderMascotBox(h.mascot(), cw))
	}
	sections = append(sections, renderStatsBar(h.user, cw, compact))
	if h.errMsg != "" {
		sections = append(sections, theme.ErrorText.Width(cw).Render(h.errMsg))
	}
	sections = append(sections, renderMenu(h.labels, h.menu.Selected, cw))

	content := strings.Join(sections, "\n\n")
	return renderCabinetFrame(content, width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
