package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/screens/achievements"
	"github.com/abhisek/learnhub/internal/screens/activity"
	"github.com/abhisek/learnhub/internal/screens/certificates"
	"github.com/abhisek/learnhub/internal/screens/explore"
	"github.com/abhisek/learnhub/internal/screens/home"
	"github.com/abhisek/learnhub/internal/screens/login"
	"github.com/abhisek/learnhub/internal/screens/profile"
	"github.com/abhisek/learnhub/internal/screens/ranking"
	"github.com/abhisek/learnhub/internal/screens/welcome"
	"github.com/abhisek/learnhub/internal/ui/layout"
)

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	state  *State
	width  int
	height int
}

// newAppModel creates an AppModel that opens on the splash screen.
func newAppModel(state *State) AppModel {
	m := AppModel{state: state}
	m.router = router.New(welcome.New(state.Auth, m.homeScreen, m.loginScreen))
	return m
}

func (m AppModel) homeScreen() screen.Screen {
	s := m.state
	return home.New(s.Auth, []home.Route{
		{Label: "Explore courses", Open: func() screen.Screen { return explore.New(s.Explorer, s.Auth) }},
		{Label: "Ranking", Open: func() screen.Screen { return ranking.New(s.Board, s.Auth) }},
		{Label: "Achievements", Open: func() screen.Screen { return achievements.New(s.Board) }},
		{Label: "Certificates", Open: func() screen.Screen { return certificates.New(s.Gate, s.Auth, s.Config.ExportDir) }},
		{Label: "Profile", Open: func() screen.Screen { return profile.New(s.Auth, s.Config.ExportDir) }},
		{Label: "Activity", Open: func() screen.Screen { return activity.New(s.Events) }},
	})
}

func (m AppModel) loginScreen(notice string) screen.Screen {
	return login.New(m.state.Auth, m.homeScreen, notice)
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case screen.SessionEndedMsg:
		return m, m.router.Reset(m.loginScreen(msg.Notice))

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) headerStatus() layout.HeaderStatus {
	if !m.state.Auth.IsAuthenticated() {
		return layout.HeaderStatus{}
	}
	u := m.state.Auth.User()
	if u == nil {
		return layout.HeaderStatus{}
	}
	return layout.HeaderStatus{
		Username: u.Username,
		Score:    u.Profile.Score,
		Streak:   u.Profile.LoginStreakDays,
	}
}

func (m AppModel) footerHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = append(hints, p.KeyHints()...)
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.headerStatus(), m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program on state.
func Run(state *State) error {
	p := tea.NewProgram(newAppModel(state))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
