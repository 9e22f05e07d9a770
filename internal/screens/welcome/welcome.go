package welcome

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 300 * time.Millisecond
	phase2End    = 900 * time.Millisecond
	totalDur     = 1500 * time.Millisecond
)

const mascotArt = `  ╭───────────╮
  │  ┌─────┐  │
  │  │ ◉ ◉ │  │
  │  │  ▽  │  │
  │  ├─────┤  │
  │  │ </> │  │
  │  └─────┘  │
  ╰───────────╯`

// sparkle frames cycle around the mascot
var sparkleFrames = []string{"★", "✦"}

type tickMsg time.Time

type sessionResolvedMsg struct {
	authenticated bool
	err           error
}

// Resolver restores a stored session.
type Resolver interface {
	Init(ctx context.Context) error
	IsAuthenticated() bool
}

// WelcomeScreen shows a splash animation while the stored session is
// validated, then replaces itself with home or login.
type WelcomeScreen struct {
	session      Resolver
	home         func() screen.Screen
	login        func(notice string) screen.Screen
	elapsed      time.Duration
	tickCount    int
	resolved     *sessionResolvedMsg
	skip         bool
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen. home is used when a stored session is still
// valid, login otherwise.
func New(session Resolver, home func() screen.Screen, login func(notice string) screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{
		session: session,
		home:    home,
		login:   login,
	}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tea.Batch(tick(), w.resolve())
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) resolve() tea.Cmd {
	s := w.session
	return func() tea.Msg {
		err := s.Init(context.Background())
		return sessionResolvedMsg{authenticated: err == nil && s.IsAuthenticated(), err: err}
	}
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		if w.ready() {
			return w, w.transition()
		}
		if w.transitioned {
			return w, nil
		}
		return w, tick()

	case sessionResolvedMsg:
		w.resolved = &msg
		if w.ready() {
			return w, w.transition()
		}
		return w, nil

	case tea.KeyPressMsg:
		w.skip = true
		if w.ready() {
			return w, w.transition()
		}
		return w, nil
	}

	return w, nil
}

// ready reports whether the session is resolved and the animation has
// either finished or been skipped.
func (w *WelcomeScreen) ready() bool {
	return w.resolved != nil && (w.skip || w.elapsed >= totalDur)
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true

	var next screen.Screen
	switch {
	case w.resolved.authenticated:
		next = w.home()
	case w.resolved.err != nil:
		next = w.login(api.Message(w.resolved.err))
	default:
		next = w.login("")
	}
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	var sections []string

	mascotStyle := lipgloss.NewStyle().Foreground(theme.Primary)

	// Phase 1+: mascot
	rendered := mascotStyle.Render(mascotArt)

	// Phase 2+: sparkles around mascot
	if w.elapsed >= phase1End {
		frame := w.tickCount % len(sparkleFrames)
		sparkle := sparkleFrames[frame]

		accentStyle := lipgloss.NewStyle().Foreground(theme.Accent)
		secondaryStyle := lipgloss.NewStyle().Foreground(theme.Secondary)

		s1 := accentStyle.Render(sparkle)
		s2 := secondaryStyle.Render(sparkle)

		lines := strings.Split(rendered, "\n")
		if len(lines) > 1 {
			lines[0] = s1 + "  " + lines[0] + "  " + s2
		}
		if len(lines) > 3 {
			lines[3] = s2 + "  " + lines[3] + "  " + s1
		}
		if len(lines) > 6 {
			lines[6] = s1 + "  " + lines[6] + "  " + s2
		}
		rendered = strings.Join(lines, "\n")
	}

	sections = append(sections, rendered)

	// Phase 3+: banner + tagline
	if w.elapsed >= phase2End {
		sections = append(sections, "")
		sections = append(sections, RenderBanner(width))
		sections = append(sections, "")

		tagline := lipgloss.NewStyle().
			Foreground(theme.Text).
			Bold(true).
			Render("Learn it, prove it, earn it.")
		sections = append(sections, tagline)
	}

	sections = append(sections, "")
	status := "Checking your session..."
	if w.resolved != nil {
		status = "press any key to continue"
	}
	sections = append(sections, lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Italic(true).
		Render(status))

	content := strings.Join(sections, "\n")

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
