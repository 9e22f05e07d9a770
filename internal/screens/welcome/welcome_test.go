package welcome

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct {
	name   string
	notice string
}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.name }
func (s *stubScreen) Title() string                           { return s.name }

type stubResolver struct {
	authenticated bool
	err           error
	calls         int
}

func (r *stubResolver) Init(context.Context) error {
	r.calls++
	return r.err
}

func (r *stubResolver) IsAuthenticated() bool { return r.authenticated }

type counters struct {
	home  int
	login int
}

func newTestWelcome(r *stubResolver) (*WelcomeScreen, *counters) {
	c := &counters{}
	w := New(r,
		func() screen.Screen {
			c.home++
			return &stubScreen{name: "home"}
		},
		func(notice string) screen.Screen {
			c.login++
			return &stubScreen{name: "login", notice: notice}
		},
	)
	return w, c
}

func sendTicks(w *WelcomeScreen, n int) (screen.Screen, tea.Cmd) {
	var s screen.Screen = w
	var cmd tea.Cmd
	for i := 0; i < n; i++ {
		s, cmd = s.Update(tickMsg(time.Now()))
	}
	return s, cmd
}

func replaced(t *testing.T, cmd tea.Cmd) *stubScreen {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", cmd())
	}
	return msg.Screen.(*stubScreen)
}

func TestPhaseTransitions(t *testing.T) {
	w, _ := newTestWelcome(&stubResolver{})

	view := w.View(100, 30)
	if strings.Contains(view, "Learn it") {
		t.Error("tagline should not be visible at start")
	}
	if !strings.Contains(view, "Checking your session") {
		t.Error("expected session check status")
	}

	sendTicks(w, 3)
	if w.elapsed != 300*time.Millisecond {
		t.Errorf("expected elapsed 300ms, got %v", w.elapsed)
	}

	sendTicks(w, 6)
	view = w.View(100, 30)
	if !strings.Contains(view, "Learn it") {
		t.Error("tagline should be visible after phase 2")
	}
}

func TestWaitsForSessionBeforeTransition(t *testing.T) {
	w, c := newTestWelcome(&stubResolver{authenticated: true})

	_, cmd := sendTicks(w, 30)
	if c.home+c.login != 0 {
		t.Errorf("no screen should be built before the session resolves, got %+v", c)
	}
	if cmd != nil {
		// Ticks keep going while waiting.
		if _, ok := cmd().(tickMsg); !ok {
			t.Errorf("expected another tick, got %T", cmd())
		}
	}
	if w.elapsed != totalDur {
		t.Errorf("expected elapsed capped at %v, got %v", totalDur, w.elapsed)
	}
}

func TestResolvedSessionGoesHome(t *testing.T) {
	r := &stubResolver{authenticated: true}
	w, c := newTestWelcome(r)

	msg := w.resolve()()
	sendTicks(w, 5)
	_, cmd := w.Update(msg)
	if cmd != nil {
		t.Fatal("should wait for the animation to finish")
	}

	_, cmd = sendTicks(w, 10)
	got := replaced(t, cmd)
	if got.name != "home" {
		t.Errorf("expected home, got %s", got.name)
	}
	if c.home != 1 || c.login != 0 {
		t.Errorf("unexpected factory calls %+v", c)
	}
	if r.calls != 1 {
		t.Errorf("Init should run once, got %d", r.calls)
	}
}

func TestNoSessionGoesToLogin(t *testing.T) {
	w, _ := newTestWelcome(&stubResolver{})
	w.Update(w.resolve()())

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	got := replaced(t, cmd)
	if got.name != "login" || got.notice != "" {
		t.Errorf("expected plain login, got %+v", got)
	}
}

func TestNetworkErrorGoesToLoginWithNotice(t *testing.T) {
	r := &stubResolver{err: &api.NetworkError{Op: "me", Err: errors.New("connection refused")}}
	w, _ := newTestWelcome(r)
	w.Update(w.resolve()())

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'x'})
	got := replaced(t, cmd)
	if got.name != "login" {
		t.Fatalf("expected login, got %s", got.name)
	}
	if got.notice != "Could not reach the server. Please try again." {
		t.Errorf("unexpected notice %q", got.notice)
	}
}

func TestKeypressBeforeResolveTransitionsOnResolve(t *testing.T) {
	w, c := newTestWelcome(&stubResolver{authenticated: true})

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' '})
	if cmd != nil {
		t.Fatal("keypress before the session resolves should not transition")
	}

	_, cmd = w.Update(w.resolve()())
	if got := replaced(t, cmd); got.name != "home" {
		t.Errorf("expected home, got %s", got.name)
	}
	if c.home != 1 {
		t.Errorf("home factory should be called once, got %d", c.home)
	}
}

func TestFactoryCalledOnce(t *testing.T) {
	w, c := newTestWelcome(&stubResolver{authenticated: true})
	w.Update(w.resolve()())
	sendTicks(w, 20)

	_, cmd := w.Update(tea.KeyPressMsg{Code: 'b'})
	if cmd != nil {
		t.Error("keypress after the transition should not produce a command")
	}
	if c.home != 1 {
		t.Errorf("factory should be called exactly once, got %d", c.home)
	}
}

func TestTitleEmpty(t *testing.T) {
	w, _ := newTestWelcome(&stubResolver{})
	if w.Title() != "" {
		t.Errorf("expected empty title, got %q", w.Title())
	}
}
