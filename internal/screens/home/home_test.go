package home

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
)

type stubScreen struct{ name string }

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.name }
func (s *stubScreen) Title() string                           { return s.name }

type fakeSession struct {
	user       *api.User
	refreshed  *api.User
	refreshErr error
	loggedOut  int
}

func (f *fakeSession) User() *api.User { return f.user }

func (f *fakeSession) RefreshUser(context.Context) (*api.User, error) {
	return f.refreshed, f.refreshErr
}

func (f *fakeSession) Logout(context.Context) { f.loggedOut++ }

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newTestHome(s *fakeSession) *HomeScreen {
	return New(s, []Route{
		{Label: "Explore", Open: func() screen.Screen { return &stubScreen{name: "explore"} }},
		{Label: "Ranking", Open: func() screen.Screen { return &stubScreen{name: "ranking"} }},
	})
}

func TestMenuPushesRoute(t *testing.T) {
	h := newTestHome(&fakeSession{user: &api.User{Username: "ada"}})

	var scr screen.Screen = h
	scr, _ = scr.Update(specialKey(tea.KeyDown))
	_, cmd := scr.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if push.Screen.Title() != "ranking" {
		t.Errorf("expected ranking, got %s", push.Screen.Title())
	}
}

func TestLogoutEndsSession(t *testing.T) {
	s := &fakeSession{user: &api.User{Username: "ada"}}
	h := newTestHome(s)

	// Explore, Ranking, Log out, Quit
	h.Update(specialKey(tea.KeyDown))
	h.Update(specialKey(tea.KeyDown))
	_, cmd := h.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(screen.SessionEndedMsg)
	if !ok {
		t.Fatalf("expected SessionEndedMsg, got %T", cmd())
	}
	if msg.Notice != LoggedOutNotice {
		t.Errorf("unexpected notice %q", msg.Notice)
	}
	if s.loggedOut != 1 {
		t.Errorf("Logout should be called once, got %d", s.loggedOut)
	}

	if _, again := h.Update(specialKey(tea.KeyEnter)); again != nil {
		t.Error("a second logout should be ignored")
	}
}

func TestResumeRefreshesUser(t *testing.T) {
	s := &fakeSession{
		user:      &api.User{Username: "ada", Profile: api.Profile{Score: 10}},
		refreshed: &api.User{Username: "ada", Profile: api.Profile{Score: 42, Rank: 3}},
	}
	h := newTestHome(s)

	h.Update(h.Resume()())
	view := h.View(100, 40)
	if !strings.Contains(view, "42⭐") {
		t.Errorf("expected refreshed score in view:\n%s", view)
	}
	if !strings.Contains(view, "#3") {
		t.Error("expected rank in view")
	}
}

func TestResumeAfterExpiryEndsSession(t *testing.T) {
	h := newTestHome(&fakeSession{user: &api.User{Username: "ada"}})

	_, cmd := h.Update(h.Resume()())
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(screen.SessionEndedMsg)
	if !ok || msg.Notice != screen.ExpiredNotice {
		t.Errorf("expected expiry notice, got %#v", cmd())
	}
}

func TestResumeNetworkErrorShown(t *testing.T) {
	h := newTestHome(&fakeSession{
		user:       &api.User{Username: "ada"},
		refreshErr: &api.NetworkError{Op: "me", Err: errors.New("refused")},
	})

	h.Update(h.Resume()())
	if h.mascot() != MascotAlert {
		t.Error("expected the alert mascot")
	}
	if !strings.Contains(h.View(120, 40), "Could not reach the server") {
		t.Error("expected network error in view")
	}
}

func TestStaleRefreshIgnored(t *testing.T) {
	h := newTestHome(&fakeSession{user: &api.User{Username: "ada"}})
	_, cmd := h.Update(userRefreshedMsg{id: h.id + 1})
	if cmd != nil {
		t.Error("refresh for another instance should be ignored")
	}
}

func TestCelebratingMascotOnStreak(t *testing.T) {
	h := newTestHome(&fakeSession{user: &api.User{Username: "ada", Profile: api.Profile{LoginStreakDays: 5}}})
	if h.mascot() != MascotCelebrating {
		t.Error("a streak of 3+ days should celebrate")
	}
}
