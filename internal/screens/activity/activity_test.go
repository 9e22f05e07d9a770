package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/store"
)

type fakeSource struct {
	events []store.APIRequestEvent
	err    error
	limit  int
}

func (f *fakeSource) RecentRequests(_ context.Context, limit int) ([]store.APIRequestEvent, error) {
	f.limit = limit
	return f.events, f.err
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func event(id int, path string, status int, errMsg string) store.APIRequestEvent {
	return store.APIRequestEvent{
		ID:        int64(id),
		Timestamp: time.Date(2026, 3, 1, 10, 0, id, 0, time.UTC),
		APIRequestEventData: store.APIRequestEventData{
			RequestID:    "req-" + path,
			Method:       "GET",
			Path:         path,
			Status:       status,
			LatencyMs:    12,
			Success:      errMsg == "",
			ErrorMessage: errMsg,
		},
	}
}

func TestListsRequests(t *testing.T) {
	src := &fakeSource{events: []store.APIRequestEvent{
		event(2, "/subjects", 200, ""),
		event(1, "/auth/me", 401, "unauthorized"),
	}}
	s := New(src)
	s.Update(s.Init()())

	if src.limit != recentLimit {
		t.Errorf("expected limit %d, got %d", recentLimit, src.limit)
	}
	view := s.View(120, 30)
	if !strings.Contains(view, "/subjects") || !strings.Contains(view, "401") {
		t.Errorf("unexpected view:\n%s", view)
	}
}

func TestEnterExpandsDetails(t *testing.T) {
	s := New(&fakeSource{events: []store.APIRequestEvent{
		event(2, "/subjects", 200, ""),
		event(1, "/auth/me", 401, "unauthorized"),
	}})
	s.Update(s.Init()())

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))
	view := s.View(120, 30)
	if !strings.Contains(view, "req-/auth/me") || !strings.Contains(view, "unauthorized") {
		t.Errorf("expected expanded details:\n%s", view)
	}
}

func TestEmptyAndError(t *testing.T) {
	s := New(&fakeSource{})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "No requests recorded yet") {
		t.Error("expected empty message")
	}

	s = New(&fakeSource{err: errors.New("database is locked")})
	s.Update(s.Init()())
	if !strings.Contains(s.View(100, 30), "database is locked") {
		t.Error("expected error message")
	}
}
