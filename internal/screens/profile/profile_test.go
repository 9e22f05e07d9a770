package profile

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
)

type fakeSession struct {
	user      *api.User
	changeErr error
	uploadErr error
	changed   []string
	uploaded  string
	savedTo   string
}

func (f *fakeSession) User() *api.User { return f.user }

func (f *fakeSession) ChangePassword(_ context.Context, current, next, confirm string) error {
	f.changed = []string{current, next, confirm}
	return f.changeErr
}

func (f *fakeSession) UploadProfilePicture(_ context.Context, path string) error {
	f.uploaded = path
	return f.uploadErr
}

func (f *fakeSession) SaveProfilePicture(_ context.Context, dir string) (string, error) {
	if !f.user.Profile.HasProfilePic {
		return "", auth.ErrNoProfilePicture
	}
	f.savedTo = dir
	return filepath.Join(dir, "profile-ada.png"), nil
}

func (f *fakeSession) RemoveProfilePicture(context.Context) error {
	if !f.user.Profile.HasProfilePic {
		return auth.ErrNoProfilePicture
	}
	f.user.Profile.HasProfilePic = false
	return nil
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func typeText(s *ProfileScreen, text string) {
	for _, r := range text {
		s.Update(keyPress(r))
	}
}

func submit(s *ProfileScreen) tea.Cmd {
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		return nil
	}
	_, next := s.Update(cmd())
	return next
}

func adaUser() *api.User {
	return &api.User{
		Username: "ada",
		Email:    "ada@example.com",
		License:  "L-1",
		Profile:  api.Profile{Score: 12, Rank: 4, LoginStreakDays: 2},
	}
}

func TestSummary(t *testing.T) {
	s := New(&fakeSession{user: adaUser()}, t.TempDir())
	view := s.View(100, 40)
	for _, want := range []string{"ada@example.com", "12⭐", "#4", "2 days", "active"} {
		if !strings.Contains(view, want) {
			t.Errorf("summary missing %q", want)
		}
	}
}

func TestChangePassword(t *testing.T) {
	sess := &fakeSession{user: adaUser()}
	s := New(sess, t.TempDir())

	s.Update(keyPress('p'))
	typeText(s, "old-secret")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "N3w-secret!")
	s.Update(specialKey(tea.KeyTab))
	typeText(s, "N3w-secret!")
	submit(s)

	if len(sess.changed) != 3 || sess.changed[0] != "old-secret" || sess.changed[1] != "N3w-secret!" {
		t.Errorf("unexpected call %v", sess.changed)
	}
	if s.mode != modeSummary || s.notice != "Password changed." {
		t.Errorf("expected summary with notice, got mode %d notice %q", s.mode, s.notice)
	}
}

func TestChangePasswordFieldErrors(t *testing.T) {
	sess := &fakeSession{
		user:      adaUser(),
		changeErr: &api.ValidationError{Fields: map[string]string{"confirm": "must match the password"}},
	}
	s := New(sess, t.TempDir())
	s.Update(keyPress('p'))
	submit(s)

	if s.mode != modePassword {
		t.Fatal("form should stay open")
	}
	if got := s.form.Fields[2].Input.Err; got != "must match the password" {
		t.Errorf("unexpected inline error %q", got)
	}
}

func TestUploadPicture(t *testing.T) {
	sess := &fakeSession{user: adaUser()}
	s := New(sess, t.TempDir())
	s.Update(keyPress('u'))
	typeText(s, "/tmp/me.png")
	submit(s)

	if sess.uploaded != "/tmp/me.png" {
		t.Errorf("uploaded %q", sess.uploaded)
	}
	if s.notice != "Profile picture updated." {
		t.Errorf("unexpected notice %q", s.notice)
	}
}

func TestEscClosesFormThenPops(t *testing.T) {
	s := New(&fakeSession{user: adaUser()}, t.TempDir())
	s.Update(keyPress('p'))
	if _, cmd := s.Update(specialKey(tea.KeyEscape)); cmd != nil || s.mode != modeSummary {
		t.Fatal("esc should close the form first")
	}
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected a pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Errorf("expected PopScreenMsg, got %T", cmd())
	}
}

func TestExpiredSession(t *testing.T) {
	s := New(&fakeSession{user: adaUser(), uploadErr: &api.AuthError{Expired: true}}, t.TempDir())
	s.Update(keyPress('u'))
	cmd := submit(s)
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(screen.SessionEndedMsg); !ok {
		t.Errorf("expected SessionEndedMsg, got %T", cmd())
	}
}

// act presses key and feeds the resulting message back.
func act(s *ProfileScreen, key rune) {
	_, cmd := s.Update(keyPress(key))
	if cmd != nil {
		s.Update(cmd())
	}
}

func TestSaveAndRemovePicture(t *testing.T) {
	user := adaUser()
	user.Profile.HasProfilePic = true
	sess := &fakeSession{user: user}
	dir := t.TempDir()
	s := New(sess, dir)

	act(s, 's')
	if sess.savedTo != dir {
		t.Errorf("saved to %q, want %q", sess.savedTo, dir)
	}
	if want := "Saved profile picture to " + filepath.Join(dir, "profile-ada.png"); s.notice != want {
		t.Errorf("notice %q, want %q", s.notice, want)
	}

	act(s, 'x')
	if s.notice != "Profile picture removed." {
		t.Errorf("unexpected notice %q", s.notice)
	}
	if !strings.Contains(s.View(100, 40), "not set") {
		t.Error("summary should show the picture as not set")
	}
}

func TestPictureActionsWithoutPicture(t *testing.T) {
	s := New(&fakeSession{user: adaUser()}, t.TempDir())
	act(s, 'x')
	if s.errMsg != "You have no profile picture." {
		t.Errorf("unexpected error %q", s.errMsg)
	}
	for _, h := range s.KeyHints() {
		if h.Key == "X" {
			t.Error("remove hint shown without a picture")
		}
	}
}
