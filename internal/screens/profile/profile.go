// Package profile shows the learner's profile and hosts the change-password
// and profile-picture forms. The picture can also be saved to disk or
// removed.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Session is the part of the auth manager the profile screen drives.
type Session interface {
	User() *api.User
	ChangePassword(ctx context.Context, current, next, confirm string) error
	UploadProfilePicture(ctx context.Context, path string) error
	SaveProfilePicture(ctx context.Context, dir string) (string, error)
	RemoveProfilePicture(ctx context.Context) error
}

type mode int

const (
	modeSummary mode = iota
	modePassword
	modePicture
)

type doneMsg struct {
	id     uint64
	notice string
	err    error
}

// ProfileScreen is the profile summary with its two forms.
type ProfileScreen struct {
	id      uint64
	session Session
	saveDir string
	mode    mode
	form    components.Form
	busy    bool
	errMsg  string
	notice  string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)

// New creates a ProfileScreen. Saved pictures go to saveDir.
func New(session Session, saveDir string) *ProfileScreen {
	return &ProfileScreen{id: screen.NextID(), session: session, saveDir: saveDir}
}

func (s *ProfileScreen) Init() tea.Cmd {
	return nil
}

func (s *ProfileScreen) Title() string {
	switch s.mode {
	case modePassword:
		return "Change password"
	case modePicture:
		return "Profile picture"
	}
	return "Profile"
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.mode == modeSummary {
		hints := []layout.KeyHint{
			{Key: "P", Description: "Change password"},
			{Key: "U", Description: "Upload picture"},
		}
		if u := s.session.User(); u != nil && u.Profile.HasProfilePic {
			hints = append(hints,
				layout.KeyHint{Key: "S", Description: "Save picture"},
				layout.KeyHint{Key: "X", Description: "Remove picture"},
			)
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Save"},
		{Key: "Esc", Description: "Cancel"},
	}
}

func (s *ProfileScreen) setMode(m mode) tea.Cmd {
	s.mode = m
	s.errMsg = ""
	switch m {
	case modePassword:
		s.form = components.NewForm(
			components.Field{Key: "current", Input: components.NewTextInput("Current password", "", true, 128)},
			components.Field{Key: "password", Input: components.NewTextInput("New password", "mix cases, digits and symbols", true, 128)},
			components.Field{Key: "confirm", Input: components.NewTextInput("Confirm new password", "", true, 128)},
		)
	case modePicture:
		s.form = components.NewForm(
			components.Field{Key: "file", Input: components.NewTextInput("Image file", "/path/to/picture.png", false, 1024)},
		)
	default:
		s.form = components.Form{}
		return nil
	}
	s.notice = ""
	return s.form.Fields[0].Input.Focus()
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			if cmd := screen.SessionEnded(msg.err); cmd != nil {
				return s, cmd
			}
			switch {
			case s.form.ApplyError(msg.err):
				s.errMsg = "Please correct the highlighted fields."
			case errors.Is(msg.err, auth.ErrNoProfilePicture):
				s.errMsg = "You have no profile picture."
			default:
				s.errMsg = api.Message(msg.err)
			}
			return s, nil
		}
		s.setMode(modeSummary)
		s.notice = msg.notice
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		key := msg.String()
		if s.mode == modeSummary {
			switch key {
			case "esc":
				return s, func() tea.Msg { return router.PopScreenMsg{} }
			case "p":
				return s, s.setMode(modePassword)
			case "u":
				return s, s.setMode(modePicture)
			case "s":
				return s, s.savePicture()
			case "x":
				return s, s.removePicture()
			}
			return s, nil
		}
		switch key {
		case "esc":
			s.setMode(modeSummary)
			return s, nil
		case "enter":
			return s, s.submit()
		}
	}

	if s.busy || s.mode == modeSummary {
		return s, nil
	}
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	return s, cmd
}

func (s *ProfileScreen) submit() tea.Cmd {
	s.busy = true
	s.errMsg = ""
	s.form.ClearErrors()

	id, sess := s.id, s.session
	if s.mode == modePicture {
		path := s.form.Value("file")
		return func() tea.Msg {
			err := sess.UploadProfilePicture(context.Background(), path)
			return doneMsg{id: id, notice: "Profile picture updated.", err: err}
		}
	}
	current, next, confirm := s.form.Raw("current"), s.form.Raw("password"), s.form.Raw("confirm")
	return func() tea.Msg {
		err := sess.ChangePassword(context.Background(), current, next, confirm)
		return doneMsg{id: id, notice: "Password changed.", err: err}
	}
}

func (s *ProfileScreen) savePicture() tea.Cmd {
	s.busy, s.errMsg, s.notice = true, "", ""
	id, sess, dir := s.id, s.session, s.saveDir
	return func() tea.Msg {
		path, err := sess.SaveProfilePicture(context.Background(), dir)
		return doneMsg{id: id, notice: "Saved profile picture to " + path, err: err}
	}
}

func (s *ProfileScreen) removePicture() tea.Cmd {
	s.busy, s.errMsg, s.notice = true, "", ""
	id, sess := s.id, s.session
	return func() tea.Msg {
		err := sess.RemoveProfilePicture(context.Background())
		return doneMsg{id: id, notice: "Profile picture removed.", err: err}
	}
}

func (s *ProfileScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 56)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(s.Title()))
	b.WriteString("\n\n")

	if s.mode == modeSummary {
		b.WriteString(s.summary())
	} else {
		b.WriteString(s.form.View())
	}

	switch {
	case s.busy:
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Saving..."))
	case s.errMsg != "":
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(cw).Render(s.errMsg))
	case s.notice != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Width(cw).Render(s.notice))
	}

	card := theme.Card.Width(cw + 6).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func (s *ProfileScreen) summary() string {
	u := s.session.User()
	if u == nil {
		return theme.Hint.Render("Not signed in.")
	}

	label := lipgloss.NewStyle().Foreground(theme.TextDim).Width(16)
	row := func(k, v string) string {
		return label.Render(k) + theme.Body.Render(v)
	}

	picture := "not set"
	if u.Profile.HasProfilePic {
		picture = "uploaded"
	}
	lic := "none"
	if u.HasLicense() {
		lic = "active"
	}
	rank := "unranked"
	if u.Profile.Rank > 0 {
		rank = fmt.Sprintf("#%d", u.Profile.Rank)
	}

	rows := []string{
		row("Username", u.Username),
		row("Email", u.Email),
		row("Score", fmt.Sprintf("%d⭐", u.Profile.Score)),
		row("Rank", rank),
		row("Login streak", fmt.Sprintf("%d days", u.Profile.LoginStreakDays)),
		row("Courses done", fmt.Sprintf("%d", len(u.CompletedCourseScores))),
		row("License", lic),
		row("Picture", picture),
	}
	return strings.Join(rows, "\n")
}
