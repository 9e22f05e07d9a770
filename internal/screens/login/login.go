// Package login implements the login, registration and password reset
// screen. A reset is requested by email and completed with the token from
// the emailed link.
package login

import (
	"context"
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

// Authenticator is the part of the session manager this screen drives.
type Authenticator interface {
	Login(ctx context.Context, username, password string, rememberMe bool) (auth.Session, error)
	Register(ctx context.Context, in auth.RegisterInput) (*api.User, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ConfirmPasswordReset(ctx context.Context, in auth.ResetInput) (string, error)
	CheckAvailability(ctx context.Context, username, email string) (*api.Availability, error)
}

type mode int

const (
	modeLogin mode = iota
	modeRegister
	modeForgot
	modeReset
)

type authDoneMsg struct {
	id  uint64
	err error
}

type resetDoneMsg struct {
	id      uint64
	message string
	err     error
}

type availabilityMsg struct {
	id       uint64
	username string
	email    string
	result   *api.Availability
	err      error
}

// LoginScreen collects credentials and establishes a session.
type LoginScreen struct {
	id       uint64
	auth     Authenticator
	next     func() screen.Screen
	mode     mode
	form     components.Form
	remember bool
	busy     bool
	errMsg   string
	notice   string
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown after a
// successful login or registration; notice is shown above the form.
func New(a Authenticator, next func() screen.Screen, notice string) *LoginScreen {
	s := &LoginScreen{
		id:       screen.NextID(),
		auth:     a,
		next:     next,
		remember: true,
		notice:   notice,
	}
	s.setMode(modeLogin)
	return s
}

func (s *LoginScreen) setMode(m mode) {
	email := s.form.Value("email")
	s.mode = m
	s.errMsg = ""
	switch m {
	case modeLogin:
		s.form = components.NewForm(
			components.Field{Key: "username", Input: components.NewTextInput("Username", "your username", false, 32)},
			components.Field{Key: "password", Input: components.NewTextInput("Password", "", true, 128)},
		)
	case modeRegister:
		s.form = components.NewForm(
			components.Field{Key: "username", Input: components.NewTextInput("Username", "3-32 letters or digits", false, 32)},
			components.Field{Key: "email", Input: components.NewTextInput("Email", "you@example.com", false, 254)},
			components.Field{Key: "password", Input: components.NewTextInput("Password", "mix cases, digits and symbols", true, 128)},
			components.Field{Key: "confirm", Input: components.NewTextInput("Confirm password", "", true, 128)},
			components.Field{Key: "license", Input: components.NewTextInput("License code (optional)", "", false, 64)},
		)
	case modeForgot:
		s.form = components.NewForm(
			components.Field{Key: "email", Input: components.NewTextInput("Email", "you@example.com", false, 254)},
		)
	case modeReset:
		s.form = components.NewForm(
			components.Field{Key: "email", Input: components.NewTextInput("Email", "you@example.com", false, 254)},
			components.Field{Key: "token", Input: components.NewTextInput("Reset token", "from the link we emailed you", false, 256)},
			components.Field{Key: "password", Input: components.NewTextInput("New password", "mix cases, digits and symbols", true, 128)},
			components.Field{Key: "confirm", Input: components.NewTextInput("Confirm password", "", true, 128)},
		)
		if email != "" {
			s.form.Fields[0].Input.SetValue(email)
		}
	}
}

func (s *LoginScreen) remembers() bool {
	return s.mode == modeLogin || s.mode == modeRegister
}

func (s *LoginScreen) Init() tea.Cmd {
	return nil
}

func (s *LoginScreen) Title() string {
	switch s.mode {
	case modeRegister:
		return "Create account"
	case modeForgot:
		return "Reset password"
	case modeReset:
		return "Choose a new password"
	}
	return "Log in"
}

func (s *LoginScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
	}
	switch s.mode {
	case modeLogin:
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+T", Description: "Remember me"},
			layout.KeyHint{Key: "Ctrl+R", Description: "Register"},
			layout.KeyHint{Key: "Ctrl+F", Description: "Forgot password"},
		)
	case modeRegister:
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+T", Description: "Remember me"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	case modeForgot:
		hints = append(hints,
			layout.KeyHint{Key: "Ctrl+E", Description: "I have a reset token"},
			layout.KeyHint{Key: "Esc", Description: "Back"},
		)
	case modeReset:
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return hints
}

func (s *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			s.showError(msg.err)
			return s, nil
		}
		next := s.next()
		return s, func() tea.Msg { return router.ResetScreenMsg{Screen: next} }

	case resetDoneMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = false
		if msg.err != nil {
			s.showError(msg.err)
			return s, nil
		}
		s.setMode(modeLogin)
		s.notice = msg.message
		return s, nil

	case availabilityMsg:
		if msg.id != s.id || s.mode != modeRegister || msg.err != nil {
			return s, nil
		}
		if msg.username != s.form.Value("username") || msg.email != s.form.Value("email") {
			return s, nil
		}
		if msg.username != "" && !msg.result.UsernameAvailable {
			s.form.SetFieldError("username", "is already taken")
		}
		if msg.email != "" && !msg.result.EmailAvailable {
			s.form.SetFieldError("email", "is already registered")
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.submit()
		case "esc":
			if s.mode != modeLogin && !s.busy {
				s.setMode(modeLogin)
			}
			return s, nil
		case "ctrl+t":
			if s.remembers() {
				s.remember = !s.remember
			}
			return s, nil
		case "ctrl+r":
			if s.mode == modeLogin && !s.busy {
				s.setMode(modeRegister)
				s.notice = ""
			}
			return s, nil
		case "ctrl+f":
			if s.mode == modeLogin && !s.busy {
				s.setMode(modeForgot)
				s.notice = ""
			}
			return s, nil
		case "ctrl+e":
			if s.mode == modeForgot && !s.busy {
				s.setMode(modeReset)
				s.notice = ""
			}
			return s, nil
		}
	}

	if s.busy {
		return s, nil
	}
	before := s.form.FocusedKey()
	var cmd tea.Cmd
	s.form, cmd = s.form.Update(msg)
	if s.mode == modeRegister && before != s.form.FocusedKey() && (before == "username" || before == "email") {
		return s, tea.Batch(cmd, s.checkAvailability())
	}
	return s, cmd
}

func (s *LoginScreen) showError(err error) {
	if s.form.ApplyError(err) {
		s.errMsg = "Please correct the highlighted fields."
		return
	}
	s.errMsg = api.Message(err)
}

func (s *LoginScreen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	s.busy = true
	s.errMsg = ""
	s.form.ClearErrors()

	id, a, remember := s.id, s.auth, s.remember
	switch s.mode {
	case modeRegister:
		in := auth.RegisterInput{
			Username:   s.form.Value("username"),
			Email:      s.form.Value("email"),
			Password:   s.form.Raw("password"),
			Confirm:    s.form.Raw("confirm"),
			License:    s.form.Value("license"),
			RememberMe: remember,
		}
		return func() tea.Msg {
			_, err := a.Register(context.Background(), in)
			return authDoneMsg{id: id, err: err}
		}
	case modeForgot:
		email := s.form.Value("email")
		return func() tea.Msg {
			message, err := a.RequestPasswordReset(context.Background(), email)
			return resetDoneMsg{id: id, message: message, err: err}
		}
	case modeReset:
		in := auth.ResetInput{
			Token:    s.form.Value("token"),
			Email:    s.form.Value("email"),
			Password: s.form.Raw("password"),
			Confirm:  s.form.Raw("confirm"),
		}
		return func() tea.Msg {
			message, err := a.ConfirmPasswordReset(context.Background(), in)
			return resetDoneMsg{id: id, message: message, err: err}
		}
	}
	username, password := s.form.Value("username"), s.form.Raw("password")
	return func() tea.Msg {
		_, err := a.Login(context.Background(), username, password, remember)
		return authDoneMsg{id: id, err: err}
	}
}

func (s *LoginScreen) checkAvailability() tea.Cmd {
	username, email := s.form.Value("username"), s.form.Value("email")
	if username == "" && email == "" {
		return nil
	}
	id, a := s.id, s.auth
	return func() tea.Msg {
		res, err := a.CheckAvailability(context.Background(), username, email)
		return availabilityMsg{id: id, username: username, email: email, result: res, err: err}
	}
}

func (s *LoginScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 56)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(s.Title()))
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(theme.Notice.Width(cw).Render(s.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(s.form.View())

	if s.mode == modeRegister || s.mode == modeReset {
		if line := strengthLine(s.form.Raw("password")); line != "" {
			b.WriteString("\n\n")
			b.WriteString(line)
		}
	}

	if s.remembers() {
		box := "[ ]"
		if s.remember {
			box = "[x]"
		}
		b.WriteString("\n\n")
		b.WriteString(theme.Body.Render(box + " Remember me"))
	}

	switch {
	case s.busy:
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render("Working..."))
	case s.errMsg != "":
		b.WriteString("\n\n")
		b.WriteString(theme.ErrorText.Width(cw).Render(s.errMsg))
	}

	card := theme.Card.Width(cw + 6).Render(b.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}

func strengthLine(pw string) string {
	st := auth.PasswordStrength(pw)
	style := theme.ErrorText
	switch st {
	case auth.StrengthNone:
		return ""
	case auth.StrengthMedium:
		style = theme.Notice
	case auth.StrengthStrong:
		style = theme.Correct
	}
	return style.Render("Password strength: " + st.String())
}
