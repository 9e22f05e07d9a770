package screen

import (
	"sync/atomic"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/ui/layout"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyHintProvider is an optional interface that screens can implement
// to provide custom footer key hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Resumer is implemented by screens that refresh when they become the
// active screen again after the one above them is popped.
type Resumer interface {
	Resume() tea.Cmd
}

var lastID atomic.Uint64

// NextID returns a process-unique screen instance id. Screens stamp it on
// the messages their commands produce and drop messages carrying another id.
func NextID() uint64 {
	return lastID.Add(1)
}

// SessionEndedMsg asks the shell to drop every screen and return to login.
type SessionEndedMsg struct {
	Notice string
}

// ExpiredNotice is shown on the login screen after the backend rejected the
// session token.
const ExpiredNotice = "Your session has expired. Please log in again."

// SessionEnded returns a command producing SessionEndedMsg when err is an
// authentication failure, and nil otherwise.
func SessionEnded(err error) tea.Cmd {
	if !api.IsUnauthorized(err) {
		return nil
	}
	return func() tea.Msg { return SessionEndedMsg{Notice: ExpiredNotice} }
}
