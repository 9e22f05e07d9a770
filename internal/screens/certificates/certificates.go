// Package certificates shows the license gate and, once unlocked, the
// per-subject certificate list.
package certificates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/license"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

// Gate is the license gate. *license.Gate implements it.
type Gate interface {
	Evaluate(ctx context.Context, user *api.User) license.State
	RequestLicense(ctx context.Context) (license.State, error)
	Redeem(ctx context.Context, code string) (license.State, error)
	Eligibility(ctx context.Context) ([]api.SubjectEligibility, error)
	Certificate(ctx context.Context, entry api.SubjectEligibility) (*api.CertificateMetadata, error)
	Export(ctx context.Context, meta *api.CertificateMetadata, dir string) (string, error)
}

// Viewer returns the signed-in user.
type Viewer interface {
	User() *api.User
}

type gateMsg struct {
	id    uint64
	state license.State
	err   error
}

type eligibilityMsg struct {
	id      uint64
	entries []api.SubjectEligibility
	err     error
}

type exportedMsg struct {
	id        uint64
	path      string
	recipient string
	err       error
}

// CertificatesScreen is the license and certificate screen.
type CertificatesScreen struct {
	id        uint64
	gate      Gate
	viewer    Viewer
	exportDir string

	state   license.State
	entries []api.SubjectEligibility
	cursor  int
	code    components.TextInput

	busy   string
	errMsg string
	notice string
}

var _ screen.Screen = (*CertificatesScreen)(nil)
var _ screen.KeyHintProvider = (*CertificatesScreen)(nil)

// New creates a CertificatesScreen. Exports are written to exportDir.
func New(gate Gate, viewer Viewer, exportDir string) *CertificatesScreen {
	s := &CertificatesScreen{
		id:        screen.NextID(),
		gate:      gate,
		viewer:    viewer,
		exportDir: exportDir,
		code:      components.NewTextInput("License code", "XXXX-XXXX-XXXX", false, 64),
	}
	return s
}

func (s *CertificatesScreen) Init() tea.Cmd {
	return s.evaluate()
}

func (s *CertificatesScreen) evaluate() tea.Cmd {
	s.busy = "Checking your license..."
	s.errMsg = ""
	id := s.id
	return func() tea.Msg {
		return gateMsg{id: id, state: s.gate.Evaluate(context.Background(), s.viewer.User())}
	}
}

func (s *CertificatesScreen) loadEligibility() tea.Cmd {
	s.busy = "Loading certificates..."
	id := s.id
	return func() tea.Msg {
		entries, err := s.gate.Eligibility(context.Background())
		return eligibilityMsg{id: id, entries: entries, err: err}
	}
}

func (s *CertificatesScreen) Title() string {
	return "Certificates"
}

func (s *CertificatesScreen) KeyHints() []layout.KeyHint {
	switch s.state.Kind {
	case license.KindLocked:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Redeem code"},
			{Key: "Ctrl+R", Description: "Request license"},
			{Key: "Esc", Description: "Back"},
		}
	case license.KindUnlocked:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Export PDF"},
			{Key: "Esc", Description: "Back"},
		}
	case license.KindError:
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (s *CertificatesScreen) fail(err error) tea.Cmd {
	if cmd := screen.SessionEnded(err); cmd != nil {
		return cmd
	}
	if s.code.Model.Focused() {
		var ve *api.ValidationError
		if errors.As(err, &ve) && ve.Field("code") != "" {
			s.code.Err = ve.Field("code")
			return nil
		}
	}
	s.errMsg = api.Message(err)
	return nil
}

func (s *CertificatesScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case gateMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = ""
		if msg.err != nil {
			return s, s.fail(msg.err)
		}
		return s, s.enter(msg.state)

	case eligibilityMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = ""
		if msg.err != nil {
			return s, s.fail(msg.err)
		}
		s.entries = msg.entries
		s.cursor = 0
		return s, nil

	case exportedMsg:
		if msg.id != s.id {
			return s, nil
		}
		s.busy = ""
		if msg.err != nil {
			return s, s.fail(msg.err)
		}
		s.notice = "Saved certificate to " + msg.path
		if msg.recipient != "" {
			s.notice = fmt.Sprintf("Saved %s's certificate to %s", msg.recipient, msg.path)
		}
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}

	if s.state.Kind == license.KindLocked {
		var cmd tea.Cmd
		s.code, cmd = s.code.Update(msg)
		return s, cmd
	}
	return s, nil
}

// enter switches to a new gate state.
func (s *CertificatesScreen) enter(st license.State) tea.Cmd {
	s.state = st
	switch st.Kind {
	case license.KindUnlocked:
		s.code.Blur()
		return s.loadEligibility()
	case license.KindLocked:
		if st.Message != "" {
			s.notice = st.Message
		}
		return s.code.Focus()
	case license.KindError:
		s.errMsg = st.Message
	}
	return nil
}

func (s *CertificatesScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.busy != "" {
		return nil
	}
	key := msg.String()
	if key == "esc" {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}

	switch s.state.Kind {
	case license.KindError:
		if key == "r" {
			return s.evaluate()
		}
	case license.KindLocked:
		return s.handleLocked(msg)
	case license.KindUnlocked:
		return s.handleUnlocked(key)
	}
	return nil
}

func (s *CertificatesScreen) handleLocked(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+r":
		s.busy = "Requesting a license..."
		s.errMsg, s.notice = "", ""
		id := s.id
		return func() tea.Msg {
			st, err := s.gate.RequestLicense(context.Background())
			return gateMsg{id: id, state: st, err: err}
		}
	case "enter":
		code := strings.TrimSpace(s.code.Value())
		s.code.Err = ""
		s.errMsg, s.notice = "", ""
		s.busy = "Redeeming code..."
		id := s.id
		return func() tea.Msg {
			st, err := s.gate.Redeem(context.Background(), code)
			return gateMsg{id: id, state: st, err: err}
		}
	}
	var cmd tea.Cmd
	s.code, cmd = s.code.Update(msg)
	return cmd
}

func (s *CertificatesScreen) handleUnlocked(key string) tea.Cmd {
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.entries)-1 {
			s.cursor++
		}
	case "r":
		if s.errMsg != "" {
			s.errMsg = ""
			return s.loadEligibility()
		}
	case "enter":
		if s.cursor >= len(s.entries) {
			return nil
		}
		entry := s.entries[s.cursor]
		s.errMsg, s.notice = "", ""
		s.busy = "Exporting certificate..."
		id := s.id
		return func() tea.Msg {
			ctx := context.Background()
			meta, err := s.gate.Certificate(ctx, entry)
			if err != nil {
				return exportedMsg{id: id, err: err}
			}
			path, err := s.gate.Export(ctx, meta, s.exportDir)
			return exportedMsg{id: id, path: path, recipient: meta.Recipient(), err: err}
		}
	}
	return nil
}

func (s *CertificatesScreen) View(width, height int) string {
	cw := min(layout.ContentWidth(width), 70)

	var b strings.Builder
	b.WriteString("\n")
	switch s.state.Kind {
	case license.KindLocked:
		b.WriteString(s.viewLocked(cw))
	case license.KindUnlocked:
		b.WriteString(s.viewUnlocked(cw))
	default:
		b.WriteString(theme.Heading.Render("Certificates"))
	}

	switch {
	case s.busy != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(s.busy))
	case s.errMsg != "":
		b.WriteString("\n\n")
		b.WriteString(components.ErrorLine(s.errMsg, s.state.Kind != license.KindLocked, cw))
	case s.notice != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Width(cw).Render(s.notice))
	}

	return layout.Center(lipgloss.NewStyle().Width(cw).Render(b.String()), width)
}

func (s *CertificatesScreen) viewLocked(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("🔒 Certificates need a license"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Width(cw).Render("Request a license to receive a code by email, then enter the code below."))
	b.WriteString("\n\n")
	if s.state.PendingRequest {
		line := "A license request is pending."
		if s.state.PendingCode != "" {
			line += " Your code: " + s.state.PendingCode
		}
		b.WriteString(theme.Notice.Render(line))
		b.WriteString("\n\n")
	}
	b.WriteString(s.code.View())
	return b.String()
}

func (s *CertificatesScreen) viewUnlocked(cw int) string {
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Certificates"))
	b.WriteString("\n\n")
	if len(s.entries) == 0 {
		if s.busy == "" && s.errMsg == "" {
			b.WriteString(theme.Hint.Render("No subjects yet."))
		}
		return b.String()
	}
	for i, e := range s.entries {
		prefix := "  "
		style := theme.Unselected
		if i == s.cursor {
			prefix = "▸ "
			style = theme.Selected
		}
		status := theme.Hint.Render(fmt.Sprintf("%d/%d courses", e.CompletedCourses, e.TotalCourses))
		if e.Eligible {
			status = theme.Correct.Render("✓ ready")
		}
		b.WriteString(style.Render(prefix+layout.Truncate(e.SubjectName, cw-20)) + "  " + status)
		b.WriteString("\n")
	}
	if s.cursor < len(s.entries) {
		b.WriteString(courseList(s.entries[s.cursor], cw))
	}
	return b.String()
}

// courseList shows the finished courses of the selected subject.
func courseList(e api.SubjectEligibility, cw int) string {
	if len(e.Courses) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Completed in " + e.SubjectName))
	for _, c := range e.Courses {
		score := fmt.Sprintf("score %d", c.Score)
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("  ✓ ") + layout.Truncate(c.CourseTitle, cw-lipgloss.Width(score)-6) + "  " + theme.Hint.Render(score))
	}
	b.WriteString("\n")
	return b.String()
}
