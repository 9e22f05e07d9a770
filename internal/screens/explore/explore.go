// Package explore drives the subject → course → question flow on top of
// quiz.Explorer.
package explore

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/router"
	"github.com/abhisek/learnhub/internal/screen"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
)

// Session provides the learner's completed-course scores and is refreshed
// after a submission.
type Session interface {
	RefreshUser(ctx context.Context) (*api.User, error)
}

var (
	promptLabels = []string{"Load saved answers", "Start new"}
	resultLabels = []string{"Start new lesson", "Back to courses"}
)

// ExploreScreen is the quiz navigation screen.
type ExploreScreen struct {
	id      uint64
	ex      *quiz.Explorer
	session Session

	st     quiz.State
	cursor int
	choice components.MultiChoice
	// choiceFor is the question the choice component was built for.
	choiceFor int64

	busy       string
	errMsg     string
	notice     string
	retry      func() tea.Cmd
	retryLabel string

	savedPrompt bool
	promptSel   int
	resultSel   int
}

var _ screen.Screen = (*ExploreScreen)(nil)
var _ screen.KeyHintProvider = (*ExploreScreen)(nil)

// New creates an ExploreScreen starting at the subject list.
func New(ex *quiz.Explorer, session Session) *ExploreScreen {
	s := &ExploreScreen{
		id:      screen.NextID(),
		ex:      ex,
		session: session,
	}
	ex.BackToSubjects()
	s.st = ex.State()
	return s
}

func (s *ExploreScreen) Init() tea.Cmd {
	return s.start("Loading subjects...", func() tea.Cmd { return loadSubjectsCmd(s.id, s.ex) })
}

// start marks the screen busy and remembers how to retry the request.
func (s *ExploreScreen) start(label string, fn func() tea.Cmd) tea.Cmd {
	s.busy = label
	s.errMsg = ""
	s.retry = fn
	s.retryLabel = label
	return fn()
}

func (s *ExploreScreen) Title() string {
	switch s.st.Phase {
	case quiz.PhaseChoosingCourse:
		if s.st.Subject != nil {
			return s.st.Subject.Name
		}
	case quiz.PhaseViewingContent, quiz.PhaseAnswering, quiz.PhaseResult:
		if s.st.Course != nil {
			return s.st.Course.Title
		}
	}
	return "Explore"
}

func (s *ExploreScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" && s.retry != nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	if s.savedPrompt {
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
		}
	}
	switch s.st.Phase {
	case quiz.PhaseViewingContent:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start questions"},
			{Key: "Esc", Description: "Courses"},
		}
	case quiz.PhaseAnswering:
		hints := []layout.KeyHint{
			{Key: "↑↓", Description: "Option"},
			{Key: "Enter", Description: "Select"},
			{Key: "V", Description: "Verify"},
			{Key: "N/P", Description: "Next/Prev"},
		}
		if s.st.CanSubmit() {
			hints = append(hints, layout.KeyHint{Key: "S", Description: "Submit"})
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Courses"})
	case quiz.PhaseResult:
		return []layout.KeyHint{
			{Key: "←→", Description: "Choose"},
			{Key: "Enter", Description: "Confirm"},
			{Key: "Esc", Description: "Courses"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ExploreScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case subjectsLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		return s, s.finish(msg.err)

	case coursesLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		return s, s.finish(msg.err)

	case courseOpenedMsg:
		if msg.id != s.id {
			return s, nil
		}
		if cmd := s.finish(msg.err); msg.err != nil {
			return s, cmd
		}
		s.savedPrompt = msg.hasSaved
		s.promptSel = 0
		return s, nil

	case verifiedMsg:
		if msg.id != s.id {
			return s, nil
		}
		if cmd := s.finish(msg.err); msg.err != nil {
			return s, cmd
		}
		if msg.v.Correct {
			s.notice = "Correct!"
		} else {
			s.notice = "Not quite. The answer is locked in."
		}
		return s, nil

	case submittedMsg:
		if msg.id != s.id {
			return s, nil
		}
		cmd := s.finish(msg.err)
		s.resultSel = 0
		return s, cmd

	case savedLoadedMsg:
		if msg.id != s.id {
			return s, nil
		}
		if cmd := s.finish(msg.err); msg.err != nil {
			return s, cmd
		}
		s.savedPrompt = false
		s.notice = fmt.Sprintf("Restored %d saved answer(s).", msg.applied)
		return s, nil

	case restartedMsg:
		if msg.id != s.id {
			return s, nil
		}
		if cmd := s.finish(msg.err); msg.err != nil {
			return s, cmd
		}
		s.savedPrompt = false
		s.resultSel = 0
		return s, nil

	case tea.KeyMsg:
		return s, s.handleKey(msg)
	}
	return s, nil
}

// finish clears the busy flag and syncs the view with the explorer. A 401
// ends the session; any other error is shown with a retry key. A response
// the explorer rejected as stale changes nothing.
func (s *ExploreScreen) finish(err error) tea.Cmd {
	s.busy = ""
	s.sync()
	if err == nil || errors.Is(err, quiz.ErrStale) {
		s.retry = nil
		return nil
	}
	if cmd := screen.SessionEnded(err); cmd != nil {
		return cmd
	}
	var netErr *api.NetworkError
	if !errors.As(err, &netErr) {
		// Only transport failures are worth repeating as-is.
		s.retry = nil
	}
	s.errMsg = message(err)
	return nil
}

// sync copies the explorer state and rebuilds the answer component when the
// active question changed.
func (s *ExploreScreen) sync() {
	s.st = s.ex.State()
	q, ok := s.st.Question()
	if !ok {
		s.choiceFor = 0
		return
	}

	labels := make([]string, len(q.Options))
	chosen := -1
	sel, hasSel := s.st.Selection(q.ID)
	for i, o := range q.Options {
		labels[i] = o.Text
		if hasSel && o.ID == sel {
			chosen = i
		}
	}

	cursor := s.choice.Cursor
	if s.choiceFor != q.ID {
		cursor = max(chosen, 0)
	}
	s.choice = components.NewMultiChoice(q.Description, labels)
	s.choice.Cursor = cursor
	s.choice.Chosen = chosen
	s.choiceFor = q.ID
	if v, done := s.st.Verification(q.ID); done {
		s.choice.Locked = true
		s.choice.Mark = components.MarkIncorrect
		if v.Correct {
			s.choice.Mark = components.MarkCorrect
		}
	}
}

func message(err error) string {
	switch {
	case errors.Is(err, quiz.ErrNotVerified):
		return "Verify your answer before moving on."
	case errors.Is(err, quiz.ErrNotSelected):
		return "Select an option first."
	case errors.Is(err, quiz.ErrIncomplete):
		return "Answer and verify every question before submitting."
	case errors.Is(err, quiz.ErrQuestionLocked):
		return "This answer is already verified."
	case errors.Is(err, quiz.ErrStaleVerification):
		return "Your selection changed while verifying. Verify again."
	case errors.Is(err, quiz.ErrNoQuestions):
		return "This course has no questions yet."
	}
	return api.Message(err)
}

func (s *ExploreScreen) handleKey(msg tea.KeyMsg) tea.Cmd {
	if s.busy != "" {
		return nil
	}
	key := msg.String()
	if s.errMsg != "" && key == "r" && s.retry != nil {
		return s.start(s.retryLabel, s.retry)
	}
	if key == "esc" {
		return s.back()
	}
	if s.savedPrompt {
		return s.handlePrompt(key)
	}

	switch s.st.Phase {
	case quiz.PhaseChoosingSubject:
		return s.handleSubjects(key)
	case quiz.PhaseChoosingCourse:
		return s.handleCourses(key)
	case quiz.PhaseViewingContent:
		if key == "enter" || key == "space" {
			s.apply(s.ex.StartAnswering())
		}
	case quiz.PhaseAnswering:
		return s.handleAnswering(msg)
	case quiz.PhaseResult:
		return s.handleResult(key)
	}
	return nil
}

// apply records the outcome of a local transition.
func (s *ExploreScreen) apply(_ quiz.State, err error) {
	s.errMsg = ""
	s.notice = ""
	s.sync()
	if err != nil {
		s.errMsg = message(err)
		s.retry = nil
	}
}

func (s *ExploreScreen) back() tea.Cmd {
	s.errMsg = ""
	s.notice = ""
	s.retry = nil
	switch s.st.Phase {
	case quiz.PhaseChoosingSubject:
		return func() tea.Msg { return router.PopScreenMsg{} }
	case quiz.PhaseChoosingCourse:
		subjectID := s.st.Subject.ID
		s.ex.BackToSubjects()
		s.sync()
		s.cursor = 0
		for i, sub := range s.ex.Subjects() {
			if sub.ID == subjectID {
				s.cursor = i
			}
		}
		return nil
	default:
		courseID := s.st.Course.ID
		s.savedPrompt = false
		s.apply(s.ex.BackToCourses())
		s.cursor = 0
		for i, c := range s.ex.Courses() {
			if c.ID == courseID {
				s.cursor = i
			}
		}
		if len(s.ex.Courses()) == 0 {
			return s.start("Loading courses...", func() tea.Cmd { return loadCoursesCmd(s.id, s.ex) })
		}
		return nil
	}
}

func (s *ExploreScreen) moveCursor(key string, n int) {
	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < n-1 {
			s.cursor++
		}
	}
}

func (s *ExploreScreen) handleSubjects(key string) tea.Cmd {
	subjects := s.ex.Subjects()
	if key != "enter" {
		s.moveCursor(key, len(subjects))
		return nil
	}
	if s.cursor >= len(subjects) {
		return nil
	}
	subject := subjects[s.cursor]
	s.ex.ChooseSubject(subject)
	s.sync()
	s.cursor = 0
	return tea.Batch(
		bookmarkCmd(s.ex, subject.ID),
		s.start("Loading courses...", func() tea.Cmd { return loadCoursesCmd(s.id, s.ex) }),
	)
}

func (s *ExploreScreen) handleCourses(key string) tea.Cmd {
	courses := s.ex.Courses()
	if key != "enter" {
		s.moveCursor(key, len(courses))
		return nil
	}
	if s.cursor >= len(courses) {
		return nil
	}
	course := courses[s.cursor]
	return s.start("Opening course...", func() tea.Cmd { return openCourseCmd(s.id, s.ex, course) })
}

func (s *ExploreScreen) handlePrompt(key string) tea.Cmd {
	switch key {
	case "left", "h", "shift+tab":
		s.promptSel = 0
	case "right", "l", "tab":
		s.promptSel = 1
	case "enter":
		if s.promptSel == 0 {
			return s.start("Restoring answers...", func() tea.Cmd { return loadSavedCmd(s.id, s.ex) })
		}
		return s.start("Starting over...", func() tea.Cmd { return restartCmd(s.id, s.ex) })
	}
	return nil
}

func (s *ExploreScreen) handleAnswering(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "space":
		q, ok := s.st.Question()
		if !ok || s.choice.Cursor >= len(q.Options) {
			return nil
		}
		s.apply(s.ex.Select(context.Background(), q.Options[s.choice.Cursor].ID))
		return nil
	case "v":
		s.notice = ""
		return s.start("Verifying...", func() tea.Cmd { return verifyCmd(s.id, s.ex) })
	case "n", "right":
		s.apply(s.ex.Next())
		return nil
	case "p", "left":
		s.apply(s.ex.Prev(), nil)
		return nil
	case "s":
		if !s.st.CanSubmit() {
			s.errMsg = message(quiz.ErrIncomplete)
			return nil
		}
		return s.start("Submitting...", func() tea.Cmd { return submitCmd(s.id, s.ex, s.session) })
	}
	s.choice, _ = s.choice.Update(msg)
	return nil
}

func (s *ExploreScreen) handleResult(key string) tea.Cmd {
	switch key {
	case "left", "h", "shift+tab":
		s.resultSel = 0
	case "right", "l", "tab":
		s.resultSel = 1
	case "enter":
		if s.resultSel == 0 {
			return s.start("Starting over...", func() tea.Cmd { return restartCmd(s.id, s.ex) })
		}
		return s.back()
	}
	return nil
}
