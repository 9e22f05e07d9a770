// Package quiz implements subject → course → question navigation with
// verify-then-lock answering.
package quiz

import (
	"errors"

	"github.com/abhisek/learnhub/internal/api"
)

var (
	ErrQuestionLocked    = errors.New("quiz: question already verified")
	ErrNotVerified       = errors.New("quiz: verify the current answer first")
	ErrNotSelected       = errors.New("quiz: no option selected")
	ErrIncomplete        = errors.New("quiz: every question must be answered before submitting")
	ErrStaleVerification = errors.New("quiz: selection changed while verifying")
	ErrUnknownOption     = errors.New("quiz: option does not belong to the question")
	ErrWrongPhase        = errors.New("quiz: not allowed in the current phase")
	ErrStale             = errors.New("quiz: navigation changed while loading")
	ErrNoQuestions       = errors.New("quiz: course has no questions")
)

// Phase is the explorer's position in the navigation flow.
type Phase int

const (
	PhaseChoosingSubject Phase = iota // Picking a subject
	PhaseChoosingCourse               // Picking a course within the subject
	PhaseViewingContent               // Reading course content before the questions
	PhaseAnswering                    // Selecting and verifying answers
	PhaseResult                       // Showing the submission result
)

func (p Phase) String() string {
	switch p {
	case PhaseChoosingSubject:
		return "choosing subject"
	case PhaseChoosingCourse:
		return "choosing course"
	case PhaseViewingContent:
		return "viewing content"
	case PhaseAnswering:
		return "answering"
	case PhaseResult:
		return "result"
	}
	return "unknown"
}

// Verification is the backend's verdict for one selected option.
type Verification struct {
	OptionID int64
	Correct  bool
}

// Attempt is the in-progress answer set for one course.
type Attempt struct {
	CourseID int64
	Selected map[int64]int64
	Verified map[int64]Verification
}

func newAttempt(courseID int64) Attempt {
	return Attempt{
		CourseID: courseID,
		Selected: make(map[int64]int64),
		Verified: make(map[int64]Verification),
	}
}

func (a Attempt) withSelected(questionID, optionID int64) Attempt {
	sel := make(map[int64]int64, len(a.Selected)+1)
	for k, v := range a.Selected {
		sel[k] = v
	}
	sel[questionID] = optionID
	a.Selected = sel
	return a
}

func (a Attempt) withVerified(questionID int64, v Verification) Attempt {
	ver := make(map[int64]Verification, len(a.Verified)+1)
	for k, val := range a.Verified {
		ver[k] = val
	}
	ver[questionID] = v
	a.Verified = ver
	return a
}

// State is an immutable snapshot of the navigation flow. Every transition
// returns a new State and leaves the receiver untouched.
type State struct {
	Phase     Phase
	Subject   *api.Subject
	Course    *api.Course
	Questions []api.Question
	// Index is the active question within Questions.
	Index   int
	Attempt Attempt
	Result  *api.SubmissionResult

	// ContentPreview shows course content before the first question.
	ContentPreview bool
}

// NewState returns the initial state.
func NewState(contentPreview bool) State {
	return State{Phase: PhaseChoosingSubject, ContentPreview: contentPreview}
}

// Question returns the active question.
func (s State) Question() (api.Question, bool) {
	if s.Phase != PhaseAnswering || s.Index < 0 || s.Index >= len(s.Questions) {
		return api.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Selection returns the selected option for questionID.
func (s State) Selection(questionID int64) (int64, bool) {
	id, ok := s.Attempt.Selected[questionID]
	return id, ok
}

// Verification returns the recorded verdict for questionID.
func (s State) Verification(questionID int64) (Verification, bool) {
	v, ok := s.Attempt.Verified[questionID]
	return v, ok
}

// VerifiedCount returns how many questions have been verified.
func (s State) VerifiedCount() int {
	return len(s.Attempt.Verified)
}

// IsLast reports whether the active question is the final one.
func (s State) IsLast() bool {
	return len(s.Questions) > 0 && s.Index == len(s.Questions)-1
}

// SelectSubject moves to course selection for subject, discarding any course,
// attempt or result.
func (s State) SelectSubject(subject api.Subject) State {
	return State{
		Phase:          PhaseChoosingCourse,
		Subject:        &subject,
		ContentPreview: s.ContentPreview,
	}
}

// BackToSubjects returns to the subject list.
func (s State) BackToSubjects() State {
	return NewState(s.ContentPreview)
}

// SelectCourse opens course with its questions and a fresh attempt.
func (s State) SelectCourse(course api.Course, questions []api.Question) (State, error) {
	if s.Subject == nil || s.Phase == PhaseChoosingSubject {
		return s, ErrWrongPhase
	}
	if len(questions) == 0 {
		return s, ErrNoQuestions
	}
	next := State{
		Phase:          PhaseAnswering,
		Subject:        s.Subject,
		Course:         &course,
		Questions:      questions,
		Attempt:        newAttempt(course.ID),
		ContentPreview: s.ContentPreview,
	}
	if s.ContentPreview {
		next.Phase = PhaseViewingContent
	}
	return next, nil
}

// StartAnswering leaves the content view for the first question.
func (s State) StartAnswering() (State, error) {
	if s.Phase != PhaseViewingContent {
		return s, ErrWrongPhase
	}
	s.Phase = PhaseAnswering
	s.Index = 0
	return s, nil
}

// SelectOption records optionID for the active question. Verified questions
// are locked.
func (s State) SelectOption(optionID int64) (State, error) {
	q, ok := s.Question()
	if !ok {
		return s, ErrWrongPhase
	}
	if _, done := s.Attempt.Verified[q.ID]; done {
		return s, ErrQuestionLocked
	}
	if !q.HasOption(optionID) {
		return s, ErrUnknownOption
	}
	s.Attempt = s.Attempt.withSelected(q.ID, optionID)
	return s, nil
}

// RecordVerification locks questionID with the backend's verdict. A verdict
// for an option that is no longer selected is rejected.
func (s State) RecordVerification(questionID, optionID int64, correct bool) (State, error) {
	if s.Phase != PhaseAnswering {
		return s, ErrWrongPhase
	}
	if sel, ok := s.Attempt.Selected[questionID]; !ok || sel != optionID {
		return s, ErrStaleVerification
	}
	if _, done := s.Attempt.Verified[questionID]; done {
		return s, ErrQuestionLocked
	}
	s.Attempt = s.Attempt.withVerified(questionID, Verification{OptionID: optionID, Correct: correct})
	return s, nil
}

// Next advances to the following question once the active one is verified.
// On the final question it is a no-op.
func (s State) Next() (State, error) {
	q, ok := s.Question()
	if !ok {
		return s, ErrWrongPhase
	}
	if _, done := s.Attempt.Verified[q.ID]; !done {
		return s, ErrNotVerified
	}
	if s.Index < len(s.Questions)-1 {
		s.Index++
	}
	return s, nil
}

// Prev moves back one question, stopping at the first.
func (s State) Prev() State {
	if s.Phase == PhaseAnswering && s.Index > 0 {
		s.Index--
	}
	return s
}

// CanSubmit reports whether the attempt may be submitted: the final question
// is active and every question has been verified.
func (s State) CanSubmit() bool {
	if s.Phase != PhaseAnswering || !s.IsLast() {
		return false
	}
	for _, q := range s.Questions {
		if _, ok := s.Attempt.Verified[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Answers returns the verified question → option map sent on submission.
func (s State) Answers() map[int64]int64 {
	out := make(map[int64]int64, len(s.Attempt.Verified))
	for qid, v := range s.Attempt.Verified {
		out[qid] = v.OptionID
	}
	return out
}

// Selections returns a copy of the selected question → option map.
func (s State) Selections() map[int64]int64 {
	out := make(map[int64]int64, len(s.Attempt.Selected))
	for k, v := range s.Attempt.Selected {
		out[k] = v
	}
	return out
}

// Submitted moves to the result phase and discards the attempt.
func (s State) Submitted(result api.SubmissionResult) (State, error) {
	if s.Phase != PhaseAnswering {
		return s, ErrWrongPhase
	}
	s.Phase = PhaseResult
	s.Result = &result
	s.Attempt = Attempt{}
	s.Index = 0
	return s, nil
}

// BackToCourses returns to the course list of the current subject.
func (s State) BackToCourses() (State, error) {
	switch s.Phase {
	case PhaseChoosingSubject:
		return s, ErrWrongPhase
	case PhaseChoosingCourse:
		return s, nil
	}
	return State{
		Phase:          PhaseChoosingCourse,
		Subject:        s.Subject,
		ContentPreview: s.ContentPreview,
	}, nil
}

// Restart begins a fresh attempt at the first question of the current course.
func (s State) Restart() (State, error) {
	switch s.Phase {
	case PhaseViewingContent, PhaseAnswering, PhaseResult:
	default:
		return s, ErrWrongPhase
	}
	if s.Course == nil {
		return s, ErrWrongPhase
	}
	s.Phase = PhaseAnswering
	s.Index = 0
	s.Result = nil
	s.Attempt = newAttempt(s.Course.ID)
	return s, nil
}

// RestoreAnswers applies saved selections. Entries naming a question or
// option outside the current course are ignored, as are locked questions.
// Nothing is marked verified.
func (s State) RestoreAnswers(saved map[int64]int64) (State, int, error) {
	if s.Phase != PhaseAnswering && s.Phase != PhaseViewingContent {
		return s, 0, ErrWrongPhase
	}
	applied := 0
	for _, q := range s.Questions {
		opt, ok := saved[q.ID]
		if !ok || !q.HasOption(opt) {
			continue
		}
		if _, locked := s.Attempt.Verified[q.ID]; locked {
			continue
		}
		s.Attempt = s.Attempt.withSelected(q.ID, opt)
		applied++
	}
	return s, applied, nil
}
