package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"sync"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/progress"
)

// Backend is the subset of the REST client the explorer drives.
type Backend interface {
	Subjects(ctx context.Context) ([]api.Subject, error)
	Bookmark(ctx context.Context, subjectID int64) error
	Courses(ctx context.Context, subjectID int64) ([]api.Course, error)
	Course(ctx context.Context, courseID int64) (*api.Course, error)
	Questions(ctx context.Context, courseID int64) ([]api.Question, error)
	Verify(ctx context.Context, questionID, optionID int64) (bool, error)
	Submit(ctx context.Context, courseID int64, answers map[int64]int64) (*api.SubmissionResult, error)
	CompletedScores(ctx context.Context) (map[int64]int, error)
}

// Explorer applies State transitions around backend calls and mirrors
// selections into the progress cache. Backend calls run without the lock;
// results are applied to whatever state is current when they return, so a
// response that no longer matches it is rejected instead of overwriting it.
type Explorer struct {
	backend Backend
	cache   *progress.Cache

	mu       sync.Mutex
	state    State
	subjects []api.Subject
	courses  []api.Course
	best     map[int64]int
}

// NewExplorer creates an Explorer at PhaseChoosingSubject.
func NewExplorer(backend Backend, cache *progress.Cache, contentPreview bool) *Explorer {
	return &Explorer{
		backend: backend,
		cache:   cache,
		state:   NewState(contentPreview),
	}
}

// State returns the current state.
func (e *Explorer) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Subjects returns the subjects from the last LoadSubjects.
func (e *Explorer) Subjects() []api.Subject {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.subjects
}

// Courses returns the courses from the last LoadCourses.
func (e *Explorer) Courses() []api.Course {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.courses
}

// BestScores returns the best score per completed course.
func (e *Explorer) BestScores() map[int64]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return maps.Clone(e.best)
}

// LoadSubjects fetches the subject list.
func (e *Explorer) LoadSubjects(ctx context.Context) ([]api.Subject, error) {
	subjects, err := e.backend.Subjects(ctx)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	e.subjects = subjects
	e.mu.Unlock()
	return subjects, nil
}

// ChooseSubject moves to the course list of subject.
func (e *Explorer) ChooseSubject(subject api.Subject) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = e.state.SelectSubject(subject)
	e.courses = nil
	return e.state
}

// Bookmark records the subject as recently visited. Callers treat failures
// as non-fatal.
func (e *Explorer) Bookmark(ctx context.Context, subjectID int64) error {
	return e.backend.Bookmark(ctx, subjectID)
}

// LoadCourses fetches the courses of the chosen subject together with the
// best scores. Failing to fetch the scores keeps the previous ones.
func (e *Explorer) LoadCourses(ctx context.Context) ([]api.Course, error) {
	st := e.State()
	if st.Subject == nil {
		return nil, ErrWrongPhase
	}
	courses, err := e.backend.Courses(ctx, st.Subject.ID)
	if err != nil {
		return nil, err
	}
	best, err := e.backend.CompletedScores(ctx)
	if err != nil {
		slog.Warn("load completed scores", "err", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Subject == nil || e.state.Subject.ID != st.Subject.ID {
		return nil, ErrStale
	}
	e.courses = courses
	if best != nil {
		e.best = best
	}
	return courses, nil
}

// ChooseCourse loads the course detail and questions and opens the course.
// It reports whether a saved answer snapshot exists for the course.
func (e *Explorer) ChooseCourse(ctx context.Context, course api.Course) (bool, error) {
	st := e.State()
	if st.Subject == nil {
		return false, ErrWrongPhase
	}

	detail, err := e.backend.Course(ctx, course.ID)
	if err != nil {
		return false, err
	}
	questions, err := e.backend.Questions(ctx, course.ID)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Subject == nil || e.state.Subject.ID != st.Subject.ID || e.state.Phase != st.Phase {
		return false, ErrStale
	}
	next, err := e.state.SelectCourse(*detail, questions)
	if err != nil {
		return false, err
	}
	e.state = next
	return e.cache.Has(ctx, course.ID), nil
}

// StartAnswering leaves the content view.
func (e *Explorer) StartAnswering() (State, error) {
	return e.apply(State.StartAnswering)
}

// Select records optionID for the active question and persists the
// selections.
func (e *Explorer) Select(ctx context.Context, optionID int64) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := e.state.SelectOption(optionID)
	if err != nil {
		return e.state, err
	}
	e.state = next
	e.cache.Persist(ctx, next.Course.ID, next.Selections())
	return next, nil
}

// Verify checks the active question's selection with the backend and locks
// it. A question that is already verified returns its recorded verdict
// without another call.
func (e *Explorer) Verify(ctx context.Context) (Verification, error) {
	st := e.State()
	q, ok := st.Question()
	if !ok {
		return Verification{}, ErrWrongPhase
	}
	if v, done := st.Verification(q.ID); done {
		return v, nil
	}
	optionID, ok := st.Selection(q.ID)
	if !ok {
		return Verification{}, ErrNotSelected
	}

	correct, err := e.backend.Verify(ctx, q.ID, optionID)
	if err != nil {
		return Verification{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Course == nil || e.state.Course.ID != st.Course.ID {
		return Verification{}, ErrStale
	}
	next, err := e.state.RecordVerification(q.ID, optionID, correct)
	if err != nil {
		return Verification{}, err
	}
	e.state = next
	return Verification{OptionID: optionID, Correct: correct}, nil
}

// Next advances to the following question.
func (e *Explorer) Next() (State, error) {
	return e.apply(State.Next)
}

// Prev moves back one question.
func (e *Explorer) Prev() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = e.state.Prev()
	return e.state
}

// Submit sends every verified answer in one call and moves to the result.
// The saved snapshot for the course is cleared on success.
func (e *Explorer) Submit(ctx context.Context) (*api.SubmissionResult, error) {
	st := e.State()
	if !st.CanSubmit() {
		return nil, ErrIncomplete
	}

	result, err := e.backend.Submit(ctx, st.Course.ID, st.Answers())
	if err != nil {
		return nil, err
	}
	if result.CourseID == 0 {
		result.CourseID = st.Course.ID
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Course == nil || e.state.Course.ID != st.Course.ID {
		return nil, ErrStale
	}
	next, err := e.state.Submitted(*result)
	if err != nil {
		return nil, err
	}
	e.state = next
	e.cache.Clear(ctx, st.Course.ID)
	if result.BestScore > e.best[result.CourseID] {
		best := maps.Clone(e.best)
		if best == nil {
			best = make(map[int64]int)
		}
		best[result.CourseID] = result.BestScore
		e.best = best
	}
	return result, nil
}

// LoadSaved restores the saved selections of the open course. It returns the
// number of answers applied.
func (e *Explorer) LoadSaved(ctx context.Context) (State, int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Course == nil {
		return e.state, 0, ErrWrongPhase
	}
	st := e.state
	if st.Phase == PhaseViewingContent {
		var err error
		if st, err = st.StartAnswering(); err != nil {
			return e.state, 0, err
		}
	}
	next, applied, err := st.RestoreAnswers(e.cache.Load(ctx, st.Course.ID))
	if err != nil {
		return e.state, 0, fmt.Errorf("restore answers: %w", err)
	}
	e.state = next
	return next, applied, nil
}

// StartNew discards the saved snapshot and begins a fresh attempt at the
// first question.
func (e *Explorer) StartNew(ctx context.Context) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state.Course == nil {
		return e.state, ErrWrongPhase
	}
	next, err := e.state.Restart()
	if err != nil {
		return e.state, err
	}
	e.cache.Clear(ctx, e.state.Course.ID)
	e.state = next
	return next, nil
}

// BackToCourses leaves the open course. The saved snapshot is kept.
func (e *Explorer) BackToCourses() (State, error) {
	return e.apply(State.BackToCourses)
}

// BackToSubjects returns to the subject list.
func (e *Explorer) BackToSubjects() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = e.state.BackToSubjects()
	e.courses = nil
	return e.state
}

func (e *Explorer) apply(fn func(State) (State, error)) (State, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	return next, nil
}
