package explore

import (
	"context"
	"log/slog"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/quiz"
)

type subjectsLoadedMsg struct {
	id       uint64
	subjects []api.Subject
	err      error
}

type coursesLoadedMsg struct {
	id      uint64
	courses []api.Course
	err     error
}

type courseOpenedMsg struct {
	id       uint64
	hasSaved bool
	err      error
}

type verifiedMsg struct {
	id  uint64
	v   quiz.Verification
	err error
}

type submittedMsg struct {
	id     uint64
	result *api.SubmissionResult
	err    error
}

type savedLoadedMsg struct {
	id      uint64
	applied int
	err     error
}

type restartedMsg struct {
	id  uint64
	err error
}

func loadSubjectsCmd(id uint64, ex *quiz.Explorer) tea.Cmd {
	return func() tea.Msg {
		subjects, err := ex.LoadSubjects(context.Background())
		return subjectsLoadedMsg{id: id, subjects: subjects, err: err}
	}
}

func loadCoursesCmd(id uint64, ex *quiz.Explorer) tea.Cmd {
	return func() tea.Msg {
		courses, err := ex.LoadCourses(context.Background())
		return coursesLoadedMsg{id: id, courses: courses, err: err}
	}
}

// bookmarkCmd marks the subject as recently visited. Failures only get
// logged.
func bookmarkCmd(ex *quiz.Explorer, subjectID int64) tea.Cmd {
	return func() tea.Msg {
		if err := ex.Bookmark(context.Background(), subjectID); err != nil {
			slog.Debug("bookmark failed", "subject", subjectID, "err", err)
		}
		return nil
	}
}

func openCourseCmd(id uint64, ex *quiz.Explorer, course api.Course) tea.Cmd {
	return func() tea.Msg {
		hasSaved, err := ex.ChooseCourse(context.Background(), course)
		return courseOpenedMsg{id: id, hasSaved: hasSaved, err: err}
	}
}

func verifyCmd(id uint64, ex *quiz.Explorer) tea.Cmd {
	return func() tea.Msg {
		v, err := ex.Verify(context.Background())
		return verifiedMsg{id: id, v: v, err: err}
	}
}

func submitCmd(id uint64, ex *quiz.Explorer, session Session) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		result, err := ex.Submit(ctx)
		if err == nil && session != nil {
			// Score and completed courses changed; the header reads them
			// from the session.
			if _, rerr := session.RefreshUser(ctx); rerr != nil {
				slog.Warn("refresh user after submit", "err", rerr)
			}
		}
		return submittedMsg{id: id, result: result, err: err}
	}
}

func loadSavedCmd(id uint64, ex *quiz.Explorer) tea.Cmd {
	return func() tea.Msg {
		_, applied, err := ex.LoadSaved(context.Background())
		return savedLoadedMsg{id: id, applied: applied, err: err}
	}
}

func restartCmd(id uint64, ex *quiz.Explorer) tea.Cmd {
	return func() tea.Msg {
		_, err := ex.StartNew(context.Background())
		return restartedMsg{id: id, err: err}
	}
}
