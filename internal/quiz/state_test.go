package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/api"
)

func twoQuestions() []api.Question {
	return []api.Question{
		{ID: 1, Description: "What does git init do?", Options: []api.Option{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}}},
		{ID: 2, Description: "What does git add do?", Options: []api.Option{{ID: 3, Text: "c"}, {ID: 4, Text: "d"}}},
	}
}

func answering(t *testing.T, preview bool) State {
	t.Helper()
	s := NewState(preview).SelectSubject(api.Subject{ID: 1, Name: "Git"})
	s, err := s.SelectCourse(api.Course{ID: 10, Title: "Intro to Git"}, twoQuestions())
	require.NoError(t, err)
	if preview {
		s, err = s.StartAnswering()
		require.NoError(t, err)
	}
	return s
}

func TestPhaseGating(t *testing.T) {
	s := NewState(true)
	assert.Equal(t, PhaseChoosingSubject, s.Phase)

	_, err := s.SelectCourse(api.Course{ID: 10}, twoQuestions())
	assert.ErrorIs(t, err, ErrWrongPhase)

	s = s.SelectSubject(api.Subject{ID: 1})
	assert.Equal(t, PhaseChoosingCourse, s.Phase)

	s, err = s.SelectCourse(api.Course{ID: 10}, twoQuestions())
	require.NoError(t, err)
	assert.Equal(t, PhaseViewingContent, s.Phase)

	_, err = s.SelectOption(1)
	assert.ErrorIs(t, err, ErrWrongPhase)

	s, err = s.StartAnswering()
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, s.Phase)
}

func TestSelectCourseWithoutPreviewGoesStraightToAnswering(t *testing.T) {
	s := answering(t, false)
	assert.Equal(t, PhaseAnswering, s.Phase)
	assert.Equal(t, int64(10), s.Attempt.CourseID)
}

func TestSelectCourseWithoutQuestions(t *testing.T) {
	s := NewState(false).SelectSubject(api.Subject{ID: 1, Name: "Git"})
	next, err := s.SelectCourse(api.Course{ID: 12, Title: "Empty"}, nil)
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Equal(t, PhaseChoosingCourse, next.Phase)
	assert.Nil(t, next.Course)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	s := answering(t, false)
	next, err := s.SelectOption(1)
	require.NoError(t, err)

	_, ok := s.Selection(1)
	assert.False(t, ok, "original state must be untouched")
	got, ok := next.Selection(1)
	assert.True(t, ok)
	assert.Equal(t, int64(1), got)

	verified, err := next.RecordVerification(1, 1, true)
	require.NoError(t, err)
	assert.Zero(t, next.VerifiedCount())
	assert.Equal(t, 1, verified.VerifiedCount())
}

func TestSelectOption(t *testing.T) {
	s := answering(t, false)

	_, err := s.SelectOption(99)
	assert.ErrorIs(t, err, ErrUnknownOption)

	s, err = s.SelectOption(1)
	require.NoError(t, err)
	s, err = s.SelectOption(2)
	require.NoError(t, err)
	sel, _ := s.Selection(1)
	assert.Equal(t, int64(2), sel)

	s, err = s.RecordVerification(1, 2, false)
	require.NoError(t, err)
	_, err = s.SelectOption(1)
	assert.ErrorIs(t, err, ErrQuestionLocked)
}

func TestRecordVerificationRejectsStaleSelection(t *testing.T) {
	s := answering(t, false)
	s, err := s.SelectOption(1)
	require.NoError(t, err)
	s, err = s.SelectOption(2)
	require.NoError(t, err)

	_, err = s.RecordVerification(1, 1, true)
	assert.ErrorIs(t, err, ErrStaleVerification)
}

func TestNextRequiresVerification(t *testing.T) {
	s := answering(t, false)
	_, err := s.Next()
	assert.ErrorIs(t, err, ErrNotVerified)

	s, _ = s.SelectOption(1)
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrNotVerified)

	s, _ = s.RecordVerification(1, 1, true)
	s, err = s.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, s.Index)

	s = s.Prev()
	assert.Equal(t, 0, s.Index)
	s = s.Prev()
	assert.Equal(t, 0, s.Index)
}

func TestCanSubmitOnlyWhenEveryQuestionVerified(t *testing.T) {
	s := answering(t, false)
	assert.False(t, s.CanSubmit())

	s, _ = s.SelectOption(1)
	s, _ = s.RecordVerification(1, 1, true)
	assert.False(t, s.CanSubmit(), "not on the final question")

	s, _ = s.Next()
	assert.False(t, s.CanSubmit(), "final question not verified")

	s, _ = s.SelectOption(4)
	assert.False(t, s.CanSubmit(), "selected is not verified")

	s, _ = s.RecordVerification(2, 4, false)
	assert.True(t, s.CanSubmit())
	assert.Equal(t, map[int64]int64{1: 1, 2: 4}, s.Answers())
}

func TestSubmittedRestartAndBack(t *testing.T) {
	s := answering(t, false)
	s, _ = s.SelectOption(1)
	s, _ = s.RecordVerification(1, 1, true)

	s, err := s.Submitted(api.SubmissionResult{CourseID: 10, Total: 2, Correct: 1})
	require.NoError(t, err)
	assert.Equal(t, PhaseResult, s.Phase)
	require.NotNil(t, s.Result)
	assert.Empty(t, s.Attempt.Selected)

	restarted, err := s.Restart()
	require.NoError(t, err)
	assert.Equal(t, PhaseAnswering, restarted.Phase)
	assert.Equal(t, 0, restarted.Index)
	assert.Nil(t, restarted.Result)
	assert.Equal(t, int64(10), restarted.Attempt.CourseID)

	back, err := s.BackToCourses()
	require.NoError(t, err)
	assert.Equal(t, PhaseChoosingCourse, back.Phase)
	assert.Nil(t, back.Course)
	assert.Equal(t, int64(1), back.Subject.ID)

	_, err = NewState(false).BackToCourses()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSelectSubjectClearsEverything(t *testing.T) {
	s := answering(t, false)
	s, _ = s.SelectOption(1)

	s = s.SelectSubject(api.Subject{ID: 2, Name: "Docker"})
	assert.Equal(t, PhaseChoosingCourse, s.Phase)
	assert.Nil(t, s.Course)
	assert.Empty(t, s.Questions)
	assert.Empty(t, s.Attempt.Selected)
}

func TestRestoreAnswersIgnoresUnknownEntries(t *testing.T) {
	s := answering(t, true)
	s, applied, err := s.RestoreAnswers(map[int64]int64{
		1:  2,  // valid
		2:  99, // option not in question
		77: 1,  // question not in course
	})
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	sel, ok := s.Selection(1)
	assert.True(t, ok)
	assert.Equal(t, int64(2), sel)
	_, ok = s.Selection(2)
	assert.False(t, ok)
	assert.Zero(t, s.VerifiedCount())
}
