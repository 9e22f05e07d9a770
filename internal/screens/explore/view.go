package explore

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/ui/components"
	"github.com/abhisek/learnhub/internal/ui/layout"
	"github.com/abhisek/learnhub/internal/ui/theme"
)

func (s *ExploreScreen) View(width, height int) string {
	cw := layout.ContentWidth(width)

	var body string
	switch s.st.Phase {
	case quiz.PhaseChoosingSubject:
		body = s.viewSubjects(cw)
	case quiz.PhaseChoosingCourse:
		body = s.viewCourses(cw)
	case quiz.PhaseViewingContent:
		body = s.viewContent(cw)
	case quiz.PhaseAnswering:
		body = s.viewQuestion(cw)
	case quiz.PhaseResult:
		body = s.viewResult(cw)
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(body)

	if s.savedPrompt && s.busy == "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Render("You have saved answers for this course."))
		b.WriteString("\n\n")
		b.WriteString(components.ButtonRow(promptLabels, s.promptSel))
	}

	switch {
	case s.busy != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(s.busy))
	case s.errMsg != "":
		b.WriteString("\n\n")
		b.WriteString(components.ErrorLine(s.errMsg, s.retry != nil, cw))
	case s.notice != "":
		b.WriteString("\n\n")
		b.WriteString(theme.Notice.Render(s.notice))
	}

	block := lipgloss.NewStyle().Width(cw).Render(b.String())
	return layout.Center(block, width)
}

func (s *ExploreScreen) viewSubjects(cw int) string {
	subjects := s.ex.Subjects()
	var b strings.Builder
	b.WriteString(theme.Heading.Render("Choose a subject"))
	b.WriteString("\n\n")
	if len(subjects) == 0 {
		if s.busy == "" && s.errMsg == "" {
			b.WriteString(theme.Hint.Render("No subjects available yet."))
		}
		return b.String()
	}
	for i, sub := range subjects {
		b.WriteString(listLine(i == s.cursor, sub.Name, sub.Description, cw))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ExploreScreen) viewCourses(cw int) string {
	courses := s.ex.Courses()
	scores := s.ex.BestScores()

	var b strings.Builder
	title := "Courses"
	if s.st.Subject != nil {
		title = s.st.Subject.Name + " courses"
	}
	b.WriteString(theme.Heading.Render(title))
	b.WriteString("\n\n")
	if len(courses) == 0 {
		if s.busy == "" && s.errMsg == "" {
			b.WriteString(theme.Hint.Render("This subject has no courses yet."))
		}
		return b.String()
	}
	for i, c := range courses {
		detail := c.Difficulty
		if best, ok := scores[c.ID]; ok {
			detail = strings.TrimSpace(fmt.Sprintf("%s  ✓ best %d", detail, best))
		}
		b.WriteString(listLine(i == s.cursor, c.Title, detail, cw))
		b.WriteString("\n")
	}
	return b.String()
}

func listLine(selected bool, label, detail string, cw int) string {
	prefix := "  "
	style := theme.Unselected
	if selected {
		prefix = "▸ "
		style = theme.Selected
	}
	line := style.Render(prefix + layout.Truncate(label, cw/2))
	if detail != "" {
		room := cw - lipgloss.Width(line) - 2
		line += "  " + theme.Hint.Render(layout.Truncate(detail, room))
	}
	return line
}

func (s *ExploreScreen) viewContent(cw int) string {
	c := s.st.Course
	var b strings.Builder
	b.WriteString(theme.Heading.Render(c.Title))
	if c.Difficulty != "" {
		b.WriteString("  " + theme.Hint.Render(c.Difficulty))
	}
	b.WriteString("\n\n")
	if c.Description != "" {
		b.WriteString(theme.Hint.Width(cw).Render(c.Description))
		b.WriteString("\n\n")
	}
	content := c.Content
	if content == "" {
		content = "This course has no reading material."
	}
	b.WriteString(theme.Card.Width(cw).Render(theme.Body.Render(content)))
	if !s.savedPrompt {
		b.WriteString("\n\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("%d questions. Press Enter to begin.", len(s.st.Questions))))
	}
	return b.String()
}

func (s *ExploreScreen) viewQuestion(cw int) string {
	total := len(s.st.Questions)
	verified := s.st.VerifiedCount()

	var b strings.Builder
	b.WriteString(theme.Heading.Render(fmt.Sprintf("Question %d of %d", s.st.Index+1, total)))
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar(verified, total, "verified", cw).View())
	b.WriteString("\n\n")
	b.WriteString(lipgloss.NewStyle().Width(cw).Render(s.choice.View()))

	if s.st.CanSubmit() {
		b.WriteString("\n")
		b.WriteString(theme.Correct.Render("All questions verified. Press S to submit."))
	}
	return b.String()
}

func (s *ExploreScreen) viewResult(cw int) string {
	r := s.st.Result
	if r == nil {
		return ""
	}
	big := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	lines := []string{
		theme.Heading.Render("Lesson complete"),
		"",
		big.Render(quiz.StarLine(*r)) + "   " + big.Render(quiz.PercentLine(*r)),
		"",
		theme.Body.Render(quiz.ScoreLine(*r)),
		theme.Body.Render(quiz.BestLine(*r)),
		"",
	}
	verdict := theme.Hint.Render(quiz.Verdict(*r))
	if r.Improved {
		verdict = theme.Correct.Render(quiz.Verdict(*r))
	}
	lines = append(lines, verdict)
	if r.Completed {
		lines = append(lines, theme.Notice.Render("Course completed!"))
	}
	lines = append(lines, "", components.ButtonRow(resultLabels, s.resultSel))

	return lipgloss.NewStyle().Width(cw).Render(strings.Join(lines, "\n"))
}
