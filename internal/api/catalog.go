package api

import (
	"context"
	"fmt"
	"net/http"
)

// Subjects lists all subjects.
func (c *Client) Subjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	if err := c.do(ctx, call{op: "subjects", method: http.MethodGet, path: "/subjects", authed: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bookmark marks a subject as recently used.
func (c *Client) Bookmark(ctx context.Context, subjectID int64) error {
	return c.do(ctx, call{
		op:     "bookmark",
		method: http.MethodPost,
		path:   fmt.Sprintf("/subjects/%d/bookmark", subjectID),
		authed: true,
	}, nil)
}

// Courses lists the courses of a subject.
func (c *Client) Courses(ctx context.Context, subjectID int64) ([]Course, error) {
	var out []Course
	err := c.do(ctx, call{
		op:     "courses",
		method: http.MethodGet,
		path:   fmt.Sprintf("/subjects/%d/courses", subjectID),
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Course fetches course detail including its content.
func (c *Client) Course(ctx context.Context, courseID int64) (*Course, error) {
	var out Course
	err := c.do(ctx, call{
		op:     "course",
		method: http.MethodGet,
		path:   fmt.Sprintf("/courses/%d", courseID),
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Questions lists the questions of a course in presentation order.
func (c *Client) Questions(ctx context.Context, courseID int64) ([]Question, error) {
	var out []Question
	err := c.do(ctx, call{
		op:     "questions",
		method: http.MethodGet,
		path:   fmt.Sprintf("/courses/%d/questions", courseID),
		authed: true,
		schema: "questions",
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Verify asks the backend whether optionID is the correct answer.
func (c *Client) Verify(ctx context.Context, questionID, optionID int64) (bool, error) {
	var out struct {
		Correct bool `json:"correct"`
	}
	err := c.do(ctx, call{
		op:     "verify",
		method: http.MethodPost,
		path:   fmt.Sprintf("/questions/%d/verify", questionID),
		authed: true,
		body:   map[string]int64{"optionId": optionID},
		schema: "verify",
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Correct, nil
}

// Submit sends the full question→option map of an attempt.
func (c *Client) Submit(ctx context.Context, courseID int64, answers map[int64]int64) (*SubmissionResult, error) {
	var out SubmissionResult
	err := c.do(ctx, call{
		op:     "submit",
		method: http.MethodPost,
		path:   fmt.Sprintf("/courses/%d/submit", courseID),
		authed: true,
		body:   map[string]any{"answers": answers},
		schema: "submission",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.CourseID == 0 {
		out.CourseID = courseID
	}
	return &out, nil
}

// CompletedScores returns the best score per completed course.
func (c *Client) CompletedScores(ctx context.Context) (map[int64]int, error) {
	out := map[int64]int{}
	err := c.do(ctx, call{
		op:     "completed scores",
		method: http.MethodGet,
		path:   "/courses/completed-scores",
		authed: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
