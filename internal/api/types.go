package api

import "time"

// Profile holds the gamified profile counters shown in the header.
type Profile struct {
	Score           int  `json:"score"`
	Rank            int  `json:"rank"`
	LoginStreakDays int  `json:"loginStreakDays"`
	HasProfilePic   bool `json:"hasProfilePic"`
}

// User is the authenticated learner as returned by /auth/me.
type User struct {
	ID                    int64         `json:"id"`
	Username              string        `json:"username"`
	Email                 string        `json:"email"`
	License               string        `json:"license,omitempty"`
	Profile               Profile       `json:"profile"`
	BookmarkedSubjects    []int64       `json:"bookmarkedSubjects"`
	CompletedCourseScores map[int64]int `json:"completedCourseScores"`
}

// HasLicense reports whether the user's profile carries a license.
func (u *User) HasLicense() bool {
	return u != nil && u.License != ""
}

// Subject is a top-level topic grouping such as "Git" or "Docker".
type Subject struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// Course is a unit of content within a subject.
type Course struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Difficulty  string `json:"difficulty,omitempty"`
	Content     string `json:"content,omitempty"`
}

// Option is one selectable answer of a question.
type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Question is a multiple-choice question. The correct option is never sent
// to the client.
type Question struct {
	ID          int64    `json:"id"`
	CourseID    int64    `json:"courseId"`
	Description string   `json:"description"`
	Options     []Option `json:"options"`
}

// HasOption reports whether optionID belongs to q.
func (q Question) HasOption(optionID int64) bool {
	for _, o := range q.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// SubmissionResult is the server's verdict for a submitted attempt.
type SubmissionResult struct {
	CourseID  int64 `json:"courseId"`
	Total     int   `json:"total"`
	Correct   int   `json:"correct"`
	Score     int   `json:"score"`
	BestScore int   `json:"bestScore"`
	Improved  bool  `json:"improved"`
	Completed bool  `json:"completed"`
}

// Availability reports whether a username and email are still free.
type Availability struct {
	UsernameAvailable bool `json:"usernameAvailable"`
	EmailAvailable    bool `json:"emailAvailable"`
}

// LicenseStatus is the backend view of the user's license.
type LicenseStatus struct {
	HasLicense     bool   `json:"hasLicense"`
	PendingRequest bool   `json:"pendingRequest"`
	PendingCode    string `json:"pendingCode,omitempty"`
}

// SubjectEligibility describes certificate eligibility for one subject.
type SubjectEligibility struct {
	SubjectID        int64  `json:"subjectId"`
	SubjectName      string `json:"subjectName"`
	CompletedCourses int    `json:"completedCourses"`
	TotalCourses     int    `json:"totalCourses"`
	Eligible         bool   `json:"eligible"`

	// Courses lists the finished courses behind CompletedCourses.
	Courses []CompletedCourse `json:"courses"`
}

// CompletedCourse is one finished course counted toward a certificate.
type CompletedCourse struct {
	CourseID    int64  `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
	Score       int    `json:"score"`
}

// CertificateMetadata is the record consumed by the certificate renderer.
type CertificateMetadata struct {
	SubjectID    int64     `json:"subjectId"`
	SubjectName  string    `json:"subjectName"`
	Username     string    `json:"username"`
	IssuedAt     time.Time `json:"issuedAt"`
	SerialNumber string    `json:"serialNumber"`

	RecipientName string     `json:"recipientName"`
	CourseTitles  []string   `json:"courseTitles"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
}

// Recipient is the name printed on the certificate, falling back to the
// username.
func (m *CertificateMetadata) Recipient() string {
	if m.RecipientName != "" {
		return m.RecipientName
	}
	return m.Username
}

// RankEntry is one leaderboard row.
type RankEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Achievement is a progress counter towards an unlockable badge.
type Achievement struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Target      int    `json:"target"`
	Unlocked    bool   `json:"unlocked"`
}

// AchievementsResponse is returned by GET /achievements.
type AchievementsResponse struct {
	LoginStreakDays int           `json:"loginStreakDays"`
	Achievements    []Achievement `json:"achievements"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	License  string `json:"license,omitempty"`
}

// LoginResponse is returned by POST /auth/login and /auth/register.
type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}
