package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/store"
)

type recorderStub struct {
	mu     sync.Mutex
	events []store.APIRequestEventData
}

func (r *recorderStub) AppendAPIRequest(_ context.Context, data store.APIRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *recorderStub) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	rec := &recorderStub{}
	return New(srv.URL, WithRecorder(rec)), rec
}

func TestLoginSuccess(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ada", body["username"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"token":"tok-1","user":{"id":7,"username":"ada","email":"ada@example.com"}}`)
	})

	resp, err := c.Login(context.Background(), "ada", "s3cretpass")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", resp.Token)
	assert.Equal(t, int64(7), resp.User.ID)

	require.Len(t, rec.events, 1)
	assert.Equal(t, "/auth/login", rec.events[0].Path)
	assert.Equal(t, http.MethodPost, rec.events[0].Method)
	assert.True(t, rec.events[0].Success)
}

func TestLoginBadCredentialsIsAuthError(t *testing.T) {
	fired := false
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Invalid username or password"}`)
	})
	c.OnUnauthorized(func() { fired = true })

	_, err := c.Login(context.Background(), "ada", "wrong")
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.False(t, ae.Expired)
	assert.Equal(t, "Invalid username or password", Message(err))
	assert.False(t, fired, "login failures must not expire the session")
}

func TestAuthenticatedCallSendsTokenAndExpiresOn401(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
	})
	c.SetToken("tok-9")
	fired := 0
	c.OnUnauthorized(func() { fired++ })

	_, err := c.Subjects(context.Background())
	assert.Equal(t, "Bearer tok-9", gotAuth)
	assert.True(t, IsUnauthorized(err))
	var ae *AuthError
	require.ErrorAs(t, err, &ae)
	assert.True(t, ae.Expired)
	assert.Equal(t, 1, fired)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"Registration failed","errors":{"username":"already taken","email":"already registered"}}`)
	})

	_, err := c.Register(context.Background(), RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "x"})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "already taken", ve.Field("username"))
	assert.Equal(t, "email: already registered; username: already taken", ve.Error())
}

func TestForbiddenIsNotEligible(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"complete all courses first"}`)
	})

	_, err := c.Certificate(context.Background(), 1)
	var ne *NotEligibleError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "not eligible: complete all courses first", Message(err))
}

func TestServerErrorIsNetworkError(t *testing.T) {
	c, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Ranking(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusBadGateway, ne.StatusCode)
	assert.Equal(t, "The server had a problem. Please try again.", Message(err))
	require.Len(t, rec.events, 1)
	assert.False(t, rec.events[0].Success)
}

func TestNotFoundWrapsErrNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := c.RequestPasswordReset(context.Background(), "nobody@example.com")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := &recorderStub{}
	c := New(url, WithRecorder(rec))
	_, err := c.Subjects(context.Background())
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Zero(t, ne.StatusCode)
	assert.Equal(t, "Could not reach the server. Please try again.", Message(err))
}

func TestQuestionsSchemaRejectsMalformedPayload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"description":"What is git?"}]`)
	})

	_, err := c.Questions(context.Background(), 10)
	var ne *NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Contains(t, err.Error(), "questions")
}

func TestVerifyAndSubmit(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/questions/3/verify":
			var body map[string]int64
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, int64(9), body["optionId"])
			_, _ = io.WriteString(w, `{"correct":true}`)
		case "/courses/10/submit":
			var body struct {
				Answers map[string]int64 `json:"answers"`
			}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]int64{"1": 2, "3": 9}, body.Answers)
			_, _ = io.WriteString(w, `{"total":2,"correct":1,"score":1,"bestScore":1,"improved":true,"completed":false}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	correct, err := c.Verify(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.True(t, correct)

	res, err := c.Submit(context.Background(), 10, map[int64]int64{1: 2, 3: 9})
	require.NoError(t, err)
	assert.Equal(t, int64(10), res.CourseID)
	assert.Equal(t, 1, res.Correct)
	assert.True(t, res.Improved)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		name    string
		version string
		min     string
		wantErr bool
	}{
		{"equal", "v1.2.0", "v1.2.0", false},
		{"newer", "1.4.1", "v1.2.0", false},
		{"older", "v1.1.9", "v1.2.0", true},
		{"unreported", "", "v1.2.0", false},
		{"malformed", "banana", "v1.0.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compatible(tt.version, tt.min)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCertificateCarriesCourseDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/certificates/status":
			_, _ = io.WriteString(w, `[{"subjectId":3,"subjectName":"Git","completedCourses":2,"totalCourses":2,"eligible":true,
				"courses":[{"courseId":11,"courseTitle":"Basics","score":5},{"courseId":12,"courseTitle":"Branching","score":4}]}]`)
		case "/certificates/3":
			_, _ = io.WriteString(w, `{"subjectId":3,"subjectName":"Git","username":"ada","serialNumber":"S-1",
				"recipientName":"Ada Lovelace","courseTitles":["Basics","Branching"]}`)
		default:
			http.NotFound(w, r)
		}
	})
	c.SetToken("tok-1")

	entries, err := c.CertificateStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Courses, 2)
	assert.Equal(t, CompletedCourse{CourseID: 12, CourseTitle: "Branching", Score: 4}, entries[0].Courses[1])

	meta, err := c.Certificate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", meta.Recipient())
	assert.Equal(t, []string{"Basics", "Branching"}, meta.CourseTitles)
	assert.Nil(t, meta.CompletedAt)

	meta.RecipientName = ""
	assert.Equal(t, "ada", meta.Recipient())
}
