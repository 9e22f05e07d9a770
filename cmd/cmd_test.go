package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/api"
)

func TestReadLine(t *testing.T) {
	got, err := readLine(strings.NewReader("s3cret!\r\nignored\n"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", got)

	got, err = readLine(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", got)
}

func TestCLIError(t *testing.T) {
	ve := &api.ValidationError{Fields: map[string]string{"email": "is invalid", "username": "is required"}}
	assert.EqualError(t, cliError(ve), "email: is invalid; username: is required")

	assert.Equal(t, errNotLoggedIn, cliError(errNotLoggedIn))

	netErr := &api.NetworkError{Op: "subjects", Err: errors.New("connection refused")}
	assert.EqualError(t, cliError(netErr), "Could not reach the server. Please try again.")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Git", truncate("Git", 10))
	assert.Equal(t, "Introdu...", truncate("Introduction to Git", 10))
}

func TestResolveConfigFlagsOverrideEnv(t *testing.T) {
	t.Setenv("LEARNHUB_API_URL", "http://env.example/api")
	t.Setenv("LEARNHUB_DB", "/tmp/env.db")

	require.NoError(t, rootCmd.ParseFlags([]string{"--api", "https://flag.example/api"}))
	t.Cleanup(func() { rootCmd.Flags().Set("api", "") })

	cfg, err := resolveConfig(rootCmd)
	require.NoError(t, err)
	assert.Equal(t, "https://flag.example/api", cfg.APIURL)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"login", "logout", "whoami", "register", "password-reset", "picture", "subjects",
		"ranking", "achievements", "license", "certificate", "version"}
	for _, name := range want {
		c, _, err := rootCmd.Find([]string{name})
		if assert.NoError(t, err, name) {
			assert.Equal(t, name, c.Name())
		}
	}
}

func TestPasswordResetWithToken(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/password-reset/confirm" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Password updated."}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	t.Setenv("LEARNHUB_API_URL", srv.URL)
	t.Setenv("LEARNHUB_DB", filepath.Join(dir, "learnhub.db"))
	t.Setenv("LEARNHUB_LOG", filepath.Join(dir, "learnhub.log"))
	t.Cleanup(func() {
		passwordResetCmd.Flags().Set("token", "")
		passwordResetCmd.Flags().Set("password", "")
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"password-reset", "ada@example.com", "--token", "tok-1", "--password", "Abcdefgh1!"})
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	assert.Equal(t, map[string]string{
		"token":       "tok-1",
		"email":       "ada@example.com",
		"newPassword": "Abcdefgh1!",
	}, got)
}

func TestPasswordResetWithTokenRejectsWeakPassword(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LEARNHUB_API_URL", "http://127.0.0.1:1")
	t.Setenv("LEARNHUB_DB", filepath.Join(dir, "learnhub.db"))
	t.Setenv("LEARNHUB_LOG", filepath.Join(dir, "learnhub.log"))
	t.Cleanup(func() {
		passwordResetCmd.Flags().Set("token", "")
		passwordResetCmd.Flags().Set("password", "")
		rootCmd.SetArgs(nil)
	})

	rootCmd.SetArgs([]string{"password-reset", "ada@example.com", "--token", "tok-1", "--password", "short"})
	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestCertificateListCoursesFlag(t *testing.T) {
	f := certificateListCmd.Flags().Lookup("courses")
	require.NotNil(t, f)
	assert.Equal(t, "false", f.DefValue)
}
