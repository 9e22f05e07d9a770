package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "learnhub.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	for _, table := range []string{"kv", "api_requests"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestKVRoundTrip(t *testing.T) {
	s := openTestStore(t)
	store := s.KV()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "session.token")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Set(ctx, "session.token", "abc"))
	require.NoError(t, store.Set(ctx, "session.token", "def"))

	v, ok, err := store.Get(ctx, "session.token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "def", v)

	require.NoError(t, store.Remove(ctx, "session.token"))
	_, ok, err = store.Get(ctx, "session.token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKVSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "learnhub.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.KV().Set(ctx, "progress.course.10", `{"answers":{}}`))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.KV().Get(ctx, "progress.course.10")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"answers":{}}`, v)
}

func TestAppendAndRecentRequests(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	require.NoError(t, repo.AppendAPIRequest(ctx, APIRequestEventData{
		RequestID: "r1", Method: "GET", Path: "/subjects", Status: 200, LatencyMs: 12, Success: true,
	}))
	require.NoError(t, repo.AppendAPIRequest(ctx, APIRequestEventData{
		RequestID: "r2", Method: "POST", Path: "/auth/login", Status: 401, ErrorMessage: "Unauthorized",
	}))

	events, err := repo.RecentRequests(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.Equal(t, "r2", events[0].RequestID)
	assert.Equal(t, 401, events[0].Status)
	assert.False(t, events[0].Success)
	assert.Equal(t, "r1", events[1].RequestID)
	assert.True(t, events[1].Success)
	assert.False(t, events[1].Timestamp.IsZero())
}

func TestPruneRequests(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		require.NoError(t, repo.AppendAPIRequest(ctx, APIRequestEventData{Method: "GET", Path: "/ranking", Status: 200, Success: true}))
	}

	require.NoError(t, repo.PruneRequests(ctx, 5))
	events, err := repo.RecentRequests(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 5)

	// Fewer than keep is a no-op.
	require.NoError(t, repo.PruneRequests(ctx, 50))
	events, err = repo.RecentRequests(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 5)
}
