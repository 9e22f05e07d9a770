// Package progress keeps the learner's in-flight answers for a course so an
// interrupted attempt can be offered for restore.
package progress

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/abhisek/learnhub/internal/kv"
)

const keyPrefix = "progress.course."

// Answers maps question ID to selected option ID.
type Answers map[int64]int64

// Snapshot is the stored form of one course's answers.
type Snapshot struct {
	Answers   Answers   `json:"answers"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cache persists answer snapshots per course. Reads never fail: missing or
// unreadable data is reported as absent.
type Cache struct {
	store kv.Store
	now   func() time.Time
}

// New creates a Cache over store.
func New(store kv.Store) *Cache {
	return &Cache{store: store, now: time.Now}
}

// Key returns the storage key for a course.
func Key(courseID int64) string {
	return keyPrefix + strconv.FormatInt(courseID, 10)
}

// Persist overwrites the snapshot for courseID. Failures are logged and
// otherwise ignored.
func (c *Cache) Persist(ctx context.Context, courseID int64, answers Answers) {
	data, err := json.Marshal(Snapshot{Answers: answers, UpdatedAt: c.now().UTC()})
	if err != nil {
		slog.Warn("encode progress", "course", courseID, "err", err)
		return
	}
	if err := c.store.Set(ctx, Key(courseID), string(data)); err != nil {
		slog.Warn("persist progress", "course", courseID, "err", err)
	}
}

// Snapshot returns the stored snapshot and whether one was found.
func (c *Cache) Snapshot(ctx context.Context, courseID int64) (Snapshot, bool) {
	raw, ok, err := c.store.Get(ctx, Key(courseID))
	if err != nil {
		slog.Warn("read progress", "course", courseID, "err", err)
		return Snapshot{}, false
	}
	if !ok {
		return Snapshot{}, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		slog.Warn("discarding unreadable progress", "course", courseID, "err", err)
		return Snapshot{}, false
	}
	if snap.Answers == nil {
		snap.Answers = Answers{}
	}
	return snap, true
}

// Load returns the saved answers for courseID, or an empty map.
func (c *Cache) Load(ctx context.Context, courseID int64) Answers {
	snap, ok := c.Snapshot(ctx, courseID)
	if !ok {
		return Answers{}
	}
	return snap.Answers
}

// Has reports whether a non-empty snapshot exists for courseID.
func (c *Cache) Has(ctx context.Context, courseID int64) bool {
	snap, ok := c.Snapshot(ctx, courseID)
	return ok && len(snap.Answers) > 0
}

// Clear removes the snapshot for courseID.
func (c *Cache) Clear(ctx context.Context, courseID int64) {
	if err := c.store.Remove(ctx, Key(courseID)); err != nil {
		slog.Warn("clear progress", "course", courseID, "err", err)
	}
}
