package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/kv"
)

func TestPersistThenLoad(t *testing.T) {
	ctx := context.Background()
	c := New(kv.NewMemory())

	want := Answers{1: 2, 3: 9, 4: 13}
	c.Persist(ctx, 10, want)

	assert.Equal(t, want, c.Load(ctx, 10))
	assert.True(t, c.Has(ctx, 10))
	assert.Empty(t, c.Load(ctx, 11))
}

func TestPersistOverwrites(t *testing.T) {
	ctx := context.Background()
	c := New(kv.NewMemory())

	c.Persist(ctx, 10, Answers{1: 2})
	c.Persist(ctx, 10, Answers{1: 5, 2: 7})
	assert.Equal(t, Answers{1: 5, 2: 7}, c.Load(ctx, 10))
}

func TestSnapshotCarriesTimestamp(t *testing.T) {
	ctx := context.Background()
	c := New(kv.NewMemory())
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	c.Persist(ctx, 10, Answers{1: 2})
	snap, ok := c.Snapshot(ctx, 10)
	require.True(t, ok)
	assert.True(t, fixed.Equal(snap.UpdatedAt))
}

func TestCorruptDataIsAbsent(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, Key(10), "{not json"))

	c := New(store)
	assert.Empty(t, c.Load(ctx, 10))
	assert.False(t, c.Has(ctx, 10))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	c := New(kv.NewMemory())

	c.Persist(ctx, 10, Answers{1: 2})
	c.Clear(ctx, 10)
	assert.False(t, c.Has(ctx, 10))
	assert.Empty(t, c.Load(ctx, 10))
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk gone")
}
func (failingStore) Set(context.Context, string, string) error { return errors.New("disk gone") }
func (failingStore) Remove(context.Context, string) error      { return errors.New("disk gone") }

func TestStoreFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	c := New(failingStore{})

	assert.NotPanics(t, func() {
		c.Persist(ctx, 10, Answers{1: 2})
		c.Clear(ctx, 10)
	})
	assert.Empty(t, c.Load(ctx, 10))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "progress.course.42", Key(42))
}
