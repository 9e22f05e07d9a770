package leaderboard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/learnhub/internal/api"
)

type fakeBackend struct {
	ranking []api.RankEntry
	achv    *api.AchievementsResponse
	err     error
}

func (f fakeBackend) Ranking(context.Context) ([]api.RankEntry, error) {
	return f.ranking, f.err
}

func (f fakeBackend) Achievements(context.Context) (*api.AchievementsResponse, error) {
	return f.achv, f.err
}

func TestSortRanking(t *testing.T) {
	in := []api.RankEntry{
		{Rank: 2, Username: "zed", Score: 50},
		{Rank: 1, Username: "ada", Score: 90},
		{Rank: 2, Username: "bob", Score: 60},
		{Rank: 2, Username: "amy", Score: 60},
	}
	got := SortRanking(in)

	names := make([]string, len(got))
	for i, e := range got {
		names[i] = e.Username
	}
	assert.Equal(t, []string{"ada", "amy", "bob", "zed"}, names)
	assert.Equal(t, "zed", in[0].Username, "input is not reordered")
}

func TestHighlight(t *testing.T) {
	entries := []api.RankEntry{{Username: "ada"}, {Username: "Grace"}}
	assert.Equal(t, 1, Highlight(entries, "grace"))
	assert.Equal(t, -1, Highlight(entries, "bob"))
}

func TestGroupAchievements(t *testing.T) {
	items := []api.Achievement{
		{ID: "n2", Type: TypeCourseNewbie, Target: 5},
		{ID: "q1", Type: "quiz_master", Target: 1},
		{ID: "s30", Type: TypeLoginStreak, Target: 30},
		{ID: "b1", Type: "bookworm", Target: 3},
		{ID: "s7", Type: TypeLoginStreak, Target: 7},
		{ID: "n1", Type: TypeCourseNewbie, Target: 1},
	}
	groups := GroupAchievements(items)
	require.Len(t, groups, 4)

	assert.Equal(t, TypeLoginStreak, groups[0].Type)
	assert.Equal(t, "Login streak", groups[0].Title)
	assert.Equal(t, "s7", groups[0].Items[0].ID)
	assert.Equal(t, "s30", groups[0].Items[1].ID)

	assert.Equal(t, TypeCourseNewbie, groups[1].Type)
	assert.Equal(t, "n1", groups[1].Items[0].ID)

	assert.Equal(t, "bookworm", groups[2].Type)
	assert.Equal(t, "quiz_master", groups[3].Type)
	assert.Equal(t, "Quiz master", groups[3].Title)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name string
		a    api.Achievement
		want float64
	}{
		{"half", api.Achievement{Progress: 3, Target: 6}, 0.5},
		{"overshoot", api.Achievement{Progress: 12, Target: 7}, 1},
		{"negative", api.Achievement{Progress: -2, Target: 7}, 0},
		{"zero target locked", api.Achievement{}, 0},
		{"zero target unlocked", api.Achievement{Unlocked: true}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Percent(tt.a), 1e-9)
		})
	}
}

func TestProgressLabel(t *testing.T) {
	assert.Equal(t, "7 / 7", ProgressLabel(api.Achievement{Progress: 12, Target: 7}))
	assert.Equal(t, "2 / 7", ProgressLabel(api.Achievement{Progress: 2, Target: 7}))
}

func TestBoard(t *testing.T) {
	ctx := context.Background()
	b := New(fakeBackend{
		ranking: []api.RankEntry{{Rank: 2, Username: "b"}, {Rank: 1, Username: "a"}},
		achv: &api.AchievementsResponse{
			LoginStreakDays: 4,
			Achievements: []api.Achievement{
				{ID: "s7", Type: TypeLoginStreak, Target: 7, Progress: 4},
				{ID: "n1", Type: TypeCourseNewbie, Target: 1, Progress: 1, Unlocked: true},
			},
		},
	})

	ranking, err := b.Ranking(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", ranking[0].Username)

	achv, err := b.Achievements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, achv.LoginStreakDays)
	assert.Len(t, achv.Groups, 2)
	assert.Equal(t, 1, achv.Unlocked())
}

func TestBoardErrors(t *testing.T) {
	b := New(fakeBackend{err: errors.New("boom")})
	_, err := b.Ranking(context.Background())
	assert.Error(t, err)
	_, err = b.Achievements(context.Background())
	assert.Error(t, err)
}
