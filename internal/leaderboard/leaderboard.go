// Package leaderboard prepares the ranking table and achievement groups for
// display.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/learnhub/internal/api"
)

// Achievement categories with a fixed position at the top of the list.
const (
	TypeLoginStreak  = "login_streak"
	TypeCourseNewbie = "course_newbie"
)

var typeOrder = map[string]int{
	TypeLoginStreak:  0,
	TypeCourseNewbie: 1,
}

// Backend is the subset of the REST client the board reads from.
type Backend interface {
	Ranking(ctx context.Context) ([]api.RankEntry, error)
	Achievements(ctx context.Context) (*api.AchievementsResponse, error)
}

// Group is one achievement category.
type Group struct {
	Type  string
	Title string
	Items []api.Achievement
}

// Achievements is the grouped achievement view.
type Achievements struct {
	LoginStreakDays int
	Groups          []Group
}

// Unlocked returns how many achievements are unlocked across all groups.
func (a Achievements) Unlocked() int {
	n := 0
	for _, g := range a.Groups {
		for _, it := range g.Items {
			if it.Unlocked {
				n++
			}
		}
	}
	return n
}

// Board is a read-only view over ranking and achievements.
type Board struct {
	backend Backend
}

// New creates a Board.
func New(backend Backend) *Board {
	return &Board{backend: backend}
}

// Ranking returns the leaderboard in display order.
func (b *Board) Ranking(ctx context.Context) ([]api.RankEntry, error) {
	entries, err := b.backend.Ranking(ctx)
	if err != nil {
		return nil, err
	}
	return SortRanking(entries), nil
}

// Achievements returns achievements grouped by category.
func (b *Board) Achievements(ctx context.Context) (Achievements, error) {
	resp, err := b.backend.Achievements(ctx)
	if err != nil {
		return Achievements{}, err
	}
	return Achievements{
		LoginStreakDays: resp.LoginStreakDays,
		Groups:          GroupAchievements(resp.Achievements),
	}, nil
}

// SortRanking returns a copy of entries ordered by rank, then score
// descending, then username.
func SortRanking(entries []api.RankEntry) []api.RankEntry {
	out := make([]api.RankEntry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Username < b.Username
	})
	return out
}

// Highlight returns the index of username's row, or -1.
func Highlight(entries []api.RankEntry, username string) int {
	for i, e := range entries {
		if strings.EqualFold(e.Username, username) {
			return i
		}
	}
	return -1
}

// GroupAchievements buckets items by type. Login streak comes first, then
// course newbie, then any other type alphabetically. Items within a group
// are ordered by target.
func GroupAchievements(items []api.Achievement) []Group {
	byType := make(map[string][]api.Achievement)
	for _, it := range items {
		byType[it.Type] = append(byType[it.Type], it)
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		oi, iFixed := typeOrder[types[i]]
		oj, jFixed := typeOrder[types[j]]
		switch {
		case iFixed && jFixed:
			return oi < oj
		case iFixed != jFixed:
			return iFixed
		}
		return types[i] < types[j]
	})

	groups := make([]Group, 0, len(types))
	for _, t := range types {
		list := byType[t]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Target < list[j].Target })
		groups = append(groups, Group{Type: t, Title: GroupTitle(t), Items: list})
	}
	return groups
}

// GroupTitle is the heading for an achievement type.
func GroupTitle(typ string) string {
	switch typ {
	case TypeLoginStreak:
		return "Login streak"
	case TypeCourseNewbie:
		return "Course newbie"
	}
	words := strings.Fields(strings.ReplaceAll(typ, "_", " "))
	if len(words) == 0 {
		return "Other"
	}
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

// Percent is progress/target clamped to [0, 1].
func Percent(a api.Achievement) float64 {
	if a.Target <= 0 {
		if a.Unlocked {
			return 1
		}
		return 0
	}
	p := float64(a.Progress) / float64(a.Target)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// ProgressLabel renders "3 / 7", capping progress at the target.
func ProgressLabel(a api.Achievement) string {
	progress := a.Progress
	if a.Target > 0 && progress > a.Target {
		progress = a.Target
	}
	return fmt.Sprintf("%d / %d", progress, a.Target)
}
