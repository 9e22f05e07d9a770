package api

import (
	"context"
	"net/http"
)

// Achievements lists achievement progress of the token owner.
func (c *Client) Achievements(ctx context.Context) (*AchievementsResponse, error) {
	var out AchievementsResponse
	if err := c.do(ctx, call{op: "achievements", method: http.MethodGet, path: "/achievements", authed: true}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Ranking fetches the leaderboard.
func (c *Client) Ranking(ctx context.Context) ([]RankEntry, error) {
	var out []RankEntry
	if err := c.do(ctx, call{op: "ranking", method: http.MethodGet, path: "/ranking", authed: true}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
