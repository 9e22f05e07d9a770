package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/abhisek/learnhub/internal/config"
	"github.com/abhisek/learnhub/internal/kv"
	"github.com/abhisek/learnhub/internal/leaderboard"
	"github.com/abhisek/learnhub/internal/license"
	"github.com/abhisek/learnhub/internal/progress"
	"github.com/abhisek/learnhub/internal/quiz"
	"github.com/abhisek/learnhub/internal/store"
)

// State is the application-state container shared by the TUI and the CLI
// commands. Every service is built once here and handed to the screens that
// need it.
type State struct {
	Config   config.Config
	Store    *store.Store
	Client   *api.Client
	Auth     *auth.Manager
	Progress *progress.Cache
	Explorer *quiz.Explorer
	Gate     *license.Gate
	Board    *leaderboard.Board
	Events   store.EventRepo
}

// NewState opens the local store and wires the services for cfg.
func NewState(cfg config.Config) (*State, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if err := store.EnsureDir(cfg.DBPath); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return newState(cfg, st), nil
}

func newState(cfg config.Config, st *store.Store) *State {
	events := st.EventRepo()
	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.Timeout),
		api.WithRecorder(events),
	)
	mgr := auth.NewManager(client, st.KV(), kv.NewMemory())
	client.OnUnauthorized(mgr.Expire)

	cache := progress.New(st.KV())
	return &State{
		Config:   cfg,
		Store:    st,
		Client:   client,
		Auth:     mgr,
		Progress: cache,
		Explorer: quiz.NewExplorer(client, cache, cfg.ContentPreview),
		Gate:     license.NewGate(client, mgr),
		Board:    leaderboard.New(client),
		Events:   events,
	}
}

// Close trims the request log and closes the store.
func (s *State) Close() error {
	if s.Config.RequestLogKeep > 0 {
		if err := s.Events.PruneRequests(context.Background(), s.Config.RequestLogKeep); err != nil {
			slog.Warn("failed to prune request log", "err", err)
		}
	}
	return s.Store.Close()
}
