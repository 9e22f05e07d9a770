package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/abhisek/learnhub/internal/app"
	"github.com/abhisek/learnhub/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "learnhub",
	Short: "Learn, quiz yourself and earn certificates from the terminal",
	Long: "learnhub is a terminal client for the learnhub platform: browse subjects and courses,\n" +
		"answer verified quizzes, track your ranking and export certificates.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LEARNHUB_DB env var)")
	rootCmd.PersistentFlags().String("api", "", "Backend base URL (overrides LEARNHUB_API_URL env var)")
	rootCmd.PersistentFlags().Bool("debug", false, "Write debug-level logs")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(passwordResetCmd)
	rootCmd.AddCommand(pictureCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(rankingCmd)
	rootCmd.AddCommand(achievementsCmd)
	rootCmd.AddCommand(licenseCmd)
	rootCmd.AddCommand(certificateCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveConfig loads the config and applies --db and --api, which take
// priority over the environment.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if u, _ := cmd.Flags().GetString("api"); u != "" {
		cfg.APIURL = u
	}
	return cfg, nil
}

// openState builds the application state with logging set up. The returned
// function closes both.
func openState(cmd *cobra.Command) (*app.State, func(), error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		level = slog.LevelDebug
	}
	closeLog, err := app.SetupLogging(cfg.LogPath, level)
	if err != nil {
		return nil, nil, err
	}

	state, err := app.NewState(cfg)
	if err != nil {
		closeLog()
		return nil, nil, err
	}
	return state, func() {
		if err := state.Close(); err != nil {
			slog.Warn("close state", "err", err)
		}
		closeLog()
	}, nil
}

var errNotLoggedIn = errors.New("not logged in (run: learnhub login <username>)")

// requireSession restores the stored session for commands that need one.
func requireSession(ctx context.Context, state *app.State) error {
	if err := state.Auth.Init(ctx); err != nil {
		return err
	}
	if !state.Auth.IsAuthenticated() {
		return errNotLoggedIn
	}
	return nil
}
