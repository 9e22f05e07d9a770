package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/learnhub/internal/app"
	"github.com/spf13/cobra"
)

// runApp opens the store, checks the backend and launches the TUI.
func runApp(cmd *cobra.Command) error {
	state, closeState, err := openState(cmd)
	if err != nil {
		return err
	}
	defer closeState()

	// Warn only; the TUI still starts.
	if err := state.Client.CheckCompatibility(cmd.Context(), state.Config.MinAPIVersion); err != nil {
		fmt.Fprintln(os.Stderr, "Backend check failed:", err)
	}

	return app.Run(state)
}
