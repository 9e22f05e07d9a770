package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("learnhub", version)

		check, _ := cmd.Flags().GetBool("check")
		if !check {
			return nil
		}
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		h, err := state.Client.Health(cmd.Context())
		if err != nil {
			return fmt.Errorf("reach backend: %w", err)
		}
		apiVersion := h.APIVersion
		if apiVersion == "" {
			apiVersion = "unknown"
		}
		fmt.Printf("backend %s (API %s)\n", state.Config.APIURL, apiVersion)
		if err := state.Client.CheckCompatibility(cmd.Context(), state.Config.MinAPIVersion); err != nil {
			return err
		}
		fmt.Println("backend is compatible")
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also check the backend's API version")
}
