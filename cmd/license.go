package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/app"
	"github.com/abhisek/learnhub/internal/license"
	"github.com/spf13/cobra"
)

var licenseCmd = &cobra.Command{
	Use:   "license",
	Short: "Manage the license that unlocks certificates",
}

var licenseStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether certificates are unlocked",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(cmd, func(state *app.State, st license.State) error {
			printGate(st)
			return nil
		})
	},
}

var licenseRequestCmd = &cobra.Command{
	Use:   "request",
	Short: "Ask for a license code to be sent by email",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(cmd, func(state *app.State, st license.State) error {
			if st.Unlocked() {
				fmt.Println("You already have a license.")
				return nil
			}
			next, err := state.Gate.RequestLicense(cmd.Context())
			if err != nil {
				return cliError(err)
			}
			printGate(next)
			return nil
		})
	},
}

var licenseRedeemCmd = &cobra.Command{
	Use:   "redeem <code>",
	Short: "Redeem a license code",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(cmd, func(state *app.State, st license.State) error {
			next, err := state.Gate.Redeem(cmd.Context(), args[0])
			if err != nil {
				return cliError(err)
			}
			printGate(next)
			return nil
		})
	},
}

var certificateCmd = &cobra.Command{
	Use:   "certificate",
	Short: "List and download subject certificates",
}

var certificateListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show certificate eligibility per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withGate(cmd, func(state *app.State, st license.State) error {
			entries, err := state.Gate.Eligibility(cmd.Context())
			if err != nil {
				return cliError(err)
			}
			verbose, _ := cmd.Flags().GetBool("courses")
			fmt.Printf("%6s  %-24s  %9s  %s\n", "ID", "Subject", "Courses", "Status")
			fmt.Println(strings.Repeat("─", 56))
			for _, e := range entries {
				status := "in progress"
				if e.Eligible {
					status = "ready"
				}
				fmt.Printf("%6d  %-24s  %4d/%-4d  %s\n",
					e.SubjectID, truncate(e.SubjectName, 24), e.CompletedCourses, e.TotalCourses, status)
				if verbose {
					for _, c := range e.Courses {
						fmt.Printf("%8s✓ %-32s  score %d\n", "", truncate(c.CourseTitle, 32), c.Score)
					}
				}
			}
			return nil
		})
	},
}

var certificateDownloadCmd = &cobra.Command{
	Use:   "download <subject-id>",
	Short: "Download a subject certificate as PDF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subjectID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid subject id %q", args[0])
		}
		return withGate(cmd, func(state *app.State, st license.State) error {
			ctx := cmd.Context()
			entries, err := state.Gate.Eligibility(ctx)
			if err != nil {
				return cliError(err)
			}
			var entry *api.SubjectEligibility
			for i := range entries {
				if entries[i].SubjectID == subjectID {
					entry = &entries[i]
				}
			}
			if entry == nil {
				return fmt.Errorf("no subject with id %d", subjectID)
			}

			meta, err := state.Gate.Certificate(ctx, *entry)
			if err != nil {
				return cliError(err)
			}
			dir, _ := cmd.Flags().GetString("out")
			if dir == "" {
				dir = state.Config.ExportDir
			}
			path, err := state.Gate.Export(ctx, meta, dir)
			if err != nil {
				return cliError(err)
			}
			fmt.Printf("Saved %s's certificate to %s\n", meta.Recipient(), path)
			return nil
		})
	},
}

func init() {
	licenseCmd.AddCommand(licenseStatusCmd)
	licenseCmd.AddCommand(licenseRequestCmd)
	licenseCmd.AddCommand(licenseRedeemCmd)

	certificateListCmd.Flags().Bool("courses", false, "Also list the completed courses of each subject")
	certificateDownloadCmd.Flags().String("out", "", "Directory to write the PDF to (default: LEARNHUB_EXPORT_DIR)")
	certificateCmd.AddCommand(certificateListCmd)
	certificateCmd.AddCommand(certificateDownloadCmd)
}

// withGate restores the session, evaluates the license gate and runs fn.
func withGate(cmd *cobra.Command, fn func(*app.State, license.State) error) error {
	state, closeState, err := openState(cmd)
	if err != nil {
		return err
	}
	defer closeState()

	ctx := cmd.Context()
	if err := requireSession(ctx, state); err != nil {
		return cliError(err)
	}
	st := state.Gate.Evaluate(ctx, state.Auth.User())
	if st.Kind == license.KindError {
		return fmt.Errorf("check license: %s", st.Message)
	}
	return fn(state, st)
}

func printGate(st license.State) {
	switch {
	case st.Unlocked():
		fmt.Println("License active: certificates are unlocked.")
	case st.PendingRequest:
		fmt.Println("No license yet. A license request is pending.")
		if st.PendingCode != "" {
			fmt.Println("Code:", st.PendingCode)
		}
	default:
		fmt.Println("No license yet. Run: learnhub license request")
	}
	if st.Message != "" && !st.Unlocked() {
		fmt.Println(st.Message)
	}
}
