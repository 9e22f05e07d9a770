package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/learnhub/internal/api"
	"github.com/abhisek/learnhub/internal/auth"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in and remember the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFlag(cmd, "password")
		if err != nil {
			return err
		}

		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		sess, err := state.Auth.Login(cmd.Context(), args[0], password, true)
		if err != nil {
			return cliError(err)
		}
		fmt.Printf("Logged in as %s.\n", sess.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		state.Auth.Logout(cmd.Context())
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		if err := requireSession(cmd.Context(), state); err != nil {
			return cliError(err)
		}
		u := state.Auth.User()
		fmt.Printf("%-14s %s\n", "Username", u.Username)
		fmt.Printf("%-14s %s\n", "Email", u.Email)
		fmt.Printf("%-14s %d\n", "Score", u.Profile.Score)
		if u.Profile.Rank > 0 {
			fmt.Printf("%-14s #%d\n", "Rank", u.Profile.Rank)
		}
		fmt.Printf("%-14s %d days\n", "Login streak", u.Profile.LoginStreakDays)
		fmt.Printf("%-14s %d\n", "Courses done", len(u.CompletedCourseScores))
		fmt.Printf("%-14s %t\n", "License", u.HasLicense())
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, err := passwordFlag(cmd, "password")
		if err != nil {
			return err
		}
		lic, _ := cmd.Flags().GetString("license")

		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		user, err := state.Auth.Register(cmd.Context(), auth.RegisterInput{
			Username:   args[0],
			Email:      args[1],
			Password:   password,
			Confirm:    password,
			License:    lic,
			RememberMe: true,
		})
		if err != nil {
			return cliError(err)
		}
		fmt.Printf("Welcome, %s! You are logged in.\n", user.Username)
		return nil
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "password-reset <email>",
	Short: "Request a password reset link, or finish a reset with --token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token, _ := cmd.Flags().GetString("token")
		var password string
		if token != "" {
			var err error
			if password, err = passwordFlag(cmd, "password"); err != nil {
				return err
			}
		}

		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		var msg string
		if token != "" {
			msg, err = state.Auth.ConfirmPasswordReset(cmd.Context(), auth.ResetInput{
				Token:    token,
				Email:    args[0],
				Password: password,
				Confirm:  password,
			})
		} else {
			msg, err = state.Auth.RequestPasswordReset(cmd.Context(), args[0])
		}
		if err != nil {
			return cliError(err)
		}
		fmt.Println(msg)
		return nil
	},
}

var pictureCmd = &cobra.Command{
	Use:   "picture",
	Short: "Save or remove your profile picture",
}

var pictureSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Download your profile picture",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		if err := requireSession(cmd.Context(), state); err != nil {
			return cliError(err)
		}
		dir, _ := cmd.Flags().GetString("out")
		if dir == "" {
			dir = state.Config.ExportDir
		}
		path, err := state.Auth.SaveProfilePicture(cmd.Context(), dir)
		if err != nil {
			return cliError(err)
		}
		fmt.Printf("Saved profile picture to %s\n", path)
		return nil
	},
}

var pictureRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Delete your profile picture",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		if err := requireSession(cmd.Context(), state); err != nil {
			return cliError(err)
		}
		if err := state.Auth.RemoveProfilePicture(cmd.Context()); err != nil {
			return cliError(err)
		}
		fmt.Println("Profile picture removed.")
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().String("password", "", "Password (read from stdin when omitted)")
	registerCmd.Flags().String("license", "", "License code to redeem on sign-up")
	passwordResetCmd.Flags().String("token", "", "Reset token from the emailed link")
	passwordResetCmd.Flags().String("password", "", "New password with --token (read from stdin when omitted)")
	pictureSaveCmd.Flags().String("out", "", "Directory to save into (default: the export directory)")
	pictureCmd.AddCommand(pictureSaveCmd, pictureRemoveCmd)
}

// passwordFlag returns the flag value, or the first line of stdin.
func passwordFlag(cmd *cobra.Command, name string) (string, error) {
	if p, _ := cmd.Flags().GetString(name); p != "" {
		return p, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	return readLine(cmd.InOrStdin())
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// cliError turns backend and validation errors into one readable line per
// problem.
func cliError(err error) error {
	var ve *api.ValidationError
	if errors.As(err, &ve) && len(ve.Fields) > 0 {
		return errors.New(ve.Error())
	}
	if errors.Is(err, errNotLoggedIn) || errors.Is(err, auth.ErrNoProfilePicture) {
		return err
	}
	return errors.New(api.Message(err))
}
