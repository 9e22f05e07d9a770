package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abhisek/learnhub/internal/leaderboard"
	"github.com/spf13/cobra"
)

var subjectsCmd = &cobra.Command{
	Use:   "subjects [subject-id]",
	Short: "List subjects, or the courses of one subject",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		ctx := cmd.Context()
		if err := requireSession(ctx, state); err != nil {
			return cliError(err)
		}

		if len(args) == 1 {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid subject id %q", args[0])
			}
			courses, err := state.Client.Courses(ctx, id)
			if err != nil {
				return cliError(err)
			}
			scores := state.Auth.User().CompletedCourseScores

			fmt.Printf("%6s  %-40s  %-12s  %s\n", "ID", "Title", "Difficulty", "Best")
			fmt.Println(strings.Repeat("─", 72))
			for _, c := range courses {
				best := "-"
				if s, ok := scores[c.ID]; ok {
					best = strconv.Itoa(s)
				}
				fmt.Printf("%6d  %-40s  %-12s  %s\n", c.ID, truncate(c.Title, 40), c.Difficulty, best)
			}
			fmt.Printf("\n%d courses\n", len(courses))
			return nil
		}

		subjects, err := state.Client.Subjects(ctx)
		if err != nil {
			return cliError(err)
		}
		fmt.Printf("%6s  %-24s  %s\n", "ID", "Name", "Description")
		fmt.Println(strings.Repeat("─", 72))
		for _, s := range subjects {
			fmt.Printf("%6d  %-24s  %s\n", s.ID, truncate(s.Name, 24), truncate(s.Description, 38))
		}
		fmt.Printf("\n%d subjects\n", len(subjects))
		return nil
	},
}

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "Show the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		ctx := cmd.Context()
		if err := requireSession(ctx, state); err != nil {
			return cliError(err)
		}
		entries, err := state.Board.Ranking(ctx)
		if err != nil {
			return cliError(err)
		}

		own := leaderboard.Highlight(entries, state.Auth.User().Username)
		fmt.Printf("%-6s  %-30s  %8s\n", "Rank", "Learner", "Score")
		fmt.Println(strings.Repeat("─", 48))
		for i, e := range entries {
			marker := ""
			if i == own {
				marker = "  <- you"
			}
			fmt.Printf("#%-5d  %-30s  %8d%s\n", e.Rank, truncate(e.Username, 30), e.Score, marker)
		}
		return nil
	},
}

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		state, closeState, err := openState(cmd)
		if err != nil {
			return err
		}
		defer closeState()

		ctx := cmd.Context()
		if err := requireSession(ctx, state); err != nil {
			return cliError(err)
		}
		ach, err := state.Board.Achievements(ctx)
		if err != nil {
			return cliError(err)
		}

		fmt.Printf("Login streak: %d days\n", ach.LoginStreakDays)
		for _, g := range ach.Groups {
			fmt.Printf("\n%s\n", g.Title)
			for _, a := range g.Items {
				mark := " "
				if a.Unlocked {
					mark = "x"
				}
				fmt.Printf("  [%s] %-32s %8s\n", mark, truncate(a.Title, 32), leaderboard.ProgressLabel(a))
			}
		}
		fmt.Printf("\n%d unlocked\n", ach.Unlocked())
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
