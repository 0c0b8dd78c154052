package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard <student-id>",
	Short: "Print a student's progress dashboard",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, closeFn, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		dash, err := eng.GetDashboard(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Student:  %s (rank #%d)\n", dash.StudentID, dash.Rank)
		fmt.Printf("Level:    %d (%.0f%% to next)\n", dash.Level, dash.LevelProgress*100)
		fmt.Printf("Coins:    %d (lifetime %d)\n", dash.Coins, dash.TotalCoins)
		fmt.Printf("XP:       %d\n", dash.XP)
		fmt.Printf("Streak:   %d days (best %d)\n", dash.Streak, dash.LongestStreak)
		fmt.Printf("Quizzes:  %d, study time %d min\n", dash.TotalQuizzes, dash.StudyMinutes)

		var unlocked []string
		for _, a := range dash.Achievements {
			if a.Unlocked {
				unlocked = append(unlocked, a.Name)
			}
		}
		if len(unlocked) > 0 {
			fmt.Printf("Badges:   %s\n", strings.Join(unlocked, ", "))
		}

		if len(dash.WeakTopics) > 0 {
			fmt.Println("Needs practice:")
			subjects := make([]string, 0, len(dash.WeakTopics))
			for s := range dash.WeakTopics {
				subjects = append(subjects, s)
			}
			sort.Strings(subjects)
			for _, s := range subjects {
				for _, w := range dash.WeakTopics[s] {
					fmt.Printf("  %s/%s (%.0f%%)\n", s, w.Topic, w.Accuracy)
				}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
