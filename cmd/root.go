package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/studyquest/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studyquest",
	Short: "Adaptive learning and gamification engine",
	Long:  "StudyQuest — adaptive quizzes, coins, streaks, and parental controls for young learners.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYQUEST_DB env var)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then STUDYQUEST_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
