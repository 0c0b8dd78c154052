package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyquest/internal/config"
	"github.com/abhisek/studyquest/internal/economy"
	"github.com/abhisek/studyquest/internal/engine"
	"github.com/abhisek/studyquest/internal/logger"
	"github.com/abhisek/studyquest/internal/store"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Print the leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLeaderboard(cmd)
	},
}

func init() {
	leaderboardCmd.Flags().String("metric", "coins", "Ranking metric: coins, level, or streak")
	leaderboardCmd.Flags().Int("limit", 10, "Number of rows to print")
}

func runLeaderboard(cmd *cobra.Command) error {
	raw, _ := cmd.Flags().GetString("metric")
	metric, ok := economy.ParseMetric(raw)
	if !ok {
		return fmt.Errorf("unknown metric %q", raw)
	}
	limit, _ := cmd.Flags().GetInt("limit")

	eng, closeFn, err := openEngine(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := eng.Leaderboard(cmd.Context(), metric, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No students yet.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%3d. %-24s %d %s\n", e.Rank, e.StudentID, e.Score, metric)
	}
	return nil
}

// openEngine loads config, opens the store, and wires the engine for
// one-shot commands. The returned func releases everything.
func openEngine(cmd *cobra.Command) (*engine.Engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		st.Close()
		log.Sync()
	}
	return engine.New(cfg, st, log), closeFn, nil
}
