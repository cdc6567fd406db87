package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/seed"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var (
	scoreFile string
	scoreAt   string
	scoreTop  int
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rank a YAML fixture offline without a database",
	Long: `Loads a fixture into memory and ranks it under the default weights.
Useful for checking fixtures and weight changes before touching the database.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now().UTC()
		if scoreAt != "" {
			t, err := time.Parse(time.DateOnly, scoreAt)
			if err != nil {
				return err
			}
			now = t
		}
		res, err := scoreFixture(cmd.Context(), scoreFile, now, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		return renderRanking(cmd.OutOrStdout(), res, scoreTop)
	},
}

func scoreFixture(ctx context.Context, path string, now time.Time, logOut io.Writer) (*ranking.Result, error) {
	f, err := seed.LoadFile(path)
	if err != nil {
		return nil, err
	}

	_, logger, err := loadConfig(logOut)
	if err != nil {
		return nil, err
	}

	m := store.NewMemoryStore()
	m.SetClock(func() time.Time { return now })
	if _, err := seed.Apply(ctx, m, f); err != nil {
		return nil, err
	}

	e := ranking.NewEngine(m, logger)
	e.SetClock(func() time.Time { return now })
	return e.RecalculateAll(ctx, scoring.DefaultWeights())
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreFile, "file", "f", "", "Fixture file (YAML)")
	scoreCmd.Flags().StringVar(&scoreAt, "at", "", "Score as of this date, YYYY-MM-DD (default today)")
	scoreCmd.Flags().IntVarP(&scoreTop, "top", "n", 0, "Show only the top N chefs (0 for all)")
	_ = scoreCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(scoreCmd)
}
