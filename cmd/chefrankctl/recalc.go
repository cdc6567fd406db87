package main

import (
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
)

var recalcTop int

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate every active chef's score and rank",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		res, err := e.sched.Recalculate(ctx, metrics.TriggerCLI)
		if err != nil {
			return err
		}
		return renderRanking(cmd.OutOrStdout(), res, recalcTop)
	},
}

func init() {
	recalcCmd.Flags().IntVarP(&recalcTop, "top", "n", 25, "Show only the top N chefs (0 for all)")
	rootCmd.AddCommand(recalcCmd)
}
