package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
)

var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Show the effective scoring weights",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		w, err := e.engine.Weights(ctx)
		if err != nil {
			return err
		}
		return renderWeights(cmd.OutOrStdout(), w)
	},
}

var weightsSetCmd = &cobra.Command{
	Use:   "set CATEGORY=WEIGHT...",
	Short: "Update category weights and recalculate",
	Long: `Stores the given weights and recalculates every chef under them.
Categories not named keep their current weight. Weights that do not sum to
1.0 are accepted with a warning.

  chefrankctl weights set careerTrack=0.30 publicSignals=0.10`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		updates, err := parseWeightArgs(args)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		w, res, err := e.sched.UpdateWeights(ctx, updates, metrics.TriggerCLI)
		if err != nil {
			return err
		}
		if err := renderWeights(cmd.OutOrStdout(), w); err != nil {
			return err
		}
		if outputFormat == "table" {
			fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d chefs\n", len(res.Chefs))
		}
		return nil
	},
}

// parseWeightArgs reads CATEGORY=WEIGHT pairs. Category names are checked by
// the scheduler so the CLI and API share one list.
func parseWeightArgs(args []string) (map[string]float64, error) {
	updates := make(map[string]float64, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("expected CATEGORY=WEIGHT, got %q", arg)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("weight for %s: %w", k, err)
		}
		if _, dup := updates[k]; dup {
			return nil, fmt.Errorf("category %s given twice", k)
		}
		updates[k] = f
	}
	return updates, nil
}

func init() {
	weightsCmd.AddCommand(weightsSetCmd)
	rootCmd.AddCommand(weightsCmd)
}
