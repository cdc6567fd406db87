package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/seed"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load chef records from a YAML fixture",
	Long: `Creates the chefs in a YAML fixture along with their accolades, career
entries, public signals and peer standings. The whole fixture is written in
one transaction. Scores are not recalculated; run recalc afterwards.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		var sum seed.Summary
		err = e.store.WithTx(ctx, func(tx store.Store) error {
			w, ok := tx.(store.RecordWriter)
			if !ok {
				return fmt.Errorf("store %T does not accept record writes", tx)
			}
			sum, err = seed.Apply(ctx, w, f)
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", sum)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Fixture file (YAML)")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
