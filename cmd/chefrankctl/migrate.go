package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		if err := store.RunMigrations(cfg.Database.URL, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
