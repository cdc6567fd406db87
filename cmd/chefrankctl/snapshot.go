package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
)

var (
	snapshotMonth string
	snapshotNotes string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Publish or inspect monthly ranking snapshots",
}

var snapshotPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Recalculate and publish the snapshot for a month",
	Long: `Recalculates every chef and records the resulting ranking under the given
month (default: the current UTC month). Publishing a month again replaces its
entries; deltas are always taken against the latest earlier month.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		month := snapshotMonth
		if month == "" {
			month = scheduler.CurrentMonth(time.Now())
		}
		res, err := e.sched.PublishSnapshot(ctx, month, snapshotNotes, metrics.TriggerCLI)
		if err != nil {
			return err
		}
		return renderSnapshotResult(cmd.OutOrStdout(), res)
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		snaps, err := e.store.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		return renderSnapshots(cmd.OutOrStdout(), snaps)
	},
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show MONTH",
	Short: "Show one month's snapshot entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := openEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		snap, err := e.store.FindSnapshotByMonth(ctx, args[0])
		if err != nil {
			return err
		}
		if snap == nil {
			return fmt.Errorf("no snapshot for %s", args[0])
		}
		if snap.Entries, err = e.store.ListSnapshotEntries(ctx, snap.ID); err != nil {
			return err
		}
		return renderSnapshotEntries(cmd.OutOrStdout(), snap)
	},
}

func init() {
	snapshotPublishCmd.Flags().StringVarP(&snapshotMonth, "month", "m", "", "Snapshot month, YYYY-MM")
	snapshotPublishCmd.Flags().StringVar(&snapshotNotes, "notes", "", "Editorial notes stored with the snapshot")

	snapshotCmd.AddCommand(snapshotPublishCmd, snapshotListCmd, snapshotShowCmd)
	rootCmd.AddCommand(snapshotCmd)
}
