/*
Copyright © 2023 Jonathan Taylor <jonrtaylor12@gmail.com>
*/

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"platecalc/batch"
)

var (
	batchPurpose string
	batchWorkers int
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <plate file>...",
	Short: "Runs one purpose's calculation over many plate files",
	Long: `Calculates every plate file concurrently. A plate that fails is reported
and does not stop the rest. The number of workers defaults to the config's
workers setting, or $PLATECALC_WORKERS.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

func runBatch(ctx context.Context, w io.Writer, paths []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	purpose, err := cfg.Purpose(batchPurpose)
	if err != nil {
		return err
	}
	calc, err := purpose.Calculator()
	if err != nil {
		return fmt.Errorf("purpose %q: %w", batchPurpose, err)
	}
	dest, err := purpose.Destination()
	if err != nil {
		return err
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = cfg.Workers
	}

	runner := batch.NewRunner(calc, dest, batch.WithWorkers(workers), batch.WithLogger(logger))
	results, err := runner.Run(ctx, paths)
	if err != nil {
		return err
	}

	failed := 0
	t := newTable(w, "plate", "barcode", "child_uuid", "transfers", "error")
	for _, res := range results {
		if res.Err != nil {
			failed++
			t.row(res.Path, res.Barcode, "-", "-", res.Err)
			continue
		}
		t.row(res.Path, res.Barcode, res.ChildUUID, len(res.Requests), "")
	}
	if err := t.flush(); err != nil {
		return err
	}
	printer.Fprintf(w, "%d of %d plates calculated\n", len(results)-failed, len(results))
	if failed > 0 {
		return fmt.Errorf("%d plates failed", failed)
	}
	return nil
}

func init() {
	batchCmd.Flags().StringVarP(&batchPurpose, "purpose", "p", "", "purpose of the child plates")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "plates calculated at once")
	_ = batchCmd.MarkFlagRequired("purpose")
	rootCmd.AddCommand(batchCmd)
}
