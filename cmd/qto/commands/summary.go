package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [model]",
	Short: "Show the quantity rollup of a model",
	Long:  "Summary shows element counts, areas, volumes and the plastering aggregate of a model. Without a model reference the latest import is used.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	m, snap, err := loadModel(ctx, svc, args)
	if err != nil {
		return err
	}

	ui.Section("Model")
	displayModel(m, snap)
	ui.Section("Quantities")
	displaySnapshot(snap)
	return nil
}
