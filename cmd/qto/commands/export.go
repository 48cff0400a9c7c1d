package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/export"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export [model]",
	Short: "Write a take-off workbook for a model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "take-off.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
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

	if err := export.WriteWorkbook(snap, exportOutput); err != nil {
		return fmt.Errorf("export workbook: %w", err)
	}
	ui.Success("Wrote take-off of %s to %s", m.Name, exportOutput)
	return nil
}
