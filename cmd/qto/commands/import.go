package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/ingest"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Import an element export of a building model",
	Long: `Import reads an element export produced by an IFC model parser, stores
it and builds its quantity snapshot. Importing the same export twice reuses
the stored model.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importName, "name", "n", "", "model name (defaults to the export's name or file name)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
	defer cancel()

	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	ui.Section("Import Model")
	bar := ui.NewProgressBar(3, "Reading export")

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	doc, err := ingest.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read export: %w", err)
	}
	if importName != "" {
		doc.Name = importName
	}
	bar.Step("Storing model")

	m, snap, existing, err := svc.Import(ctx, doc, path)
	if err != nil {
		return fmt.Errorf("import model: %w", err)
	}
	bar.Step("Building snapshot")
	bar.Step("Done")
	bar.Finish()

	ui.Newline()
	if existing {
		ui.Warning("This export was already imported as %s", m.ID)
	} else {
		ui.Success("Imported %s (%d elements)", m.Name, m.ElementCount)
	}
	ui.Newline()
	displayModel(m, snap)
	ui.Newline()
	displaySnapshot(snap)
	return nil
}
