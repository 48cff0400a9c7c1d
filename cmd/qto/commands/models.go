package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List imported models",
	Args:  cobra.NoArgs,
	RunE:  runModels,
}

var removeYes bool

var removeCmd = &cobra.Command{
	Use:   "remove <model-id>",
	Short: "Delete an imported model and its question log",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func init() {
	removeCmd.Flags().BoolVarP(&removeYes, "yes", "y", false, "do not ask for confirmation")
	modelsCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(modelsCmd)
}

func runModels(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	models, err := svc.Store.Models.List(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if len(models) == 0 {
		ui.Info("No models imported yet. Run: qto import <export.json>")
		return nil
	}

	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{
			m.ID.String(),
			m.Name,
			m.Schema,
			strconv.Itoa(m.ElementCount),
			m.Fingerprint[:12],
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	ui.Table([]string{"ID", "NAME", "SCHEMA", "ELEMENTS", "FINGERPRINT", "IMPORTED"}, rows)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid model ID: %w", err)
	}

	if !removeYes {
		ok, err := ui.NewPrompter(cmd.InOrStdin()).Confirm(fmt.Sprintf("Delete model %s?", id), false)
		if err != nil {
			return err
		}
		if !ok {
			ui.Info("Cancelled")
			return nil
		}
	}

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.Store.Models.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete model: %w", err)
	}
	ui.Success("Deleted model %s", id)
	return nil
}
