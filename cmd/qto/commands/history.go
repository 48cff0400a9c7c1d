package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [model]",
	Short: "Show recently answered questions about a model",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of entries")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}
	m, err := svc.FindModel(ctx, ref)
	if err != nil {
		return fmt.Errorf("find model: %w", err)
	}

	entries, err := svc.History(ctx, m, historyLimit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}
	if len(entries) == 0 {
		ui.Info("No questions asked about %s yet", m.Name)
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		value := "-"
		if e.Value != nil {
			value = strconv.FormatFloat(*e.Value, 'f', 3, 64) + " " + e.Unit
		}
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Question,
			e.Intent,
			value,
			e.Confidence,
		})
	}
	ui.Table([]string{"ASKED", "QUESTION", "INTENT", "VALUE", "CONFIDENCE"}, rows)
	return nil
}
