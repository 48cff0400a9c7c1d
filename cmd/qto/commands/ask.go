package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/engine"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/phrasing"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/service"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/storage"
)

var (
	askQuestion string
	askJSON     bool
)

var askCmd = &cobra.Command{
	Use:   "ask [model]",
	Short: "Ask quantity questions about a model",
	Long: `Ask answers a single question given with --question, or starts an
interactive session. In a session, type help for example questions, info for
the model metadata and exit to leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (interactive session when omitted)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer payload as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, _, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	m, snap, err := loadModel(ctx, svc, args)
	if err != nil {
		return err
	}
	sess := svc.Engine.NewSession(snap)

	if askQuestion != "" {
		return answerQuestion(ctx, svc, m, sess, askQuestion)
	}
	return runSession(ctx, cmd.InOrStdin(), svc, m, sess)
}

// runSession reads questions until exit or end of input.
func runSession(ctx context.Context, in io.Reader, svc *service.Service, m *storage.Model, sess *engine.Session) error {
	ui.Section(fmt.Sprintf("Questions about %s", m.Name))
	ui.Info("Type help for example questions, info for the model and exit to leave.")

	prompter := ui.NewPrompter(in)
	for {
		input, err := prompter.Prompt("?")
		if errors.Is(err, io.EOF) {
			ui.Newline()
			return nil
		}
		if err != nil {
			return fmt.Errorf("read question: %w", err)
		}

		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit", "q":
			ui.Info("Asked %d questions in this session", len(sess.History()))
			return nil
		case "help":
			showHelp()
			continue
		case "info":
			showInfo(m, sess.Snapshot())
			continue
		}

		if err := answerQuestion(ctx, svc, m, sess, input); err != nil {
			ui.Error("%v", err)
		}
	}
}

func answerQuestion(ctx context.Context, svc *service.Service, m *storage.Model, sess *engine.Session, question string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	spinner := ui.NewSpinner("Thinking...")
	spinner.Start()
	a, err := svc.Ask(ctx, m, sess, question)
	spinner.Stop()
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(a.Payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		ui.Message("%s", data)
		return nil
	}

	ui.Message("%s", a.Text)
	ui.Debug("intent %s via rule %q, confidence %s", a.Query.Intent, a.Query.Rule, a.Payload.Confidence)
	return nil
}

func showHelp() {
	ui.Message("Example questions:")
	ui.Message("%s", ui.FormatList(phrasing.ExampleQuestions))
	ui.Message("Commands: help, info, exit")
}

func showInfo(m *storage.Model, snap *aggregate.Snapshot) {
	displayModel(m, snap)
	p := snap.Plastering()
	ui.KeyValue("Walls", fmt.Sprintf("%d (%d with area data)", p.WallCount, p.QuantifiedWalls))
}
