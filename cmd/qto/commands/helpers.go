package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spherical-ai/spherical/libs/quantity-engine/cmd/qto/ui"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/service"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/storage"
)

// openService loads the configuration and opens the service. Logs go to
// stderr at warn level unless --verbose is set.
func openService(ctx context.Context) (*service.Service, *config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      os.Stderr,
		ServiceName: cfg.Observability.ServiceName,
	})

	svc, err := service.Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return svc, cfg, nil
}

// loadModel finds the model named by the optional first argument and builds
// its snapshot.
func loadModel(ctx context.Context, svc *service.Service, args []string) (*storage.Model, *aggregate.Snapshot, error) {
	ref := ""
	if len(args) > 0 {
		ref = args[0]
	}

	m, err := svc.FindModel(ctx, ref)
	if err != nil {
		return nil, nil, fmt.Errorf("find model: %w", err)
	}

	snap, err := svc.Snapshot(ctx, m)
	if err != nil {
		return nil, nil, err
	}
	return m, snap, nil
}

func displayModel(m *storage.Model, snap *aggregate.Snapshot) {
	info := snap.Model()
	ui.KeyValue("ID", m.ID.String())
	ui.KeyValue("Name", m.Name)
	if info.Schema != "" {
		ui.KeyValue("Schema", info.Schema)
	}
	if info.Project != "" {
		ui.KeyValue("Project", info.Project)
	}
	if info.Building != "" {
		ui.KeyValue("Building", info.Building)
	}
	if info.Site != "" {
		ui.KeyValue("Site", info.Site)
	}
	ui.KeyValue("Elements", strconv.Itoa(snap.ElementCount()))
	ui.KeyValue("Imported", m.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func displaySnapshot(snap *aggregate.Snapshot) {
	groups := snap.Groups()
	rows := make([][]string, 0, len(groups))
	for _, t := range snap.Types() {
		g := groups[t]
		rows = append(rows, []string{
			string(t),
			strconv.Itoa(g.Count),
			strconv.Itoa(g.QuantifiedCount),
			formatFloat(g.TotalArea),
			formatFloat(g.TotalVolume),
			g.LowestConfidence.String(),
		})
	}
	ui.Table([]string{"TYPE", "COUNT", "QUANTIFIED", "AREA m²", "VOLUME m³", "CONFIDENCE"}, rows)

	p := snap.Plastering()
	ui.Newline()
	ui.KeyValue("Plaster area", fmt.Sprintf("%s m² (%d of %d walls, %d faces, %s)",
		formatFloat(p.Area), p.QuantifiedWalls, p.WallCount, p.Faces, p.LowestConfidence))

	if dropped := snap.Dropped(); len(dropped) > 0 {
		ui.Newline()
		ui.Warning("%d elements were dropped for lack of quantities", len(dropped))
		if ui.Verbose() {
			for _, d := range dropped {
				ui.Message("    %s (%s)", d.ElementID, d.Type)
			}
		}
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
