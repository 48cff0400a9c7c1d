// Package export writes quantity take-off workbooks.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
)

// Sheet names.
const (
	SheetSummary    = "Summary"
	SheetPlastering = "Plastering"
	SheetBreakdown  = "Breakdown"
	SheetDropped    = "Dropped"
)

var (
	summaryHeaders   = []string{"element_type", "count", "quantified", "total_area_m2", "total_volume_m3", "lowest_confidence"}
	breakdownHeaders = []string{"element_type", "element_id", "label", "area_m2", "volume_m3", "confidence"}
	droppedHeaders   = []string{"element_id", "type"}
)

// Workbook builds the take-off workbook for snap.
func Workbook(snap *aggregate.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return nil, err
	}

	writeRow(f, SheetSummary, 1, toAny(summaryHeaders)...)
	groups := snap.Groups()
	row := 2
	for _, t := range snap.Types() {
		g := groups[t]
		writeRow(f, SheetSummary, row, string(t), g.Count, g.QuantifiedCount, g.TotalArea, g.TotalVolume, g.LowestConfidence.String())
		row++
	}

	if _, err := f.NewSheet(SheetPlastering); err != nil {
		return nil, err
	}
	p := snap.Plastering()
	model := snap.Model()
	pairs := [][2]any{
		{"model", model.Name},
		{"schema", model.Schema},
		{"project", model.Project},
		{"building", model.Building},
		{"wall_count", p.WallCount},
		{"quantified_walls", p.QuantifiedWalls},
		{"single_face_area_m2", p.SingleFaceArea},
		{"faces", p.Faces},
		{"plaster_area_m2", p.Area},
		{"lowest_confidence", p.LowestConfidence.String()},
	}
	for i, kv := range pairs {
		writeRow(f, SheetPlastering, i+1, kv[0], kv[1])
	}

	if _, err := f.NewSheet(SheetBreakdown); err != nil {
		return nil, err
	}
	writeRow(f, SheetBreakdown, 1, toAny(breakdownHeaders)...)
	row = 2
	for _, t := range snap.Types() {
		for _, b := range groups[t].Breakdown {
			writeRow(f, SheetBreakdown, row, string(t), b.ElementID, b.Label, derefFloat(b.Area), derefFloat(b.Volume), b.Confidence.String())
			row++
		}
	}

	if dropped := snap.Dropped(); len(dropped) > 0 {
		if _, err := f.NewSheet(SheetDropped); err != nil {
			return nil, err
		}
		writeRow(f, SheetDropped, 1, toAny(droppedHeaders)...)
		for i, d := range dropped {
			writeRow(f, SheetDropped, i+2, d.ElementID, d.Type)
		}
	}

	return f, nil
}

// WriteWorkbook saves the take-off workbook for snap to outputPath,
// creating parent directories as needed.
func WriteWorkbook(snap *aggregate.Snapshot, outputPath string) error {
	f, err := Workbook(snap)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
