package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
)

func f(v float64) *float64 { return &v }

func sampleSnapshot() *aggregate.Snapshot {
	return aggregate.NewAggregator().Build(
		aggregate.ModelInfo{Name: "house.json", Schema: "IFC4", Project: "Demo", Building: "Block A"},
		"fp",
		[]quantity.NormalizedQuantity{
			{ElementID: "w1", Name: "North", Type: quantity.Wall, Area: f(30), CountUnit: 1, Confidence: quantity.Authoritative},
			{ElementID: "w2", Type: quantity.Wall, Area: f(24), Volume: f(4.8), CountUnit: 1, Confidence: quantity.Heuristic},
			{ElementID: "d1", Type: quantity.Door, CountUnit: 1},
		},
		[]aggregate.Dropped{{ElementID: "t1", Type: "IfcFlowTerminal"}},
	)
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "takeoff.xlsx")
	require.NoError(t, WriteWorkbook(sampleSnapshot(), path))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{SheetSummary, SheetPlastering, SheetBreakdown, SheetDropped}, wb.GetSheetList())

	summary, err := wb.GetRows(SheetSummary)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, summaryHeaders, summary[0])
	assert.Equal(t, []string{"Door", "1", "0", "0", "0", "UNKNOWN"}, summary[1])
	assert.Equal(t, []string{"Wall", "2", "2", "54", "4.8", "HEURISTIC"}, summary[2])

	plaster, err := wb.GetRows(SheetPlastering)
	require.NoError(t, err)
	values := map[string]string{}
	for _, r := range plaster {
		require.Len(t, r, 2)
		values[r[0]] = r[1]
	}
	assert.Equal(t, "108", values["plaster_area_m2"])
	assert.Equal(t, "2", values["faces"])
	assert.Equal(t, "IFC4", values["schema"])

	breakdown, err := wb.GetRows(SheetBreakdown)
	require.NoError(t, err)
	require.Len(t, breakdown, 4)
	assert.Equal(t, "d1", breakdown[1][1])
	assert.Equal(t, []string{"Wall", "w1", "North", "30", "", "AUTHORITATIVE"}, breakdown[2])

	dropped, err := wb.GetRows(SheetDropped)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "IfcFlowTerminal"}, dropped[1])
}

func TestWorkbook_NoDroppedSheetWhenClean(t *testing.T) {
	snap := aggregate.NewAggregator().Build(aggregate.ModelInfo{}, "fp", nil, nil)
	wb, err := Workbook(snap)
	require.NoError(t, err)
	defer wb.Close()

	assert.Equal(t, []string{SheetSummary, SheetPlastering, SheetBreakdown}, wb.GetSheetList())
}
