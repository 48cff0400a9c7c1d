package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/units"
)

func TestResolver_Intents(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		utterance string
		intent    Intent
		rule      string
	}{
		{"What is the plaster volume?", IntentPlasterVolume, "plaster-volume"},
		{"How many cubic meters of plastering do I need?", IntentPlasterVolume, "plaster-volume"},
		{"How many litres of paint for the walls?", IntentPlasterVolume, "plaster-volume"},
		{"How much plaster for 12mm double coat?", IntentPlasterVolume, "plaster-volume-by-thickness"},
		{"Plastering with 15 mm thickness and 2 coats", IntentPlasterVolume, "plaster-volume-by-thickness"},
		{"Plaster 0.012 m thick in 2 coats", IntentPlasterVolume, "plaster-volume-by-thickness"},
		{"Plastering area of the 3 m high walls", IntentPlasterArea, "plaster-area"},
		{"What is the plastering area?", IntentPlasterArea, "plaster-area"},
		{"How much area needs plaster?", IntentPlasterArea, "plaster-area"},
		{"What's the total wall area?", IntentPlasterArea, "wall-area"},
		{"What is the total area of all rooms?", IntentRoomArea, "room-area"},
		{"Floor area of the spaces in m2", IntentRoomArea, "room-area"},
		{"How many doors?", IntentElementCount, "element-count"},
		{"Count the windows", IntentElementCount, "element-count"},
		{"What is the number of walls in the building", IntentElementCount, "element-count"},
		{"How many rooms are there?", IntentElementCount, "element-count"},
		{"List all walls", IntentElementList, "element-list"},
		{"Which doors are in the model?", IntentElementList, "element-list"},
		{"Give me a summary of the building", IntentBuildingSummary, "building-summary"},
		{"Show me the building statistics", IntentBuildingSummary, "building-summary"},
		{"Hello there", IntentUnknown, ""},
		{"", IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			q := r.Resolve(tt.utterance, nil)
			assert.Equal(t, tt.intent, q.Intent)
			assert.Equal(t, tt.rule, q.Rule)
			assert.Equal(t, tt.utterance, q.Utterance)
		})
	}
}

func TestResolver_PlasterVolumeDoesNotFallThrough(t *testing.T) {
	q := NewResolver().Resolve("plaster volume", nil)
	assert.Equal(t, IntentPlasterVolume, q.Intent)
}

func TestResolver_FinishParameters(t *testing.T) {
	r := NewResolver()

	t.Run("thickness and coat word", func(t *testing.T) {
		q := r.Resolve("What is the plaster volume for 12mm double coat?", nil)

		thickness, ok := q.Expr(ParamThickness)
		require.True(t, ok)
		assert.Equal(t, units.Millimeter, thickness.Unit)
		assert.Equal(t, 12.0, thickness.Value)

		coats, ok := q.Expr(ParamCoats)
		require.True(t, ok)
		assert.Equal(t, 2.0, coats.Value)
		assert.Equal(t, MaterialPlaster, q.Material())
		assert.Empty(t, q.Defaulted)
	})

	t.Run("coats default to one", func(t *testing.T) {
		q := r.Resolve("plaster volume at 1.5 cm", nil)

		coats, ok := q.Expr(ParamCoats)
		require.True(t, ok)
		assert.Equal(t, 1.0, coats.Value)
		assert.Equal(t, []string{ParamCoats}, q.Defaulted)

		thickness, ok := q.Expr(ParamThickness)
		require.True(t, ok)
		m, _ := thickness.Meters()
		assert.InDelta(t, 0.015, m, 1e-12)
	})

	t.Run("missing thickness is left unset", func(t *testing.T) {
		q := r.Resolve("what is the plaster volume", nil)
		_, ok := q.Expr(ParamThickness)
		assert.False(t, ok)
	})

	t.Run("wall height is not a thickness", func(t *testing.T) {
		q := r.Resolve("plastering area of the 3 m high walls", nil)
		assert.Equal(t, IntentPlasterArea, q.Intent)
		_, ok := q.Expr(ParamThickness)
		assert.False(t, ok)
	})

	t.Run("paint material", func(t *testing.T) {
		q := r.Resolve("How much paint for 0.2 mm in three coats?", nil)

		assert.Equal(t, IntentPlasterVolume, q.Intent)
		assert.Equal(t, MaterialPaint, q.Material())
		coats, _ := q.Expr(ParamCoats)
		assert.Equal(t, 3.0, coats.Value)
	})
}

func TestResolver_ElementType(t *testing.T) {
	r := NewResolver()

	tests := []struct {
		utterance string
		element   quantity.ElementType
	}{
		{"How many doors?", quantity.Door},
		{"how many windows are in the walls", quantity.Window},
		{"count the curtain walls", quantity.CurtainWall},
		{"How many stairs", quantity.Stair},
		{"number of columns", quantity.Column},
		{"What is the total area of all rooms?", quantity.Space},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			q := r.Resolve(tt.utterance, nil)
			got, ok := q.ElementType()
			require.True(t, ok)
			assert.Equal(t, tt.element, got)
		})
	}
}

func TestResolver_CountWithoutElementIsUnknown(t *testing.T) {
	q := NewResolver().Resolve("how many cover the budget", nil)
	assert.Equal(t, IntentUnknown, q.Intent)
	_, ok := q.ElementType()
	assert.False(t, ok)
}

func TestResolver_SnapshotWidensVocabulary(t *testing.T) {
	snap := aggregate.NewAggregator().Build(aggregate.ModelInfo{}, "fp", []quantity.NormalizedQuantity{
		{ElementID: "p1", Type: quantity.ElementType("BuildingElementProxy"), CountUnit: 1},
	}, nil)
	r := NewResolver()

	q := r.Resolve("how many buildingelementproxy objects", snap)
	assert.Equal(t, IntentElementCount, q.Intent)
	got, ok := q.ElementType()
	require.True(t, ok)
	assert.Equal(t, quantity.ElementType("BuildingElementProxy"), got)

	assert.Equal(t, IntentUnknown, r.Resolve("how many buildingelementproxy objects", nil).Intent)
	assert.Equal(t, []quantity.ElementType{"BuildingElementProxy"}, snap.Types())
}

func TestResolver_Deterministic(t *testing.T) {
	r := NewResolver()
	first := r.Resolve("How much plaster for 12mm double coat?", nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Resolve("How much plaster for 12mm double coat?", nil))
	}
}
