package quantity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func TestNormalize_AuthoritativeArea(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		rec    RawElementRecord
		area   float64
		volume *float64
		typ    ElementType
	}{
		{
			name: "wall net side area",
			rec: RawElementRecord{
				ID:   "w1",
				Type: "IfcWall",
				PropertySets: PropertySets{
					"Qto_WallBaseQuantities": {"NetSideArea": 30.0, "GrossSideArea": 32.0, "NetVolume": 6.0},
				},
			},
			area:   30.0,
			volume: f(6.0),
			typ:    Wall,
		},
		{
			name: "wall gross side area only",
			rec: RawElementRecord{
				ID:   "w2",
				Type: "IFCWALLSTANDARDCASE",
				PropertySets: PropertySets{
					"Qto_WallBaseQuantities": {"GrossSideArea": 24.0},
				},
			},
			area: 24.0,
			typ:  Wall,
		},
		{
			name: "space floor area as string",
			rec: RawElementRecord{
				ID:   "s1",
				Type: "IfcSpace",
				PropertySets: PropertySets{
					"Qto_SpaceBaseQuantities": {"NetFloorArea": "18.75"},
				},
			},
			area: 18.75,
			typ:  Space,
		},
		{
			name: "door area under generic base quantities",
			rec: RawElementRecord{
				ID:   "d1",
				Type: "Door",
				PropertySets: PropertySets{
					"BaseQuantities": {"Area": json.Number("1.89")},
				},
			},
			area: 1.89,
			typ:  Door,
		},
		{
			name: "authoritative zero is kept",
			rec: RawElementRecord{
				ID:   "w3",
				Type: "IfcWall",
				PropertySets: PropertySets{
					"Qto_WallBaseQuantities": {"NetSideArea": 0.0},
				},
				Geometry: &Geometry{Length: f(4), Height: f(3)},
			},
			area: 0,
			typ:  Wall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, Authoritative, q.Confidence)
			assert.Equal(t, SourceAuthoritative, q.Source)
			assert.Equal(t, tt.typ, q.Type)
			require.NotNil(t, q.Area)
			assert.Equal(t, tt.area, *q.Area)
			assert.Equal(t, tt.volume, q.Volume)
			assert.Equal(t, 1, q.CountUnit)
		})
	}
}

func TestNormalize_WallHeuristic(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		rec    RawElementRecord
		area   float64
		volume *float64
	}{
		{
			name: "geometry length and height",
			rec: RawElementRecord{
				ID:       "w1",
				Type:     "IfcWall",
				Geometry: &Geometry{Length: f(5), Height: f(3)},
			},
			area: 15,
		},
		{
			name: "property fallback with thickness",
			rec: RawElementRecord{
				ID:   "w2",
				Type: "IfcWall",
				PropertySets: PropertySets{
					"Pset_WallCommon": {"Length": 4.0, "Height": "2.5", "Thickness": 0.2},
				},
			},
			area:   10,
			volume: f(2),
		},
		{
			name: "unconnected height with unit string",
			rec: RawElementRecord{
				ID:   "w3",
				Type: "wall",
				PropertySets: PropertySets{
					"Dimensions": {"Length": "6000 mm", "Unconnected Height": 2.7},
				},
			},
			area: 16.2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, Heuristic, q.Confidence)
			assert.Equal(t, SourceDimensions, q.Source)
			require.NotNil(t, q.Area)
			assert.InDelta(t, tt.area, *q.Area, 1e-9)
			if tt.volume == nil {
				assert.Nil(t, q.Volume)
			} else {
				require.NotNil(t, q.Volume)
				assert.InDelta(t, *tt.volume, *q.Volume, 1e-9)
			}
		})
	}
}

func TestNormalize_NonPositiveDimensionsAreIgnored(t *testing.T) {
	n := NewNormalizer()

	q, err := n.Normalize(RawElementRecord{
		ID:       "w1",
		Type:     "IfcWall",
		Geometry: &Geometry{Length: f(-4), Height: f(3)},
	})

	require.NoError(t, err)
	assert.Equal(t, Unknown, q.Confidence)
	assert.Nil(t, q.Area)
	assert.Nil(t, q.Volume)
}

func TestNormalize_OtherHeuristics(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name   string
		rec    RawElementRecord
		area   float64
		source string
	}{
		{
			name: "window overall size",
			rec: RawElementRecord{
				ID:   "win1",
				Type: "IfcWindow",
				PropertySets: PropertySets{
					"Pset_WindowCommon": {"OverallWidth": 1.2, "OverallHeight": 1.5},
				},
			},
			area:   1.8,
			source: SourceDimensions,
		},
		{
			name: "slab length by width",
			rec: RawElementRecord{
				ID:   "sl1",
				Type: "IfcSlab",
				PropertySets: PropertySets{
					"Pset_SlabCommon": {"Length": 10.0, "Width": 8.0, "Depth": 0.25},
				},
			},
			area:   80,
			source: SourceDimensions,
		},
		{
			name: "parser geometry area",
			rec: RawElementRecord{
				ID:       "c1",
				Type:     "IfcColumn",
				Geometry: &Geometry{Area: f(2.4)},
			},
			area:   2.4,
			source: SourceGeometry,
		},
		{
			name: "property set area scan",
			rec: RawElementRecord{
				ID:   "sp1",
				Type: "IfcSpace",
				PropertySets: PropertySets{
					"PSet_Revit_Dimensions": {"Computed Area": 22.5},
				},
			},
			area:   22.5,
			source: SourcePropertyScan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := n.Normalize(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, Heuristic, q.Confidence)
			assert.Equal(t, tt.source, q.Source)
			require.NotNil(t, q.Area)
			assert.InDelta(t, tt.area, *q.Area, 1e-9)
		})
	}
}

func TestNormalize_Unknown(t *testing.T) {
	n := NewNormalizer()

	records := []RawElementRecord{
		{ID: "w1", Type: "IfcWall"},
		{ID: "w2", Type: "IfcWall", PropertySets: PropertySets{"Pset_WallCommon": {"IsExternal": true}}},
		{ID: "d1", Type: "IfcDoor", Geometry: &Geometry{Width: f(0.9)}},
		{ID: "s1", Type: "IfcSpace", PropertySets: PropertySets{"Pset_SpaceCommon": {"Area": "n/a"}}},
	}

	for _, rec := range records {
		t.Run(rec.ID, func(t *testing.T) {
			q, err := n.Normalize(rec)
			require.NoError(t, err)
			assert.Equal(t, Unknown, q.Confidence)
			assert.Nil(t, q.Area)
			assert.Nil(t, q.Volume)
			assert.Empty(t, q.Source)
		})
	}
}

func TestNormalize_UnrecognizedType(t *testing.T) {
	n := NewNormalizer()

	t.Run("no generic path", func(t *testing.T) {
		_, err := n.Normalize(RawElementRecord{ID: "x1", Type: "IfcFlowTerminal"})

		var nerr *NormalizationError
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, "x1", nerr.ElementID)
		assert.Equal(t, "IfcFlowTerminal", nerr.Type)
		assert.Contains(t, err.Error(), "x1")
	})

	t.Run("generic base quantity", func(t *testing.T) {
		q, err := n.Normalize(RawElementRecord{
			ID:   "x2",
			Type: "IfcBuildingElementProxy",
			PropertySets: PropertySets{
				"BaseQuantities": {"NetVolume": 1.25},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, ElementType("BuildingElementProxy"), q.Type)
		assert.Equal(t, Authoritative, q.Confidence)
		assert.Nil(t, q.Area)
		require.NotNil(t, q.Volume)
		assert.Equal(t, 1.25, *q.Volume)
	})

	t.Run("dimension heuristics do not apply", func(t *testing.T) {
		_, err := n.Normalize(RawElementRecord{
			ID:       "x3",
			Type:     "IfcPipeSegment",
			Geometry: &Geometry{Length: f(3), Height: f(0.1)},
		})

		var nerr *NormalizationError
		assert.ErrorAs(t, err, &nerr)
	})
}

func TestNormalize_ConfidenceFollowsArea(t *testing.T) {
	n := NewNormalizer()

	q, err := n.Normalize(RawElementRecord{
		ID:   "w1",
		Type: "IfcWall",
		PropertySets: PropertySets{
			"Qto_WallBaseQuantities": {"NetSideArea": 12.0},
			"Pset_WallCommon":        {"Length": 4.0, "Height": 3.0, "Width": 0.2},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, Authoritative, q.Confidence)
	assert.Equal(t, 12.0, *q.Area)
	require.NotNil(t, q.Volume)
	assert.InDelta(t, 2.4, *q.Volume, 1e-9)
}

func TestNormalize_UnknownImpliesNoQuantities(t *testing.T) {
	n := NewNormalizer()
	types := []string{"IfcWall", "IfcDoor", "IfcWindow", "IfcSlab", "IfcSpace", "IfcColumn", "IfcBeam", "IfcRoof"}

	for _, typ := range types {
		q, err := n.Normalize(RawElementRecord{ID: typ, Type: typ})
		require.NoError(t, err)
		if q.Confidence == Unknown {
			assert.Nil(t, q.Area, typ)
			assert.Nil(t, q.Volume, typ)
		}
	}
}

func TestNormalizeAll_DropsUnrecognized(t *testing.T) {
	n := NewNormalizer()

	out, errs := n.NormalizeAll([]RawElementRecord{
		{ID: "w1", Type: "IfcWall", Geometry: &Geometry{Length: f(2), Height: f(3)}},
		{ID: "x1", Type: "IfcSensor"},
		{ID: "d1", Type: "IfcDoor"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, "w1", out[0].ElementID)
	assert.Equal(t, "d1", out[1].ElementID)
	require.Len(t, errs, 1)
	assert.Equal(t, "x1", errs[0].ElementID)
}
