package quantity

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/units"
)

// Geometry carries numbers the model parser derived from element geometry.
type Geometry struct {
	Length *float64 `json:"length,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Area   *float64 `json:"area,omitempty"`
	Volume *float64 `json:"volume,omitempty"`
}

// PropertySets maps set name to property name to raw value.
type PropertySets map[string]map[string]any

// RawElementRecord is one element as exported by the model parser.
type RawElementRecord struct {
	ID           string       `json:"id"`
	Name         string       `json:"name,omitempty"`
	Type         string       `json:"type"`
	PropertySets PropertySets `json:"property_sets,omitempty"`
	Geometry     *Geometry    `json:"geometry,omitempty"`
}

// isQuantitySet reports whether a set holds base quantities rather than
// free-form properties.
func isQuantitySet(name string) bool {
	folded := Fold(name)
	return folded == "basequantities" ||
		(strings.HasPrefix(folded, "qto_") && strings.HasSuffix(folded, "basequantities"))
}

// setNames returns the set names in a stable order, optionally restricted
// to quantity sets or to property sets.
func (p PropertySets) setNames(quantities bool) []string {
	names := make([]string, 0, len(p))
	for name := range p {
		if isQuantitySet(name) == quantities {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// lookup finds the first numeric value for any of fields, trying fields in
// order and sets in name order. Field names match case-insensitively.
func (p PropertySets) lookup(quantities bool, fields ...string) (float64, bool) {
	sets := p.setNames(quantities)
	for _, field := range fields {
		for _, set := range sets {
			for key, raw := range p[set] {
				if !strings.EqualFold(key, field) {
					continue
				}
				if v, ok := numeric(raw); ok {
					return v, true
				}
			}
		}
	}
	return 0, false
}

// scan returns the first numeric property, in set and key order, whose name
// contains needle.
func (p PropertySets) scan(needle string) (float64, bool) {
	for _, set := range p.setNames(false) {
		keys := make([]string, 0, len(p[set]))
		for key := range p[set] {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if !strings.Contains(Fold(key), needle) {
				continue
			}
			if v, ok := numeric(p[set][key]); ok {
				return v, true
			}
		}
	}
	return 0, false
}

// numeric coerces a raw property value to a float. Strings may carry a
// length unit ("2700 mm") which is converted to meters.
func numeric(raw any) (float64, bool) {
	var v float64
	switch n := raw.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int32:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		v = f
	case string:
		f, ok := numericString(n)
		if !ok {
			return 0, false
		}
		v = f
	default:
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func numericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, true
	}
	exprs := units.Parse(s)
	if len(exprs) != 1 || exprs[0].Offset != 0 || exprs[0].Text != s {
		return 0, false
	}
	if exprs[0].Unit == units.CoatCount {
		return 0, false
	}
	return exprs[0].Canonical(), true
}

func ptr(v float64) *float64 {
	return &v
}
