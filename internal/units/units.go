// Package units parses numeric and unit fragments out of free text.
package units

import (
	"sort"
	"strings"
)

// Unit tags a parsed numeric value.
type Unit string

const (
	Millimeter  Unit = "mm"
	Centimeter  Unit = "cm"
	Meter       Unit = "m"
	SquareMeter Unit = "m²"
	CubicMeter  Unit = "m³"
	CoatCount   Unit = "coats"
	Unitless    Unit = "unitless"
)

// toMeters holds the fixed length normalization table.
var toMeters = map[Unit]float64{
	Millimeter: 0.001,
	Centimeter: 0.01,
	Meter:      1,
}

// IsLength reports whether the unit measures a length.
func (u Unit) IsLength() bool {
	_, ok := toMeters[u]
	return ok
}

// ParsedExpression is a numeric value with its unit tag.
type ParsedExpression struct {
	Value  float64 `json:"value"`
	Unit   Unit    `json:"unit"`
	Text   string  `json:"text"`
	Offset int     `json:"offset"`
}

// Meters converts a length expression to meters.
func (e ParsedExpression) Meters() (float64, bool) {
	f, ok := toMeters[e.Unit]
	if !ok {
		return 0, false
	}
	return e.Value * f, true
}

// Canonical returns the value in the canonical unit of its dimension:
// meters for lengths, the raw value for everything else.
func (e ParsedExpression) Canonical() float64 {
	if m, ok := e.Meters(); ok {
		return m
	}
	return e.Value
}

type alias struct {
	text string
	unit Unit
}

// aliases is sorted longest first so "mm" wins over "m" and "m2" over "m".
var aliases = sortAliases([]alias{
	{"millimeters", Millimeter},
	{"millimetres", Millimeter},
	{"millimeter", Millimeter},
	{"millimetre", Millimeter},
	{"mm", Millimeter},
	{"centimeters", Centimeter},
	{"centimetres", Centimeter},
	{"centimeter", Centimeter},
	{"centimetre", Centimeter},
	{"cm", Centimeter},
	{"square meters", SquareMeter},
	{"square metres", SquareMeter},
	{"sq m", SquareMeter},
	{"sqm", SquareMeter},
	{"m2", SquareMeter},
	{"m²", SquareMeter},
	{"cubic meters", CubicMeter},
	{"cubic metres", CubicMeter},
	{"m3", CubicMeter},
	{"m³", CubicMeter},
	{"meters", Meter},
	{"metres", Meter},
	{"meter", Meter},
	{"metre", Meter},
	{"m", Meter},
	{"coats", CoatCount},
	{"coat", CoatCount},
	{"layers", CoatCount},
	{"layer", CoatCount},
})

// multipliers are count words accepted directly before a coat or layer unit.
var multipliers = map[string]float64{
	"single": 1,
	"one":    1,
	"double": 2,
	"two":    2,
	"triple": 3,
	"three":  3,
	"four":   4,
	"five":   5,
}

func sortAliases(list []alias) []alias {
	sort.SliceStable(list, func(i, j int) bool {
		return len(list[i].text) > len(list[j].text)
	})
	return list
}

// lookupUnit reports the unit named exactly by word, if any.
func lookupUnit(word string) (Unit, bool) {
	for _, a := range aliases {
		if strings.EqualFold(a.text, word) {
			return a.unit, true
		}
	}
	return "", false
}
