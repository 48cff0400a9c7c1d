// Package quantity turns raw element records from a model export into
// per-element area and volume quantities tagged with a confidence level.
package quantity

import (
	"strings"

	"golang.org/x/text/cases"
)

// ElementType is the canonical category of a building element.
type ElementType string

const (
	Wall        ElementType = "Wall"
	CurtainWall ElementType = "CurtainWall"
	Door        ElementType = "Door"
	Window      ElementType = "Window"
	Slab        ElementType = "Slab"
	Roof        ElementType = "Roof"
	Space       ElementType = "Space"
	Column      ElementType = "Column"
	Beam        ElementType = "Beam"
	Member      ElementType = "Member"
	Plate       ElementType = "Plate"
	Stair       ElementType = "Stair"
	Railing     ElementType = "Railing"
	Covering    ElementType = "Covering"
	Footing     ElementType = "Footing"
)

// knownTypes maps folded tags, with any "ifc" prefix removed, to types.
var knownTypes = map[string]ElementType{
	"wall":                Wall,
	"wallstandardcase":    Wall,
	"wallelementedcase":   Wall,
	"curtainwall":         CurtainWall,
	"door":                Door,
	"doorstandardcase":    Door,
	"window":              Window,
	"windowstandardcase":  Window,
	"slab":                Slab,
	"slabstandardcase":    Slab,
	"slabelementedcase":   Slab,
	"roof":                Roof,
	"space":               Space,
	"column":              Column,
	"columnstandardcase":  Column,
	"beam":                Beam,
	"beamstandardcase":    Beam,
	"member":              Member,
	"memberstandardcase":  Member,
	"plate":               Plate,
	"platestandardcase":   Plate,
	"stair":               Stair,
	"stairflight":         Stair,
	"railing":             Railing,
	"covering":            Covering,
	"footing":             Footing,
}

// ParseElementType canonicalizes a raw type tag such as "IfcWall",
// "IFCWALLSTANDARDCASE" or "wall". Unrecognized tags come back with the
// "Ifc" prefix stripped and ok set to false.
func ParseElementType(tag string) (ElementType, bool) {
	trimmed := strings.TrimSpace(tag)
	if len(trimmed) > 3 && strings.EqualFold(trimmed[:3], "ifc") {
		trimmed = trimmed[3:]
	}
	if t, ok := knownTypes[Fold(trimmed)]; ok {
		return t, true
	}
	return ElementType(trimmed), false
}

// KnownElementTypes lists every canonical type in display order.
func KnownElementTypes() []ElementType {
	return []ElementType{
		Wall, CurtainWall, Door, Window, Slab, Roof, Space,
		Column, Beam, Member, Plate, Stair, Railing, Covering, Footing,
	}
}

// Fold returns the case-folded form of s used for tag and keyword
// comparison. Casers keep state, so each call gets its own.
func Fold(s string) string {
	return cases.Fold().String(s)
}
