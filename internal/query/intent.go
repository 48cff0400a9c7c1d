// Package query resolves free-form questions about a building model into a
// quantity request: an intent plus typed parameters.
package query

import (
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/units"
)

// Intent is the kind of quantity computation a question asks for.
type Intent string

const (
	IntentPlasterArea     Intent = "PLASTER_AREA"
	IntentPlasterVolume   Intent = "PLASTER_VOLUME"
	IntentElementCount    Intent = "ELEMENT_COUNT"
	IntentElementList     Intent = "ELEMENT_LIST"
	IntentRoomArea        Intent = "ROOM_AREA"
	IntentBuildingSummary Intent = "BUILDING_SUMMARY"
	IntentUnknown         Intent = "UNKNOWN"
)

// Parameter names attached to a ResolvedQuery.
const (
	ParamThickness   = "thickness"
	ParamCoats       = "coats"
	ParamMaterial    = "material"
	ParamElementType = "element_type"
)

// Materials recognized for wall finishes.
const (
	MaterialPlaster = "plaster"
	MaterialPaint   = "paint"
)

// ParamKind tags which field of a Param is set.
type ParamKind int

const (
	ParamExpression ParamKind = iota + 1
	ParamElement
	ParamText
)

// Param is a tagged parameter value.
type Param struct {
	Kind    ParamKind              `json:"kind"`
	Expr    units.ParsedExpression `json:"expr,omitempty"`
	Element quantity.ElementType   `json:"element,omitempty"`
	Text    string                 `json:"text,omitempty"`
}

func exprParam(e units.ParsedExpression) Param {
	return Param{Kind: ParamExpression, Expr: e}
}

func elementParam(t quantity.ElementType) Param {
	return Param{Kind: ParamElement, Element: t}
}

func textParam(s string) Param {
	return Param{Kind: ParamText, Text: s}
}

// ResolvedQuery is the outcome of resolving one utterance.
type ResolvedQuery struct {
	Utterance   string                   `json:"utterance"`
	Intent      Intent                   `json:"intent"`
	Rule        string                   `json:"rule,omitempty"`
	Params      map[string]Param         `json:"params,omitempty"`
	Expressions []units.ParsedExpression `json:"expressions,omitempty"`
	// Defaulted names parameters filled with a default rather than read
	// from the utterance.
	Defaulted []string `json:"defaulted,omitempty"`
}

// Expr returns the expression parameter stored under name.
func (q ResolvedQuery) Expr(name string) (units.ParsedExpression, bool) {
	p, ok := q.Params[name]
	if !ok || p.Kind != ParamExpression {
		return units.ParsedExpression{}, false
	}
	return p.Expr, true
}

// ElementType returns the element type parameter, if any.
func (q ResolvedQuery) ElementType() (quantity.ElementType, bool) {
	p, ok := q.Params[ParamElementType]
	if !ok || p.Kind != ParamElement {
		return "", false
	}
	return p.Element, true
}

// Material returns the finish material, defaulting to plaster.
func (q ResolvedQuery) Material() string {
	if p, ok := q.Params[ParamMaterial]; ok && p.Kind == ParamText {
		return p.Text
	}
	return MaterialPlaster
}
