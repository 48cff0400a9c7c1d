package phrasing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/answer"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/quantity"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/query"
)

// maxListed caps the labels spelled out for ELEMENT_LIST answers.
const maxListed = 15

// ExampleQuestions are suggested when a question is not understood.
var ExampleQuestions = []string{
	"What is the plastering area?",
	"How much plaster for 12mm double coat?",
	"How many doors are there?",
	"What is the total area of all rooms?",
	"List all windows",
	"Give me a building summary",
}

// TemplatePhraser renders payloads with fixed sentences.
type TemplatePhraser struct{}

// NewTemplatePhraser creates a TemplatePhraser.
func NewTemplatePhraser() *TemplatePhraser {
	return &TemplatePhraser{}
}

// Phrase implements Phraser. It never fails.
func (TemplatePhraser) Phrase(_ context.Context, _ string, p answer.Payload) (string, error) {
	return Render(p), nil
}

// Render renders p as one or more sentences.
func Render(p answer.Payload) string {
	var b strings.Builder
	switch p.Intent {
	case query.IntentPlasterArea:
		renderPlasterArea(&b, p)
	case query.IntentPlasterVolume:
		renderPlasterVolume(&b, p)
	case query.IntentElementCount:
		fmt.Fprintf(&b, "The model contains %d %s.", count(p), plural(p.ElementType, count(p)))
	case query.IntentElementList:
		renderList(&b, p)
	case query.IntentRoomArea:
		renderRoomArea(&b, p)
	case query.IntentBuildingSummary:
		renderSummary(&b, p)
	default:
		b.WriteString("I could not tell which quantity you are asking about. Try for example: ")
		b.WriteString(strings.Join(quoted(ExampleQuestions[:3]), ", "))
		b.WriteString(".")
		return b.String()
	}

	if p.Value != nil {
		switch p.Confidence {
		case quantity.Heuristic:
			b.WriteString(" Some figures were estimated from element dimensions.")
		case quantity.Unknown:
			if p.Intent != query.IntentElementCount && p.Intent != query.IntentBuildingSummary {
				b.WriteString(" Some elements carry no quantity data and were counted as zero.")
			}
		}
	}
	if assumed := assumptions(p); p.Intent == query.IntentPlasterVolume && assumed != "" {
		b.WriteString(" Assumed ")
		b.WriteString(assumed)
		b.WriteString(".")
	}
	return b.String()
}

func renderPlasterArea(b *strings.Builder, p answer.Payload) {
	walls := count(p)
	if p.Value == nil {
		fmt.Fprintf(b, "The model has %d %s but no wall area data, so the %s area cannot be calculated.",
			walls, plural(quantity.Wall, walls), p.Material)
		return
	}
	fmt.Fprintf(b, "The %s area is %s m² (%s of %d %s).",
		p.Material, decimal(*p.Value, 2), faces(p), walls, plural(quantity.Wall, walls))
}

func renderPlasterVolume(b *strings.Builder, p answer.Payload) {
	walls := count(p)
	if p.Value == nil {
		fmt.Fprintf(b, "The model has %d %s but no wall area data, so the %s volume cannot be calculated.",
			walls, plural(quantity.Wall, walls), p.Material)
		return
	}
	thicknessMM := p.Parameters[answer.ParamThicknessMeters] * 1000
	coats := p.Parameters[answer.ParamCoats]
	fmt.Fprintf(b, "You need %s m³ (%s liters) of %s: %s m² × %s mm × %s %s.",
		decimal(*p.Value, 3),
		decimal(p.Parameters[answer.ParamVolumeLiters], 1),
		p.Material,
		decimal(p.Parameters[answer.ParamPlasterArea], 2),
		trim(thicknessMM),
		trim(coats),
		pluralWord("coat", coats != 1),
	)
}

func renderList(b *strings.Builder, p answer.Payload) {
	n := count(p)
	fmt.Fprintf(b, "The model contains %d %s", n, plural(p.ElementType, n))
	if len(p.Breakdown) == 0 {
		b.WriteString(".")
		return
	}
	labels := make([]string, 0, maxListed)
	for i, e := range p.Breakdown {
		if i == maxListed {
			break
		}
		labels = append(labels, e.Label)
	}
	b.WriteString(": ")
	b.WriteString(strings.Join(labels, ", "))
	if extra := len(p.Breakdown) - len(labels); extra > 0 {
		fmt.Fprintf(b, " and %d more", extra)
	}
	b.WriteString(".")
}

func renderRoomArea(b *strings.Builder, p answer.Payload) {
	n := count(p)
	if p.Value == nil {
		if n == 0 {
			b.WriteString("The model contains no spaces, so the room area cannot be calculated.")
			return
		}
		fmt.Fprintf(b, "The model has %d %s but no floor area data.", n, plural(quantity.Space, n))
		return
	}
	fmt.Fprintf(b, "The total floor area of %d %s is %s m².", n, plural(quantity.Space, n), decimal(*p.Value, 2))
}

func renderSummary(b *strings.Builder, p answer.Payload) {
	if p.Model != nil {
		var parts []string
		if p.Model.Name != "" {
			parts = append(parts, "model "+p.Model.Name)
		}
		if p.Model.Schema != "" {
			parts = append(parts, "schema "+p.Model.Schema)
		}
		if p.Model.Project != "" {
			parts = append(parts, "project "+p.Model.Project)
		}
		if p.Model.Building != "" {
			parts = append(parts, "building "+p.Model.Building)
		}
		if len(parts) > 0 {
			b.WriteString(capitalize(strings.Join(parts, ", ")))
			b.WriteString(". ")
		}
	}
	total := count(p)
	if total == 0 {
		b.WriteString("The model contains no elements.")
		return
	}
	types := make([]string, 0, len(p.Counts))
	for _, t := range sortedTypes(p.Counts) {
		types = append(types, fmt.Sprintf("%d %s", p.Counts[t], plural(t, p.Counts[t])))
	}
	fmt.Fprintf(b, "It contains %d elements: %s.", total, strings.Join(types, ", "))
}

func assumptions(p answer.Payload) string {
	var parts []string
	for _, name := range p.Defaulted {
		switch name {
		case query.ParamThickness:
			parts = append(parts, trim(p.Parameters[answer.ParamThicknessMeters]*1000)+" mm thickness")
		case query.ParamCoats:
			parts = append(parts, trim(p.Parameters[answer.ParamCoats])+" coat")
		}
	}
	return strings.Join(parts, " and ")
}

func faces(p answer.Payload) string {
	if p.Parameters[answer.ParamFaces] == 1 {
		return "one face"
	}
	return "both faces"
}

func count(p answer.Payload) int {
	if p.Count == nil {
		return 0
	}
	return *p.Count
}

func plural(t quantity.ElementType, n int) string {
	name := strings.ToLower(string(t))
	if t == quantity.Space {
		name = "space"
	}
	if name == "" {
		name = "element"
	}
	return pluralWord(name, n != 1)
}

func pluralWord(word string, many bool) string {
	if !many {
		return word
	}
	if strings.HasSuffix(word, "s") {
		return word + "es"
	}
	return word + "s"
}

func decimal(v float64, places int) string {
	return strconv.FormatFloat(v, 'f', places, 64)
}

// trim formats v without trailing zeros, after rounding away float noise
// such as 12.000000000000002.
func trim(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e6)/1e6, 'f', -1, 64)
}

func quoted(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strconv.Quote(s)
	}
	return out
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func sortedTypes(counts map[quantity.ElementType]int) []quantity.ElementType {
	types := make([]quantity.ElementType, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	// Largest groups first, ties by name.
	sort.Slice(types, func(i, j int) bool {
		if counts[types[i]] != counts[types[j]] {
			return counts[types[i]] > counts[types[j]]
		}
		return types[i] < types[j]
	})
	return types
}
