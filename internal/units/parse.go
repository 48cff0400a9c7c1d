package units

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	numberPattern     = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	multiplierPattern = regexp.MustCompile(`(?i)\b(single|one|double|two|triple|three|four|five)[\s-]+(coats?|layers?)\b`)
)

// Parse scans text for numeric tokens and attaches the unit written
// right after them, or right before them when nothing follows. Count words
// in front of "coat" or "layer" become coat-count expressions. The result
// is ordered by position and is empty when nothing numeric is found.
func Parse(text string) []ParsedExpression {
	var out []ParsedExpression
	consumed := 0

	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		start, end := loc[0], loc[1]
		if start < consumed || precededByLetter(text, start) {
			continue
		}
		value, err := strconv.ParseFloat(text[start:end], 64)
		if err != nil {
			continue
		}

		expr := ParsedExpression{Value: value, Unit: Unitless, Text: text[start:end], Offset: start}
		if unit, unitEnd, ok := unitAfter(text, end); ok {
			expr.Unit = unit
			expr.Text = text[start:unitEnd]
			consumed = unitEnd
		} else if unit, ok := unitBefore(text, start, consumed); ok {
			expr.Unit = unit
			consumed = end
		} else {
			consumed = end
		}
		out = append(out, expr)
	}

	for _, m := range multiplierPattern.FindAllStringSubmatchIndex(text, -1) {
		word := strings.ToLower(text[m[2]:m[3]])
		out = append(out, ParsedExpression{
			Value:  multipliers[word],
			Unit:   CoatCount,
			Text:   text[m[0]:m[1]],
			Offset: m[0],
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	return out
}

// unitAfter matches a unit alias at pos, allowing one run of blanks or a
// single hyphen between the number and the unit.
func unitAfter(text string, pos int) (Unit, int, bool) {
	i := pos
	if i < len(text) && text[i] == '-' {
		i++
	} else {
		for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
			i++
		}
	}
	for _, a := range aliases {
		end := i + len(a.text)
		if end > len(text) || !strings.EqualFold(text[i:end], a.text) {
			continue
		}
		if isWordRune(text, end) {
			continue
		}
		return a.unit, end, true
	}
	return "", 0, false
}

// unitBefore matches a unit alias ending just before the number, as in
// "coats: 2". Aliases already bound to an earlier number are skipped.
func unitBefore(text string, start, consumed int) (Unit, bool) {
	i := start
	for i > 0 && strings.ContainsRune(" \t:=", rune(text[i-1])) {
		i--
	}
	for _, a := range aliases {
		begin := i - len(a.text)
		if begin < consumed || begin < 0 || !strings.EqualFold(text[begin:i], a.text) {
			continue
		}
		if precededByWordRune(text, begin) {
			continue
		}
		return a.unit, true
	}
	return "", false
}

func precededByLetter(text string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return unicode.IsLetter(r)
}

func precededByWordRune(text string, pos int) bool {
	if pos == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:pos])
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isWordRune(text string, pos int) bool {
	if pos >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[pos:])
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
