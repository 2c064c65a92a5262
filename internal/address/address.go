// Package address implements the address validator (spec §4.3):
// self-consistency checks between a Span's span_id and the literal prefix
// of its text, surfacing ADDRESS_MISMATCH when they disagree.
//
// Grounded on original_source/src/parsing/address_validator.py
// (AddressValidator._extract_expected_id, _extract_actual_id, _ids_match).
package address

import (
	"regexp"
	"strings"

	"legalcore/internal/spanmodel"
)

// Result is the outcome of validating one span.
type Result struct {
	SpanID             string
	IsMismatch         bool
	ExpectedIdentifier string
	ActualIdentifier   string
	Message            string
}

var actualIDPatterns = map[string][]*regexp.Regexp{
	"PAR": {
		regexp.MustCompile(`(?i)^§\s*(\d+)[ºo°]?`),
		regexp.MustCompile(`(?i)^Par[áa]grafo\s+[úu]nico`),
	},
	"ART": {
		regexp.MustCompile(`(?i)^Art(?:igo)?\.?\s*(\d+)[ºo°]?(?:-([A-Z])\b)?`),
	},
	"INC": {
		regexp.MustCompile(`^([IVXLC]+)\s*[-–—]`),
	},
	"ALI": {
		regexp.MustCompile(`^([a-z])\)`),
	},
}

// Validate checks one span's span_id against its text and reports
// ADDRESS_MISMATCH when they disagree. Spans whose type-prefix is not one
// of PAR/ART/INC/ALI (HDR, CAP, SUMARIO, ...) are not validable and never
// report a mismatch.
func Validate(sp *spanmodel.Span) Result {
	spanType := spanTypePrefix(sp.SpanID)
	if _, ok := actualIDPatterns[spanType]; !ok {
		return Result{SpanID: sp.SpanID, IsMismatch: false, Message: "span type does not require validation"}
	}

	expected := extractExpectedID(sp.SpanID, spanType)
	actual := extractActualID(sp.Text, spanType)

	if idsMatch(expected, actual, spanType) {
		return Result{
			SpanID:             sp.SpanID,
			IsMismatch:         false,
			ExpectedIdentifier: expected,
			ActualIdentifier:   actual,
			Message:            "OK",
		}
	}
	return Result{
		SpanID:             sp.SpanID,
		IsMismatch:         true,
		ExpectedIdentifier: expected,
		ActualIdentifier:   actual,
		Message:            "ADDRESS_MISMATCH: span_id " + sp.SpanID + " implies '" + expected + "' but text begins with '" + actual + "'",
	}
}

// ValidateAll runs Validate over every span in order and returns only the
// mismatches, preserving span emission order.
func ValidateAll(spans []*spanmodel.Span) []Result {
	var mismatches []Result
	for _, sp := range spans {
		r := Validate(sp)
		if r.IsMismatch {
			mismatches = append(mismatches, r)
		}
	}
	return mismatches
}

func spanTypePrefix(spanID string) string {
	if i := strings.IndexByte(spanID, '-'); i != -1 {
		return spanID[:i]
	}
	return ""
}

func extractExpectedID(spanID, spanType string) string {
	parts := strings.Split(spanID, "-")

	switch spanType {
	case "PAR":
		// PAR-040-1 -> "1", PAR-040-UNICO -> "UNICO"
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	case "ART":
		// ART-044 -> "44", ART-337-E -> "337-E"
		if len(parts) >= 2 {
			numero := strings.TrimLeft(parts[1], "0")
			if numero == "" {
				numero = "0"
			}
			if len(parts) >= 3 && len(parts[2]) == 1 && isAlpha(parts[2]) {
				return numero + "-" + parts[2]
			}
			return numero
		}
	case "INC":
		// INC-040-I -> "I", INC-040-II_2 -> "II"
		if len(parts) >= 3 {
			inciso := parts[2]
			if idx := strings.IndexByte(inciso, '_'); idx != -1 {
				inciso = inciso[:idx]
			}
			return inciso
		}
	case "ALI":
		// ALI-040-I-a -> "a"
		if len(parts) >= 4 {
			return parts[len(parts)-1]
		}
	}
	return ""
}

func extractActualID(text, spanType string) string {
	text = strings.TrimSpace(text)
	for _, pattern := range actualIDPatterns[spanType] {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			if spanType == "ART" && len(m) > 2 && m[2] != "" {
				return m[1] + "-" + m[2] // "Art. 337-E" -> "337-E"
			}
			return m[1]
		}
		if spanType == "PAR" {
			lower := strings.ToLower(text)
			if len(lower) > 30 {
				lower = lower[:30]
			}
			if strings.Contains(lower, "único") || strings.Contains(lower, "unico") {
				return "UNICO"
			}
		}
	}
	if text == "" {
		return "(empty)"
	}
	diagnostic := strings.ReplaceAll(text, "\n", " ")
	if len(diagnostic) > 20 {
		diagnostic = diagnostic[:20]
	}
	return diagnostic
}

func idsMatch(expected, actual, spanType string) bool {
	if expected == "" || actual == "" {
		return false
	}
	expected = strings.ToUpper(expected)
	actual = strings.ToUpper(actual)

	switch spanType {
	case "PAR":
		if expected == "UNICO" {
			return strings.Contains(actual, "UNICO") || strings.Contains(actual, "ÚNICO")
		}
		return expected == actual
	case "ART":
		return strings.TrimLeft(expected, "0") == strings.TrimLeft(actual, "0")
	default:
		return expected == actual
	}
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return s != ""
}
