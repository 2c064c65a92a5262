// Package origin implements the origin classifier (spec §4.7): an
// ordered, first-match-wins rule table deciding whether a chunk's text
// is a self-contained statement or an external/mentioned reference to
// another normative instrument.
//
// Grounded on original_source/src/chunking/origin_classifier.py in full
// (OriginRule, OriginClassifier.DEFAULT_RULES, classify /
// classify_materialized_chunk — unified here into one Classify
// entrypoint operating on *spanmodel.ChunkPart, since the Python split
// only existed to bridge two slightly different chunk representations
// that our ChunkPart already unifies).
package origin

import (
	"regexp"

	"legalcore/internal/spanmodel"
)

// rule is one entry of the ordered classification table. The first rule
// whose pattern matches wins; rules are evaluated in table order.
// referenceID is the external norm's own canonical document ID (e.g.
// "DL-2848-1940"), carried as origin_reference regardless of confidence
// band -- a low-confidence "mention" rule still names which norm was
// mentioned, it just doesn't reclassify the chunk as external.
type rule struct {
	name          string
	pattern       *regexp.Regexp
	referenceID   string
	referenceName string
	confidence    spanmodel.OriginConfidence
}

// defaultRules is the ordered rule table, ported from DEFAULT_RULES.
// codigo_penal_art337 is the sole high-confidence rule: its pattern is
// anchored to line start, matching only an actual reproduction of the
// article's caput, never a passing mention.
var defaultRules = []rule{
	{
		name:          "codigo_penal_art337",
		pattern:       regexp.MustCompile(`(?m)^[\s\-\*]*Art\.?\s*337-[A-Z]`),
		referenceID:   "DL-2848-1940",
		referenceName: "Código Penal",
		confidence:    spanmodel.ConfidenceHigh,
	},
	{
		name:          "codigo_penal_decreto_lei",
		pattern:       regexp.MustCompile(`(?i)Decreto-Lei\s+(?:n[ºo°]?\s*)?2\.848`),
		referenceID:   "DL-2848-1940",
		referenceName: "Código Penal",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "codigo_penal_mention",
		pattern:       regexp.MustCompile(`(?i)C[óo]digo\s+Penal`),
		referenceID:   "DL-2848-1940",
		referenceName: "Código Penal",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "cpc_lei_13105",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?13\.105`),
		referenceID:   "LEI-13105-2015",
		referenceName: "Código de Processo Civil",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "cpc_mention",
		pattern:       regexp.MustCompile(`(?i)C[óo]digo\s+de\s+Processo\s+Civil`),
		referenceID:   "LEI-13105-2015",
		referenceName: "Código de Processo Civil",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lindb",
		pattern:       regexp.MustCompile(`(?i)Lei\s+de\s+Introdu[çc][aã]o\s+[aà]s?\s+Normas\s+do\s+Direito\s+Brasileiro|LINDB`),
		referenceID:   "DL-4657-1942",
		referenceName: "LINDB",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_8987",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?8\.987`),
		referenceID:   "LEI-8987-1995",
		referenceName: "Lei de Concessões",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_8666",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?8\.666`),
		referenceID:   "LEI-8666-1993",
		referenceName: "Lei de Licitações (revogada)",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_10520",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?10\.520`),
		referenceID:   "LEI-10520-2002",
		referenceName: "Lei do Pregão (revogada)",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_12462",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?12\.462`),
		referenceID:   "LEI-12462-2011",
		referenceName: "Lei do RDC",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_11079",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?11\.079`),
		referenceID:   "LEI-11079-2004",
		referenceName: "Lei das PPPs",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_12846",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?12\.846`),
		referenceID:   "LEI-12846-2013",
		referenceName: "Lei Anticorrupção",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_13303",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?13\.303`),
		referenceID:   "LEI-13303-2016",
		referenceName: "Lei das Estatais",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_4320",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?4\.320`),
		referenceID:   "LEI-4320-1964",
		referenceName: "Lei de Direito Financeiro",
		confidence:    spanmodel.ConfidenceLow,
	},
	{
		name:          "lei_8212",
		pattern:       regexp.MustCompile(`(?i)Lei\s+(?:n[ºo°]?\s*)?8\.212`),
		referenceID:   "LEI-8212-1991",
		referenceName: "Lei da Seguridade Social",
		confidence:    spanmodel.ConfidenceLow,
	},
}

// Verdict is the result of classifying one chunk.
type Verdict struct {
	RuleName      string
	Reference     string // origin_reference, e.g. "DL-2848-1940"
	ReferenceName string
	Confidence    spanmodel.OriginConfidence
	Origin        string // "self" or "external"
	Reason        string // "rule:<name>" (external) or "mention:<name>" (self, low-confidence match)
}

// Classify evaluates part.Text against the ordered rule table and
// returns the first match. high/medium confidence rules produce
// origin=external; low confidence rules leave the chunk self-authored
// but record which external instrument it merely mentions. No match
// leaves the chunk self-authored with no rule recorded.
func Classify(part *spanmodel.ChunkPart) Verdict {
	for _, r := range defaultRules {
		if !r.pattern.MatchString(part.Text) {
			continue
		}
		switch r.confidence {
		case spanmodel.ConfidenceHigh, spanmodel.ConfidenceMedium:
			return Verdict{
				RuleName:      r.name,
				Reference:     r.referenceID,
				ReferenceName: r.referenceName,
				Confidence:    r.confidence,
				Origin:        "external",
				Reason:        "rule:" + r.name,
			}
		default:
			return Verdict{
				RuleName:      r.name,
				Reference:     r.referenceID,
				ReferenceName: r.referenceName,
				Confidence:    r.confidence,
				Origin:        "self",
				Reason:        "mention:" + r.name,
			}
		}
	}
	return Verdict{Origin: "self"}
}

// Apply runs Classify and writes the verdict's origin/confidence fields
// directly onto part, mirroring classify_materialized_chunk's in-place
// mutation.
func Apply(part *spanmodel.ChunkPart) Verdict {
	v := Classify(part)
	part.OriginConfidence = v.Confidence
	part.OriginType = v.Origin
	part.OriginReference = v.Reference
	part.IsExternalMaterial = v.Origin == "external"
	part.OriginReason = v.Reason
	return v
}

// Stats summarizes a batch classification, mirroring classify_batch's
// aggregate counters.
type Stats struct {
	Total          int
	Self           int
	External       int
	Mentions       int
	ExternalRefs   map[string]int
	MentionRefs    map[string]int
	RulesTriggered map[string]int
}

// ClassifyBatch classifies every part in order, mutating each in place
// via Apply, and returns aggregate statistics.
func ClassifyBatch(parts []*spanmodel.ChunkPart) Stats {
	stats := Stats{
		ExternalRefs:   map[string]int{},
		MentionRefs:    map[string]int{},
		RulesTriggered: map[string]int{},
	}
	for _, part := range parts {
		v := Apply(part)
		stats.Total++
		switch v.Origin {
		case "external":
			stats.External++
			if v.Reference != "" {
				stats.ExternalRefs[v.Reference]++
			}
			if v.RuleName != "" {
				stats.RulesTriggered[v.Reason]++
			}
		default:
			stats.Self++
			if v.Reason != "" {
				stats.Mentions++
				if v.Reference != "" {
					stats.MentionRefs[v.Reference]++
				}
				stats.RulesTriggered[v.Reason]++
			}
		}
	}
	return stats
}
