// Package materializer implements the chunk materializer (spec §4.5):
// turns a ParsedDocument's Spans into physical ChunkParts with parent/
// child linkage, size-based splitting with overlap, and the invariant
// validation gate that must find zero violations before returning.
//
// Grounded on original_source/src/spans/splitter.py in full for the
// splitting algorithm (split_text_with_offsets, calculate_part_count);
// spec.md §4.5 directly for chunk assembly, since
// original_source/src/chunking/chunk_materializer.py's body is almost
// entirely architecture-diagram docstrings with no recoverable
// implementation. The cursor/overlap loop shape also echoes
// document-chunker/main.go's createSlidingWindowChunks.
package materializer

import (
	"strings"
	"unicode"

	"legalcore/internal/coreerr"
	"legalcore/internal/ids"
	"legalcore/internal/resolver"
	"legalcore/internal/spanmodel"
)

// Default split constants (spec §4.5, §6.5). Callers thread these down
// explicitly via Options rather than the core reading global config
// (spec §9: "pass configuration structs explicitly").
const (
	DefaultMaxTextChars = 8000
	DefaultOverlapChars = 200
)

// Options bundles the explicit configuration this package consumes.
type Options struct {
	MaxTextChars  int
	OverlapChars  int
	Prefix        string // namespace prefix, e.g. "leis", "acordaos"
	SchemaVersion string
	IngestRunID   string
}

func (o Options) withDefaults() Options {
	if o.MaxTextChars <= 0 {
		o.MaxTextChars = DefaultMaxTextChars
	}
	if o.OverlapChars < 0 {
		o.OverlapChars = DefaultOverlapChars
	}
	if o.Prefix == "" {
		o.Prefix = "leis"
	}
	return o
}

// segment is one physical slice of a span's text.
type segment struct {
	text      string
	charStart int
	charEnd   int
}

// Split divides text into segments of at most maxChars, overlapping
// consecutive segments by overlap characters and preferring a space-based
// cut over a hard cut (spec §4.5's split algorithm, ported verbatim from
// split_text_with_offsets).
func Split(text string, maxChars, overlap int) []segment {
	if text == "" {
		return nil
	}
	textLen := len(text)
	if textLen <= maxChars {
		return []segment{{text: text, charStart: 0, charEnd: textLen}}
	}

	var parts []segment
	start := 0
	for start < textLen {
		end := start + maxChars
		if end > textLen {
			end = textLen
		}

		if end < textLen {
			if spacePos := strings.LastIndexByte(text[start:end], ' '); spacePos != -1 {
				absSpacePos := start + spacePos
				if absSpacePos > start+maxChars/2 {
					end = absSpacePos + 1
				}
			}
		}

		parts = append(parts, segment{text: text[start:end], charStart: start, charEnd: end})

		if end >= textLen {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return parts
}

// MaterializeDocument walks every Span in doc whose DeviceType is known
// (ARTICLE/PARAGRAPH/INCISO/ALINEA) and emits their ChunkParts, using each
// Span's own StartPos/EndPos/CaputEndPos as the evidence trio's source --
// the path taken when a ParsedDocument already carries resolved offsets,
// i.e. every document this module's own parsers produce.
//
// Evidence-range choice (spec §9 Open Question): an article's evidence
// slice is its caput alone (up to CaputEndPos) when it has a paragraph,
// and its full structural range otherwise -- caput incisos and their
// alíneas lie inside the caput, so an article with incisos but no
// paragraph uses the full range; descendants are always checked for
// containment against the *structural* range (EndPos), never the caput
// range, so a paragraph/inciso/alínea is never rejected merely because it
// falls after the caput boundary.
func MaterializeDocument(doc *spanmodel.ParsedDocument, canonicalHash string, opts Options) ([]*spanmodel.ChunkPart, error) {
	opts = opts.withDefaults()

	var out []*spanmodel.ChunkPart
	for _, sp := range doc.Spans() {
		deviceType := spanmodel.DeviceTypeOf(sp.SpanType)
		if deviceType == spanmodel.DeviceUnknown {
			continue
		}

		canonicalStart, canonicalEnd, err := evidenceRangeFor(doc, sp)
		if err != nil {
			return nil, err
		}

		parts, err := buildChunkParts(doc, sp, deviceType, canonicalStart, canonicalEnd, canonicalHash, opts)
		if err != nil {
			return nil, err
		}
		out = append(out, parts...)
	}

	if err := ValidateInvariants(out, doc.SourceText, canonicalHash); err != nil {
		return nil, err
	}
	return out, nil
}

// evidenceRangeFor computes the canonical evidence range for one span,
// re-checking containment against the parent's structural range for every
// non-article span (spec §4.5 step 5: CONTAINMENT_VIOLATION).
func evidenceRangeFor(doc *spanmodel.ParsedDocument, sp *spanmodel.Span) (start, end int, err error) {
	if sp.SpanType == spanmodel.Artigo {
		if sp.HasCaputEnd {
			return sp.StartPos, sp.CaputEndPos, nil
		}
		return sp.StartPos, sp.EndPos, nil
	}

	start, end = sp.StartPos, sp.EndPos

	if sp.ParentID != "" {
		parent := doc.GetSpan(sp.ParentID)
		if parent != nil {
			if start < parent.StartPos || end > parent.StructuralEndPos() {
				return 0, 0, coreerr.New(coreerr.ContainmentViolation, doc.Meta.DocumentID, sp.SpanID, string(spanmodel.DeviceTypeOf(sp.SpanType)),
					"resolved offsets escape parent's structural range")
			}
		}
	}
	return start, end, nil
}

// buildChunkParts splits sp.Text and emits one ChunkPart per segment, all
// sharing sp's full evidence trio (spec §4.5: "the overlap lives only in
// text/char_start/char_end; the canonical_* trio of every part points to
// the full span's canonical range").
func buildChunkParts(doc *spanmodel.ParsedDocument, sp *spanmodel.Span, deviceType spanmodel.DeviceType, canonicalStart, canonicalEnd int, canonicalHash string, opts Options) ([]*spanmodel.ChunkPart, error) {
	segments := Split(sp.Text, opts.MaxTextChars, opts.OverlapChars)
	if len(segments) == 0 {
		segments = []segment{{text: sp.Text, charStart: 0, charEnd: len(sp.Text)}}
	}

	logicalNodeID := ids.BuildLogicalNodeID(opts.Prefix, doc.Meta.DocumentID, sp.SpanID)
	parentSpanID := sp.ParentID
	if sp.SpanType == spanmodel.Artigo {
		parentSpanID = "" // articles carry no parent chunk pointer, even under a chapter
	}
	parentChunkID := ids.BuildParentChunkID(doc.Meta.DocumentID, parentSpanID)

	parts := make([]*spanmodel.ChunkPart, 0, len(segments))
	for i, seg := range segments {
		cp := &spanmodel.ChunkPart{
			NodeID:        ids.BuildNodeID(logicalNodeID, i),
			LogicalNodeID: logicalNodeID,
			ChunkID:       ids.BuildChunkID(doc.Meta.DocumentID, sp.SpanID, i),
			ParentChunkID: parentChunkID,
			PartIndex:     i,
			PartTotal:     len(segments),
			Text:          seg.text,
			CharStart:     seg.charStart,
			CharEnd:       seg.charEnd,
			DeviceType:    deviceType,
			ArticleNumber: articleNumberFor(doc, sp),
			DocumentType:  doc.Meta.DocumentType,
			DocumentID:    doc.Meta.DocumentID,
			SpanID:        sp.SpanID,
			SchemaVersion: opts.SchemaVersion,
			IngestRunID:   opts.IngestRunID,
		}
		if canonicalEnd > canonicalStart && canonicalHash != "" {
			cp.CanonicalStart = canonicalStart
			cp.CanonicalEnd = canonicalEnd
			cp.CanonicalHash = canonicalHash
		} else {
			cp.SetSentinelEvidence()
		}
		parts = append(parts, cp)
	}
	return parts, nil
}

// articleNumberFor walks parent_id up to the enclosing article and
// extracts its number, or "" if sp is rootless or has no enclosing
// article (spec §4.8's find_root_article_span_id, shared here since both
// the materializer and the bridge need it).
func articleNumberFor(doc *spanmodel.ParsedDocument, sp *spanmodel.Span) string {
	if sp.SpanType == spanmodel.Artigo {
		return articleNumberFromSpanID(sp.SpanID)
	}
	current := sp
	visited := map[string]bool{}
	for current.ParentID != "" && !visited[current.ParentID] {
		visited[current.ParentID] = true
		parent := doc.GetSpan(current.ParentID)
		if parent == nil {
			break
		}
		if parent.SpanType == spanmodel.Artigo {
			return articleNumberFromSpanID(parent.SpanID)
		}
		current = parent
	}
	return ""
}

func articleNumberFromSpanID(spanID string) string {
	if strings.HasPrefix(spanID, "ART-") {
		return strings.TrimPrefix(spanID, "ART-")
	}
	return ""
}

// ResolveAndMaterializeSpan is the offset-resolution path (spec §4.4/§4.5):
// used when a span's text is known but its absolute offsets are not yet
// resolved against the canonical text (e.g. consuming span data supplied
// by an external extractor). It resolves the offsets deterministically
// within the parent's structural range and then builds ChunkParts exactly
// as MaterializeDocument would.
func ResolveAndMaterializeSpan(canonicalText, canonicalHash string, parent *spanmodel.Span, childSpanID, childText string, deviceType spanmodel.DeviceType, doc *spanmodel.ParsedDocument, opts Options) ([]*spanmodel.ChunkPart, error) {
	opts = opts.withDefaults()

	start, end, err := resolver.ResolveChildOffsets(canonicalText, parent.StartPos, parent.StructuralEndPos(), childText, doc.Meta.DocumentID, childSpanID)
	if err != nil {
		return nil, err
	}

	sp := &spanmodel.Span{
		SpanID:   childSpanID,
		ParentID: parent.SpanID,
		Text:     childText,
		StartPos: start,
		EndPos:   end,
	}
	switch deviceType {
	case spanmodel.DeviceParagraph:
		sp.SpanType = spanmodel.Paragrafo
	case spanmodel.DeviceInciso:
		sp.SpanType = spanmodel.Inciso
	case spanmodel.DeviceAlinea:
		sp.SpanType = spanmodel.Alinea
	default:
		sp.SpanType = spanmodel.Artigo
	}

	return buildChunkParts(doc, sp, deviceType, start, end, canonicalHash, opts)
}

// devicePrefixChecks mirror internal/address's actual-identifier
// patterns: used by ValidateInvariants to check that a coherent evidence
// slice begins with the legal prefix its span_id implies (spec §3
// invariant 6 / §8 property 1). Keyed by the span_id's own ART-/PAR-/
// INC-/ALI- prefix rather than DeviceType, because the lexical prefixes
// this invariant describes ("Art. N", "§ N", ...) belong to the law
// genre's span-ID scheme specifically; internal/acordao reuses the same
// DeviceType values by structural role (ACORDAO as Artigo, RELATORIO/
// VOTO paragraphs as Paragrafo, deliberations as Inciso) for spans whose
// literal text never begins with "Art."/"§" at all, so a span_id outside
// the law genre's prefix set is not evidence invariant 6 governs and is
// skipped here (its coherence/hash checks above still apply).
var devicePrefixChecks = map[string]func(string) bool{
	"ART-": hasArticlePrefix,
	"PAR-": hasParagraphPrefix,
	"INC-": hasIncisoPrefix,
	"ALI-": hasAlineaPrefix,
}

func hasArticlePrefix(s string) bool {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "art")
}

func hasParagraphPrefix(s string) bool {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "§") {
		return true
	}
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "parágrafo") || strings.HasPrefix(lower, "paragrafo")
}

func hasIncisoPrefix(s string) bool {
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) && isRomanRune(rune(s[i])) {
		i++
	}
	if i == 0 {
		return false
	}
	rest := strings.TrimSpace(s[i:])
	return strings.HasPrefix(rest, "-") || strings.HasPrefix(rest, "–") || strings.HasPrefix(rest, "—")
}

func isRomanRune(r rune) bool {
	switch unicode.ToUpper(r) {
	case 'I', 'V', 'X', 'L', 'C', 'D', 'M':
		return true
	default:
		return false
	}
}

func hasAlineaPrefix(s string) bool {
	s = strings.TrimSpace(s)
	return len(s) >= 2 && s[1] == ')' && s[0] >= 'a' && s[0] <= 'z'
}

// ValidateInvariants is the gate MaterializeDocument runs before
// returning (spec §4.5 step 6): it must find zero violations.
//
//   - every evidence trio is all-set or all-sentinel, never mixed
//   - every coherent, evidence-bearing chunk's canonical slice begins
//     with the lexical prefix its span_id/device_type implies, and its
//     hash matches canonicalHash
//   - node_id values are pairwise distinct
func ValidateInvariants(parts []*spanmodel.ChunkPart, canonicalText, canonicalHash string) error {
	seen := make(map[string]bool, len(parts))
	for _, cp := range parts {
		if seen[cp.NodeID] {
			return coreerr.New(coreerr.ContractViolation, cp.DocumentID, cp.SpanID, string(cp.DeviceType), "duplicate node_id "+cp.NodeID)
		}
		seen[cp.NodeID] = true

		coherent := cp.CanonicalStart >= 0 && cp.CanonicalEnd > cp.CanonicalStart && cp.CanonicalHash != ""
		sentinel := cp.CanonicalStart == spanmodel.EvidenceSentinelPos && cp.CanonicalEnd == spanmodel.EvidenceSentinelPos && cp.CanonicalHash == ""
		if !coherent && !sentinel {
			return coreerr.New(coreerr.ContractViolation, cp.DocumentID, cp.SpanID, string(cp.DeviceType), "evidence trio is neither coherent nor sentinel")
		}
		if !coherent {
			continue
		}

		if cp.CanonicalHash != canonicalHash {
			return coreerr.New(coreerr.HashMismatch, cp.DocumentID, cp.SpanID, string(cp.DeviceType), "canonical_hash does not match the canonical text's hash")
		}
		if cp.CanonicalEnd > len(canonicalText) {
			return coreerr.New(coreerr.ContractViolation, cp.DocumentID, cp.SpanID, string(cp.DeviceType), "canonical_end exceeds canonical text length")
		}

		var check func(string) bool
		for prefix, fn := range devicePrefixChecks {
			if strings.HasPrefix(cp.SpanID, prefix) {
				check = fn
				break
			}
		}
		if check == nil {
			continue
		}
		slice := canonicalText[cp.CanonicalStart:cp.CanonicalEnd]
		if !check(slice) {
			return coreerr.New(coreerr.ContractViolation, cp.DocumentID, cp.SpanID, string(cp.DeviceType), "canonical slice does not begin with the prefix implied by span_id")
		}
	}
	return nil
}
