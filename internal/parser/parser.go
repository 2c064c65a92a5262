// Package parser implements the deterministic span parser (spec §4.2): a
// strictly regex-driven pipeline that recognizes the Brazilian legal
// hierarchy (capítulo -> artigo -> parágrafo -> inciso -> alínea) and
// emits a ParsedDocument with absolute offsets into the canonical text.
//
// Grounded on original_source/src/parsing/span_parser.py. Go's RE2 engine
// has no lookahead/lookbehind, unlike the Python original's patterns
// (which use a lookahead to bound captured content). This package sidesteps
// that entirely: every regex here matches only a marker's prefix (enough
// to capture its numeral/letter), and content extents are computed the
// same way the Python original already computes article extents --
// "end_pos = start of the next sibling marker, or end of the enclosing
// range" -- generalized to every level instead of being special-cased for
// articles alone.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"legalcore/internal/spanmodel"
)

// romanNumerals matches Roman numerals 1-99 (I through XCIX), ported verbatim from
// span_parser.py's ROMAN_NUMERALS fragment.
const romanNumerals = `(?:(?:XC|L?X{0,3}|XL)(?:IX|IV|V?I{0,3})|(?:IX|IV|V?I{0,3}))`

var (
	reCapitulo  = regexp.MustCompile(`(?im)^(?:CAP[ÍI]TULO|CAP\.?)\s+([IVXLC]+)\b`)
	reArtigo    = regexp.MustCompile(`(?im)^(?:\d+\.\s*)?[-*]?\s*Art\.?\s*(\d+)[°ºo]?\s*(?:-\s*([A-Z])\.)?\.?`)
	reParagrafo = regexp.MustCompile(`(?im)^(?:\d+\.\s*)?[-*]?\s*(?:§\s*(\d+)[°ºo]?|Par[áa]grafo\s+[úu]nico)`)
	reInciso    = regexp.MustCompile(`(?m)^(?:\d+\.\s*)?[-*]?\s*(` + romanNumerals + `)\s*[-–—]`)
	reAlinea    = regexp.MustCompile(`(?m)^(?:\d+\.\s*)?[-*]?\s*([a-z])\)`)

	reDocType     = regexp.MustCompile(`(?i)(LEI|DECRETO|INSTRU[ÇC][ÃA]O NORMATIVA|PORTARIA|RESOLU[ÇC][ÃA]O)`)
	reDocNumber   = regexp.MustCompile(`(?i)N[°ºo]?\s*(\d+)`)
	reStructStart = regexp.MustCompile(`(?i)^[-*]?\s*(Art\.|§|` + romanNumerals + `\s*[-–—]|[a-z]\))`)
)

// citationGuardTokens are phrases that, found immediately before a
// paragraph marker on the same logical line, indicate the "§" is a
// reference to another paragraph rather than a new one (spec §4.2's
// citation-context guard).
var citationGuardTokens = []string{"conforme", "nos termos", "previsto no", "deste artigo", "do §"}

// Parse runs the full law-genre pipeline over canonicalText and returns a
// ParsedDocument. canonicalText MUST already be produced by
// internal/canonical.Normalize; Parse does not normalize again (spec §4.1
// and §4.2 are distinct stages).
//
// span_parser.py additionally collapses inline whitespace runs on a working
// copy before matching, while still storing the unnormalized text as
// source_text -- so its span offsets and source_text disagree whenever
// that collapse changes any length. The canonical-offset contract (spec
// §4.1) requires every Span offset to be a valid pure slice of the exact
// text stored alongside it, so this port matches directly against
// canonicalText instead and never rewrites it before slicing.
func Parse(canonicalText string, meta spanmodel.DocumentMeta) (*spanmodel.ParsedDocument, error) {
	doc := spanmodel.NewParsedDocument(canonicalText, meta, nil)

	text := canonicalText

	extractHeader(text, doc)
	extractCapitulos(text, doc)
	articles := extractArtigos(text, doc)
	for _, art := range articles {
		extractArticleChildren(art, text, doc)
	}

	return doc, nil
}

func extractHeader(text string, doc *spanmodel.ParsedDocument) {
	endPos := len(text)
	if loc := reCapitulo.FindStringIndex(text); loc != nil && loc[0] < endPos {
		endPos = loc[0]
	}
	if loc := reArtigo.FindStringIndex(text); loc != nil && loc[0] < endPos {
		endPos = loc[0]
	}
	if endPos <= 100 {
		return
	}
	headerText := strings.TrimSpace(text[:endPos])
	if headerText == "" {
		return
	}
	sp := &spanmodel.Span{
		SpanID:   "HDR-001",
		SpanType: spanmodel.Header,
		Text:     text[:endPos],
		StartPos: 0,
		EndPos:   endPos,
	}
	doc.AddSpan(sp)
	parseHeaderMetadata(headerText, doc)
}

func parseHeaderMetadata(header string, doc *spanmodel.ParsedDocument) {
	if doc.Meta.DocumentType == "" {
		if m := reDocType.FindStringSubmatch(header); m != nil {
			doc.Meta.DocumentType = strings.ToUpper(m[1])
		}
	}
	if doc.Meta.Number == "" {
		if m := reDocNumber.FindStringSubmatch(header); m != nil {
			doc.Meta.Number = m[1]
		}
	}
}

func extractCapitulos(text string, doc *spanmodel.ParsedDocument) {
	for _, m := range reCapitulo.FindAllStringSubmatchIndex(text, -1) {
		numero := text[m[2]:m[3]]
		start := m[0]
		end := m[1]

		// Extend to the next line if it reads as a title rather than a
		// new structural marker (span_parser.py _extract_capitulos).
		if nl := strings.IndexByte(text[end:], '\n'); nl != -1 {
			lineStart := end + nl
			nextLineEnd := strings.IndexByte(text[lineStart+1:], '\n')
			var lineEnd int
			if nextLineEnd == -1 {
				lineEnd = len(text)
			} else {
				lineEnd = lineStart + 1 + nextLineEnd
			}
			nextLine := strings.TrimSpace(text[lineStart:lineEnd])
			if nextLine != "" && !reStructStart.MatchString(nextLine) {
				end = lineEnd
			}
		}

		sp := &spanmodel.Span{
			SpanID:     "CAP-" + numero,
			SpanType:   spanmodel.Capitulo,
			Text:       text[start:end],
			Identifier: numero,
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)
	}
}

func extractArtigos(text string, doc *spanmodel.ParsedDocument) []*spanmodel.Span {
	matches := reArtigo.FindAllStringSubmatchIndex(text, -1)
	spans := make([]*spanmodel.Span, 0, len(matches))

	for i, m := range matches {
		numero := text[m[2]:m[3]]
		letter := ""
		if m[4] != -1 {
			letter = text[m[4]:m[5]]
		}

		start := m[0]
		var end int
		if i+1 < len(matches) {
			end = matches[i+1][0]
		} else {
			end = len(text)
		}

		spanID, identifier := articleSpanID(numero, letter)
		parentID := findParentCapitulo(start, doc)

		sp := &spanmodel.Span{
			SpanID:     spanID,
			SpanType:   spanmodel.Artigo,
			Text:       text[start:end],
			Identifier: identifier,
			ParentID:   parentID,
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)
		spans = append(spans, sp)
	}
	return spans
}

func articleSpanID(numero, letter string) (spanID, identifier string) {
	padded := zeroPad3(numero)
	if letter != "" {
		return "ART-" + padded + "-" + strings.ToUpper(letter), numero + "-" + strings.ToUpper(letter)
	}
	return "ART-" + padded, numero
}

func zeroPad3(numero string) string {
	n, err := strconv.Atoi(numero)
	if err != nil {
		return numero
	}
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

func findParentCapitulo(position int, doc *spanmodel.ParsedDocument) string {
	parent := ""
	for _, sp := range doc.Spans() {
		if sp.SpanType == spanmodel.Capitulo && sp.StartPos < position {
			parent = sp.SpanID
		}
	}
	return parent
}

func extractArticleChildren(article *spanmodel.Span, text string, doc *spanmodel.ParsedDocument) {
	fullText := text[article.StartPos:article.EndPos]
	if fullText == "" {
		return
	}
	numero := article.Identifier
	if idx := strings.IndexByte(numero, '-'); idx != -1 {
		numero = numero[:idx] // "337-E" -> "337": the letter suffix never enters child span IDs
	}
	artNum := zeroPad3(numero)

	firstPar := reParagrafo.FindStringIndex(fullText)

	var caputText string
	var paragrafosText string
	var paragrafosBase int
	if firstPar != nil {
		caputText = fullText[:firstPar[0]]
		paragrafosText = fullText[firstPar[0]:]
		paragrafosBase = article.StartPos + firstPar[0]

		article.HasCaputEnd = true
		article.CaputEndPos = article.StartPos + firstPar[0]
	} else {
		caputText = fullText
		paragrafosText = ""
	}

	extractIncisos(caputText, article.StartPos, artNum, article.SpanID, doc)

	if paragrafosText != "" {
		extractParagrafos(paragrafosText, paragrafosBase, artNum, article.SpanID, doc)
	}
}

func extractParagrafos(text string, baseOffset int, artNum, parentID string, doc *spanmodel.ParsedDocument) {
	matches := reParagrafo.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		if isCitationContext(text, m[0]) {
			continue
		}

		var identifier, spanID string
		if m[2] != -1 {
			numero := text[m[2]:m[3]]
			identifier = numero
			spanID = "PAR-" + artNum + "-" + numero
		} else {
			identifier = "único"
			spanID = "PAR-" + artNum + "-UNICO"
		}

		start := baseOffset + m[0]
		var end int
		if i+1 < len(matches) {
			end = baseOffset + matches[i+1][0]
		} else {
			end = baseOffset + len(text)
		}

		sp := &spanmodel.Span{
			SpanID:     spanID,
			SpanType:   spanmodel.Paragrafo,
			Text:       doc.SourceText[start:end],
			Identifier: identifier,
			ParentID:   parentID,
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)

		extractIncisos(sp.Text, start, artNum, spanID, doc)
	}
}

func extractIncisos(text string, baseOffset int, artNum, parentID string, doc *spanmodel.ParsedDocument) {
	matches := reInciso.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		romano := text[m[2]:m[3]]

		start := baseOffset + m[0]
		var end int
		if i+1 < len(matches) {
			end = baseOffset + matches[i+1][0]
		} else {
			end = baseOffset + len(text)
		}

		baseID := "INC-" + artNum + "-" + romano
		spanID := disambiguate(doc, baseID)

		sp := &spanmodel.Span{
			SpanID:     spanID,
			SpanType:   spanmodel.Inciso,
			Text:       doc.SourceText[start:end],
			Identifier: romano,
			ParentID:   parentID,
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)

		extractAlineas(sp.Text, start, artNum, romano, spanID, doc)
	}
}

func extractAlineas(text string, baseOffset int, artNum, romano, parentID string, doc *spanmodel.ParsedDocument) {
	matches := reAlinea.FindAllStringSubmatchIndex(text, -1)
	for i, m := range matches {
		letra := text[m[2]:m[3]]

		start := baseOffset + m[0]
		var end int
		if i+1 < len(matches) {
			end = baseOffset + matches[i+1][0]
		} else {
			end = baseOffset + len(text)
		}

		spanID := "ALI-" + artNum + "-" + romano + "-" + letra

		sp := &spanmodel.Span{
			SpanID:     spanID,
			SpanType:   spanmodel.Alinea,
			Text:       doc.SourceText[start:end],
			Identifier: letra,
			ParentID:   parentID,
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)
	}
}

// disambiguate appends _2, _3, ... to baseID until the result is unused in
// doc, matching span_parser.py's collision loop exactly. The suffix is a
// disambiguator only; the true parent is recorded in ParentID.
func disambiguate(doc *spanmodel.ParsedDocument, baseID string) string {
	spanID := baseID
	suffix := 2
	for doc.GetSpan(spanID) != nil {
		spanID = baseID + "_" + strconv.Itoa(suffix)
		suffix++
	}
	return spanID
}

// isCitationContext reports whether a paragraph marker at matchStart
// within text is actually a citation to another paragraph rather than a
// new one: true if one of the guard tokens appears on the same line
// immediately before the match (spec §4.2's citation-context guard).
// Because every marker regex here is line-start anchored, this is mostly
// a defensive second check for malformed input where line breaks were
// lost upstream.
func isCitationContext(text string, matchStart int) bool {
	lineStart := strings.LastIndexByte(text[:matchStart], '\n') + 1
	preceding := strings.ToLower(text[lineStart:matchStart])
	if strings.TrimSpace(preceding) == "" {
		return false
	}
	for _, token := range citationGuardTokens {
		if strings.Contains(preceding, token) {
			return true
		}
	}
	return false
}
