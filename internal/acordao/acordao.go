// Package acordao implements the secondary, TCU-ruling span parser (spec
// §4.9): header metadata, a single SUMARIO, numbered RELATORIO and VOTO
// paragraphs, and a single ACORDAO block with numbered deliberations
// (9.1, 9.2, ...) as its children.
//
// Grounded on original_source/src/parsing/acordao_span_parser.py and
// acordao_models.py. Reuses internal/spanmodel's closed SpanType/DeviceType
// enumerations rather than inventing ruling-specific ones (spec §3's
// SpanType set has no SUMARIO/RELATORIO/VOTO/ACORDAO/DELIBERACAO members);
// RELATORIO and VOTO paragraphs map onto Paragrafo, the ACORDAO block maps
// onto Artigo (the ruling's single top-level addressable device), and
// deliberations map onto Inciso (ACORDAO's numbered children) -- the
// closest structural fit, chosen so the existing bridge/materializer can
// drive Acórdão documents through the same DeviceType-keyed pipeline as
// law documents (spec §9 design note: "factor common infrastructure...
// let each genre provide its own regex table and span-ID scheme").
package acordao

import (
	"regexp"
	"strconv"
	"strings"

	"legalcore/internal/spanmodel"
)

var (
	reSumarioHeader   = regexp.MustCompile(`(?im)^(?:#*\s*)?(?:SUM[ÁA]RIO|SUMARIO)\s*:?\s*`)
	reRelatorioHeader = regexp.MustCompile(`(?im)^(?:#*\s*)?(?:RELAT[ÓO]RIO|RELATORIO)\s*:?\s*$`)
	reVotoHeader      = regexp.MustCompile(`(?im)^(?:#*\s*)?VOTO\s*:?\s*$`)
	reAcordaoHeader   = regexp.MustCompile(`(?im)^(?:#*\s*)?(?:AC[ÓO]RD[ÃA]O|ACORDAM)\b`)

	reParagrafoNum = regexp.MustCompile(`(?m)^\s*(?:-\s*)?(\d+)\.\s+`)
	reDeliberacao  = regexp.MustCompile(`(?m)^\s*(?:-\s*)?9\.(\d+)[.:]?\s+`)

	reCodigo       = regexp.MustCompile(`(?i)C[óo]digo\s+eletr[ôo]nico[:\s]+([A-Z0-9\-/]+)`)
	reTituloNumAno = regexp.MustCompile(`(?i)AC[ÓO]RD[ÃA]O\s+N[°ºo]?\s*(\d+)/(\d{4})\s*-\s*TCU\s*-\s*(Plen[áa]rio|1[ªa]\s*C[âa]mara|2[ªa]\s*C[âa]mara)`)
	reNumFallback  = regexp.MustCompile(`(?i)Ac[óo]rd[ãa]o\s+(?:n[°ºo]?\s*)?(\d+)`)
	reAnoFallback  = regexp.MustCompile(`/(\d{4})`)

	reAcordaoID = regexp.MustCompile(`^AC[–-](\d+)[–-]\d+/(\d+)[–-]([A-Z0-9]+)$`)
)

const minParagrafoChars = 20

// Parse runs the ruling-genre pipeline over canonicalText. As in Parse in
// internal/parser, offsets here are computed directly against
// canonicalText throughout -- there is no separate normalized working
// copy to reconcile.
func Parse(canonicalText string, meta spanmodel.DocumentMeta) (*spanmodel.ParsedDocument, error) {
	doc := spanmodel.NewParsedDocument(canonicalText, meta, nil)

	sumarioStart := -1
	if loc := reSumarioHeader.FindStringIndex(canonicalText); loc != nil {
		sumarioStart = loc[0]
	}

	extractHeaderMetadata(canonicalText, sumarioStart, doc)
	extractSumario(canonicalText, doc)
	extractRelatorioOrVoto(canonicalText, doc, reRelatorioHeader, "REL", spanmodel.Paragrafo)
	extractRelatorioOrVoto(canonicalText, doc, reVotoHeader, "VOTO", spanmodel.Paragrafo)
	extractAcordao(canonicalText, doc)

	return doc, nil
}

// NormalizeAcordaoID converts a raw electronic code ("AC-2724-47/25-P")
// into the canonical acordao_id ("AC-2724-2025-P"), per spec §4.9 and
// acordao_models.py's normalize_acordao_id.
func NormalizeAcordaoID(codigoEletronico string) string {
	m := reAcordaoID.FindStringSubmatch(codigoEletronico)
	if m == nil {
		return ""
	}
	numero := m[1]
	anoCurto, err := strconv.Atoi(m[2])
	if err != nil {
		return ""
	}
	var ano int
	if anoCurto < 50 {
		ano = 2000 + anoCurto
	} else {
		ano = 1900 + anoCurto
	}
	return "AC-" + numero + "-" + strconv.Itoa(ano) + "-" + m[3]
}

// ParseColegiado normalizes a chamber designation to P, 1C, or 2C.
func ParseColegiado(colegiado string) string {
	c := strings.ToUpper(strings.TrimSpace(colegiado))
	switch {
	case c == "P" || c == "PLENARIO" || c == "PLENÁRIO":
		return "P"
	case strings.Contains(c, "1") || strings.Contains(c, "PRIMEIRA"):
		return "1C"
	case strings.Contains(c, "2") || strings.Contains(c, "SEGUNDA"):
		return "2C"
	default:
		return c
	}
}

func extractHeaderMetadata(text string, sumarioStart int, doc *spanmodel.ParsedDocument) {
	headerEnd := sumarioStart
	if headerEnd < 0 {
		headerEnd = len(text)
		if headerEnd > 5000 {
			headerEnd = 5000
		}
	}
	header := text[:headerEnd]

	var numero, ano, colegiado string
	if m := reCodigo.FindStringSubmatch(text); m != nil {
		normalized := NormalizeAcordaoID(m[1])
		if normalized != "" {
			parts := strings.Split(normalized, "-")
			if len(parts) >= 4 {
				numero, ano, colegiado = parts[1], parts[2], parts[3]
			}
		}
	}
	if numero == "" {
		if m := reTituloNumAno.FindStringSubmatch(text); m != nil {
			numero, ano = m[1], m[2]
			colegiado = ParseColegiado(m[3])
		}
	}
	if numero == "" {
		if m := reNumFallback.FindStringSubmatch(header); m != nil {
			numero = m[1]
		}
		if m := reAnoFallback.FindStringSubmatch(header); m != nil {
			ano = m[1]
		}
		upperHeader := strings.ToUpper(header)
		switch {
		case strings.Contains(upperHeader, "PLEN"):
			colegiado = "P"
		case strings.Contains(header, "1ª") || strings.Contains(upperHeader, "PRIMEIRA"):
			colegiado = "1C"
		case strings.Contains(header, "2ª") || strings.Contains(upperHeader, "SEGUNDA"):
			colegiado = "2C"
		}
	}

	doc.Meta.Number = setIfEmpty(doc.Meta.Number, numero)
	doc.Meta.Year = setIfEmpty(doc.Meta.Year, ano)
	doc.Meta.Version = setIfEmpty(doc.Meta.Version, colegiado)
}

func setIfEmpty(current, candidate string) string {
	if current != "" || candidate == "" {
		return current
	}
	return candidate
}

func extractSumario(text string, doc *spanmodel.ParsedDocument) {
	loc := reSumarioHeader.FindStringIndex(text)
	if loc == nil {
		return
	}
	start := loc[0]
	contentStart := loc[1]

	end := nextSectionStart(text, contentStart)
	content := strings.TrimSpace(text[contentStart:end])
	if content == "" {
		return
	}

	sp := &spanmodel.Span{
		SpanID:   "SUMARIO",
		SpanType: spanmodel.Texto,
		Text:     text[start:end],
		StartPos: start,
		EndPos:   end,
	}
	doc.AddSpan(sp)
}

// nextSectionStart returns the position of whichever recognized section
// header (RELATORIO, VOTO, ACORDAO/ACORDAM) occurs first at or after
// from, or len(text) if none does. This is the lookahead-free replacement
// for the Python patterns' `(?=\n(?:RELATORIO|VOTO|...)|$)` boundary.
func nextSectionStart(text string, from int) int {
	end := len(text)
	rest := text[from:]
	for _, re := range []*regexp.Regexp{reRelatorioHeader, reVotoHeader, reAcordaoHeader} {
		if loc := re.FindStringIndex(rest); loc != nil && from+loc[0] < end {
			end = from + loc[0]
		}
	}
	return end
}

func extractRelatorioOrVoto(text string, doc *spanmodel.ParsedDocument, header *regexp.Regexp, prefix string, spanType spanmodel.SpanType) {
	loc := header.FindStringIndex(text)
	if loc == nil {
		return
	}
	sectionStart := loc[1]
	end := nextSectionStart(text, sectionStart)
	section := text[sectionStart:end]

	matches := reParagrafoNum.FindAllStringSubmatchIndex(section, -1)
	counter := 0
	for i, m := range matches {
		contentStart := m[1]
		var contentEnd int
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		} else {
			contentEnd = len(section)
		}
		content := strings.TrimSpace(section[contentStart:contentEnd])
		if len(content) < minParagrafoChars {
			continue
		}
		counter++

		numero := section[m[2]:m[3]]
		start := sectionStart + m[0]
		spanEnd := sectionStart + contentEnd

		sp := &spanmodel.Span{
			SpanID:     prefix + "-" + zeroPad3(counter),
			SpanType:   spanType,
			Text:       doc.SourceText[start:spanEnd],
			Identifier: numero,
			StartPos:   start,
			EndPos:     spanEnd,
		}
		doc.AddSpan(sp)
	}
}

func extractAcordao(text string, doc *spanmodel.ParsedDocument) {
	loc := reAcordaoHeader.FindStringIndex(text)
	if loc == nil {
		return
	}
	start := loc[0]
	end := len(text)

	sp := &spanmodel.Span{
		SpanID:   "ACORDAO",
		SpanType: spanmodel.Artigo,
		Text:     text[start:end],
		StartPos: start,
		EndPos:   end,
	}
	doc.AddSpan(sp)

	extractDeliberacoes(text[start:end], start, doc)
}

func extractDeliberacoes(section string, baseOffset int, doc *spanmodel.ParsedDocument) {
	matches := reDeliberacao.FindAllStringSubmatchIndex(section, -1)
	for i, m := range matches {
		minor := section[m[2]:m[3]]
		contentStart := m[1]
		var contentEnd int
		if i+1 < len(matches) {
			contentEnd = matches[i+1][0]
		} else {
			contentEnd = len(section)
		}
		content := strings.TrimSpace(section[contentStart:contentEnd])
		if len(content) < minParagrafoChars {
			continue
		}

		start := baseOffset + m[0]
		end := baseOffset + contentEnd

		sp := &spanmodel.Span{
			SpanID:     "ACORDAO-9-" + minor,
			SpanType:   spanmodel.Inciso,
			Text:       doc.SourceText[start:end],
			Identifier: "9." + minor,
			ParentID:   "ACORDAO",
			StartPos:   start,
			EndPos:     end,
		}
		doc.AddSpan(sp)
	}
}

func zeroPad3(n int) string {
	s := strconv.Itoa(n)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
