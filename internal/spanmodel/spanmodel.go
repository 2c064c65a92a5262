// Package spanmodel holds the core's product types: Span, ParsedDocument,
// and ChunkPart. These carry no behavior beyond construction and lookup;
// every invariant in spec §3 is enforced by the packages that build them
// (parser, materializer), not here.
package spanmodel

// SpanType is the closed enumeration of structural kinds a Span can be.
type SpanType string

const (
	Header     SpanType = "HEADER"
	Capitulo   SpanType = "CAPITULO"
	Secao      SpanType = "SECAO"
	Subsecao   SpanType = "SUBSECAO"
	Artigo     SpanType = "ARTIGO"
	Paragrafo  SpanType = "PARAGRAFO"
	Inciso     SpanType = "INCISO"
	Alinea     SpanType = "ALINEA"
	Item       SpanType = "ITEM"
	Titulo     SpanType = "TITULO"
	Texto      SpanType = "TEXTO"
	Assinatura SpanType = "ASSINATURA"
)

// DeviceType is the normalized, indexable category a ChunkPart belongs to.
type DeviceType string

const (
	DeviceArticle   DeviceType = "ARTICLE"
	DeviceParagraph DeviceType = "PARAGRAPH"
	DeviceInciso    DeviceType = "INCISO"
	DeviceAlinea    DeviceType = "ALINEA"
	DeviceUnknown   DeviceType = "UNKNOWN"
)

// DeviceTypeOf maps a SpanType to its normalized DeviceType. Chapters,
// sections, titles, headers and free text are UNKNOWN and never emit
// ChunkParts (spec §4.8, §9 Open Question on HEADER/CAPITULO persistence).
func DeviceTypeOf(t SpanType) DeviceType {
	switch t {
	case Artigo:
		return DeviceArticle
	case Paragrafo:
		return DeviceParagraph
	case Inciso:
		return DeviceInciso
	case Alinea:
		return DeviceAlinea
	default:
		return DeviceUnknown
	}
}

// Span is a minimal, uniquely addressed fragment of a document.
type Span struct {
	SpanID   string
	SpanType SpanType
	Text     string
	Identifier string
	ParentID string // empty for roots

	StartPos int
	EndPos   int

	// CaputEndPos is meaningful only for SpanType == Artigo and only when
	// HasCaputEnd is set: the offset where the caput ends and the first
	// paragraph begins. The law-genre parser sets it only for articles
	// with a paragraph (caput incisos stay inside the caput); otherwise
	// callers treat EndPos as the caput end too.
	CaputEndPos int
	HasCaputEnd bool

	Order int
}

// StructuralEndPos is the end of the span's full structural range, i.e.
// EndPos -- the range descendants must be contained within. Distinguished
// from the evidence/caput range by name only for readability at call
// sites that care about the distinction (spec §4.5's Open Question
// resolution: caput-only evidence, structural-range containment).
func (s *Span) StructuralEndPos() int { return s.EndPos }

// DocumentMeta describes the document a ParsedDocument was built from.
type DocumentMeta struct {
	DocumentID   string
	DocumentType string // LEI, DECRETO, IN, LC, DL, PORTARIA, RESOLUCAO, ACORDAO, MP, EC, CF, INTERNO
	Number       string
	Year         string
	Version      string
}

// ParsedDocument is the ordered collection of Spans produced by a parser,
// plus the canonical text they were cut from and two eager indexes, built
// at construction and extended only by AddSpan while a parser builds the
// document (spec §9: no mutable caches).
type ParsedDocument struct {
	SourceText string
	Meta       DocumentMeta

	spans      []*Span
	byID       map[string]*Span
	byParentID map[string][]*Span
}

// NewParsedDocument builds the indexes eagerly; spans are assumed already
// in stable emission order (the Order field is set by the caller before
// this is invoked, typically equal to the append index).
func NewParsedDocument(sourceText string, meta DocumentMeta, spans []*Span) *ParsedDocument {
	doc := &ParsedDocument{
		SourceText: sourceText,
		Meta:       meta,
		spans:      spans,
		byID:       make(map[string]*Span, len(spans)),
		byParentID: make(map[string][]*Span),
	}
	for _, sp := range spans {
		doc.byID[sp.SpanID] = sp
		if sp.ParentID != "" {
			doc.byParentID[sp.ParentID] = append(doc.byParentID[sp.ParentID], sp)
		}
	}
	return doc
}

// Spans returns all spans in stable insertion order.
func (d *ParsedDocument) Spans() []*Span { return d.spans }

// GetSpan looks up a span by ID in O(1), returning nil if absent.
func (d *ParsedDocument) GetSpan(id string) *Span { return d.byID[id] }

// Children returns the ordered children of a span ID, or nil.
func (d *ParsedDocument) Children(id string) []*Span { return d.byParentID[id] }

// AddSpan appends a span and updates both indexes. Used by parsers while
// building a document before construction is considered complete; once a
// ParsedDocument is handed off to downstream stages it is treated as
// immutable (spec §3 Lifecycle).
func (d *ParsedDocument) AddSpan(sp *Span) {
	sp.Order = len(d.spans)
	d.spans = append(d.spans, sp)
	d.byID[sp.SpanID] = sp
	if sp.ParentID != "" {
		d.byParentID[sp.ParentID] = append(d.byParentID[sp.ParentID], sp)
	}
}

// OriginConfidence is the closed confidence band for origin classification.
type OriginConfidence string

const (
	ConfidenceHigh   OriginConfidence = "high"
	ConfidenceMedium OriginConfidence = "medium"
	ConfidenceLow    OriginConfidence = "low"
)

// EvidenceSentinelPos is the value canonical_start and canonical_end both
// take when an evidence trio is not coherent; the sentinel hash is ""
// (spec §3 invariant 5).
const (
	EvidenceSentinelPos = -1
)

// ChunkPart is a physical, indexable unit derived from one Span.
type ChunkPart struct {
	NodeID        string
	LogicalNodeID string
	ChunkID       string
	ParentChunkID string // empty if none

	PartIndex int
	PartTotal int

	Text      string
	CharStart int
	CharEnd   int

	CanonicalStart int
	CanonicalEnd   int
	CanonicalHash  string

	DeviceType    DeviceType
	ArticleNumber string
	DocumentType  string
	DocumentID    string
	SpanID        string

	OriginType         string // "self" | "external"
	OriginReference    string
	OriginConfidence   OriginConfidence
	IsExternalMaterial bool
	OriginReason       string

	Citations []string

	SchemaVersion string
	IngestRunID   string
}

// HasCoherentEvidence reports whether the trio is fully set (spec §3
// invariant 5: all-set or all-sentinel, no mixed states).
func (c *ChunkPart) HasCoherentEvidence() bool {
	return c.CanonicalStart >= 0 && c.CanonicalEnd > c.CanonicalStart && c.CanonicalHash != ""
}

// SetSentinelEvidence zeroes the trio to its sentinel form.
func (c *ChunkPart) SetSentinelEvidence() {
	c.CanonicalStart = EvidenceSentinelPos
	c.CanonicalEnd = EvidenceSentinelPos
	c.CanonicalHash = ""
}
