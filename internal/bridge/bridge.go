// Package bridge composes the address validator, parser, materializer,
// citation extractor, and origin classifier into the single entrypoint
// downstream ingest callers use (spec §4.8): one canonical text and its
// DocumentMeta in, one coherent []ChunkPart out, with citations and
// origin already resolved per part.
//
// Grounded on original_source/src/bridge/parsed_document_chunkparts.py
// in full (map_span_type_to_device_type, find_root_article_span_id,
// build_chunk_parts, ParsedDocumentChunkPartsBuilder). Libraries: none
// beyond the internal packages it composes.
package bridge

import (
	"legalcore/internal/acordao"
	"legalcore/internal/address"
	"legalcore/internal/canonical"
	"legalcore/internal/citation"
	"legalcore/internal/coreerr"
	"legalcore/internal/ids"
	"legalcore/internal/materializer"
	"legalcore/internal/origin"
	"legalcore/internal/parser"
	"legalcore/internal/spanmodel"
)

// Options bundles the configuration the bridge threads down into
// internal/materializer, plus its own prefix choice for citation
// normalization and its address-validation mode (spec §4.3/§7: strict
// mode makes ADDRESS_MISMATCH fatal, tolerant mode merely warns).
type Options struct {
	MaxTextChars  int
	OverlapChars  int
	SchemaVersion string
	IngestRunID   string
	Strict        bool
}

func (o Options) toMaterializerOptions(prefix string) materializer.Options {
	return materializer.Options{
		MaxTextChars:  o.MaxTextChars,
		OverlapChars:  o.OverlapChars,
		Prefix:        prefix,
		SchemaVersion: o.SchemaVersion,
		IngestRunID:   o.IngestRunID,
	}
}

// Result is everything BuildFromText produces for one document.
type Result struct {
	Document        *spanmodel.ParsedDocument
	ChunkParts      []*spanmodel.ChunkPart
	Hash            string
	AddressWarnings []address.Result // non-empty only in tolerant mode
}

// BuildFromText runs the full pipeline over rawText: normalize, parse,
// materialize, extract+normalize citations, classify origin. rawText is
// normalized internally; callers must not pre-normalize (spec §4.1: a
// single normalization stage). meta.DocumentType selects the parsing
// genre: "ACORDAO"/"TCU" routes through internal/acordao (spec §4.9);
// every other document_type routes through the law-genre internal/parser
// (spec §4.2).
func BuildFromText(rawText string, meta spanmodel.DocumentMeta, opts Options) (*Result, error) {
	canonicalText := canonical.Normalize(rawText)
	if canonicalText == "" {
		return nil, coreerr.New(coreerr.EmptyText, meta.DocumentID, "", "", "document text is empty after normalization")
	}
	canonicalHash := canonical.Hash(canonicalText)

	doc, err := parseForGenre(canonicalText, meta)
	if err != nil {
		return nil, err
	}

	return BuildFromDocument(doc, canonicalHash, opts)
}

func parseForGenre(canonicalText string, meta spanmodel.DocumentMeta) (*spanmodel.ParsedDocument, error) {
	switch meta.DocumentType {
	case "ACORDAO", "TCU":
		return acordao.Parse(canonicalText, meta)
	default:
		return parser.Parse(canonicalText, meta)
	}
}

// BuildFromDocument runs the materialize+citation+origin stages over an
// already-parsed document. Used directly by callers that parse with a
// different genre (e.g. internal/acordao) or that resolve span offsets
// externally via materializer.ResolveAndMaterializeSpan before handing
// the document here.
func BuildFromDocument(doc *spanmodel.ParsedDocument, canonicalHash string, opts Options) (*Result, error) {
	mismatches := address.ValidateAll(doc.Spans())
	if opts.Strict && len(mismatches) > 0 {
		first := mismatches[0]
		return nil, coreerr.New(coreerr.AddressMismatch, doc.Meta.DocumentID, first.SpanID, "", first.Message)
	}

	prefix := ids.PrefixForDocumentType(doc.Meta.DocumentType)
	matOpts := opts.toMaterializerOptions(prefix)

	parts, err := materializer.MaterializeDocument(doc, canonicalHash, matOpts)
	if err != nil {
		return nil, err
	}

	for _, part := range parts {
		applyCitations(doc, part)
		origin.Apply(part)
	}

	return &Result{Document: doc, ChunkParts: parts, Hash: canonicalHash, AddressWarnings: mismatches}, nil
}

// applyCitations extracts normative references from part.Text, resolves
// each to its target_node_id, and normalizes the result (spec §4.6,
// self/parent-loop removal + dedup) before storing it on the part.
func applyCitations(doc *spanmodel.ParsedDocument, part *spanmodel.ChunkPart) {
	refs := citation.Extract(part.Text, part.DocumentID)

	targets := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.TargetNodeID == "" {
			continue
		}
		targets = append(targets, ref.TargetNodeID)
	}

	part.Citations = citation.NormalizeCitations(targets, part.LogicalNodeID, part.ParentChunkID, doc.Meta.DocumentType)
}
