package bridge

import (
	"testing"

	"legalcore/internal/canonical"
	"legalcore/internal/coreerr"
	"legalcore/internal/spanmodel"
)

func TestBuildFromTextProducesChunkPartsWithEvidence(t *testing.T) {
	raw := "LEI Nº 14.133\n\n" +
		"Art. 1º Esta Lei estabelece normas gerais de licitação.\n" +
		"§ 1º Esta Lei não se aplica às licitações de produtos de defesa.\n" +
		"§ 2º Aplica-se subsidiariamente a Lei 8.666, quando couber.\n"

	meta := spanmodel.DocumentMeta{DocumentID: "LEI-14133-2021", DocumentType: "LEI", Number: "14133", Year: "2021"}
	result, err := BuildFromText(raw, meta, Options{SchemaVersion: "1", IngestRunID: "run-test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.ChunkParts) == 0 {
		t.Fatalf("expected at least one chunk part")
	}

	for _, p := range result.ChunkParts {
		if p.CanonicalHash != result.Hash {
			t.Fatalf("expected every part's canonical_hash to equal the document hash")
		}
		if p.SchemaVersion != "1" || p.IngestRunID != "run-test" {
			t.Fatalf("expected schema_version/ingest_run_id to propagate, got %q/%q", p.SchemaVersion, p.IngestRunID)
		}
	}
}

func TestBuildFromTextRejectsEmptyDocument(t *testing.T) {
	meta := spanmodel.DocumentMeta{DocumentID: "LEI-EMPTY", DocumentType: "LEI"}
	_, err := BuildFromText("   \n\n  ", meta, Options{})
	if err == nil {
		t.Fatalf("expected an error for an empty document")
	}
}

func TestBuildFromTextClassifiesCitationMentionAsOrigin(t *testing.T) {
	raw := "Art. 1º Aplica-se subsidiariamente a Lei 8.666, quando couber.\n"
	meta := spanmodel.DocumentMeta{DocumentID: "LEI-1-2021", DocumentType: "LEI"}
	result, err := BuildFromText(raw, meta, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var article *spanmodel.ChunkPart
	for _, p := range result.ChunkParts {
		if p.DeviceType == spanmodel.DeviceArticle {
			article = p
		}
	}
	if article == nil {
		t.Fatalf("expected an article chunk part")
	}
	if article.OriginType != "self" {
		t.Fatalf("expected self origin for an article merely mentioning Lei 8.666, got %q", article.OriginType)
	}
	if article.OriginReference != "LEI-8666-1993" {
		t.Fatalf("expected origin_reference LEI-8666-1993, got %q", article.OriginReference)
	}
	if article.OriginReason != "mention:lei_8666" {
		t.Fatalf("expected origin_reason mention:lei_8666, got %q", article.OriginReason)
	}
}

func TestBuildFromDocumentStrictModeRejectsAddressMismatch(t *testing.T) {
	raw := "Art. 1º Texto do artigo.\n"
	text := canonical.Normalize(raw)
	hash := canonical.Hash(text)
	meta := spanmodel.DocumentMeta{DocumentID: "LEI-1-2021", DocumentType: "LEI"}
	doc := spanmodel.NewParsedDocument(text, meta, nil)

	// span_id claims article 2 but the text begins with "Art. 1".
	doc.AddSpan(&spanmodel.Span{SpanID: "ART-002", SpanType: spanmodel.Artigo, Text: text, StartPos: 0, EndPos: len(text)})

	_, err := BuildFromDocument(doc, hash, Options{Strict: true})
	if !coreerr.Is(err, coreerr.AddressMismatch) {
		t.Fatalf("expected ADDRESS_MISMATCH in strict mode, got %v", err)
	}
}

func TestBuildFromTextRoutesAcordaoDocumentTypeThroughRulingGenre(t *testing.T) {
	raw := "Processo: TC 002.019/2024-8\n" +
		"Código eletrônico: AC-2724-47/25-P\n" +
		"GRUPO II – CLASSE VII – Plenário\n\n" +
		"SUMÁRIO\n" +
		"Trata-se de representação acerca de licitação realizada pelo órgão.\n\n" +
		"RELATÓRIO\n" +
		"1. Trata-se de processo de representação formulada com fundamento na lei.\n\n" +
		"2. A unidade técnica analisou os autos e concluiu pela procedência parcial.\n\n" +
		"VOTO\n" +
		"1. Concordo com a análise e as conclusões da unidade técnica instrutora.\n\n" +
		"ACORDAO\n" +
		"ACORDAM os Ministros do Tribunal de Contas da União, por unanimidade:\n\n" +
		"9.1. dar ciência ao órgão sobre a falha identificada no processo licitatório;\n\n" +
		"9.2. arquivar o presente processo, nos termos do regimento interno do tribunal.\n"

	meta := spanmodel.DocumentMeta{DocumentID: "AC-2724-2025-P", DocumentType: "ACORDAO"}
	result, err := BuildFromText(raw, meta, Options{})
	if err != nil {
		t.Fatalf("unexpected error routing an ACORDAO document through the bridge: %v", err)
	}
	if len(result.ChunkParts) == 0 {
		t.Fatalf("expected ruling chunk parts to be materialized")
	}

	foundDeliberacao := false
	for _, p := range result.ChunkParts {
		if p.SpanID == "ACORDAO-9-1" {
			foundDeliberacao = true
		}
		if !p.HasCoherentEvidence() {
			t.Fatalf("expected coherent evidence for ruling chunk %s", p.SpanID)
		}
	}
	if !foundDeliberacao {
		t.Fatalf("expected a chunk part for deliberation ACORDAO-9-1")
	}
}

func TestBuildFromDocumentTolerantModeKeepsGoingWithWarnings(t *testing.T) {
	raw := "Art. 1º Texto do artigo.\n"
	text := canonical.Normalize(raw)
	hash := canonical.Hash(text)
	meta := spanmodel.DocumentMeta{DocumentID: "LEI-1-2021", DocumentType: "LEI"}
	doc := spanmodel.NewParsedDocument(text, meta, nil)
	doc.AddSpan(&spanmodel.Span{SpanID: "ART-002", SpanType: spanmodel.Artigo, Text: text, StartPos: 0, EndPos: len(text)})

	result, err := BuildFromDocument(doc, hash, Options{Strict: false})
	if err != nil {
		t.Fatalf("unexpected error in tolerant mode: %v", err)
	}
	if len(result.AddressWarnings) != 1 {
		t.Fatalf("expected 1 address warning carried through in tolerant mode, got %d", len(result.AddressWarnings))
	}
}
