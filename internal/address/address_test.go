package address

import (
	"testing"

	"legalcore/internal/spanmodel"
)

func TestValidateArticleMatch(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "ART-044", Text: "Art. 44 Esta disposição aplica-se a todos os casos."}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match, got mismatch: %s", r.Message)
	}
}

func TestValidateArticleSuffixLetterMatch(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "ART-337-E", Text: "Art. 337-E Constitui crime..."}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match for suffixed article, got mismatch: %s", r.Message)
	}
}

func TestValidateArticleMismatch(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "ART-044", Text: "Art. 45 Texto trocado."}
	r := Validate(sp)
	if !r.IsMismatch {
		t.Fatalf("expected mismatch between ART-044 and text beginning with Art. 45")
	}
	if r.ExpectedIdentifier != "44" || r.ActualIdentifier != "45" {
		t.Fatalf("unexpected identifiers: expected=%q actual=%q", r.ExpectedIdentifier, r.ActualIdentifier)
	}
}

func TestValidateParagrafoUnico(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "PAR-044-UNICO", Text: "Parágrafo único. Não se aplica o disposto no caput."}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match for parágrafo único, got mismatch: %s", r.Message)
	}
}

func TestValidateParagrafoNumbered(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "PAR-044-2", Text: "§ 2º O disposto no caput não se aplica..."}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match, got mismatch: %s", r.Message)
	}
}

func TestValidateIncisoMatch(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "INC-044-III", Text: "III - os casos previstos em lei;"}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match, got mismatch: %s", r.Message)
	}
}

func TestValidateAlineaMatch(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "ALI-044-III-a", Text: "a) documento de identificação;"}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("expected match, got mismatch: %s", r.Message)
	}
}

func TestValidateUnvalidableSpanType(t *testing.T) {
	sp := &spanmodel.Span{SpanID: "CAP-I", Text: "CAPÍTULO I\nDAS DISPOSIÇÕES GERAIS"}
	r := Validate(sp)
	if r.IsMismatch {
		t.Fatalf("chapter spans are not validable and must never report a mismatch")
	}
}

func TestValidateAllFiltersToMismatchesOnly(t *testing.T) {
	spans := []*spanmodel.Span{
		{SpanID: "ART-001", Text: "Art. 1º Texto correto."},
		{SpanID: "ART-002", Text: "Art. 3º Texto incorreto."},
	}
	mismatches := ValidateAll(spans)
	if len(mismatches) != 1 {
		t.Fatalf("expected exactly 1 mismatch, got %d", len(mismatches))
	}
	if mismatches[0].SpanID != "ART-002" {
		t.Fatalf("expected mismatch for ART-002, got %s", mismatches[0].SpanID)
	}
}
