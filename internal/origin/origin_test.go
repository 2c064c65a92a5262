package origin

import (
	"strings"
	"testing"

	"legalcore/internal/spanmodel"
)

func TestClassifyArt337IsHighConfidenceExternal(t *testing.T) {
	part := &spanmodel.ChunkPart{Text: "Art. 337-E Constitui crime violar sigilo funcional..."}
	v := Classify(part)
	if v.Origin != "external" {
		t.Fatalf("expected external origin for art. 337-E reproduction, got %q", v.Origin)
	}
	if v.Confidence != spanmodel.ConfidenceHigh {
		t.Fatalf("expected high confidence, got %q", v.Confidence)
	}
}

func TestClassifyArt337MentionInPassingIsNotExternal(t *testing.T) {
	part := &spanmodel.ChunkPart{Text: "O art. 337-E do Código Penal também disciplina o tema."}
	v := Classify(part)
	if v.Origin != "self" {
		t.Fatalf("expected self origin for a passing mention, got %q", v.Origin)
	}
	if v.Reason == "" || !strings.HasPrefix(v.Reason, "mention:") {
		t.Fatalf("expected a mention tag to be recorded, got %q", v.Reason)
	}
}

func TestClassifyNoMatchIsSelfWithNoRule(t *testing.T) {
	part := &spanmodel.ChunkPart{Text: "Texto qualquer sem referência normativa conhecida."}
	v := Classify(part)
	if v.Origin != "self" || v.RuleName != "" {
		t.Fatalf("expected plain self-authored verdict, got %+v", v)
	}
}

func TestApplyWritesFieldsOntoChunkPart(t *testing.T) {
	part := &spanmodel.ChunkPart{Text: "Art. 337-D Constitui crime..."}
	Apply(part)
	if !part.IsExternalMaterial {
		t.Fatalf("expected IsExternalMaterial true")
	}
	if part.OriginType != "external" {
		t.Fatalf("expected origin_type external, got %q", part.OriginType)
	}
	if part.OriginReference != "DL-2848-1940" {
		t.Fatalf("expected origin_reference DL-2848-1940, got %q", part.OriginReference)
	}
	if part.OriginReason != "rule:codigo_penal_art337" {
		t.Fatalf("expected origin_reason rule:codigo_penal_art337, got %q", part.OriginReason)
	}
}

func TestClassifyMentionOfRevokedLawIsSelfNotExternal(t *testing.T) {
	part := &spanmodel.ChunkPart{Text: "A Lei 8.666 fica revogada pela presente Lei."}
	Apply(part)
	if part.OriginType != "self" {
		t.Fatalf("expected origin_type self, got %q", part.OriginType)
	}
	if part.OriginConfidence != spanmodel.ConfidenceLow {
		t.Fatalf("expected origin_confidence low, got %q", part.OriginConfidence)
	}
	if part.OriginReason != "mention:lei_8666" {
		t.Fatalf("expected origin_reason mention:lei_8666, got %q", part.OriginReason)
	}
	if part.IsExternalMaterial {
		t.Fatalf("expected is_external_material false")
	}
}

func TestClassifyBatchAggregatesStats(t *testing.T) {
	parts := []*spanmodel.ChunkPart{
		{Text: "Art. 337-A Constitui crime..."},
		{Text: "Texto comum sem referência."},
		{Text: "Vide também a Lei 8.666 de licitações."},
	}
	stats := ClassifyBatch(parts)
	if stats.Total != 3 {
		t.Fatalf("expected total 3, got %d", stats.Total)
	}
	if stats.External != 1 {
		t.Fatalf("expected 1 external chunk, got %d", stats.External)
	}
	if stats.Self != 2 {
		t.Fatalf("expected 2 self chunks, got %d", stats.Self)
	}
}
