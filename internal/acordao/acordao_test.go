package acordao

import (
	"testing"

	"legalcore/internal/canonical"
	"legalcore/internal/spanmodel"
)

func TestNormalizeAcordaoID(t *testing.T) {
	got := NormalizeAcordaoID("AC-2724-47/25-P")
	if got != "AC-2724-2025-P" {
		t.Fatalf("expected AC-2724-2025-P, got %q", got)
	}
}

func TestNormalizeAcordaoIDRejectsMalformed(t *testing.T) {
	if got := NormalizeAcordaoID("not-a-code"); got != "" {
		t.Fatalf("expected empty string for malformed input, got %q", got)
	}
}

func TestParseColegiado(t *testing.T) {
	cases := map[string]string{
		"Plenário":    "P",
		"P":           "P",
		"1ª Câmara":   "1C",
		"2a camara":   "2C",
		"PRIMEIRA":    "1C",
	}
	for in, want := range cases {
		if got := ParseColegiado(in); got != want {
			t.Fatalf("ParseColegiado(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRulingExtractsSectionsAndDeliberations(t *testing.T) {
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

	text := canonical.Normalize(raw)
	doc, err := Parse(text, spanmodel.DocumentMeta{DocumentID: "AC-2724-2025-P"})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if doc.Meta.Number != "2724" {
		t.Fatalf("expected number 2724, got %q", doc.Meta.Number)
	}
	if doc.Meta.Year != "2025" {
		t.Fatalf("expected year 2025, got %q", doc.Meta.Year)
	}
	if doc.Meta.Version != "P" {
		t.Fatalf("expected colegiado P, got %q", doc.Meta.Version)
	}

	if doc.GetSpan("SUMARIO") == nil {
		t.Fatalf("expected SUMARIO span")
	}
	rel := doc.GetSpan("REL-001")
	if rel == nil {
		t.Fatalf("expected REL-001 span")
	}
	if doc.GetSpan("REL-002") == nil {
		t.Fatalf("expected REL-002 span")
	}
	if doc.GetSpan("VOTO-001") == nil {
		t.Fatalf("expected VOTO-001 span")
	}
	if doc.GetSpan("ACORDAO") == nil {
		t.Fatalf("expected ACORDAO span")
	}

	d1 := doc.GetSpan("ACORDAO-9-1")
	if d1 == nil {
		t.Fatalf("expected ACORDAO-9-1 span")
	}
	if d1.ParentID != "ACORDAO" {
		t.Fatalf("expected ACORDAO-9-1 parent ACORDAO, got %s", d1.ParentID)
	}
	if doc.GetSpan("ACORDAO-9-2") == nil {
		t.Fatalf("expected ACORDAO-9-2 span")
	}

	for _, sp := range doc.Spans() {
		if sp.StartPos < 0 || sp.EndPos > len(text) || sp.EndPos <= sp.StartPos {
			t.Fatalf("span %s has invalid offsets: start=%d end=%d len=%d", sp.SpanID, sp.StartPos, sp.EndPos, len(text))
		}
		if text[sp.StartPos:sp.EndPos] != sp.Text {
			t.Fatalf("span %s text does not match canonical slice", sp.SpanID)
		}
	}
}
