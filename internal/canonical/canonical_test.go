package canonical

import "testing"

func TestNormalizeEmptyInput(t *testing.T) {
	if got := Normalize(""); got != "" {
		t.Fatalf("expected empty output for empty input, got %q", got)
	}
}

func TestNormalizeCRLFAndTrailingWhitespace(t *testing.T) {
	in := "Art. 1º Texto.  \r\n\r\nSegunda linha.   \r\n"
	got := Normalize(in)
	want := "Art. 1º Texto.\n\nSegunda linha.\n"
	if got != want {
		t.Fatalf("Normalize mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestNormalizeEnsuresSingleTrailingNewline(t *testing.T) {
	got := Normalize("linha sem quebra")
	if got != "linha sem quebra\n" {
		t.Fatalf("expected exactly one trailing newline, got %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Art. 1º Texto.\r\n\r\n\r\nOutra linha.\r\n"
	once := Normalize(in)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("normalize(normalize(x)) != normalize(x):\n once:  %q\n twice: %q", once, twice)
	}
}

func TestHashDeterministic(t *testing.T) {
	text := Normalize("Art. 1º Texto de teste.\n")
	h1 := Hash(text)
	h2 := Hash(text)
	if h1 != h2 {
		t.Fatalf("hash not deterministic: %q vs %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
}

func TestValidateRejectsEmptyStoredHash(t *testing.T) {
	if Validate("", "qualquer texto") {
		t.Fatalf("expected Validate to reject empty stored hash")
	}
}

func TestValidateRoundTrip(t *testing.T) {
	text := "Art. 1º Texto de teste.\n"
	normalized := Normalize(text)
	h := Hash(normalized)
	if !Validate(h, text) {
		t.Fatalf("expected Validate to accept matching hash of normalized text")
	}
	if Validate(h, text+"alterado") {
		t.Fatalf("expected Validate to reject altered text")
	}
}

func TestSliceByOffsetsPureSlice(t *testing.T) {
	canonicalText := Normalize("Art. 1º Esta Lei estabelece normas gerais.\n")
	hash := Hash(canonicalText)

	snippet, used := SliceByOffsets(canonicalText, 0, 7, hash)
	if !used {
		t.Fatalf("expected pure slice to succeed")
	}
	if snippet != canonicalText[0:7] {
		t.Fatalf("unexpected snippet %q, want %q", snippet, canonicalText[0:7])
	}
}

func TestSliceByOffsetsNeverFallsBack(t *testing.T) {
	canonicalText := Normalize("Art. 1º Esta Lei estabelece normas gerais.\n")
	hash := Hash(canonicalText)

	// Negative start: must fail, not search.
	if _, used := SliceByOffsets(canonicalText, -1, 5, hash); used {
		t.Fatalf("expected failure for negative start")
	}
	// end <= start: must fail.
	if _, used := SliceByOffsets(canonicalText, 5, 5, hash); used {
		t.Fatalf("expected failure when end <= start")
	}
	// Stale hash: must fail even though the substring exists in the text.
	if _, used := SliceByOffsets(canonicalText, 0, 7, "deadbeef"); used {
		t.Fatalf("expected failure for mismatched hash")
	}
	// Empty stored hash: must fail.
	if _, used := SliceByOffsets(canonicalText, 0, 7, ""); used {
		t.Fatalf("expected failure for empty stored hash")
	}
}
