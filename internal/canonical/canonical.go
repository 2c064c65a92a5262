// Package canonical implements the canonical-offset contract (spec §4.1,
// "PR13"): deterministic text normalization, hashing, and the
// zero-fallback pure-slice operation every evidence-bearing chunk relies
// on.
//
// Grounded on original_source/src/utils/canonical_utils.py
// (normalize_canonical_text, compute_canonical_hash, validate_offsets_hash)
// and original_source/src/chunking/canonical_offsets.py
// (extract_snippet_by_offsets) -- whose code performs no find-based
// fallback despite its docstring, which is the behavior this package
// follows.
package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies Unicode NFC, collapses CRLF/CR to LF, trims trailing
// whitespace from every line, and ensures exactly one terminating newline
// when the result is non-empty. Empty input maps to empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v\r\n")
	}
	text = strings.Join(lines, "\n")

	text = strings.TrimRight(text, "\n")
	if text != "" {
		text += "\n"
	}
	return text
}

// Hash returns the hex-encoded SHA-256 digest of the UTF-8 bytes of an
// already-normalized canonical text. Any other hash algorithm is
// forbidden by spec §4.1.
func Hash(canonicalText string) string {
	sum := sha256.Sum256([]byte(canonicalText))
	return hex.EncodeToString(sum[:])
}

// Validate normalizes currentText, hashes it, and compares against
// storedHash. A falsy storedHash never validates.
func Validate(storedHash, currentText string) bool {
	if storedHash == "" {
		return false
	}
	normalized := Normalize(currentText)
	return storedHash == Hash(normalized)
}

// SliceByOffsets returns the pure byte slice canonicalText[start:end] and
// true only when start >= 0, end > start, and Validate(storedHash,
// canonicalText) holds. Otherwise it returns ("", false) -- there is
// deliberately no find-based fallback (spec §4.1: "without attempting
// fallback"; confirmed against the Python original's actual code, not its
// docstring).
func SliceByOffsets(canonicalText string, start, end int, storedHash string) (string, bool) {
	if start < 0 || end <= start || storedHash == "" {
		return "", false
	}
	if !Validate(storedHash, canonicalText) {
		return "", false
	}
	if end > len(canonicalText) {
		return "", false
	}
	return canonicalText[start:end], true
}
