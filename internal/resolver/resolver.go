// Package resolver implements ResolveChildOffsets (spec §4.4): the
// deterministic, zero-tolerance contract for locating a child's text
// inside its parent's range of the canonical text when the offsets are
// not already known.
//
// Grounded on spec.md §4.4's literal 5-step contract; no equivalent
// module was retrievable in original_source/ beyond the sibling
// extract_snippet_by_offsets in src/chunking/canonical_offsets.py, which
// this package's zero-fallback discipline mirrors.
package resolver

import (
	"strings"

	"legalcore/internal/coreerr"
)

// ResolveChildOffsets searches for chunkText (after trimming) inside
// canonicalText[parentStart:parentEnd] and returns its unique absolute
// offsets. It fails with a *coreerr.CoreError rather than guessing:
// EMPTY_TEXT for whitespace-only input, NOT_FOUND for zero occurrences,
// AMBIGUOUS for more than one. No heuristic tie-break is permitted.
func ResolveChildOffsets(canonicalText string, parentStart, parentEnd int, chunkText, documentID, spanID string) (start, end int, err error) {
	trimmed := strings.TrimSpace(chunkText)
	if trimmed == "" {
		return 0, 0, coreerr.New(coreerr.EmptyText, documentID, spanID, "", "chunk text is empty or whitespace-only")
	}
	if parentStart < 0 || parentEnd > len(canonicalText) || parentStart > parentEnd {
		return 0, 0, coreerr.New(coreerr.NoCanonicalText, documentID, spanID, "", "parent range is outside canonical text bounds")
	}

	haystack := canonicalText[parentStart:parentEnd]

	var offsets []int
	searchFrom := 0
	for {
		idx := strings.Index(haystack[searchFrom:], trimmed)
		if idx == -1 {
			break
		}
		offsets = append(offsets, searchFrom+idx)
		searchFrom += idx + 1
		if searchFrom >= len(haystack) {
			break
		}
	}

	switch len(offsets) {
	case 0:
		return 0, 0, coreerr.New(coreerr.NotFound, documentID, spanID, "", "chunk text not found within parent range")
	case 1:
		absStart := parentStart + offsets[0]
		absEnd := absStart + len(trimmed)
		return absStart, absEnd, nil
	default:
		return 0, 0, coreerr.New(coreerr.Ambiguous, documentID, spanID, "", "chunk text occurs more than once within parent range")
	}
}
