// Package ids builds and parses the core's byte-stable identifier schemes
// (spec §6.2): logical_node_id, node_id, chunk_id, parent_chunk_id.
package ids

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// documentTypePrefixes maps a closed document_type to its canonical
// namespace prefix. Ported from
// original_source/src/canonical/id_conventions.py's DOCUMENT_TYPE_PREFIXES.
var documentTypePrefixes = map[string]string{
	"LEI":                 "leis",
	"DECRETO":             "leis",
	"INSTRUCAO_NORMATIVA": "leis",
	"IN":                  "leis",
	"LC":                  "leis",
	"DL":                  "leis",
	"PORTARIA":            "leis",
	"RESOLUCAO":           "leis",
	"ACORDAO":             "acordaos",
	"TCU":                 "tcu",
	"KB_CARD":             "kb",
}

// PrefixForDocumentType returns the canonical namespace prefix for a
// document_type, defaulting to "leis" for unrecognized types (matching
// the source's get_prefix_for_document_type fallback).
func PrefixForDocumentType(documentType string) string {
	key := strings.ReplaceAll(strings.ToUpper(documentType), " ", "_")
	if p, ok := documentTypePrefixes[key]; ok {
		return p
	}
	return "leis"
}

// BuildLogicalNodeID builds "{prefix}:{document_id}#{span_id}".
func BuildLogicalNodeID(prefix, documentID, spanID string) string {
	return fmt.Sprintf("%s:%s#%s", prefix, documentID, spanID)
}

// BuildNodeID builds "{logical_node_id}@P{part_index:02d}".
func BuildNodeID(logicalNodeID string, partIndex int) string {
	return fmt.Sprintf("%s@P%02d", logicalNodeID, partIndex)
}

// BuildChunkID builds "{document_id}#{span_id}@P{part_index:02d}".
func BuildChunkID(documentID, spanID string, partIndex int) string {
	return fmt.Sprintf("%s#%s@P%02d", documentID, spanID, partIndex)
}

// BuildParentChunkID builds "{document_id}#{parent_span_id}@P00", or ""
// when parentSpanID is empty (spec §3 invariant 8: articles have no
// parent chunk pointer).
func BuildParentChunkID(documentID, parentSpanID string) string {
	if parentSpanID == "" {
		return ""
	}
	return fmt.Sprintf("%s#%s@P00", documentID, parentSpanID)
}

var (
	logicalNodeIDPattern = regexp.MustCompile(`^([a-z_]+):([A-Z0-9\-\.]+)#([A-Z0-9\-_]+)$`)
	nodeIDPattern        = regexp.MustCompile(`^(.+)@P(\d{2})$`)
)

// ParseLogicalNodeID splits a logical_node_id into (prefix, documentID,
// spanID). ok is false if the value does not match the expected shape.
func ParseLogicalNodeID(value string) (prefix, documentID, spanID string, ok bool) {
	m := logicalNodeIDPattern.FindStringSubmatch(value)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// ParseNodeID splits a node_id into (logicalNodeID, partIndex).
func ParseNodeID(value string) (logicalNodeID string, partIndex int, ok bool) {
	m := nodeIDPattern.FindStringSubmatch(value)
	if m == nil {
		return "", 0, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, false
	}
	return m[1], idx, true
}

// ExtractLogicalFromNodeID returns the logical_node_id portion of a
// physical node_id, or "" if node_id is malformed.
func ExtractLogicalFromNodeID(nodeID string) string {
	logical, _, ok := ParseNodeID(nodeID)
	if !ok {
		return ""
	}
	return logical
}

// IsValidLogicalNodeID reports whether value matches the logical_node_id shape.
func IsValidLogicalNodeID(value string) bool { return logicalNodeIDPattern.MatchString(value) }

// IsValidNodeID reports whether value matches the physical node_id shape.
func IsValidNodeID(value string) bool { return nodeIDPattern.MatchString(value) }
