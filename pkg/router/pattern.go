package router

import (
	"strings"

	"github.com/sigbus/sigbus/pkg/sigerr"
)

// segmentKind classifies one position of a compiled pattern.
type segmentKind int

const (
	segLiteral segmentKind = iota
	segSingle
	segMulti
)

// segment is one compiled position of a route pattern.
type segment struct {
	kind    segmentKind
	literal string // set only when kind == segLiteral
}

// pattern is a compiled route pattern plus its precomputed specificity
// vector, used both for trie insertion and for ordering matched routes.
type pattern struct {
	raw         string
	segments    []segment
	specificity []int
}

// validLiteralSegment reports whether s is a non-empty run of [a-z0-9_],
// the characters permitted in a literal segment once the "*"/"**" tokens
// have been recognized.
func validLiteralSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return false
		}
	}
	return true
}

// compilePattern splits a dotted pattern string into segment matchers,
// rejecting empty segments, more than one multi-wildcard, and
// out-of-alphabet literal segments.
func compilePattern(raw string) (*pattern, error) {
	if raw == "" {
		return nil, sigerr.Routing("pattern must not be empty")
	}

	parts := strings.Split(raw, ".")
	segments := make([]segment, 0, len(parts))
	specificity := make([]int, 0, len(parts))
	multiCount := 0

	for _, part := range parts {
		switch part {
		case "":
			return nil, sigerr.Routing("pattern %q has an empty segment", raw)
		case "*":
			segments = append(segments, segment{kind: segSingle})
			specificity = append(specificity, 1)
		case "**":
			multiCount++
			segments = append(segments, segment{kind: segMulti})
			specificity = append(specificity, 0)
		default:
			if !validLiteralSegment(part) {
				return nil, sigerr.Routing("pattern %q has an invalid segment %q", raw, part)
			}
			segments = append(segments, segment{kind: segLiteral, literal: part})
			specificity = append(specificity, 2)
		}
	}

	if multiCount > 1 {
		return nil, sigerr.Routing("pattern %q has more than one multi-wildcard", raw)
	}

	return &pattern{raw: raw, segments: segments, specificity: specificity}, nil
}

// compareSpecificity orders two specificity vectors descending: literal (2)
// outranks single-wildcard (1) outranks multi-wildcard (0), compared
// segment by segment left to right. When the common prefix ties, the
// longer (more explicit) pattern outranks the shorter one.
func compareSpecificity(a, b []int) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	switch {
	case len(a) > len(b):
		return 1
	case len(a) < len(b):
		return -1
	default:
		return 0
	}
}

// validSignalTypeSegment matches the wire syntax for a concrete signal
// type segment: no wildcards permitted, only [a-z0-9_]+.
func validSignalTypeSegment(s string) bool {
	return validLiteralSegment(s)
}

// splitType validates and splits a signal's concrete type into segments.
func splitType(typ string) ([]string, error) {
	if typ == "" {
		return nil, sigerr.Routing("signal type must not be empty")
	}
	parts := strings.Split(typ, ".")
	for _, p := range parts {
		if !validSignalTypeSegment(p) {
			return nil, sigerr.Routing("signal type %q has an invalid segment %q", typ, p)
		}
	}
	return parts, nil
}
