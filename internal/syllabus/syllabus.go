// Package syllabus bounds extracted text before it is used as a
// question-generation prompt. Every source adapter's output passes through
// Truncate exactly once before being treated as a syllabus.
package syllabus

import "strings"

// DefaultWordLimit is the ceiling applied when no explicit limit is
// configured.
const DefaultWordLimit = 50000

// Truncate returns the first limit whitespace-separated words of text,
// rejoined with single spaces. It is pure and idempotent:
// Truncate(Truncate(t, n), n) == Truncate(t, n). A limit <= 0 yields "".
//
// Word boundaries are whitespace splits, so the ceiling is approximate with
// respect to semantic tokens; that matches the downstream prompt budget,
// which is itself approximate.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}

	words := strings.Fields(text)
	if len(words) > limit {
		words = words[:limit]
	}

	return strings.Join(words, " ")
}

// WordCount reports the whitespace-token count Truncate operates on.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
