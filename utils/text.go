package utils

import "strings"

// ============================================================================
// TEXT HELPERS
// ============================================================================

// TruncateRunes cuts text to at most max runes. A non-positive max
// disables the cut.
func TruncateRunes(text string, max int) string {
	if max <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// CleanText collapses whitespace runs into single spaces and strips NUL
// bytes that occasionally survive document ingestion.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.Join(strings.Fields(text), " ")
}
