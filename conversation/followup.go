package conversation

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ============================================================================
// FOLLOW-UP DETECTION
// ============================================================================
//
// The gate runs on the NFKC-normalized lowercase question. Go's \b is
// ASCII-only, so word boundaries are spelled out as non-letter,
// non-digit context to keep "nó" from matching inside "nóng".

const shortQuestionTokens = 5

var (
	anaphoraPatterns     = compileWordPatterns("nó", "cái đó", "điều đó", "phần đó")
	continuationPatterns = compileWordPatterns("tiếp theo", "còn", "thêm", "chi tiết")
	ordinalPattern       = regexp.MustCompile(
		`(?:^|[^\p{L}\p{N}_])(?:thứ\s+(?:\d+|nhất|hai|ba|tư|năm)|đầu tiên|cuối cùng)(?:[^\p{L}\p{N}_]|$)`)
)

func compileWordPatterns(keywords ...string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		patterns = append(patterns, regexp.MustCompile(
			`(?:^|[^\p{L}\p{N}_])`+regexp.QuoteMeta(kw)+`(?:[^\p{L}\p{N}_]|$)`))
	}
	return patterns
}

// IsFollowUp reports whether the question likely depends on earlier
// turns. A history shorter than one full exchange never produces a
// follow-up.
func IsFollowUp(question string, history []Turn) bool {
	if len(history) < 2 {
		return false
	}

	normalized := normalizeQuestion(question)
	if normalized == "" {
		return false
	}

	if len(strings.Fields(normalized)) < shortQuestionTokens {
		return true
	}

	return matchesAny(normalized, anaphoraPatterns) ||
		matchesAny(normalized, continuationPatterns) ||
		ordinalPattern.MatchString(normalized)
}

func normalizeQuestion(question string) string {
	return norm.NFKC.String(strings.ToLower(strings.TrimSpace(question)))
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, pattern := range patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}
