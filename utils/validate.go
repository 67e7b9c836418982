package utils

import (
	"strings"
	"unicode/utf8"
)

// ============================================================================
// QUESTION VALIDATION
// ============================================================================

// MaxQuestionRunes is the longest question accepted by the chat surface.
const MaxQuestionRunes = 1000

// MinQuestionRunes is the shortest meaningful question after trimming.
const MinQuestionRunes = 3

// ValidateQuestion checks an incoming question before any model work
// happens. Lengths are counted in runes so multi-byte Vietnamese text is
// not penalized. The returned message is user-facing Vietnamese; it is
// empty when the question is valid.
func ValidateQuestion(question string) (bool, string) {
	if question == "" {
		return false, "Câu hỏi không được để trống"
	}

	if utf8.RuneCountInString(strings.TrimSpace(question)) < MinQuestionRunes {
		return false, "Câu hỏi quá ngắn"
	}

	if utf8.RuneCountInString(question) > MaxQuestionRunes {
		return false, "Câu hỏi quá dài (tối đa 1000 ký tự)"
	}

	return true, ""
}
