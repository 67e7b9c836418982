package conversation

import "strings"

// ============================================================================
// CONVERSATION HISTORY
// ============================================================================

// Message roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single message in a conversation
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// FormatHistory renders the most recent maxTurns messages as prompt
// text, one line per message. maxChars caps each message's length in
// runes; 0 disables the cap.
func FormatHistory(turns []Turn, maxTurns, maxChars int) string {
	if len(turns) == 0 {
		return ""
	}

	recent := turns
	if maxTurns > 0 && len(turns) > maxTurns {
		recent = turns[len(turns)-maxTurns:]
	}

	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		role := "Trợ lý"
		if turn.Role == RoleUser {
			role = "Người dùng"
		}
		lines = append(lines, role+": "+truncateRunes(turn.Content, maxChars))
	}

	return strings.Join(lines, "\n")
}

// ContextSummary returns the opening of the most recent assistant
// answer, for reuse in follow-up prompts
func ContextSummary(turns []Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == RoleAssistant {
			return truncateRunes(turns[i].Content, 500)
		}
	}
	return ""
}

// truncateRunes cuts s to at most max runes. max <= 0 disables the cap.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
