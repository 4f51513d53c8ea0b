package chat

import (
	"regexp"
	"strings"
)

var boldMarker = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Render formats a message for display: "[15:04] RBB Sathi: text". Spans
// wrapped in ** are passed through bold, or unwrapped when bold is nil.
// The message itself is never modified.
func Render(m Message, bold func(string) string) string {
	who := "You"
	if m.Role == RoleAssistant {
		who = AssistantName
	}
	content := boldMarker.ReplaceAllStringFunc(m.Content, func(span string) string {
		inner := strings.TrimSuffix(strings.TrimPrefix(span, "**"), "**")
		if bold == nil {
			return inner
		}
		return bold(inner)
	})
	return "[" + m.Timestamp.Format("15:04") + "] " + who + ": " + content
}
