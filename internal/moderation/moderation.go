// Package moderation provides the basic text screening applied to
// prompts, responses and report reasons before they are stored.
package moderation

import (
	"strings"
	"unicode"
)

// MaxTextLength is the hard cap applied to all free-form text
const MaxTextLength = 500

// blockedWords is a basic substring filter. A real deployment swaps
// this for an external moderation collaborator.
var blockedWords = []string{
	// Russian
	"блять", "сука", "хуй", "пизд", "ебат", "ёбан", "нахуй", "пиздец",
	"мудак", "дебил", "идиот", "урод", "шлюх", "проститу",
	// English
	"fuck", "shit", "bitch", "asshole", "dick", "pussy",
}

// Sanitize trims whitespace and truncates to MaxTextLength runes
func Sanitize(text string) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > MaxTextLength {
		return string(runes[:MaxTextLength])
	}
	return text
}

// ContainsBlockedContent reports whether the text matches the blocked
// word list after stripping punctuation and separators
func ContainsBlockedContent(text string) bool {
	normalized := normalize(text)
	for _, w := range blockedWords {
		if strings.Contains(normalized, w) {
			return true
		}
	}
	return false
}

// normalize lowercases and drops everything except letters and digits,
// so spacing or punctuation cannot hide a blocked word
func normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
