// Package flags parses the leading !flag tokens of a chat message.
package flags

import (
	"slices"
	"strings"
	"unicode"
)

// Posting modifiers understood by the dispatcher regardless of handler.
const (
	Thread = "thread"
	TTS    = "tts"
	Uwu    = "uwu"
	Yell   = "yell"
)

// Extract peels leading !tokens off text. Flags come back lowercased without
// the bang, in order; rest is whatever follows the last flag, with the
// separating whitespace removed but otherwise untouched. A bare "!" yields an
// empty flag.
func Extract(text string) (flags []string, rest string) {
	flags = []string{}
	rest = text
	for strings.HasPrefix(rest, "!") {
		var head string
		head, rest = splitFirst(rest)
		flags = append(flags, strings.ToLower(head)[1:])
	}
	return flags, rest
}

// Has reports whether flag was given.
func Has(flags []string, flag string) bool {
	return slices.Contains(flags, flag)
}

// Strip drops any leading flags and trims the remainder.
func Strip(text string) string {
	_, rest := Extract(text)
	return strings.TrimSpace(rest)
}

// splitFirst splits s once on its first whitespace run, ignoring leading
// whitespace. rest is empty when nothing but whitespace follows head.
func splitFirst(s string) (head, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeftFunc(s[i:], unicode.IsSpace)
}
