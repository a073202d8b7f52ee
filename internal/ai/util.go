package ai

import (
	"regexp"
	"strings"

	"wigglebot/internal/chat"
	"wigglebot/internal/flags"
)

var (
	thinkRe   = regexp.MustCompile(`(?s)<think>.*?</think>`)
	nameRe    = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	idTokenRe = regexp.MustCompile(`_(\d+)_`)
	mentionRe = regexp.MustCompile(`<@!?(\d+)>`)
)

func isGarbageResponse(s string) bool {
	l := strings.ToLower(s)

	if strings.Contains(l, "<html") {
		return true
	}
	if strings.Contains(l, "not allowed") {
		return true
	}
	return strings.TrimSpace(s) == ""
}

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

// cleanReply drops reasoning blocks and one pair of wrapping quotes.
func cleanReply(reply string) string {
	reply = strings.TrimSpace(thinkRe.ReplaceAllString(reply, ""))

	if len(reply) >= 2 {
		quotes := []struct{ open, close string }{
			{`"`, `"`}, {"“", "”"},
		}
		for _, q := range quotes {
			if strings.HasPrefix(reply, q.open) && strings.HasSuffix(reply, q.close) &&
				!strings.Contains(reply[len(q.open):len(reply)-len(q.close)], q.open) {
				reply = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(reply, q.open), q.close))
				break
			}
		}
	}
	return reply
}

// Name sanitizes a display name into the character set completion APIs
// accept for the name field.
func Name(display string) string {
	if n := nameRe.ReplaceAllString(display, ""); n != "" {
		return n
	}
	return "a"
}

// IDsToNames rewrites <@id> mentions as _id_ so models keep them intact.
func IDsToNames(text string) string {
	return mentionRe.ReplaceAllString(text, "_${1}_")
}

// NamesToIDs turns _id_ tokens written by a model back into mentions.
func NamesToIDs(text string) string {
	return idTokenRe.ReplaceAllString(text, "<@${1}>")
}

// Transcript converts chat messages, oldest first, into completion turns.
// The bot's own messages become assistant turns unless visual is set, since
// vision models reject assistant turns that carry images.
func Transcript(msgs []*chat.Message, isMe func(chat.User) bool, visual bool) []Turn {
	turns := make([]Turn, 0, len(msgs))
	for _, m := range msgs {
		t := Turn{
			Role:    RoleUser,
			Name:    Name(m.Author.DisplayName()),
			Content: flags.Strip(m.Content),
		}
		if isMe != nil && isMe(m.Author) && !visual {
			t.Role = RoleAssistant
		}
		if visual {
			t.Images = m.ImageURLs()
		}
		turns = append(turns, t)
	}
	return turns
}
