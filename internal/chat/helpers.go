package chat

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var mentionRe = regexp.MustCompile(`<@!?(\d+)>`)

// GrammarJoin joins names as "a, b and c".
func GrammarJoin(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	head := items[:len(items)-2]
	tail := strings.Join(items[len(items)-2:], " and ")
	return strings.Join(append(append([]string{}, head...), tail), ", ")
}

// StripMentions removes leading mention tokens and trims the rest.
func StripMentions(text string) string {
	for strings.HasPrefix(text, "<@") {
		i := strings.IndexFunc(text, unicode.IsSpace)
		if i < 0 {
			return ""
		}
		text = strings.TrimLeftFunc(text[i:], unicode.IsSpace)
	}
	return strings.TrimSpace(text)
}

// Humans filters bot accounts out of a member list.
func Humans(members []User) []User {
	out := make([]User, 0, len(members))
	for _, u := range members {
		if !u.Bot {
			out = append(out, u)
		}
	}
	return out
}

// FindUser looks a user up by id.
func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// ReplaceMentions turns <@id> markup into @name, using ??? for strangers.
func ReplaceMentions(text string, members []User) string {
	return mentionRe.ReplaceAllStringFunc(text, func(m string) string {
		id := mentionRe.FindStringSubmatch(m)[1]
		if u, ok := FindUser(members, id); ok {
			return "@" + u.DisplayName()
		}
		return "@???"
	})
}

// MentionedIDs returns the ids of every <@id> token in text, in order.
func MentionedIDs(text string) []string {
	var ids []string
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

const maxThreadName = 97

// ThreadName picks a thread title from the author and the request text.
// Platform thread names are limited to 100 characters.
func ThreadName(msg *Message, text string, members []User) string {
	name := msg.Author.DisplayName() + "'s Thread: " + ReplaceMentions(text, members)
	if utf8.RuneCountInString(name) > maxThreadName {
		name = strings.TrimSpace(string([]rune(name)[:maxThreadName])) + "..."
	}
	return name
}

// ResolveReference fetches the message msg replies to, if any. Lookup
// failures are reported as no reference.
func ResolveReference(ctx context.Context, c Client, msg *Message) *Message {
	if msg.ReferenceID == "" {
		return nil
	}
	ref, err := c.FetchMessage(ctx, msg.ChannelID, msg.ReferenceID)
	if err != nil {
		return nil
	}
	return ref
}
