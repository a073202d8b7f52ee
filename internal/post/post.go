// Package post owns the bot's only path to the chat: one multi-part post at
// a time, split into platform-sized chunks.
package post

import (
	"context"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"wigglebot/internal/chat"

	"github.com/rs/zerolog/log"
)

// DefaultChunkSize is the platform's message length limit.
const DefaultChunkSize = 2000

// Target says where a post goes: as a reply to a message, or as a fresh
// message in a channel.
type Target struct {
	ReplyTo   *chat.Message
	ChannelID string
}

// To builds a fresh-message target.
func To(channelID string) Target {
	return Target{ChannelID: channelID}
}

// ReplyTo builds a reply target.
func ReplyTo(msg *chat.Message) Target {
	return Target{ReplyTo: msg, ChannelID: msg.ChannelID}
}

// Poster serializes every outgoing post process-wide so chunks of two posts
// never interleave.
type Poster struct {
	mu        sync.Mutex
	client    chat.Client
	chunkSize int
}

// New returns a Poster. A non-positive chunkSize uses DefaultChunkSize.
func New(client chat.Client, chunkSize int) *Poster {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Poster{client: client, chunkSize: chunkSize}
}

// Post sends content to target, first chunk as the reply (or fresh message)
// and the rest as plain sends in the same channel. Attachments ride on the
// first chunk. Failures are logged and dropped.
func (p *Poster) Post(ctx context.Context, content string, target Target, opts chat.SendOptions) {
	p.mu.Lock()
	defer p.mu.Unlock()

	chunks := Chunk(content, p.chunkSize)
	if len(chunks) == 0 {
		if len(opts.Files) == 0 {
			return
		}
		chunks = []string{""}
	}

	if err := p.first(ctx, chunks[0], target, opts); err != nil {
		log.Error().Err(err).Str("channel", target.ChannelID).Msg("[POST] Failed to send message")
		return
	}

	rest := chat.SendOptions{TTS: opts.TTS}
	for _, part := range chunks[1:] {
		if _, err := p.client.Send(ctx, target.ChannelID, part, rest); err != nil {
			log.Error().Err(err).Str("channel", target.ChannelID).Msg("[POST] Failed to send message chunk")
			return
		}
	}
}

func (p *Poster) first(ctx context.Context, content string, target Target, opts chat.SendOptions) error {
	if target.ReplyTo != nil {
		_, err := p.client.Reply(ctx, target.ReplyTo, content, opts)
		return err
	}
	_, err := p.client.Send(ctx, target.ChannelID, content, opts)
	return err
}

// Chunk splits content into pieces of at most size runes. It prefers to cut
// after the last newline in a window, then after the last whitespace, and
// only then mid-word. Nothing is dropped: the chunks concatenate back to
// content.
func Chunk(content string, size int) []string {
	if content == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	var chunks []string
	for utf8.RuneCountInString(content) > size {
		window := prefixRunes(content, size)
		cut := strings.LastIndex(window, "\n") + 1
		if cut <= 0 {
			cut = lastSpaceEnd(window)
		}
		if cut <= 0 || strings.TrimSpace(window[:cut]) == "" {
			cut = len(window)
		}
		chunks = append(chunks, content[:cut])
		content = content[cut:]
	}
	if content != "" {
		chunks = append(chunks, content)
	}
	return chunks
}

// prefixRunes returns the first n runes of s.
func prefixRunes(s string, n int) string {
	i := 0
	for count := 0; count < n && i < len(s); count++ {
		_, w := utf8.DecodeRuneInString(s[i:])
		i += w
	}
	return s[:i]
}

// lastSpaceEnd returns the byte offset just past the last whitespace rune.
func lastSpaceEnd(s string) int {
	i := strings.LastIndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return 0
	}
	_, w := utf8.DecodeRuneInString(s[i:])
	return i + w
}
