package post

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkShortContent(t *testing.T) {
	assert.Nil(t, Chunk("", 10))
	assert.Equal(t, []string{"hello"}, Chunk("hello", 10))
}

func TestChunkPrefersLineBreaks(t *testing.T) {
	content := "first line\nsecond line is long"
	chunks := Chunk(content, 15)

	require.Len(t, chunks, 3)
	assert.Equal(t, "first line\n", chunks[0])
	assert.Equal(t, content, strings.Join(chunks, ""))
}

func TestChunkFallsBackToSpacesThenHardCuts(t *testing.T) {
	chunks := Chunk("aaaa bbbb", 6)
	assert.Equal(t, []string{"aaaa ", "bbbb"}, chunks)

	chunks = Chunk(strings.Repeat("a", 2001), 2000)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], 2000)
	assert.Equal(t, "a", chunks[1])
}

func TestChunkRejoinsAndRespectsSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 500; i++ {
		b.WriteString("wiggle ")
		if i%37 == 0 {
			b.WriteString("\n")
		}
		b.WriteString("ünïcödé ")
	}
	content := b.String()

	for _, size := range []int{7, 50, 333, 2000} {
		chunks := Chunk(content, size)
		assert.Equal(t, content, strings.Join(chunks, ""), "size %d", size)
		for _, c := range chunks {
			assert.LessOrEqual(t, utf8.RuneCountInString(c), size)
			assert.NotEmpty(t, strings.TrimSpace(c))
		}
	}
}

func newPlatform() (*memchat.Client, *chat.Message) {
	c := memchat.New(chat.User{ID: "bot", Username: "wigglebot"})
	c.AddChannel(chat.Channel{ID: "c1", GuildID: "g1", Kind: chat.KindText})
	req := c.Deliver("c1", chat.User{ID: "u1", Username: "alice"}, "!aaa")
	return c, req
}

func TestPostReplyThenSends(t *testing.T) {
	c, req := newPlatform()
	p := New(c, 2000)

	p.Post(context.Background(), strings.Repeat("a", 2001), ReplyTo(req), chat.SendOptions{TTS: true})

	posted := c.Posted()
	require.Len(t, posted, 2)
	assert.Equal(t, req.ID, posted[0].ReferenceID)
	assert.Empty(t, posted[1].ReferenceID)
	assert.Equal(t, "c1", posted[1].ChannelID)
	assert.Equal(t, strings.Repeat("a", 2001), posted[0].Content+posted[1].Content)
}

func TestPostFreshMessage(t *testing.T) {
	c, _ := newPlatform()
	p := New(c, 0)

	p.Post(context.Background(), "hi", To("c1"), chat.SendOptions{})

	posted := c.Posted()
	require.Len(t, posted, 1)
	assert.Empty(t, posted[0].ReferenceID)
}

func TestPostSwallowsErrors(t *testing.T) {
	c, req := newPlatform()
	c.SendErr = errors.New("boom")
	p := New(c, 10)

	assert.NotPanics(t, func() {
		p.Post(context.Background(), "hello world", ReplyTo(req), chat.SendOptions{})
	})
	assert.Empty(t, c.Posted())
}

func TestPostDoesNotInterleave(t *testing.T) {
	c, _ := newPlatform()
	p := New(c, 5)

	var wg sync.WaitGroup
	for _, word := range []string{"aaaaa", "bbbbb", "ccccc", "ddddd"} {
		wg.Add(1)
		go func(w string) {
			defer wg.Done()
			p.Post(context.Background(), strings.Repeat(w, 4), To("c1"), chat.SendOptions{})
		}(word)
	}
	wg.Wait()

	posted := c.Posted()
	require.Len(t, posted, 16)
	for i := 0; i < len(posted); i += 4 {
		for j := 1; j < 4; j++ {
			assert.Equal(t, posted[i].Content, posted[i+j].Content)
		}
	}
}
