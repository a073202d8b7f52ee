package mock

import (
	"context"
	"testing"

	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"
	"wigglebot/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upFirst makes every letter upper case until the run rule flips it.
type upFirst struct{}

func (upFirst) IntN(int) int      { return 1 }
func (upFirst) Float64() float64 { return 0 }

func setup(t *testing.T) (*MockResponse, *memchat.Client) {
	t.Helper()
	client := memchat.New(chat.User{ID: "100"})
	client.AddChannel(chat.Channel{ID: "c", GuildID: "g"})
	return New(&response.Deps{Client: client, Rand: upFirst{}}).(*MockResponse), client
}

func TestMockText(t *testing.T) {
	h, client := setup(t)
	req := client.Deliver("c", chat.User{ID: "1"}, "!mock hello")

	res, err := h.RespondWithContext(context.Background(), "hello", req, nil)
	require.NoError(t, err)
	assert.Equal(t, response.Reply("HElLO", req), res)
}

func TestMockRepliesToReference(t *testing.T) {
	h, client := setup(t)
	victim := client.Deliver("c", chat.User{ID: "2"}, "i am smart")
	req := client.DeliverMessage(&chat.Message{ChannelID: "c", Author: chat.User{ID: "1"}, Content: "!mock", ReferenceID: victim.ID})

	res, err := h.RespondWithContext(context.Background(), "", req, nil)
	require.NoError(t, err)
	assert.Equal(t, victim, res.ReplyTo)
	assert.Equal(t, "I Am SMaRT", res.Text)
}

func TestMockCooldown(t *testing.T) {
	h, _ := setup(t)
	assert.Equal(t, Cooldown, h.Timer().Cooldown())
}
