package cancel

import (
	"context"
	"testing"

	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"
	"wigglebot/internal/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accuser = chat.User{ID: "1", Username: "accuser"}
	suspect = chat.User{ID: "2", Username: "suspect"}
)

type zeroRand struct{}

func (zeroRand) IntN(int) int      { return 0 }
func (zeroRand) Float64() float64 { return 0 }

func setup(t *testing.T) (*memchat.Client, *response.Deps) {
	t.Helper()
	client := memchat.New(chat.User{ID: "100", Username: "wigglebot"})
	client.AddChannel(chat.Channel{ID: "c", GuildID: "g"})
	return client, &response.Deps{Client: client, Rand: zeroRand{}}
}

func run(t *testing.T, h *CancelResponse, client *memchat.Client, channelID string, mentions ...chat.User) (response.Result, *chat.Message) {
	t.Helper()
	req := client.Deliver("c", accuser, "!cancel", mentions...)
	ch := &chat.Channel{ID: channelID}
	res, err := h.RespondWithContext(context.Background(), "", req, ch)
	require.NoError(t, err)
	return res, req
}

func TestCancelFindsOldestQualifyingMessage(t *testing.T) {
	client, deps := setup(t)
	client.Deliver("c", suspect, "short")
	client.Deliver("c", suspect, "look at this https://example.com/very/long")
	evidence := client.Deliver("c", suspect, "pineapple belongs on pizza, fight me")
	client.Deliver("c", suspect, "and another long take that is also bad")
	client.Deliver("c", accuser, "a long message from someone else entirely")

	h := &CancelResponse{Base: response.NewBase("cancel", ""), deps: deps, filter: noLinks}
	res, _ := run(t, h, client, "c", suspect)

	assert.Equal(t, "Yikes, <@2>", res.Text)
	assert.Equal(t, evidence, res.ReplyTo)
}

func TestBadpostKeepsLinks(t *testing.T) {
	client, deps := setup(t)
	link := client.Deliver("c", suspect, "look at this https://example.com/very/long")

	h := &CancelResponse{Base: response.NewBase("badpost", ""), deps: deps}
	res, _ := run(t, h, client, "c", suspect)
	assert.Equal(t, link, res.ReplyTo)
}

func TestCancelInnocent(t *testing.T) {
	client, deps := setup(t)
	h := &CancelResponse{Base: response.NewBase("cancel", ""), deps: deps, filter: noLinks}

	res, req := run(t, h, client, "c", suspect)
	assert.Equal(t, response.Reply("<@2> is pure and wonderful and can do no wrong.", req), res)
}

func TestCancelNeedsOneMentionAndSameChannel(t *testing.T) {
	client, deps := setup(t)
	h := &CancelResponse{Base: response.NewBase("cancel", ""), deps: deps}

	res, _ := run(t, h, client, "c")
	assert.False(t, res.Postable())

	res, _ = run(t, h, client, "thread-1", suspect)
	assert.Equal(t, "This function doesnt work across threads. :shrug:", res.Text)
}
