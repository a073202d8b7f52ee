package rate

import (
	"context"
	"testing"

	"wigglebot/internal/chat"
	"wigglebot/internal/chat/memchat"
	"wigglebot/internal/rating"
	"wigglebot/internal/response"
	"wigglebot/pkg/workpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func setup(t *testing.T) (*RateResponse, *memchat.Client, *rating.Rater) {
	t.Helper()
	rater, err := rating.New()
	require.NoError(t, err)

	pool := workpool.New(2)
	t.Cleanup(pool.Close)

	client := memchat.New(chat.User{ID: "100", Username: "wigglebot"})
	client.AddChannel(chat.Channel{ID: "c", GuildID: "g"})

	deps := &response.Deps{Client: client, Rater: rater, Pool: pool}
	return New(deps).(*RateResponse), client, rater
}

func TestRateRepliesToReferencedPost(t *testing.T) {
	defer goleak.VerifyNone(t)

	h, client, rater := setup(t)
	poster := chat.User{ID: "1", Username: "poster"}
	client.Deliver("c", poster, "I love pizza")
	client.Deliver("c", poster, "pizza tonight?")
	target := client.Deliver("c", poster, "pizza is great")
	client.Deliver("c", poster, "unrelated later chatter")

	req := client.DeliverMessage(&chat.Message{ChannelID: "c", Author: chat.User{ID: "2"}, Content: "!rate", ReferenceID: target.ID})
	res, err := h.RespondWithContext(context.Background(), "", req, &chat.Channel{ID: "c"})
	require.NoError(t, err)

	want := rating.Report(rater.Score("pizza is great", []string{"pizza tonight?", "I love pizza"}))
	assert.Equal(t, response.Reply(want, target), res)
}

func TestRateDetail(t *testing.T) {
	defer goleak.VerifyNone(t)

	h, client, rater := setup(t)
	target := client.Deliver("c", chat.User{ID: "1"}, "ubiquitous good words")

	req := client.DeliverMessage(&chat.Message{ChannelID: "c", Author: chat.User{ID: "2"}, Content: "!rate Detail", ReferenceID: target.ID})
	res, err := h.RespondWithContext(context.Background(), "Detail", req, &chat.Channel{ID: "c"})
	require.NoError(t, err)

	assert.Equal(t, rating.Breakdown(rater.Score("ubiquitous good words", nil)), res.Text)
	assert.Contains(t, res.Text, "Topicality: ")
}

func TestRateWithoutReplyIsSilent(t *testing.T) {
	h, client, _ := setup(t)
	req := client.Deliver("c", chat.User{ID: "2"}, "!rate")

	res, err := h.RespondWithContext(context.Background(), "", req, &chat.Channel{ID: "c"})
	require.NoError(t, err)
	assert.False(t, res.Postable())
}
