// Package itsyou posts a random animal gif at someone.
package itsyou

import (
	"context"
	"fmt"

	"wigglebot/internal/chat"
	"wigglebot/internal/post"
	"wigglebot/internal/response"

	"github.com/rs/zerolog"
)

var (
	topics     = []string{"cat", "bunny"}
	wildTopics = []string{"dog", "animal", ""}
)

type ItsYouResponse struct {
	response.Base
	deps *response.Deps
}

// New builds the handler.
func New(d *response.Deps) response.Handler {
	return &ItsYouResponse{
		Base: response.NewBase("itsyou", "bot will post a random gif that reminds it of a user"),
		deps: d,
	}
}

// RespondWithContext posts the gif and the callout itself and returns the
// handled result; only a failed lookup is reported back.
func (r *ItsYouResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	target, err := r.pickTarget(ctx, req)
	if err != nil {
		return response.Result{}, err
	}

	gif, err := r.deps.Giphy.Random(ctx, r.pickTopic())
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("[ITSYOU] Gif lookup failed")
		return response.Reply(err.Error(), req), nil
	}

	r.deps.Poster.Post(ctx, gif, post.To(ch.ID), chat.SendOptions{})
	r.deps.Poster.Post(ctx, fmt.Sprintf("%s, it's you!", target.Mention()), post.To(ch.ID), chat.SendOptions{})
	return response.Handled(), nil
}

// pickTarget prefers a single mention, then a random mention, then a random
// human in the channel.
func (r *ItsYouResponse) pickTarget(ctx context.Context, req *chat.Message) (chat.User, error) {
	rnd := r.deps.Random()
	switch n := len(req.Mentions); {
	case n == 1:
		return req.Mentions[0], nil
	case n > 1:
		return req.Mentions[rnd.IntN(n)], nil
	}

	members, err := r.deps.Client.Members(ctx, req.ChannelID)
	if err != nil {
		return chat.User{}, fmt.Errorf("list members: %w", err)
	}
	humans := chat.Humans(members)
	if len(humans) == 0 {
		return req.Author, nil
	}
	return humans[rnd.IntN(len(humans))], nil
}

func (r *ItsYouResponse) pickTopic() string {
	rnd := r.deps.Random()
	i := rnd.IntN(len(topics) + 1)
	if i < len(topics) {
		return topics[i]
	}
	return wildTopics[rnd.IntN(len(wildTopics))]
}

func init() {
	response.Register(New)
}
