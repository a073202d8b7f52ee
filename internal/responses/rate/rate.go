// Package rate scores the post a request replies to.
package rate

import (
	"context"
	"fmt"
	"strings"

	"wigglebot/internal/chat"
	"wigglebot/internal/rating"
	"wigglebot/internal/response"
	"wigglebot/pkg/workpool"
)

// historySize is how many earlier messages count toward topicality.
const historySize = 10

type RateResponse struct {
	response.Base
	deps *response.Deps
}

// New builds the handler.
func New(d *response.Deps) response.Handler {
	return &RateResponse{Base: response.NewBase("rate", "rate the quality of a post"), deps: d}
}

// RespondWithContext rates the replied-to message against the messages just
// before it. Without a reply there is nothing to rate and nothing is posted.
// "detail" anywhere in the request asks for the per-category breakdown.
func (r *RateResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	target := chat.ResolveReference(ctx, r.deps.Client, req)
	if target == nil {
		return response.Handled(), nil
	}

	history, err := r.history(ctx, target)
	if err != nil {
		return response.Result{}, err
	}

	detail := strings.Contains(strings.ToLower(text), "detail")
	out, err := workpool.Run(ctx, r.deps.Pool, func() (string, error) {
		scores := r.deps.Rater.Score(target.Content, history)
		if detail {
			return rating.Breakdown(scores), nil
		}
		return rating.Report(scores), nil
	})
	if err != nil {
		return response.Result{}, fmt.Errorf("rate post: %w", err)
	}
	return response.Reply(out, target), nil
}

func (r *RateResponse) history(ctx context.Context, target *chat.Message) ([]string, error) {
	msgs, err := r.deps.Client.History(ctx, target.ChannelID, 2*historySize, target.ID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	out := make([]string, 0, historySize)
	for _, m := range msgs {
		if len(out) == historySize {
			break
		}
		out = append(out, m.Content)
	}
	return out, nil
}

func init() {
	response.Register(New)
}
