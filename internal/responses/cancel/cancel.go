// Package cancel digs through channel history for something a user said.
package cancel

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
)

const (
	minHistory = 500
	maxHistory = 2000
	// minEvidence is the shortest message worth digging up.
	minEvidence = 20
)

// CancelResponse finds an old message by the mentioned user and replies to
// it. Filter, when set, rejects candidate contents.
type CancelResponse struct {
	response.Base
	deps   *response.Deps
	filter func(content string) bool
}

func (r *CancelResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	if ch != nil && ch.ID != req.ChannelID {
		return response.Reply("This function doesnt work across threads. :shrug:", req), nil
	}
	if len(req.Mentions) != 1 {
		return response.Reply("", req), nil
	}
	target := req.Mentions[0]

	limit := minHistory + r.deps.Random().IntN(maxHistory-minHistory+1)
	history, err := r.deps.Client.History(ctx, req.ChannelID, limit, req.ID)
	if err != nil {
		return response.Result{}, fmt.Errorf("read history: %w", err)
	}

	if evidence := r.find(history, target.ID); evidence != nil {
		return response.Reply(fmt.Sprintf("Yikes, %s", target.Mention()), evidence), nil
	}
	return response.Reply(fmt.Sprintf("%s is pure and wonderful and can do no wrong.", target.Mention()), req), nil
}

// find scans oldest first.
func (r *CancelResponse) find(newestFirst []*chat.Message, userID string) *chat.Message {
	for i := len(newestFirst) - 1; i >= 0; i-- {
		m := newestFirst[i]
		if m.Author.ID != userID || utf8.RuneCountInString(m.Content) <= minEvidence {
			continue
		}
		if r.filter == nil || r.filter(m.Content) {
			return m
		}
	}
	return nil
}

func noLinks(content string) bool {
	return !strings.Contains(content, "http")
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &CancelResponse{
			Base:   response.NewBase("cancel", "find a problematic comment the user mades"),
			deps:   d,
			filter: noLinks,
		}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &CancelResponse{Base: response.NewBase("badpost", ""), deps: d}
	})
}
