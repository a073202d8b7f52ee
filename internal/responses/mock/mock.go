// Package mock repeats a message back in alternating case.
package mock

import (
	"context"
	"time"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
	"wigglebot/internal/textfx"
)

// Cooldown keeps mocking rare.
const Cooldown = 2 * time.Hour

type MockResponse struct {
	response.Base
	deps *response.Deps
}

// New builds the handler.
func New(d *response.Deps) response.Handler {
	return &MockResponse{
		Base: response.NewBase("mock", "mock a user (long cooldown)", response.WithCooldown(Cooldown)),
		deps: d,
	}
}

// RespondWithContext mocks the replied-to message when there is one, replying
// to it, and the request text otherwise.
func (r *MockResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	if ref := chat.ResolveReference(ctx, r.deps.Client, req); ref != nil {
		return response.Reply(textfx.Spongecase(r.deps.Random(), ref.Content), ref), nil
	}
	return response.Reply(textfx.Spongecase(r.deps.Random(), text), req), nil
}

func init() {
	response.Register(New)
}
