// Package gpt holds the AI backed handlers: the mention reply, chat log
// completions, per-channel prompt settings, canned single-shot prompts and
// image generation.
package gpt

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"wigglebot/internal/ai"
	"wigglebot/internal/chat"
	"wigglebot/internal/response"
)

// MentionCallsign is the hidden handler that answers when the bot is
// mentioned.
const MentionCallsign = "_gpt"

// models picks model names from config.
type models struct {
	deps *response.Deps
}

func (m models) basic() string  { return m.deps.Config.AIModel }
func (m models) smart() string  { return m.deps.Config.AISmartModel }
func (m models) vision() string { return m.deps.Config.AIVisionModel }

// MentionResponse answers mentions. Images on the request or on the quoted
// message go to the vision model with the channel prompt; plain text gets a
// single-shot completion with the quote prepended.
type MentionResponse struct {
	response.Base
	deps *response.Deps
}

func (r *MentionResponse) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	quote := chat.ResolveReference(ctx, r.deps.Client, req)

	if req.HasImages() || (quote != nil && quote.HasImages()) {
		msgs := []*chat.Message{req}
		if quote != nil {
			msgs = []*chat.Message{quote, req}
		}
		return chatCompletion(ctx, r.deps, msgs, models{r.deps}.vision(), true)
	}

	prompt := chat.StripMentions(text)
	if quote != nil {
		prompt = fmt.Sprintf("\"%s\"\n%s", quote.Content, prompt)
	}
	reply, err := single(ctx, r.deps, prompt)
	if err != nil {
		return "", err
	}
	if reply == "" {
		return ":confused:", nil
	}
	return reply, nil
}

// CompletionResponse continues the channel's chat log.
type CompletionResponse struct {
	response.Base
	deps  *response.Deps
	smart bool
}

// RespondToMessage sends the channel prompt and the last few messages, with
// the request's own text standing in for its content. The smart variant
// switches to the vision model when any message carries images.
func (r *CompletionResponse) RespondToMessage(ctx context.Context, text string, req *chat.Message) (string, error) {
	depth := r.deps.Prompts.Context(req.GuildID, req.ChannelID)
	var history []*chat.Message
	if depth > 0 {
		var err error
		history, err = r.deps.Client.History(ctx, req.ChannelID, depth, req.ID)
		if err != nil {
			return "", fmt.Errorf("read history: %w", err)
		}
	}

	self := *req
	self.Content = text
	msgs := append([]*chat.Message{&self}, history...)
	slices.Reverse(msgs)

	m := models{r.deps}
	model := m.basic()
	if r.smart {
		model = m.smart()
		if slices.ContainsFunc(msgs, (*chat.Message).HasImages) {
			model = m.vision()
		}
	}
	return chatCompletion(ctx, r.deps, msgs, model, model == m.vision())
}

// chatCompletion frames msgs with the channel prompt and completes them.
func chatCompletion(ctx context.Context, deps *response.Deps, msgs []*chat.Message, model string, visual bool) (string, error) {
	last := msgs[len(msgs)-1]
	turns := []ai.Turn{ai.System(deps.Prompts.Prompt(last.GuildID, last.ChannelID))}
	turns = append(turns, ai.Transcript(msgs, deps.IsMe, visual)...)

	reply, err := deps.AI.Complete(ctx, turns, model, visual)
	if err != nil {
		return "", fmt.Errorf("complete chat: %w", err)
	}
	return reply, nil
}

// single runs a one-turn completion on the basic model. An empty reply is
// not an error here; callers substitute their own filler.
func single(ctx context.Context, deps *response.Deps, prompt string) (string, error) {
	turns := []ai.Turn{{Role: ai.RoleUser, Content: prompt}}
	reply, err := deps.AI.Complete(ctx, turns, deps.Config.AIModel, false)
	if err == nil || errors.Is(err, ai.ErrEmptyReply) {
		return reply, nil
	}
	return "", fmt.Errorf("complete prompt: %w", err)
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &MentionResponse{Base: response.NewBase(MentionCallsign, ""), deps: d}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &CompletionResponse{Base: response.NewBase("ai", "get the AI to respond to the chat"), deps: d}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &CompletionResponse{Base: response.NewBase("ai4", "get the smarter AI to respond to the chat"), deps: d, smart: true}
	})
}
