package gpt

import (
	"context"

	"wigglebot/internal/chat"
	"wigglebot/internal/response"
)

// PromptResponse shows or changes the channel prompt. It uses the channel it
// answers in, so a thread gets its own prompt.
type PromptResponse struct {
	response.Base
	deps *response.Deps
}

func (r *PromptResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	out, err := r.deps.Prompts.SetPrompt(text, req.GuildID, ch.ID)
	return response.Reply(out, req), err
}

func (r *PromptResponse) Help() string {
	return "To see the current prompt, use \"!prompt\" with no arguments\n" +
		"To use a preset prompt, use \"!prompt <number>\"\n" +
		"To set a custom prompt, use \"!prompt custom <text>\""
}

type ContextResponse struct {
	response.Base
	deps *response.Deps
}

func (r *ContextResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	out, err := r.deps.Prompts.SetContext(text, req.GuildID, ch.ID)
	return response.Reply(out, req), err
}

func (r *ContextResponse) Help() string {
	return "Context controls how many messages the !ai commands have accesss to.\n" +
		"To see the current context amount, use \"!context\" with no arguments\n" +
		"To overwrite it, use \"!context <value>\"\n" +
		"<value> must be whole, non-negative number."
}

type PromptListResponse struct {
	response.Base
	deps *response.Deps
}

func (r *PromptListResponse) Respond(ctx context.Context) (string, error) {
	return r.deps.Prompts.List(), nil
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &PromptResponse{Base: response.NewBase("prompt", "check or change the current AI prompt"), deps: d}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &ContextResponse{Base: response.NewBase("context", "check or change the ammount of messages !ai commands see"), deps: d}
	})
	response.Register(func(d *response.Deps) response.Handler {
		return &PromptListResponse{Base: response.NewBase("prompts", "see all avaliable preconfigured AI prompts"), deps: d}
	})
}
