package gpt

import (
	"bytes"
	"context"

	"wigglebot/internal/chat"
	"wigglebot/internal/post"
	"wigglebot/internal/response"

	"github.com/rs/zerolog"
)

const imageFilename = "image.png"

// ImageResponse generates an image for the request text and posts it with
// the prompt as its caption. In a new thread it posts there, otherwise it
// replies to the request.
type ImageResponse struct {
	response.Base
	deps *response.Deps
}

func (r *ImageResponse) RespondWithContext(ctx context.Context, text string, req *chat.Message, ch *chat.Channel) (response.Result, error) {
	target := post.To(ch.ID)
	if ch.ID == req.ChannelID {
		target = post.ReplyTo(req)
	}

	img, err := r.deps.AI.GenerateImage(ctx, text)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("[AIIMAGE] Image generation failed")
		r.deps.Poster.Post(ctx, err.Error(), target, chat.SendOptions{})
		return response.Handled(), nil
	}

	file := &chat.File{Name: imageFilename, ContentType: "image/png", Reader: bytes.NewReader(img.Data)}
	r.deps.Poster.Post(ctx, img.Caption, target, chat.SendOptions{Files: []*chat.File{file}})
	return response.Handled(), nil
}

func init() {
	response.Register(func(d *response.Deps) response.Handler {
		return &ImageResponse{Base: response.NewBase("aiimage", "generate an image for your prompt"), deps: d}
	})
}
