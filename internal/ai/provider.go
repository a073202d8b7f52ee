// Package ai talks to text completion and image generation services.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wigglebot/internal/config"
)

// Turn is one message of a completion request.
type Turn struct {
	Role    string
	Name    string
	Content string
	// Images are URLs sent alongside Content when the model accepts them.
	Images []string
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// System builds a system turn.
func System(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// Image is a generated picture.
type Image struct {
	Data    []byte
	Caption string
}

// Provider generates text and images.
type Provider interface {
	// Complete answers a conversation. allowImages sends image URLs to the
	// model; otherwise they are dropped.
	Complete(ctx context.Context, turns []Turn, model string, allowImages bool) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// ErrEmptyReply is returned when the service answers with no content.
var ErrEmptyReply = errors.New("empty reply")

// Split sends completions and images to different services.
type Split struct {
	Text   Provider
	Images Provider
}

func (s Split) Complete(ctx context.Context, turns []Turn, model string, allowImages bool) (string, error) {
	return s.Text.Complete(ctx, turns, model, allowImages)
}

func (s Split) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	return s.Images.GenerateImage(ctx, prompt)
}

// DefaultProvider builds the configured text and image providers.
func DefaultProvider(cfg *config.Config) (Provider, error) {
	text, err := pick(cfg.AIProvider, OpenAIConfig{
		BaseURL:   cfg.AIBaseURL,
		Key:       cfg.AIKey,
		MaxTokens: cfg.AIMaxTokens,
	})
	if err != nil {
		return nil, err
	}
	images, err := pick(cfg.ImageProvider, OpenAIConfig{
		BaseURL:    cfg.ImageBaseURL,
		Key:        cfg.ImageKey,
		ImageModel: cfg.ImageModel,
		Timeout:    2 * time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return Split{Text: text, Images: images}, nil
}

func pick(engine string, oc OpenAIConfig) (Provider, error) {
	switch engine {
	case "openai", "":
		return NewOpenAIProvider(oc), nil
	case "pollinations":
		return NewPollinationsProvider(PollinationsConfig{}), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", engine)
	}
}
