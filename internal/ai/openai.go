// openai.go
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"wigglebot/pkg/retrylimit"
)

// OpenAIConfig points the provider at any service speaking the OpenAI chat
// completions and image generation API.
type OpenAIConfig struct {
	BaseURL    string
	Key        string
	MaxTokens  int
	ImageModel string
	Timeout    time.Duration
	Retry      retrylimit.Policy
}

type OpenAIProvider struct {
	cfg     OpenAIConfig
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "dall-e-3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retrylimit.DefaultPolicy()
	}
	return &OpenAIProvider{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: retrylimit.NewAdaptiveLimiter(2, 1, 5, 1, 0.5),
	}
}

type wirePart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *wireImageURL `json:"image_url,omitempty"`
}

type wireImageURL struct {
	URL string `json:"url"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Content any    `json:"content"`
}

func toWire(turns []Turn, allowImages bool) []wireMessage {
	out := make([]wireMessage, len(turns))
	for i, t := range turns {
		out[i] = wireMessage{Role: t.Role, Name: t.Name, Content: t.Content}
		if allowImages && len(t.Images) > 0 {
			parts := []wirePart{{Type: "text", Text: t.Content}}
			for _, u := range t.Images {
				parts = append(parts, wirePart{Type: "image_url", ImageURL: &wireImageURL{URL: u}})
			}
			out[i].Content = parts
		}
	}
	return out
}

func (p *OpenAIProvider) Complete(ctx context.Context, turns []Turn, model string, allowImages bool) (string, error) {
	payload := map[string]any{
		"model":       model,
		"messages":    toWire(turns, allowImages),
		"max_tokens":  p.cfg.MaxTokens,
		"temperature": 0.9,
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := p.post(ctx, "/chat/completions", payload, &parsed); err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("chat completion: %w", ErrEmptyReply)
	}
	return cleanReply(parsed.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	payload := map[string]any{
		"model":           p.cfg.ImageModel,
		"prompt":          prompt,
		"size":            "1024x1024",
		"quality":         "hd",
		"n":               1,
		"response_format": "b64_json",
	}

	var parsed struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
	}
	if err := p.post(ctx, "/images/generations", payload, &parsed); err != nil {
		return nil, fmt.Errorf("image generation: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, fmt.Errorf("image generation: %w", ErrEmptyReply)
	}
	data, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("image generation: decode: %w", err)
	}
	return &Image{Data: data, Caption: fmt.Sprintf("%q", prompt)}, nil
}

func (p *OpenAIProvider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return retrylimit.Do(ctx, p.limiter, p.cfg.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path, bytes.NewReader(body))
		if err != nil {
			return retrylimit.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if p.cfg.Key != "" {
			req.Header.Set("Authorization", "Bearer "+p.cfg.Key)
		}

		resp, err := p.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(respBody)}
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return retrylimit.Permanent(fmt.Errorf("unmarshal: %w body=%s", err, truncate(respBody)))
		}
		return nil
	})
}
