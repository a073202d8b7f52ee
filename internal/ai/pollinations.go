package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wigglebot/pkg/retrylimit"
)

// PollinationsConfig overrides the public endpoints, mostly for tests.
type PollinationsConfig struct {
	TextURL  string
	ImageURL string
	Retry    retrylimit.Policy
}

type PollinationsProvider struct {
	cfg     PollinationsConfig
	client  *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

func NewPollinationsProvider(cfg PollinationsConfig) *PollinationsProvider {
	if cfg.TextURL == "" {
		cfg.TextURL = "https://text.pollinations.ai/openai"
	}
	if cfg.ImageURL == "" {
		cfg.ImageURL = "https://image.pollinations.ai/prompt/"
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retrylimit.DefaultPolicy()
	}
	return &PollinationsProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		limiter: retrylimit.NewAdaptiveLimiter(1, 1, 3, 1, 0.5),
	}
}

// Complete ignores model; the service picks its own.
func (p *PollinationsProvider) Complete(ctx context.Context, turns []Turn, _ string, allowImages bool) (string, error) {
	payload := map[string]any{
		"model":       "openai",
		"messages":    toWire(turns, allowImages),
		"temperature": 0.9,
		"private":     true,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	var reply string
	err = retrylimit.Do(ctx, p.limiter, p.cfg.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.TextURL, bytes.NewReader(data))
		if err != nil {
			return retrylimit.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		body, ctype, err := p.do(req)
		if err != nil {
			return err
		}
		if strings.Contains(ctype, "text/html") {
			return fmt.Errorf("pollinations returned html")
		}

		var parsed struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return retrylimit.Permanent(err)
		}
		if len(parsed.Choices) == 0 {
			return retrylimit.Permanent(ErrEmptyReply)
		}

		reply = cleanReply(parsed.Choices[0].Message.Content)
		if isGarbageResponse(reply) {
			return fmt.Errorf("pollinations returned garbage")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("pollinations: %w", err)
	}
	return reply, nil
}

func (p *PollinationsProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	target := p.cfg.ImageURL + url.PathEscape(prompt) + "?nologo=true&private=true"

	var img []byte
	err := retrylimit.Do(ctx, p.limiter, p.cfg.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retrylimit.Permanent(err)
		}
		body, ctype, err := p.do(req)
		if err != nil {
			return err
		}
		if !strings.HasPrefix(ctype, "image/") {
			return fmt.Errorf("pollinations returned %q instead of an image", ctype)
		}
		img = body
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pollinations image: %w", err)
	}
	return &Image{Data: img, Caption: fmt.Sprintf("%q", prompt)}, nil
}

func (p *PollinationsProvider) do(req *http.Request) ([]byte, string, error) {
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &retrylimit.StatusError{Code: resp.StatusCode, Body: truncate(body)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}
