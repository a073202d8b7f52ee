// Package giphy fetches random gifs by tag.
package giphy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"wigglebot/pkg/retrylimit"
)

const defaultBaseURL = "https://api.giphy.com/v1"

// ErrNoKey is returned when no API key is configured.
var ErrNoKey = errors.New("giphy: no api key")

type Client struct {
	baseURL string
	key     string
	http    *http.Client
	limiter *retrylimit.AdaptiveLimiter
}

// New returns a client. baseURL may be empty for the public API.
func New(key, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		key:     key,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: retrylimit.NewAdaptiveLimiter(1, 1, 4, 1, 0.5),
	}
}

// Random returns the page URL of a random gif for tag.
func (c *Client) Random(ctx context.Context, tag string) (string, error) {
	if c.key == "" {
		return "", ErrNoKey
	}
	q := url.Values{"api_key": {c.key}, "tag": {tag}}
	target := c.baseURL + "/gifs/random?" + q.Encode()

	var parsed struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	err := retrylimit.Do(ctx, c.limiter, retrylimit.DefaultPolicy(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return retrylimit.Permanent(err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return &retrylimit.StatusError{Code: resp.StatusCode, Body: string(body)}
		}
		if err := json.Unmarshal(body, &parsed); err != nil {
			return retrylimit.Permanent(err)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("giphy random %q: %w", tag, err)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("giphy random %q: no result", tag)
	}
	return parsed.Data.URL, nil
}
