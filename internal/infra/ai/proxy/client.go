package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
)

// Client talks to a narrative proxy that injects the provider key.
type Client struct {
	httpClient *http.Client
	url        string
}

func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{httpClient: &http.Client{Timeout: timeout}, url: url}
}

type reply struct {
	Text    string                   `json:"text"`
	Content []narrative.ContentBlock `json:"content"`
	Error   json.RawMessage          `json:"error"`
}

// Complete posts r to the proxy and returns the narrative text.
func (c *Client) Complete(ctx context.Context, r narrative.Request) (string, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", narrative.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: proxy request failed: %d", narrative.ErrUnavailable, resp.StatusCode)
	}

	var out reply
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: unexpected proxy response: %v", narrative.ErrUnavailable, err)
	}

	var text string
	switch {
	case out.Content != nil:
		for _, b := range out.Content {
			if b.Type == "text" {
				text = b.Text
				break
			}
		}
	case out.Text != "":
		text = out.Text
	case len(out.Error) > 0:
		return "", fmt.Errorf("%w: api error: %s", narrative.ErrUnavailable, string(out.Error))
	default:
		return "", fmt.Errorf("%w: unexpected proxy response structure", narrative.ErrUnavailable)
	}
	if text == "" {
		return "", narrative.ErrEmptyResponse
	}
	return text, nil
}
