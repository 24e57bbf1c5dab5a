package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
)

const (
	apiVersion       = "2023-06-01"
	DefaultBaseURL   = "https://api.anthropic.com/v1/messages"
	DefaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 4000
)

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []narrative.ContentBlock `json:"content"`
	Error   *apiError                `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusError is a non-2xx reply from the Messages API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Anthropic API error: %d", e.Status)
}

func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return narrative.ErrQuotaExceeded
	}
	return narrative.ErrUnavailable
}

// Client calls the Messages API with a server-side key.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
	log        *slog.Logger
}

func NewClient(apiKey, model string, timeout time.Duration, log *slog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		model:      model,
		baseURL:    DefaultBaseURL,
		log:        log,
	}
}

// WithBaseURL overrides the endpoint, used by tests.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool { return c != nil && c.apiKey != "" }

// Messages forwards r and returns the first text block plus all content.
func (c *Client) Messages(ctx context.Context, r narrative.Request) (narrative.Response, error) {
	if !c.Configured() {
		return narrative.Response{}, fmt.Errorf("%w: ANTHROPIC_API_KEY is not configured", narrative.ErrUnavailable)
	}
	model := r.Model
	if model == "" {
		model = c.model
	}
	tokens := r.MaxTokens
	if tokens == 0 {
		tokens = defaultMaxTokens
	}
	payload, err := json.Marshal(messagesRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: r.Prompt}},
		System:      r.SystemPrompt,
		MaxTokens:   tokens,
		Temperature: r.Temperature,
	})
	if err != nil {
		return narrative.Response{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return narrative.Response{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("content-type", "application/json")

	c.log.Debug("sending request to anthropic", "model", model)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return narrative.Response{}, fmt.Errorf("%w: %v", narrative.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return narrative.Response{}, &StatusError{Status: resp.StatusCode, Body: string(body)}
	}

	var out messagesResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return narrative.Response{}, fmt.Errorf("%w: failed to parse response JSON: %v", narrative.ErrUnavailable, err)
	}
	if out.Error != nil {
		return narrative.Response{}, fmt.Errorf("%w: %s - %s", narrative.ErrUnavailable, out.Error.Type, out.Error.Message)
	}

	res := narrative.Response{Content: out.Content}
	for _, block := range out.Content {
		if block.Type == "text" {
			res.Text = block.Text
			break
		}
	}
	return res, nil
}

// Complete implements narrative.Client.
func (c *Client) Complete(ctx context.Context, r narrative.Request) (string, error) {
	res, err := c.Messages(ctx, r)
	if err != nil {
		return "", err
	}
	if res.Text == "" {
		return "", narrative.ErrEmptyResponse
	}
	return res.Text, nil
}

// IsStatus extracts the upstream status from err.
func IsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	ok := errors.As(err, &se)
	return se, ok
}
