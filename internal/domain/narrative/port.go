package narrative

import "context"

// Limits on a narrative request.
const (
	MaxPromptLength       = 50000
	MaxSystemPromptLength = 10000
	MinTokens             = 100
	MaxTokens             = 4000
)

// Request is the body accepted by the narrative proxy.
type Request struct {
	Prompt       string   `json:"prompt" validate:"required,max=50000"`
	SystemPrompt string   `json:"systemPrompt,omitempty" validate:"omitempty,max=10000"`
	Model        string   `json:"model,omitempty" validate:"omitempty,oneof=claude-sonnet-4-20250514 claude-opus-4-20250514 claude-3-5-haiku-20241022 gpt-4o gpt-4o-mini"`
	MaxTokens    int      `json:"max_tokens,omitempty" validate:"omitempty,min=100,max=4000"`
	Temperature  *float64 `json:"temperature,omitempty" validate:"omitempty,min=0,max=1"`
}

// ContentBlock mirrors a provider text block.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Response is the proxy reply.
type Response struct {
	Text    string         `json:"text"`
	Content []ContentBlock `json:"content"`
}

// Client produces narrative text for a prompt.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
