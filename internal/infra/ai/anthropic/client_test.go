package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
)

func TestMessages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)
		assert.Equal(t, 4000, body.MaxTokens)
		assert.Equal(t, "sys", body.System)
		assert.Equal(t, "hello", body.Messages[0].Content)

		_, _ = w.Write([]byte(`{"content":[{"type":"thinking","text":""},{"type":"text","text":"{\"a\":1}"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", "", time.Second, nil).WithBaseURL(srv.URL)
	res, err := c.Messages(context.Background(), narrative.Request{Prompt: "hello", SystemPrompt: "sys"})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, res.Text)
	assert.Len(t, res.Content, 2)
}

func TestMessages_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer srv.Close()

	_, err := NewClient("secret", "", time.Second, nil).WithBaseURL(srv.URL).
		Messages(context.Background(), narrative.Request{Prompt: "x"})
	se, ok := IsStatus(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, se.Status)
	assert.Equal(t, "rate limited", se.Body)
	assert.ErrorIs(t, err, narrative.ErrQuotaExceeded)
}

func TestComplete_NoKey(t *testing.T) {
	_, err := NewClient("", "", time.Second, nil).Complete(context.Background(), narrative.Request{Prompt: "x"})
	assert.ErrorIs(t, err, narrative.ErrUnavailable)
}

func TestComplete_EmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", "", time.Second, nil).WithBaseURL(srv.URL).
		Complete(context.Background(), narrative.Request{Prompt: "x"})
	assert.ErrorIs(t, err, narrative.ErrEmptyResponse)
}
