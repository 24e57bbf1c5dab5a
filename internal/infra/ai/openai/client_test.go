package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
)

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer srv.Close()

	c := NewClientWithBaseURL("k", "", srv.URL)
	out, err := c.Complete(context.Background(), narrative.Request{Prompt: "p", SystemPrompt: "s"})
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestComplete_Errors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   error
	}{
		"quota":  {http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, narrative.ErrQuotaExceeded},
		"server": {http.StatusInternalServerError, `{"error":{"message":"boom"}}`, narrative.ErrUnavailable},
		"empty":  {http.StatusOK, `{"choices":[]}`, narrative.ErrEmptyResponse},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewClientWithBaseURL("k", "gpt-4o", srv.URL).Complete(context.Background(), narrative.Request{Prompt: "p"})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
