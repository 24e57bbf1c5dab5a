package proxy

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

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req narrative.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "prompt", req.Prompt)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
		want   string
		err    error
	}{
		"content block": {200, `{"text":"ignored","content":[{"type":"text","text":"from content"}]}`, "from content", nil},
		"text only":     {200, `{"text":"plain"}`, "plain", nil},
		"error body":    {200, `{"error":{"message":"bad"}}`, "", narrative.ErrUnavailable},
		"odd shape":     {200, `{"foo":1}`, "", narrative.ErrUnavailable},
		"not json":      {200, `<html>`, "", narrative.ErrUnavailable},
		"no text":       {200, `{"content":[]}`, "", narrative.ErrEmptyResponse},
		"upstream 500":  {500, `{"error":"x"}`, "", narrative.ErrUnavailable},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, tc.status, tc.body)
			got, err := NewClient(srv.URL, time.Second).Complete(context.Background(), narrative.Request{Prompt: "prompt"})
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 20*time.Millisecond).Complete(context.Background(), narrative.Request{Prompt: "p"})
	assert.ErrorIs(t, err, narrative.ErrUnavailable)
}
