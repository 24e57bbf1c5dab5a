package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
	"github.com/bryanwahyu/automaton-ready/internal/infra/ai/anthropic"
)

type proxyError struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// POST /api/analyze
// Body: {"prompt", "systemPrompt", "model", "max_tokens", "temperature"}
// Forwards to the upstream provider with the server-side key.
func (r *Router) handleProxy(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, proxyError{Error: "Method not allowed. Use POST."})
		return
	}
	if r.upstream == nil || !r.upstream.Configured() {
		writeJSON(w, http.StatusInternalServerError, proxyError{Error: "ANTHROPIC_API_KEY is not configured on the server."})
		return
	}

	var body narrative.Request
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, proxyError{Error: "Invalid JSON body.", Details: err.Error()})
		return
	}
	if strings.TrimSpace(body.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, proxyError{Error: `Missing or invalid "prompt" in request body.`})
		return
	}
	if len([]rune(body.Prompt)) > narrative.MaxPromptLength {
		writeJSON(w, http.StatusBadRequest, proxyError{Error: "Prompt too long."})
		return
	}
	if err := r.validate.Struct(body); err != nil {
		writeJSON(w, http.StatusBadRequest, proxyError{Error: "Invalid request.", Details: fieldErrors(err)})
		return
	}

	res, err := r.upstream.Messages(req.Context(), body)
	if err != nil {
		if se, ok := anthropic.IsStatus(err); ok {
			r.log.Warn("upstream rejected narrative request", "status", se.Status)
			writeJSON(w, se.Status, proxyError{Error: se.Error(), Details: se.Body})
			return
		}
		r.log.Warn("upstream unreachable", "error", err)
		writeJSON(w, http.StatusBadGateway, proxyError{Error: "Failed to reach Anthropic API", Details: err.Error()})
		return
	}
	if res.Content == nil {
		res.Content = []narrative.ContentBlock{}
	}
	writeJSON(w, http.StatusOK, res)
}

func fieldErrors(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fe.Field()+" failed "+fe.Tag())
	}
	return strings.Join(parts, "; ")
}
