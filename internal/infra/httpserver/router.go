package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"

	appsession "github.com/bryanwahyu/automaton-ready/internal/application/session"
	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/session"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
	"github.com/bryanwahyu/automaton-ready/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Upstream is the provider behind POST /api/analyze.
type Upstream interface {
	Configured() bool
	Messages(ctx context.Context, r narrative.Request) (narrative.Response, error)
}

// Deps wires the router. Only Sessions is required.
type Deps struct {
	Sessions    *appsession.Service
	Records     analyst.Repository
	Upstream    Upstream
	Health      []middleware.Check
	Ready       *middleware.Readiness
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	Limiter     *middleware.RateLimiter
	Log         *slog.Logger
	CORSOrigins []string
}

type Router struct {
	sessions *appsession.Service
	records  analyst.Repository
	upstream Upstream
	log      *slog.Logger
	validate *validator.Validate
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	r := &Router{
		sessions: d.Sessions,
		records:  d.Records,
		upstream: d.Upstream,
		log:      log,
		validate: validator.New(),
	}

	mux := chi.NewRouter()
	mux.Use(middleware.Logging(log))
	if d.Metrics != nil {
		mux.Use(d.Metrics.Middleware)
	}
	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))
	if d.Limiter != nil {
		mux.Use(d.Limiter.Middleware)
	}

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(d.Health))
	mux.Method(http.MethodGet, "/readyz", d.Ready)
	if d.Gatherer != nil {
		mux.Handle("/metrics", middleware.MetricsHandler(d.Gatherer))
	}

	mux.HandleFunc("/api/analyze", r.handleProxy)

	mux.Route("/v1/sessions", func(rt chi.Router) {
		rt.Post("/", r.wrap(r.handleOpen))
		rt.Route("/{id}", func(rt chi.Router) {
			rt.Get("/", r.wrap(r.handleGet))
			rt.Put("/answers/{questionId}", r.wrap(r.handleAnswer))
			rt.Put("/texts/{field}", r.wrap(r.handleText))
			rt.Get("/progress", r.wrap(r.handleProgress))
			rt.Get("/vendors", r.wrap(r.handleVendors))
			rt.Post("/vendors", r.wrap(r.handleAddVendor))
			rt.Put("/vendors/{vid}/answers/{qid}", r.wrap(r.handleVendorAnswer))
			rt.Delete("/vendors/{vid}", r.wrap(r.handleRemoveVendor))
			rt.Post("/analyze", r.wrap(r.handleAnalyze))
			rt.Get("/analyses", r.wrap(r.handleAnalyses))
			rt.Get("/export", r.wrap(r.handleExport))
		})
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			r.log.Error("request failed", "path", req.URL.Path, "error", err)
			msg = "internal error"
		}
		writeJSON(w, status, map[string]string{"error": msg})
	}
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, vendor.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidInput),
		errors.Is(err, vendor.ErrInvalidAccessLevel),
		errors.Is(err, vendor.ErrUnknownQuestion),
		errors.Is(err, vendor.ErrInvalidValue),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoAnswers), errors.Is(err, session.ErrIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, narrative.ErrQuotaExceeded):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decode(w http.ResponseWriter, req *http.Request, v any) error {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", session.ErrInvalidInput, err)
	}
	return nil
}

func sessionID(req *http.Request) (string, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		return "", fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return id, nil
}

func pathID(req *http.Request, name string) (string, error) {
	v := chi.URLParam(req, name)
	if err := middleware.ValidateQuestionID(v); err != nil {
		return "", fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
	}
	return v, nil
}

// POST /v1/sessions
// Body: {"variant": "checklist|framework", "id": "<optional existing id>"}
func (r *Router) handleOpen(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Variant string `json:"variant" validate:"omitempty,oneof=checklist framework"`
		ID      string `json:"id"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validate.Struct(body); err != nil {
		return err
	}
	if body.ID != "" {
		if err := middleware.ValidateSessionID(body.ID); err != nil {
			return fmt.Errorf("%w: %v", session.ErrInvalidInput, err)
		}
	}
	view, err := r.sessions.Open(req.Context(), questionnaire.Variant(body.Variant), body.ID)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, view)
	return nil
}

// GET /v1/sessions/{id}?variant=
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	view, err := r.sessions.Lookup(req.Context(), questionnaire.Variant(req.URL.Query().Get("variant")), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, view)
	return nil
}

// PUT /v1/sessions/{id}/answers/{questionId}
// Body: {"value": "pass", "label": "optional display text"}; empty value clears.
func (r *Router) handleAnswer(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	qid, err := pathID(req, "questionId")
	if err != nil {
		return err
	}
	var body struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	res, err := r.sessions.RecordAnswer(req.Context(), id, qid, body.Value, middleware.SanitizeString(body.Label))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// PUT /v1/sessions/{id}/texts/{field}
func (r *Router) handleText(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	field, err := pathID(req, "field")
	if err != nil {
		return err
	}
	var body struct {
		Value string `json:"value" validate:"max=5000"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validate.Struct(body); err != nil {
		return err
	}
	if err := r.sessions.SetText(req.Context(), id, field, middleware.SanitizeString(body.Value)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// GET /v1/sessions/{id}/progress
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	p, err := r.sessions.Progress(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, p)
	return nil
}

// GET /v1/sessions/{id}/vendors
func (r *Router) handleVendors(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	rep, err := r.sessions.Vendors(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rep)
	return nil
}

// POST /v1/sessions/{id}/vendors
// Body: {"name": "Acme", "accessLevel": "network"}
func (r *Router) handleAddVendor(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	var body struct {
		Name        string `json:"name" validate:"required,max=200"`
		AccessLevel string `json:"accessLevel" validate:"required"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	if err := r.validate.Struct(body); err != nil {
		return err
	}
	v, err := r.sessions.AddVendor(req.Context(), id, middleware.SanitizeString(body.Name), vendor.AccessLevel(body.AccessLevel))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, v)
	return nil
}

// PUT /v1/sessions/{id}/vendors/{vid}/answers/{qid}
// Body: {"value": "partial"}
func (r *Router) handleVendorAnswer(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	qid, err := pathID(req, "qid")
	if err != nil {
		return err
	}
	var body struct {
		Value string `json:"value"`
	}
	if err := decode(w, req, &body); err != nil {
		return err
	}
	a, err := r.sessions.AnswerVendor(req.Context(), id, vendor.ID(chi.URLParam(req, "vid")), qid, body.Value)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, a)
	return nil
}

// DELETE /v1/sessions/{id}/vendors/{vid}
func (r *Router) handleRemoveVendor(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	if err := r.sessions.RemoveVendor(req.Context(), id, vendor.ID(chi.URLParam(req, "vid"))); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /v1/sessions/{id}/analyze
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	res, err := r.sessions.Analyze(req.Context(), id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, res)
	return nil
}

// GET /v1/sessions/{id}/analyses?page=&page_size=
func (r *Router) handleAnalyses(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))

	list := []*analyst.Analysis{}
	if r.records != nil {
		got, err := r.records.Paginate(req.Context(), id, middleware.ValidatePage(page), middleware.ValidateLimit(size))
		if err != nil {
			return err
		}
		if got != nil {
			list = got
		}
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

// GET /v1/sessions/{id}/export
// The upload location, when any, is returned in Content-Location.
func (r *Router) handleExport(w http.ResponseWriter, req *http.Request) error {
	id, err := sessionID(req)
	if err != nil {
		return err
	}
	doc, loc, err := r.sessions.Export(req.Context(), id)
	if err != nil {
		return err
	}
	if loc != "" {
		w.Header().Set("Content-Location", loc)
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="readiness-%s.json"`, id))
	writeJSON(w, http.StatusOK, doc)
	return nil
}
