package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-ready/internal/application"
	"github.com/bryanwahyu/automaton-ready/internal/domain/analyst"
	"github.com/bryanwahyu/automaton-ready/internal/domain/checklist"
	"github.com/bryanwahyu/automaton-ready/internal/domain/framework"
	"github.com/bryanwahyu/automaton-ready/internal/domain/narrative"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
	"github.com/bryanwahyu/automaton-ready/internal/infra/ai/prompt"
)

// State is the orchestrator lifecycle.
type State int

const (
	Idle State = iota
	Requesting
	Displaying
)

func (s State) String() string {
	switch s {
	case Requesting:
		return "requesting"
	case Displaying:
		return "displaying"
	default:
		return "idle"
	}
}

// Fallback reasons, used as metric labels.
const (
	ReasonDisabled    = "disabled"
	ReasonUnavailable = "unavailable"
	ReasonTimeout     = "timeout"
	ReasonNoJSON      = "no_json"
	ReasonBadJSON     = "bad_json"
	ReasonInvalid     = "invalid_shape"
)

const defaultTimeout = 30 * time.Second

// Input is one analysis request.
type Input struct {
	SessionID string
	Variant   questionnaire.Variant
	Responses questionnaire.ResponseSet
	Vendors   []vendor.Vendor
}

// Outcome is the displayed result and which producer made it.
type Outcome struct {
	Mode    analyst.Mode          `json:"mode"`
	Reason  string                `json:"reason,omitempty"`
	Variant questionnaire.Variant `json:"variant"`
	Result  any                   `json:"result"`
}

// Checklist returns the checklist result, nil for the other variant.
func (o Outcome) Checklist() *checklist.Result {
	r, _ := o.Result.(*checklist.Result)
	return r
}

// Framework returns the framework result, nil for the other variant.
func (o Outcome) Framework() *framework.Result {
	r, _ := o.Result.(*framework.Result)
	return r
}

// Orchestrator asks the narrative service once and falls back to the local
// scorers on any failure. Analyze never returns an error.
type Orchestrator struct {
	Client   narrative.Client   // nil disables the remote path
	Records  analyst.Repository // optional audit trail
	Timeout  time.Duration
	Request  narrative.Request // model, max_tokens and temperature defaults
	Clock    application.Clock
	Log      *slog.Logger
	Metrics  *Metrics
	validate *validator.Validate

	mu    sync.Mutex
	state State
}

// New returns an orchestrator with defaults filled in.
func New(client narrative.Client, records analyst.Repository, timeout time.Duration, log *slog.Logger, m *Metrics) *Orchestrator {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		Client:   client,
		Records:  records,
		Timeout:  timeout,
		Clock:    application.SystemClock{},
		Log:      log,
		Metrics:  m,
		validate: validator.New(),
	}
}

// State reports the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Analyze runs one analysis. Calls are expected to be serialized per session.
func (o *Orchestrator) Analyze(ctx context.Context, in Input) Outcome {
	o.setState(Requesting)
	defer o.setState(Displaying)

	if in.Variant != questionnaire.VariantFramework {
		in.Variant = questionnaire.VariantChecklist
	}
	out, reason, err := o.remote(ctx, in)
	if err != nil {
		o.Log.Warn("narrative analysis failed, using local analysis",
			"session_id", in.SessionID, "variant", in.Variant, "reason", reason, "error", err)
		out = o.local(in)
		out.Reason = reason
		if o.Metrics != nil {
			o.Metrics.Fallbacks.WithLabelValues(reason).Inc()
		}
	}
	if o.Metrics != nil {
		o.Metrics.Runs.WithLabelValues(string(in.Variant), string(out.Mode)).Inc()
	}
	o.record(ctx, in, out)
	return out
}

func (o *Orchestrator) local(in Input) Outcome {
	out := Outcome{Mode: analyst.ModeLocal, Variant: in.Variant}
	if in.Variant == questionnaire.VariantFramework {
		res := framework.BuildFallbackResult(framework.BuildScores(in.Responses))
		out.Result = &res
		return out
	}
	res := checklist.Analyze(in.Responses, in.Vendors)
	out.Result = &res
	return out
}

// complete calls the client; a panic in the client becomes ErrUnavailable.
func (o *Orchestrator) complete(ctx context.Context, req narrative.Request) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: client panic: %v", narrative.ErrUnavailable, r)
		}
	}()
	return o.Client.Complete(ctx, req)
}

func (o *Orchestrator) remote(ctx context.Context, in Input) (Outcome, string, error) {
	if o.Client == nil {
		return Outcome{}, ReasonDisabled, errors.New("narrative client not configured")
	}

	var p prompt.Prompt
	var scores questionnaire.ScoreMap
	if in.Variant == questionnaire.VariantFramework {
		scores = framework.BuildScores(in.Responses)
		p = prompt.Framework(in.Responses, scores, in.Vendors)
	} else {
		p = prompt.Checklist(in.Responses, in.Vendors)
	}
	req := o.Request
	req.Prompt = p.User
	req.SystemPrompt = p.System
	if err := o.validator().Struct(req); err != nil {
		return Outcome{}, ReasonInvalid, fmt.Errorf("request rejected: %w", err)
	}

	cctx, cancel := context.WithTimeout(ctx, o.Timeout)
	defer cancel()
	start := time.Now()
	text, err := o.complete(cctx, req)
	if o.Metrics != nil {
		o.Metrics.Latency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(cctx.Err(), context.DeadlineExceeded) {
			return Outcome{}, ReasonTimeout, err
		}
		return Outcome{}, ReasonUnavailable, err
	}

	obj, ok := FirstObject(text)
	if !ok {
		return Outcome{}, ReasonNoJSON, errors.New("no JSON object in narrative text")
	}

	out := Outcome{Mode: analyst.ModeRemote, Variant: in.Variant}
	if in.Variant == questionnaire.VariantFramework {
		var res framework.Result
		if err := json.Unmarshal([]byte(obj), &res); err != nil {
			return Outcome{}, ReasonBadJSON, err
		}
		if err := o.validator().Struct(res); err != nil {
			return Outcome{}, ReasonInvalid, err
		}
		res.Scores = scores
		if res.OverallScore == 0 {
			res.OverallScore = framework.Overall(scores)
		}
		if res.ObjectiveRatings == nil {
			res.ObjectiveRatings = framework.ObjectiveRatings(scores)
		}
		out.Result = &res
		return out, "", nil
	}

	var res checklist.Result
	if err := json.Unmarshal([]byte(obj), &res); err != nil {
		return Outcome{}, ReasonBadJSON, err
	}
	if err := o.validator().Struct(res); err != nil {
		return Outcome{}, ReasonInvalid, err
	}
	if len(in.Vendors) > 0 {
		s := vendor.Summarize(in.Vendors)
		res.Vendors = &s
	}
	out.Result = &res
	return out, "", nil
}

func (o *Orchestrator) validator() *validator.Validate {
	if o.validate == nil {
		o.validate = validator.New()
	}
	return o.validate
}

// record saves the outcome; failures are logged only.
func (o *Orchestrator) record(ctx context.Context, in Input, out Outcome) {
	if o.Records == nil {
		return
	}
	body, err := json.Marshal(out.Result)
	if err != nil {
		o.Log.Warn("encode analysis record", "session_id", in.SessionID, "error", err)
		return
	}
	a := &analyst.Analysis{
		ID:        analyst.AnalysisID(uuid.NewString()),
		SessionID: in.SessionID,
		Variant:   string(in.Variant),
		Mode:      out.Mode,
		Reason:    out.Reason,
		Result:    string(body),
		CreatedAt: o.now(),
	}
	switch r := out.Result.(type) {
	case *checklist.Result:
		a.Verdict, a.Score = string(r.OverallStatus), r.ReadinessScore
	case *framework.Result:
		a.Verdict, a.Score = string(r.OverallRating), r.OverallScore
	}
	if err := o.Records.Save(ctx, a); err != nil {
		o.Log.Warn("save analysis record", "session_id", in.SessionID, "error", err)
	}
}

func (o *Orchestrator) now() time.Time {
	if o.Clock == nil {
		return time.Now().UTC()
	}
	return o.Clock.Now()
}
