package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/automaton-ready/internal/application"
	"github.com/bryanwahyu/automaton-ready/internal/application/analysis"
	"github.com/bryanwahyu/automaton-ready/internal/domain/branching"
	"github.com/bryanwahyu/automaton-ready/internal/domain/checklist"
	"github.com/bryanwahyu/automaton-ready/internal/domain/framework"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	domain "github.com/bryanwahyu/automaton-ready/internal/domain/session"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// Default debounce per variant.
const (
	ChecklistDebounce = 1000 * time.Millisecond
	FrameworkDebounce = 800 * time.Millisecond
	storeTimeout      = 5 * time.Second
)

// Service owns the in-memory sessions: responses, vendor list and the
// branching evaluator. Persistence is best effort.
type Service struct {
	Store     domain.SnapshotStore // optional
	Artifacts domain.ArtifactStore // optional
	Analyzer  *analysis.Orchestrator
	Clock     application.Clock
	Log       *slog.Logger
	// Debounce overrides the per-variant quiet period when positive.
	Debounce time.Duration
	NewID    func() string

	mu       sync.Mutex
	sessions map[domain.ID]*state
}

type state struct {
	mu        sync.Mutex
	id        domain.ID
	variant   questionnaire.Variant
	catalog   *questionnaire.Catalog
	eval      *branching.Evaluator
	responses questionnaire.ResponseSet
	vendors   *vendor.Registry
	progress  *domain.Progress
	saver     *Debouncer
}

// View is the externally visible state of a session.
type View struct {
	ID        domain.ID                 `json:"id"`
	Variant   questionnaire.Variant     `json:"variant"`
	Restored  bool                      `json:"restored"`
	Responses questionnaire.ResponseSet `json:"responses"`
	Vendors   []vendor.Vendor           `json:"vendors"`
	Progress  domain.Progress           `json:"progress"`
}

// AnswerResult reports the effect of recording an answer.
type AnswerResult struct {
	Cleared  []string        `json:"cleared"`
	Progress domain.Progress `json:"progress"`
}

// AnalyzeResult wraps an orchestrator outcome.
type AnalyzeResult struct {
	analysis.Outcome
	LowCompletion bool            `json:"lowCompletion"`
	Progress      domain.Progress `json:"progress"`
}

// VendorReport lists vendors with their risk and the aggregate summary.
type VendorReport struct {
	Vendors []vendor.Assessment `json:"vendors"`
	Summary vendor.Summary      `json:"summary"`
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

// Open returns session id, restoring its snapshot when one is stored. An empty
// id creates a new session.
func (s *Service) Open(ctx context.Context, variant questionnaire.Variant, id string) (View, error) {
	if variant == "" {
		variant = questionnaire.VariantChecklist
	}
	if !variant.Valid() {
		return View{}, fmt.Errorf("%w: unknown variant %q", domain.ErrInvalidInput, variant)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = map[domain.ID]*state{}
	}
	if id != "" {
		if st, ok := s.sessions[domain.ID(id)]; ok {
			if st.variant != variant {
				return View{}, fmt.Errorf("%w: session %s is a %s session", domain.ErrInvalidInput, id, st.variant)
			}
			return st.view(false), nil
		}
	} else {
		newID := s.NewID
		if newID == nil {
			newID = uuid.NewString
		}
		id = newID()
	}

	st := s.newState(variant, domain.ID(id))
	snap, restored := s.load(ctx, st)
	s.register(st, snap, restored)
	return st.view(restored), nil
}

// Lookup returns an existing session without creating one. A session not in
// memory is restored from its snapshot; an empty variant tries both.
func (s *Service) Lookup(ctx context.Context, variant questionnaire.Variant, id string) (View, error) {
	if variant != "" && !variant.Valid() {
		return View{}, fmt.Errorf("%w: unknown variant %q", domain.ErrInvalidInput, variant)
	}
	variants := []questionnaire.Variant{variant}
	if variant == "" {
		variants = []questionnaire.Variant{questionnaire.VariantChecklist, questionnaire.VariantFramework}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = map[domain.ID]*state{}
	}
	if st, ok := s.sessions[domain.ID(id)]; ok {
		if variant != "" && st.variant != variant {
			return View{}, fmt.Errorf("%w: session %s is a %s session", domain.ErrInvalidInput, id, st.variant)
		}
		return st.view(false), nil
	}
	for _, v := range variants {
		st := s.newState(v, domain.ID(id))
		if snap, ok := s.load(ctx, st); ok {
			s.register(st, snap, true)
			return st.view(true), nil
		}
	}
	return View{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

func (s *Service) newState(variant questionnaire.Variant, id domain.ID) *state {
	catalog, _ := questionnaire.For(variant)
	return &state{
		id:        id,
		variant:   variant,
		catalog:   catalog,
		eval:      branching.New(catalog),
		responses: questionnaire.NewResponseSet(),
		vendors:   vendor.NewRegistry(),
	}
}

// register applies a restored snapshot and starts autosave. Callers hold s.mu.
func (s *Service) register(st *state, snap domain.Snapshot, restored bool) {
	if restored {
		st.responses = snap.Responses
		st.vendors = vendor.Restore(snap.Vendors)
		st.eval.Apply(&st.responses)
	}
	delay := s.Debounce
	if delay <= 0 {
		delay = ChecklistDebounce
		if st.variant == questionnaire.VariantFramework {
			delay = FrameworkDebounce
		}
	}
	st.saver = NewDebouncer(delay, func() { s.save(st) })
	s.sessions[st.id] = st

	s.log().Info("session opened", "session_id", st.id, "variant", st.variant, "restored", restored)
}

// load reads a snapshot; missing, corrupt or foreign-version data is absent.
func (s *Service) load(ctx context.Context, st *state) (domain.Snapshot, bool) {
	if s.Store == nil {
		return domain.Snapshot{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	data, err := s.Store.Get(ctx, domain.Key(st.variant, st.id))
	if err != nil {
		if !errors.Is(err, domain.ErrSnapshotNotFound) {
			s.log().Warn("snapshot load failed", "session_id", st.id, "error", err)
		}
		return domain.Snapshot{}, false
	}
	snap, ok := domain.Decode(data)
	if !ok {
		s.log().Warn("snapshot discarded", "session_id", st.id, "reason", "corrupt or unknown version")
	}
	return snap, ok
}

func (s *Service) save(st *state) {
	if s.Store == nil {
		return
	}
	st.mu.Lock()
	snap := domain.Snapshot{
		Responses: st.responses.Clone(),
		Timestamp: s.now(),
		Vendors:   st.vendors.List(),
	}
	key := domain.Key(st.variant, st.id)
	st.mu.Unlock()

	data, err := domain.Encode(snap)
	if err != nil {
		s.log().Warn("snapshot encode failed", "session_id", st.id, "error", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := s.Store.Put(ctx, key, data); err != nil {
		s.log().Warn("snapshot save failed", "session_id", st.id, "error", err)
	}
}

func (s *Service) get(id string) (*state, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[domain.ID(id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return st, nil
}

// RecordAnswer stores value for questionID. An empty value removes the
// answer. Answers of questions that become hidden are cleared.
func (s *Service) RecordAnswer(_ context.Context, id, questionID, value, label string) (AnswerResult, error) {
	st, err := s.get(id)
	if err != nil {
		return AnswerResult{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	if value == "" {
		if _, ok := st.catalog.Question(questionID); !ok {
			return AnswerResult{}, fmt.Errorf("%w: unknown question %q", domain.ErrInvalidInput, questionID)
		}
		st.responses.Remove(questionID)
	} else {
		q, a, err := st.catalog.NewAnswer(questionID, value, label)
		if err != nil {
			return AnswerResult{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		if !st.eval.Visible(questionID, st.responses) {
			return AnswerResult{}, fmt.Errorf("%w: question %s is not currently shown", domain.ErrInvalidInput, questionID)
		}
		st.responses.Set(q.Group, q.ID, a)
	}
	cleared := st.eval.Apply(&st.responses)
	st.progress = nil
	st.saver.Trigger()

	if cleared == nil {
		cleared = []string{}
	}
	return AnswerResult{Cleared: cleared, Progress: st.progressLocked()}, nil
}

// SetText stores a free-text field.
func (s *Service) SetText(_ context.Context, id, field, value string) error {
	st, err := s.get(id)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	known := false
	for _, f := range st.catalog.Texts {
		if f.Key == field {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, field)
	}
	st.responses.SetText(field, value)
	st.saver.Trigger()
	return nil
}

// Progress returns answered/visible counts, cached until the next change.
func (s *Service) Progress(_ context.Context, id string) (domain.Progress, error) {
	st, err := s.get(id)
	if err != nil {
		return domain.Progress{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.progressLocked(), nil
}

// AddVendor creates a vendor in session id.
func (s *Service) AddVendor(_ context.Context, id, name string, level vendor.AccessLevel) (vendor.Vendor, error) {
	st, err := s.get(id)
	if err != nil {
		return vendor.Vendor{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if strings.TrimSpace(name) == "" {
		return vendor.Vendor{}, fmt.Errorf("%w: vendor name is required", domain.ErrInvalidInput)
	}
	v, err := st.vendors.Add(name, level)
	if err != nil {
		return vendor.Vendor{}, err
	}
	st.saver.Trigger()
	return v, nil
}

// AnswerVendor records a vendor question answer and returns the new risk.
func (s *Service) AnswerVendor(_ context.Context, id string, vid vendor.ID, qid, value string) (vendor.Assessment, error) {
	st, err := s.get(id)
	if err != nil {
		return vendor.Assessment{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	v, err := st.vendors.Answer(vid, qid, value)
	if err != nil {
		return vendor.Assessment{}, err
	}
	st.saver.Trigger()
	return vendor.Assessment{Vendor: v, Risk: vendor.CalculateRisk(v)}, nil
}

// RemoveVendor deletes a vendor.
func (s *Service) RemoveVendor(_ context.Context, id string, vid vendor.ID) error {
	st, err := s.get(id)
	if err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if err := st.vendors.Remove(vid); err != nil {
		return err
	}
	st.saver.Trigger()
	return nil
}

// Vendors lists vendors with their risk.
func (s *Service) Vendors(_ context.Context, id string) (VendorReport, error) {
	st, err := s.get(id)
	if err != nil {
		return VendorReport{}, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	list := st.vendors.List()
	return VendorReport{Vendors: vendor.Assess(list), Summary: vendor.Summarize(list)}, nil
}

// Analyze validates the session and runs the orchestrator on a stable copy
// of its state. Analysis is serialized per session.
func (s *Service) Analyze(ctx context.Context, id string) (AnalyzeResult, error) {
	st, err := s.get(id)
	if err != nil {
		return AnalyzeResult{}, err
	}
	st.mu.Lock()
	if err := domain.Ready(st.catalog, st.responses); err != nil {
		st.mu.Unlock()
		return AnalyzeResult{}, err
	}
	in := analysis.Input{
		SessionID: string(st.id),
		Variant:   st.variant,
		Responses: st.responses.Clone(),
		Vendors:   st.vendors.List(),
	}
	progress := st.progressLocked()
	st.mu.Unlock()

	analyzer := s.Analyzer
	if analyzer == nil {
		analyzer = analysis.New(nil, nil, 0, s.log(), nil)
	}
	out := analyzer.Analyze(ctx, in)
	s.log().Info("analysis complete", "session_id", st.id, "variant", st.variant, "mode", out.Mode)
	return AnalyzeResult{Outcome: out, LowCompletion: progress.Low(), Progress: progress}, nil
}

// Export builds the audit document and uploads it when an artifact store is
// configured. The returned location is empty without one or when the upload
// fails; the document is returned either way.
func (s *Service) Export(ctx context.Context, id string) (domain.Export, string, error) {
	st, err := s.get(id)
	if err != nil {
		return domain.Export{}, "", err
	}
	st.mu.Lock()
	responses := st.responses.Clone()
	vendors := st.vendors.List()
	variant := st.variant
	st.mu.Unlock()

	doc := domain.Export{ExportedAt: s.now(), Responses: responses}
	if variant == questionnaire.VariantFramework {
		doc.Scores = framework.BuildScores(responses)
	} else {
		doc.Scores = checklist.Analyze(responses, vendors).ScoreMap()
	}
	if s.Artifacts == nil {
		return doc, "", nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.Export{}, "", fmt.Errorf("encode export: %w", err)
	}
	key := fmt.Sprintf("exports/%s/%s/%s.json", variant, st.id, doc.ExportedAt.Format("20060102T150405Z"))
	loc, err := s.Artifacts.PutJSON(ctx, key, data)
	if err != nil {
		s.log().Warn("export upload failed", "session_id", st.id, "key", key, "error", err)
		return doc, "", nil
	}
	return doc, loc, nil
}

// Flush writes every pending snapshot now.
func (s *Service) Flush() {
	s.mu.Lock()
	list := make([]*state, 0, len(s.sessions))
	for _, st := range s.sessions {
		list = append(list, st)
	}
	s.mu.Unlock()
	for _, st := range list {
		st.saver.Flush()
	}
}

func (st *state) progressLocked() domain.Progress {
	if st.progress != nil {
		return *st.progress
	}
	visible := st.eval.VisibleQuestions(st.catalog, st.responses)
	answered := 0
	for _, qid := range visible {
		if _, ok := st.responses.Get(qid); ok {
			answered++
		}
	}
	p := domain.Progress{Answered: answered, Visible: len(visible)}
	if p.Visible > 0 {
		p.Percent = math.Round(float64(answered) / float64(p.Visible) * 100)
	}
	st.progress = &p
	return p
}

func (st *state) view(restored bool) View {
	st.mu.Lock()
	defer st.mu.Unlock()
	return View{
		ID:        st.id,
		Variant:   st.variant,
		Restored:  restored,
		Responses: st.responses.Clone(),
		Vendors:   st.vendors.List(),
		Progress:  st.progressLocked(),
	}
}
