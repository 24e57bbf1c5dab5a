package questionnaire

import "sort"

// Variant identifies which questionnaire a response set belongs to.
type Variant string

const (
	VariantChecklist Variant = "checklist"
	VariantFramework Variant = "framework"
)

// Valid reports whether v names a known questionnaire.
func (v Variant) Valid() bool {
	return v == VariantChecklist || v == VariantFramework
}

// ChecklistValue is an answer on the five-control checklist.
type ChecklistValue string

const (
	Pass    ChecklistValue = "pass"
	Partial ChecklistValue = "partial"
	Fail    ChecklistValue = "fail"
	Unsure  ChecklistValue = "unsure"
)

// FrameworkValue is an answer on the fourteen-section framework.
type FrameworkValue string

const (
	Achieved          FrameworkValue = "achieved"
	PartiallyAchieved FrameworkValue = "partial"
	NotAchieved       FrameworkValue = "not-achieved"
	NotApplicable     FrameworkValue = "na"
)

// Answer is the recorded response to a single question. Critical and Text are
// denormalized from the catalog when the answer is recorded.
type Answer struct {
	Value    string `json:"value"`
	Critical bool   `json:"critical,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ResponseSet holds every answer grouped by control (checklist) or section
// (framework), plus free-text field values.
type ResponseSet struct {
	Controls   map[string]map[string]Answer `json:"controls"`
	TextInputs map[string]string            `json:"textInputs"`
}

// NewResponseSet returns an empty, ready to use response set.
func NewResponseSet() ResponseSet {
	return ResponseSet{
		Controls:   map[string]map[string]Answer{},
		TextInputs: map[string]string{},
	}
}

// Set records an answer for questionID under group.
func (r *ResponseSet) Set(group, questionID string, a Answer) {
	if r.Controls == nil {
		r.Controls = map[string]map[string]Answer{}
	}
	if r.Controls[group] == nil {
		r.Controls[group] = map[string]Answer{}
	}
	r.Controls[group][questionID] = a
}

// Get looks up an answer by question id regardless of its group.
func (r ResponseSet) Get(questionID string) (Answer, bool) {
	for _, answers := range r.Controls {
		if a, ok := answers[questionID]; ok {
			return a, true
		}
	}
	return Answer{}, false
}

// Remove deletes the answer for questionID and reports whether one existed.
func (r *ResponseSet) Remove(questionID string) bool {
	removed := false
	for _, answers := range r.Controls {
		if _, ok := answers[questionID]; ok {
			delete(answers, questionID)
			removed = true
		}
	}
	return removed
}

// SetText stores a free-text field value.
func (r *ResponseSet) SetText(field, value string) {
	if r.TextInputs == nil {
		r.TextInputs = map[string]string{}
	}
	r.TextInputs[field] = value
}

// Text returns a free-text field value, empty when absent.
func (r ResponseSet) Text(field string) string {
	return r.TextInputs[field]
}

// Answered counts recorded answers across all groups.
func (r ResponseSet) Answered() int {
	n := 0
	for _, answers := range r.Controls {
		n += len(answers)
	}
	return n
}

// QuestionIDs returns every answered question id, sorted.
func (r ResponseSet) QuestionIDs() []string {
	var ids []string
	for _, answers := range r.Controls {
		for id := range answers {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy so callers can analyse a stable view.
func (r ResponseSet) Clone() ResponseSet {
	out := NewResponseSet()
	for group, answers := range r.Controls {
		m := make(map[string]Answer, len(answers))
		for id, a := range answers {
			m[id] = a
		}
		out.Controls[group] = m
	}
	for k, v := range r.TextInputs {
		out.TextInputs[k] = v
	}
	return out
}

// ScoreMap maps a control or section id to its score; nil means not attempted.
type ScoreMap map[string]*float64

// Score wraps v for use in a ScoreMap.
func Score(v float64) *float64 { return &v }
