package checklist

import (
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// Verdict is the checklist readiness outcome.
type Verdict string

const (
	VerdictPass      Verdict = "PASS"
	VerdictNeedsWork Verdict = "NEEDS_WORK"
	VerdictFail      Verdict = "FAIL"
)

// Issue is a critical failure with its remediation.
type Issue struct {
	Control string `json:"control" validate:"required"`
	Issue   string `json:"issue" validate:"required"`
	Impact  string `json:"impact"`
	Action  string `json:"action"`
}

// Warning is a non-fatal finding.
type Warning struct {
	Control        string `json:"control" validate:"required"`
	Warning        string `json:"warning" validate:"required"`
	Recommendation string `json:"recommendation"`
}

// Result is the checklist analysis. Remote narrative results decode into the
// same type, so the validate tags describe the accepted remote shape.
type Result struct {
	OverallStatus       Verdict            `json:"overallStatus" validate:"required,oneof=PASS FAIL NEEDS_WORK"`
	ReadinessScore      float64            `json:"readinessScore" validate:"gte=0,lte=100"`
	CriticalIssuesCount int                `json:"criticalIssuesCount" validate:"gte=0"`
	ControlScores       map[string]float64 `json:"controlScores" validate:"required,dive,gte=0,lte=100"`
	CriticalIssues      []Issue            `json:"criticalIssues" validate:"dive"`
	Warnings            []Warning          `json:"warnings" validate:"dive"`
	Strengths           []string           `json:"strengths"`
	NextSteps           []string           `json:"nextSteps"`
	Summary             string             `json:"summary" validate:"required"`
	Timeline            string             `json:"timeline"`
	Vendors             *vendor.Summary    `json:"vendors,omitempty"`
}

// ScoreMap converts the control scores for export.
func (r Result) ScoreMap() questionnaire.ScoreMap {
	out := questionnaire.ScoreMap{}
	for _, c := range questionnaire.ScoredControls {
		if v, ok := r.ControlScores[c]; ok {
			out[c] = questionnaire.Score(v)
		} else {
			out[c] = nil
		}
	}
	return out
}
