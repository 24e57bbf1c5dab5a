package framework

import (
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/rating"
)

// Rating is the framework outcome scale.
type Rating string

const (
	Achieved          Rating = "Achieved"
	PartiallyAchieved Rating = "Partially Achieved"
	NotAchieved       Rating = "Not Achieved"
	NotAttempted      Rating = "Not Attempted"
)

// RatingFor applies the shared thresholds to score.
func RatingFor(score float64) Rating {
	switch rating.Of(score) {
	case rating.Top:
		return Achieved
	case rating.Mid:
		return PartiallyAchieved
	default:
		return NotAchieved
	}
}

// PriorityAction is a single remediation item tied to a section.
type PriorityAction struct {
	Action    string `json:"action" validate:"required"`
	Principle string `json:"principle"`
	Effort    string `json:"effort" validate:"omitempty,oneof=Low Medium High"`
	Impact    string `json:"impact" validate:"omitempty,oneof=Low Medium High"`
}

// Result is the framework analysis, shared by local and remote producers.
type Result struct {
	OverallRating    Rating                 `json:"overallRating" validate:"required,oneof='Achieved' 'Partially Achieved' 'Not Achieved'"`
	OverallScore     float64                `json:"overallScore" validate:"gte=0,lte=100"`
	Summary          string                 `json:"summary" validate:"required"`
	CriticalGaps     []string               `json:"criticalGaps" validate:"max=5"`
	Strengths        []string               `json:"strengths"`
	PriorityActions  []PriorityAction       `json:"priorityActions" validate:"dive"`
	ObjectiveRatings map[string]Rating      `json:"objectiveRatings"`
	RegulatoryNote   string                 `json:"regulatoryNote"`
	Scores           questionnaire.ScoreMap `json:"scores,omitempty"`
}
