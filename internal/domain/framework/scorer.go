package framework

import (
	"fmt"
	"sort"

	"github.com/bryanwahyu/automaton-ready/internal/domain/branching"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/rating"
)

// points maps an answer to its score; na is absent and therefore excluded.
var points = map[questionnaire.FrameworkValue]float64{
	questionnaire.Achieved:          100,
	questionnaire.PartiallyAchieved: 50,
	questionnaire.NotAchieved:       0,
}

// Thresholds for the fallback narrative.
const (
	GapBelow       = 50.0
	StrengthFrom   = 75.0
	maxGaps        = 5
	maxStrengths   = 3
	maxActions     = 3
	regulatoryNote = "Review NIS Regulations compliance obligations relevant to your sector."
)

// BuildScores returns the rounded mean score per section. A section with no
// scorable answers is nil. Answers to hidden questions are ignored.
func BuildScores(responses questionnaire.ResponseSet) questionnaire.ScoreMap {
	visible := responses.Clone()
	branching.New(questionnaire.Framework()).Apply(&visible)

	out := questionnaire.ScoreMap{}
	for _, section := range questionnaire.SectionIDs {
		var vals []float64
		for _, a := range visible.Controls[section] {
			if p, ok := points[questionnaire.FrameworkValue(a.Value)]; ok {
				vals = append(vals, p)
			}
		}
		if avg, ok := rating.Mean(vals); ok {
			out[section] = questionnaire.Score(rating.Round(avg))
		} else {
			out[section] = nil
		}
	}
	return out
}

// Overall is the rounded mean of the non-nil section scores, 0 when none.
func Overall(scores questionnaire.ScoreMap) float64 {
	avg, ok := rating.Mean(present(scores, questionnaire.SectionIDs))
	if !ok {
		return 0
	}
	return rating.Round(avg)
}

// ObjectiveScores rolls section scores up into objectives; nil when no
// member section has data.
func ObjectiveScores(scores questionnaire.ScoreMap) map[string]*float64 {
	out := map[string]*float64{}
	for _, obj := range questionnaire.Objectives {
		if avg, ok := rating.Mean(present(scores, obj.Sections)); ok {
			out[obj.ID] = questionnaire.Score(rating.Round(avg))
		} else {
			out[obj.ID] = nil
		}
	}
	return out
}

// ObjectiveRatings maps each objective to its rating.
func ObjectiveRatings(scores questionnaire.ScoreMap) map[string]Rating {
	out := map[string]Rating{}
	for id, s := range ObjectiveScores(scores) {
		if s == nil {
			out[id] = NotAttempted
			continue
		}
		out[id] = RatingFor(*s)
	}
	return out
}

// BuildFallbackResult derives a deterministic narrative from scores alone.
func BuildFallbackResult(scores questionnaire.ScoreMap) Result {
	overall := Overall(scores)
	gaps := sectionsWhere(scores, func(v float64) bool { return v < GapBelow })
	sort.SliceStable(gaps, func(i, j int) bool { return *scores[gaps[i]] < *scores[gaps[j]] })
	highs := sectionsWhere(scores, func(v float64) bool { return v >= StrengthFrom })
	sort.SliceStable(highs, func(i, j int) bool { return *scores[highs[i]] > *scores[highs[j]] })

	res := Result{
		OverallRating: RatingFor(overall),
		OverallScore:  overall,
		Summary: fmt.Sprintf("Local analysis (API unavailable). Overall score: %.0f%%. %d section(s) below 50%%. This is an indicative score only.",
			overall, len(gaps)),
		CriticalGaps:     []string{},
		Strengths:        []string{},
		PriorityActions:  []PriorityAction{},
		ObjectiveRatings: ObjectiveRatings(scores),
		RegulatoryNote:   regulatoryNote,
		Scores:           scores,
	}
	for i, id := range gaps {
		if i < maxGaps {
			res.CriticalGaps = append(res.CriticalGaps, fmt.Sprintf("%s requires attention (score: %.0f%%)", id, *scores[id]))
		}
		if i < maxActions {
			res.PriorityActions = append(res.PriorityActions, PriorityAction{
				Action:    fmt.Sprintf("Improve %s controls", id),
				Principle: id,
				Effort:    "Medium",
				Impact:    "High",
			})
		}
	}
	for i, id := range highs {
		if i == maxStrengths {
			break
		}
		res.Strengths = append(res.Strengths, fmt.Sprintf("%s performing well (%.0f%%)", id, *scores[id]))
	}
	return res
}

// LowSections lists sections scoring below 50 in catalog order.
func LowSections(scores questionnaire.ScoreMap) []string {
	return sectionsWhere(scores, func(v float64) bool { return v < GapBelow })
}

func sectionsWhere(scores questionnaire.ScoreMap, keep func(float64) bool) []string {
	var out []string
	for _, id := range questionnaire.SectionIDs {
		if s := scores[id]; s != nil && keep(*s) {
			out = append(out, id)
		}
	}
	return out
}

func present(scores questionnaire.ScoreMap, ids []string) []float64 {
	var vals []float64
	for _, id := range ids {
		if s := scores[id]; s != nil {
			vals = append(vals, *s)
		}
	}
	return vals
}
