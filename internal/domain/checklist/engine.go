package checklist

import (
	"fmt"
	"sort"

	"github.com/bryanwahyu/automaton-ready/internal/domain/branching"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/rating"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// ControlVendors groups vendor findings in the warning list.
const ControlVendors = "vendors"

// Analyze scores a checklist response set. It is a pure function of its
// inputs: answers to hidden questions are ignored and all iteration follows
// catalog order.
func Analyze(responses questionnaire.ResponseSet, vendors []vendor.Vendor) Result {
	catalog := questionnaire.Checklist()
	visible := responses.Clone()
	branching.New(catalog).Apply(&visible)

	res := Result{
		ControlScores:  map[string]float64{},
		CriticalIssues: []Issue{},
		Warnings:       []Warning{},
		Strengths:      []string{},
	}
	for _, c := range questionnaire.ScoredControls {
		res.ControlScores[c] = 100
	}

	for _, group := range groupOrder(catalog, visible) {
		failed, critical := 0, 0
		for _, qid := range questionOrder(catalog, group, visible.Controls[group]) {
			a := visible.Controls[group][qid]
			if _, ok := extras[qid]; ok {
				continue
			}
			value := questionnaire.ChecklistValue(a.Value)
			label := labelFor(catalog, qid, a)
			isCritical := a.Critical
			if q, ok := catalog.Question(qid); ok {
				isCritical = q.Critical
			}
			switch {
			case isCritical:
				critical++
				if value == questionnaire.Fail || value == questionnaire.Unsure {
					failed++
					r := RemediationFor(qid)
					res.CriticalIssues = append(res.CriticalIssues, Issue{
						Control: group,
						Issue:   label,
						Impact:  r.Impact,
						Action:  r.Action,
					})
				} else if value == questionnaire.Pass && StrengthQuestions[qid] {
					res.Strengths = append(res.Strengths, label)
				}
			case value == questionnaire.Fail:
				res.Warnings = append(res.Warnings, Warning{
					Control:        group,
					Warning:        label,
					Recommendation: warningRecommendation,
				})
			}
		}
		if _, scored := res.ControlScores[group]; scored && critical > 0 {
			res.ControlScores[group] = rating.Clamp(100-float64(failed)/float64(critical)*100, 0, 100)
		}
	}

	if text := visible.Text(questionnaire.TextOutdatedSoftware); MatchesEndOfLife(text) {
		res.CriticalIssues = append(res.CriticalIssues, Issue{
			Control: questionnaire.ControlUpdates,
			Issue:   "Outdated software identified: " + text,
			Impact:  outdatedIssue.Impact,
			Action:  outdatedIssue.Action,
		})
	}

	for _, qid := range []string{questionnaire.QuestionBackup, questionnaire.QuestionIncident} {
		a, ok := visible.Get(qid)
		if !ok {
			continue
		}
		f := extras[qid]
		switch questionnaire.ChecklistValue(a.Value) {
		case questionnaire.Fail:
			res.Warnings = append(res.Warnings, Warning{
				Control:        questionnaire.ControlScope,
				Warning:        f.Warning,
				Recommendation: f.Recommendation,
			})
		case questionnaire.Pass:
			res.Strengths = append(res.Strengths, f.Strength)
		}
	}

	if len(vendors) > 0 {
		for _, a := range vendor.Assess(vendors) {
			if a.Risk.Level != vendor.LevelHigh {
				continue
			}
			res.Warnings = append(res.Warnings, Warning{
				Control: ControlVendors,
				Warning: fmt.Sprintf("Vendor %s is high risk (score %.0f%%, %s access)",
					a.Vendor.Name, a.Risk.Score, a.Vendor.AccessLevel),
				Recommendation: "Review this supplier's security controls and limit its access until gaps are closed",
			})
		}
		summary := vendor.Summarize(vendors)
		res.Vendors = &summary
	}

	scores := make([]float64, 0, len(questionnaire.ScoredControls))
	for _, c := range questionnaire.ScoredControls {
		scores = append(scores, res.ControlScores[c])
	}
	avg, _ := rating.Mean(scores)
	res.ReadinessScore = rating.Round(avg)
	res.CriticalIssuesCount = len(res.CriticalIssues)

	switch {
	case len(res.CriticalIssues) > 0:
		res.OverallStatus = VerdictFail
	case len(res.Warnings) > 0:
		res.OverallStatus = VerdictNeedsWork
	default:
		res.OverallStatus = VerdictPass
	}

	if len(res.Strengths) == 0 {
		res.Strengths = append(res.Strengths, encouragement)
	}
	res.NextSteps = NextSteps(len(res.CriticalIssues), len(res.Warnings))
	res.Summary = Summary(res.OverallStatus, len(res.CriticalIssues))
	res.Timeline = Timeline(len(res.CriticalIssues), len(res.Warnings))
	return res
}

// NextSteps returns the ordered remediation steps.
func NextSteps(critical, warnings int) []string {
	var steps []string
	if critical > 0 {
		steps = append(steps,
			"Address all critical issues immediately - these will prevent certification",
			"Focus on the 5 technical controls in priority order",
		)
	}
	if warnings > 0 {
		steps = append(steps, "Review and resolve warning items to strengthen security")
	}
	return append(steps,
		"Document all security measures and policies",
		"Contact a Cyber Essentials Certification Body to schedule assessment",
	)
}

// Summary returns the templated verdict sentence.
func Summary(v Verdict, critical int) string {
	switch v {
	case VerdictPass:
		return "Excellent work! Your organization appears ready for Cyber Essentials certification. You've implemented the core controls effectively and should contact a Certification Body to begin the formal assessment process."
	case VerdictNeedsWork:
		return "You're on the right track but have some areas to improve. While you've avoided critical failures, addressing the warning items will strengthen your security posture and improve your chances of passing certification."
	}
	plural := ""
	if critical > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Your organization has %d critical issue%s that must be resolved before certification. Focus on implementing the mandatory controls first, then address the remaining gaps. With focused effort, you can achieve certification readiness.", critical, plural)
}

// Timeline estimates time to readiness from the finding counts.
func Timeline(critical, warnings int) string {
	switch {
	case critical == 0 && warnings == 0:
		return "Ready now - contact a Certification Body"
	case critical == 0:
		return "1-2 weeks to address warnings"
	case critical <= 3:
		return "2-4 weeks with focused effort"
	case critical <= 7:
		return "1-2 months with dedicated resources"
	default:
		return "2-3 months - significant work needed"
	}
}

func labelFor(catalog *questionnaire.Catalog, qid string, a questionnaire.Answer) string {
	if a.Text != "" {
		return a.Text
	}
	if q, ok := catalog.Question(qid); ok {
		return q.Text
	}
	return qid
}

// groupOrder lists catalog groups first, then unknown groups sorted.
func groupOrder(catalog *questionnaire.Catalog, r questionnaire.ResponseSet) []string {
	known := map[string]bool{}
	out := make([]string, 0, len(r.Controls))
	for _, g := range catalog.Groups {
		known[g] = true
		if _, ok := r.Controls[g]; ok {
			out = append(out, g)
		}
	}
	var extra []string
	for g := range r.Controls {
		if !known[g] {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// questionOrder lists answered ids of group in catalog order, then unknown
// ids sorted.
func questionOrder(catalog *questionnaire.Catalog, group string, answers map[string]questionnaire.Answer) []string {
	out := make([]string, 0, len(answers))
	seen := map[string]bool{}
	for _, q := range catalog.InGroup(group) {
		if _, ok := answers[q.ID]; ok {
			out = append(out, q.ID)
			seen[q.ID] = true
		}
	}
	var extra []string
	for id := range answers {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}
