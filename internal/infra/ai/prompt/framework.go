package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/automaton-ready/internal/domain/framework"
	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// FrameworkSystem directs the model to answer as a framework assessor.
func FrameworkSystem() string {
	return "You are a NCSC Cyber Assessment Framework (CAF) v4.0 assessor. Return ONLY one valid JSON object. No markdown fences, no commentary outside the JSON object."
}

// Framework builds the prompt pair from the section scores.
func Framework(responses questionnaire.ResponseSet, scores questionnaire.ScoreMap, vendors []vendor.Vendor) Prompt {
	sections := make([]string, 0, len(questionnaire.SectionIDs))
	for _, id := range questionnaire.SectionIDs {
		if s := scores[id]; s != nil {
			sections = append(sections, fmt.Sprintf("%s: %.0f%%", id, *s))
		} else {
			sections = append(sections, id+": not attempted")
		}
	}
	low := strings.Join(framework.LowSections(scores), ", ")
	if low == "" {
		low = "none"
	}

	var b strings.Builder
	b.WriteString("You are a NCSC Cyber Assessment Framework (CAF) v4.0 assessor analysing a UK organisation's self-assessment results.\n\n")
	fmt.Fprintf(&b, "Overall score: %.0f%%\n", framework.Overall(scores))
	fmt.Fprintf(&b, "Section scores: %s\n", strings.Join(sections, ", "))
	fmt.Fprintf(&b, "Sections scoring below 50%%: %s\n", low)
	fmt.Fprintf(&b, "Total questions answered: %d of %d\n", responses.Answered(), len(questionnaire.Framework().Questions))
	if s := Vendors(vendors); s != "" {
		b.WriteString("\nThird-party vendors:\n")
		b.WriteString(s)
	}
	b.WriteString(`
Provide a JSON response in this exact structure:
{
  "overallRating": "one of: Achieved / Partially Achieved / Not Achieved",
  "overallScore": <0-100>,
  "summary": "2-3 sentence executive summary",
  "criticalGaps": ["up to 5 most critical gaps as short strings"],
  "strengths": ["up to 3 strengths"],
  "priorityActions": [
    {"action": "short description", "principle": "e.g. B4", "effort": "Low/Medium/High", "impact": "Low/Medium/High"}
  ],
  "objectiveRatings": {
    "A": "Achieved/Partially Achieved/Not Achieved",
    "B": "Achieved/Partially Achieved/Not Achieved",
    "C": "Achieved/Partially Achieved/Not Achieved",
    "D": "Achieved/Partially Achieved/Not Achieved"
  },
  "regulatoryNote": "1 sentence on NIS/GDPR/sector regulatory implications if applicable"
}`)
	return Prompt{System: FrameworkSystem(), User: b.String()}
}
