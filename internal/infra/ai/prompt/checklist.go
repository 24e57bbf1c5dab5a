package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// Prompt is a system/user message pair for the narrative service.
type Prompt struct {
	System string
	User   string
}

// ControlLabels are the display names of checklist controls.
var ControlLabels = map[string]string{
	questionnaire.ControlFirewalls:     "Firewalls",
	questionnaire.ControlSecureConfig:  "Secure Configuration",
	questionnaire.ControlUpdates:       "Security Update Management",
	questionnaire.ControlAccessControl: "User Access Control",
	questionnaire.ControlMalware:       "Malware Protection",
	questionnaire.ControlScope:         "Scope & Context",
}

// ChecklistSystem gives strict directions for the checklist JSON output.
func ChecklistSystem() string {
	return `You are a UK Cyber Essentials (v3.3) certification expert and assessor. Your role is to evaluate small business self-assessment responses against the five technical controls:

1. Firewalls
2. Secure Configuration
3. Security Update Management
4. User Access Control
5. Malware Protection

RULES:
- Only assess based on the answers provided. Do NOT assume or infer capabilities the user has not stated.
- Treat "unsure" or "I don't know" answers as FAILURES - if a business cannot confirm a control is in place, it is not in place.
- Treat "partial" answers as WARNINGS - partially implemented controls need remediation.
- A single critical failure in ANY control means FAIL for that control and overall FAIL for certification.
- Be specific and actionable in recommendations. Reference the exact Cyber Essentials requirement where possible.
- Scoring: 100% = all questions in the control answered "pass". Deduct proportionally for failures. "unsure" on a critical question = 0 points for that question.

IMPORTANT: Return ONLY valid JSON. No markdown fences, no commentary outside the JSON object.`
}

const checklistSchema = `Respond with this exact JSON structure:

{
  "overallStatus": "PASS" | "FAIL" | "NEEDS_WORK",
  "readinessScore": <0-100>,
  "criticalIssuesCount": <number>,
  "controlScores": {
    "firewalls": <0-100>,
    "secureConfig": <0-100>,
    "updates": <0-100>,
    "accessControl": <0-100>,
    "malware": <0-100>
  },
  "criticalIssues": [
    {
      "control": "<control key e.g. firewalls, secureConfig, updates, accessControl, malware>",
      "issue": "<what is wrong>",
      "impact": "<business risk and CE requirement reference>",
      "action": "<specific remediation step>"
    }
  ],
  "warnings": [
    {
      "control": "<control key>",
      "warning": "<description>",
      "recommendation": "<actionable fix>"
    }
  ],
  "strengths": ["<strength>"],
  "nextSteps": ["<prioritised step>"],
  "summary": "<2-3 sentence assessment>",
  "timeline": "<estimated time to readiness>"
}`

// contextLines lists the free-text fields echoed into the prompt, in order.
var contextLines = []struct{ key, label string }{
	{questionnaire.TextFirewallDetails, "Firewall solution(s)"},
	{questionnaire.TextMalwareDetails, "Anti-malware solution(s)"},
	{questionnaire.TextOutdatedSoftware, "Outdated software reported"},
	{questionnaire.TextCloudServices, "Cloud services in use"},
	{questionnaire.TextDeviceCount, "Devices in scope"},
	{questionnaire.TextBackupDetails, "Backup procedures"},
	{questionnaire.TextIncidentDetails, "Incident response"},
}

// Checklist builds the prompt pair for a checklist response set.
func Checklist(responses questionnaire.ResponseSet, vendors []vendor.Vendor) Prompt {
	catalog := questionnaire.Checklist()
	var b strings.Builder
	b.WriteString("Evaluate this Cyber Essentials self-assessment:\n\n## Assessment Responses\n")

	for _, group := range groups(catalog, responses) {
		label := ControlLabels[group]
		if label == "" {
			label = group
		}
		fmt.Fprintf(&b, "\n### %s\n", label)
		for _, id := range ordered(catalog, responses.Controls[group]) {
			a := responses.Controls[group][id]
			text := a.Text
			if text == "" {
				if q, ok := catalog.Question(id); ok {
					text = q.Text
				}
			}
			crit := ""
			if a.Critical {
				crit = " [CRITICAL]"
			}
			fmt.Fprintf(&b, "- %s -> %s%s\n", text, strings.ToUpper(a.Value), crit)
		}
	}

	var extra strings.Builder
	for _, l := range contextLines {
		v := strings.TrimSpace(responses.Text(l.key))
		if v == "" {
			continue
		}
		if l.key == questionnaire.TextOutdatedSoftware && strings.EqualFold(v, "none") {
			continue
		}
		fmt.Fprintf(&extra, "\n%s: %s", l.label, v)
	}
	if extra.Len() > 0 {
		b.WriteString("\n## Additional Context\n")
		b.WriteString(extra.String())
		b.WriteString("\n")
	}
	if s := Vendors(vendors); s != "" {
		b.WriteString("\n## Third-Party Vendors\n")
		b.WriteString(s)
	}

	b.WriteString("\n")
	b.WriteString(checklistSchema)
	return Prompt{System: ChecklistSystem(), User: b.String()}
}

// Vendors renders the vendor risk summary, empty when there are none.
func Vendors(vendors []vendor.Vendor) string {
	if len(vendors) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range vendor.Assess(vendors) {
		if !a.Risk.Assessed {
			fmt.Fprintf(&b, "- %s (%s access): not assessed\n", a.Vendor.Name, a.Vendor.AccessLevel)
			continue
		}
		fmt.Fprintf(&b, "- %s (%s access): risk %s, score %.0f%%\n",
			a.Vendor.Name, a.Vendor.AccessLevel, a.Risk.Level, a.Risk.Score)
	}
	s := vendor.Summarize(vendors)
	fmt.Fprintf(&b, "Summary: %d vendor(s), %d high, %d medium, %d low, average score %.0f%%\n",
		s.Total, s.High, s.Medium, s.Low, s.AverageScore)
	return b.String()
}

func groups(c *questionnaire.Catalog, r questionnaire.ResponseSet) []string {
	var out []string
	seen := map[string]bool{}
	for _, g := range c.Groups {
		seen[g] = true
		if len(r.Controls[g]) > 0 {
			out = append(out, g)
		}
	}
	var extra []string
	for g, answers := range r.Controls {
		if !seen[g] && len(answers) > 0 {
			extra = append(extra, g)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

func ordered(c *questionnaire.Catalog, answers map[string]questionnaire.Answer) []string {
	ids := make([]string, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	pos := func(id string) int {
		for i, q := range c.Questions {
			if q.ID == id {
				return i
			}
		}
		return len(c.Questions)
	}
	sort.SliceStable(ids, func(i, j int) bool {
		pi, pj := pos(ids[i]), pos(ids[j])
		if pi != pj {
			return pi < pj
		}
		return ids[i] < ids[j]
	})
	return ids
}
