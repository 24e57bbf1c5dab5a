package checklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

func answerAll(t *testing.T, value string) questionnaire.ResponseSet {
	t.Helper()
	c := questionnaire.Checklist()
	r := questionnaire.NewResponseSet()
	for _, q := range c.Questions {
		_, a, err := c.NewAnswer(q.ID, value, "")
		require.NoError(t, err)
		r.Set(q.Group, q.ID, a)
	}
	return r
}

func set(t *testing.T, r *questionnaire.ResponseSet, qid, value string) {
	t.Helper()
	q, a, err := questionnaire.Checklist().NewAnswer(qid, value, "")
	require.NoError(t, err)
	r.Set(q.Group, q.ID, a)
}

func TestAnalyze_AllPass(t *testing.T) {
	res := Analyze(answerAll(t, "pass"), nil)

	assert.Equal(t, VerdictPass, res.OverallStatus)
	assert.Equal(t, 100.0, res.ReadinessScore)
	assert.Zero(t, res.CriticalIssuesCount)
	assert.Empty(t, res.CriticalIssues)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "Ready now - contact a Certification Body", res.Timeline)
	assert.Contains(t, res.Strengths, "Automated backup procedures in place with documented recovery")
	assert.Contains(t, res.Strengths, "Documented and tested incident response plan")
	assert.Len(t, res.NextSteps, 2)
	assert.Nil(t, res.Vendors)
}

func TestAnalyze_MFAUnsureFails(t *testing.T) {
	r := answerAll(t, "pass")
	set(t, &r, "q4_3", "unsure")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictFail, res.OverallStatus)
	require.Len(t, res.CriticalIssues, 1)
	issue := res.CriticalIssues[0]
	assert.Equal(t, questionnaire.ControlAccessControl, issue.Control)
	assert.Equal(t, "Enable Multi-Factor Authentication (MFA) on ALL cloud services - this is MANDATORY", issue.Action)
	assert.Equal(t, 80.0, res.ControlScores[questionnaire.ControlAccessControl])
	assert.Equal(t, 96.0, res.ReadinessScore)
	assert.Equal(t, "2-4 weeks with focused effort", res.Timeline)
	assert.Contains(t, res.Summary, "1 critical issue that")
}

func TestAnalyze_AnyCriticalFailureFails(t *testing.T) {
	for _, q := range questionnaire.Checklist().Questions {
		if !q.Critical {
			continue
		}
		for _, value := range []string{"fail", "unsure"} {
			r := answerAll(t, "pass")
			set(t, &r, q.ID, value)
			res := Analyze(r, nil)
			assert.Equal(t, VerdictFail, res.OverallStatus, "%s=%s", q.ID, value)
		}
	}
}

func TestAnalyze_ScopeFailureDoesNotMoveScore(t *testing.T) {
	r := answerAll(t, "pass")
	set(t, &r, "q6_2", "fail")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictFail, res.OverallStatus)
	assert.Equal(t, 100.0, res.ReadinessScore)
	assert.NotContains(t, res.ControlScores, questionnaire.ControlScope)
	assert.Equal(t, questionnaire.ControlScope, res.CriticalIssues[0].Control)
}

func TestAnalyze_NonCriticalFailIsWarning(t *testing.T) {
	r := answerAll(t, "pass")
	set(t, &r, "q2_2", "fail")
	set(t, &r, "q4_6", "partial")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictNeedsWork, res.OverallStatus)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, questionnaire.ControlSecureConfig, res.Warnings[0].Control)
	assert.Equal(t, 100.0, res.ControlScores[questionnaire.ControlSecureConfig])
	assert.Equal(t, "1-2 weeks to address warnings", res.Timeline)
}

func TestAnalyze_HiddenAnswersIgnored(t *testing.T) {
	r := answerAll(t, "pass")
	// q3_4 is only visible when q3_1 is fail or unsure.
	set(t, &r, "q3_4", "fail")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictPass, res.OverallStatus)
	_, still := r.Get("q3_4")
	assert.True(t, still, "input must not be mutated")
}

func TestAnalyze_OutdatedSoftwareKeyword(t *testing.T) {
	r := answerAll(t, "pass")
	r.SetText(questionnaire.TextOutdatedSoftware, "Two reception PCs on WINDOWS 7")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictFail, res.OverallStatus)
	require.Len(t, res.CriticalIssues, 1)
	assert.Equal(t, questionnaire.ControlUpdates, res.CriticalIssues[0].Control)
	assert.Equal(t, "Outdated software identified: Two reception PCs on WINDOWS 7", res.CriticalIssues[0].Issue)
	assert.Equal(t, 100.0, res.ControlScores[questionnaire.ControlUpdates])
}

func TestMatchesEndOfLife(t *testing.T) {
	cases := map[string]bool{
		"":                       false,
		"None":                   false,
		" none ":                 false,
		"Office 2010 suite":      true,
		"Windows XP kiosk":       true,
		"Server 2003":            true,
		"Windows 11, Office 365": false,
	}
	for in, want := range cases {
		assert.Equal(t, want, MatchesEndOfLife(in), in)
	}
}

func TestAnalyze_BackupAndIncidentWarnings(t *testing.T) {
	r := answerAll(t, "pass")
	set(t, &r, questionnaire.QuestionBackup, "fail")
	set(t, &r, questionnaire.QuestionIncident, "fail")

	res := Analyze(r, nil)

	assert.Equal(t, VerdictNeedsWork, res.OverallStatus)
	require.Len(t, res.Warnings, 2)
	assert.Equal(t, "No regular backup procedure in place", res.Warnings[0].Warning)
	assert.Equal(t, "No documented incident response plan", res.Warnings[1].Warning)
}

func TestAnalyze_EmptyResponses(t *testing.T) {
	res := Analyze(questionnaire.NewResponseSet(), nil)

	assert.Equal(t, VerdictPass, res.OverallStatus)
	assert.Equal(t, []string{encouragement}, res.Strengths)
	assert.Len(t, res.ControlScores, len(questionnaire.ScoredControls))
}

func TestAnalyze_HighRiskVendorWarns(t *testing.T) {
	vendors := []vendor.Vendor{
		{ID: "v1", Name: "Acme", AccessLevel: vendor.AccessSystem, Answers: map[string]string{"v_policy": "fail"}},
		{ID: "v2", Name: "Beta", AccessLevel: vendor.AccessLimited, Answers: map[string]string{}},
	}

	res := Analyze(answerAll(t, "pass"), vendors)

	assert.Equal(t, VerdictNeedsWork, res.OverallStatus)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, ControlVendors, res.Warnings[0].Control)
	assert.Contains(t, res.Warnings[0].Warning, "Acme")
	require.NotNil(t, res.Vendors)
	assert.Equal(t, 2, res.Vendors.Total)
	assert.Equal(t, 1, res.Vendors.NotAssessed)
}

func TestAnalyze_Deterministic(t *testing.T) {
	r := answerAll(t, "fail")
	r.SetText(questionnaire.TextOutdatedSoftware, "xp")
	first := Analyze(r, nil)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Analyze(r, nil))
	}
	assert.Equal(t, 0.0, first.ReadinessScore)
	assert.Equal(t, "2-3 months - significant work needed", first.Timeline)
}

func TestSummary_Plural(t *testing.T) {
	assert.Contains(t, Summary(VerdictFail, 3), "3 critical issues that")
}

func TestResult_ScoreMap(t *testing.T) {
	sm := Analyze(answerAll(t, "pass"), nil).ScoreMap()
	require.Len(t, sm, 5)
	require.NotNil(t, sm[questionnaire.ControlMalware])
	assert.Equal(t, 100.0, *sm[questionnaire.ControlMalware])
}
