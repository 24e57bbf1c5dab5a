package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScore_ChecklistText(t *testing.T) {
	out, err := execute(t, "score", "testdata/checklist.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: FAIL")
	assert.Contains(t, out, "Readiness: 80%")
	assert.Contains(t, out, "Vendor Acme IT is high risk")
}

func TestScore_ChecklistJSON(t *testing.T) {
	out, err := execute(t, "score", "--format", "json", "testdata/checklist.json")
	require.NoError(t, err)

	var res struct {
		OverallStatus       string `json:"overallStatus"`
		CriticalIssuesCount int    `json:"criticalIssuesCount"`
		Vendors             struct {
			High int `json:"high"`
		} `json:"vendors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "FAIL", res.OverallStatus)
	assert.Equal(t, 1, res.CriticalIssuesCount)
	assert.Equal(t, 1, res.Vendors.High)
}

func TestScore_DetectsFramework(t *testing.T) {
	out, err := execute(t, "score", "testdata/framework.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Overall: Not Achieved (38%)")
	assert.Contains(t, out, "Objective C: Not Attempted")
	assert.Contains(t, out, "gap: B2 requires attention (score: 0%)")
}

func TestScore_Errors(t *testing.T) {
	_, err := execute(t, "score", "testdata/missing.json")
	assert.Error(t, err)

	_, err = execute(t, "score", "--variant", "survey", "testdata/checklist.json")
	assert.ErrorContains(t, err, "unknown variant")

	_, err = execute(t, "score")
	assert.Error(t, err)
}

func TestVendors(t *testing.T) {
	out, err := execute(t, "vendors", "testdata/checklist.json")
	require.NoError(t, err)
	assert.Contains(t, out, `"level": "high"`)
	assert.Contains(t, out, `"total": 1`)
}

func TestCatalog(t *testing.T) {
	out, err := execute(t, "catalog", "--variant", "framework")
	require.NoError(t, err)
	assert.Contains(t, out, "B4_q8")
	assert.Contains(t, out, "83 questions, 2 conditional")
}
