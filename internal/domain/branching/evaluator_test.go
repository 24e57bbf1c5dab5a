package branching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
)

func answer(r *questionnaire.ResponseSet, id, value string) {
	q, a, err := questionnaire.Checklist().NewAnswer(id, value, "")
	if err != nil {
		panic(err)
	}
	r.Set(q.Group, id, a)
}

func TestVisible_Unconditional(t *testing.T) {
	e := New(questionnaire.Checklist())
	assert.True(t, e.Visible("q1_1", questionnaire.NewResponseSet()))
	assert.True(t, e.Visible("not-in-catalog", questionnaire.NewResponseSet()))
}

func TestVisible_ParentValue(t *testing.T) {
	e := New(questionnaire.Checklist())

	tests := []struct {
		name   string
		parent string
		want   bool
	}{
		{"unanswered parent", "", false},
		{"allowed pass", "pass", true},
		{"allowed partial", "partial", true},
		{"disallowed fail", "fail", false},
		{"disallowed unsure", "unsure", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := questionnaire.NewResponseSet()
			if tt.parent != "" {
				answer(&r, "q1_3", tt.parent)
			}
			assert.Equal(t, tt.want, e.Visible("q1_4", r))
		})
	}
}

func TestApply_ClearsHiddenAnswer(t *testing.T) {
	e := New(questionnaire.Checklist())
	r := questionnaire.NewResponseSet()
	answer(&r, "q1_3", "pass")
	answer(&r, "q1_4", "fail")
	require.Empty(t, e.Apply(&r))

	answer(&r, "q1_3", "fail")
	cleared := e.Apply(&r)

	assert.Equal(t, []string{"q1_4"}, cleared)
	_, ok := r.Get("q1_4")
	assert.False(t, ok)
	assert.NotContains(t, r.QuestionIDs(), "q1_4")
}

func TestApply_ClearsDescendants(t *testing.T) {
	e := FromTable(map[string]questionnaire.Predicate{
		"child":      {Parent: "root", Allowed: []string{"pass"}},
		"grandchild": {Parent: "child", Allowed: []string{"pass"}},
	})
	r := questionnaire.NewResponseSet()
	r.Set("g", "root", questionnaire.Answer{Value: "pass"})
	r.Set("g", "child", questionnaire.Answer{Value: "pass"})
	r.Set("g", "grandchild", questionnaire.Answer{Value: "fail"})
	require.Empty(t, e.Apply(&r))

	r.Set("g", "root", questionnaire.Answer{Value: "fail"})
	cleared := e.Apply(&r)

	assert.Equal(t, []string{"child", "grandchild"}, cleared)
	assert.Equal(t, []string{"root"}, r.QuestionIDs())
}

func TestVisibleQuestions_DenominatorChanges(t *testing.T) {
	c := questionnaire.Checklist()
	e := New(c)
	r := questionnaire.NewResponseSet()
	base := len(e.VisibleQuestions(c, r))

	answer(&r, "q6_backup", "pass")
	assert.Equal(t, base+1, len(e.VisibleQuestions(c, r)))

	answer(&r, "q6_backup", "fail")
	assert.Equal(t, base, len(e.VisibleQuestions(c, r)))
}

func TestDependents(t *testing.T) {
	e := New(questionnaire.Framework())
	assert.Equal(t, []string{"B4_q8"}, e.Dependents("B4_q7"))
	assert.Empty(t, e.Dependents("A1_q1"))
}
