// Package branching decides which conditional questions are in scope given
// the answers recorded so far, and clears answers that fall out of scope.
package branching

import (
	"sort"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
)

// Rule is a parsed visibility predicate.
type Rule struct {
	Question string
	Parent   string
	Allowed  map[string]struct{}
}

// Evaluator holds the dependency table {question -> (parent, allowed)}.
type Evaluator struct {
	rules  []Rule
	byID   map[string]int
	parent map[string][]string
}

// New parses the visibility predicates of catalog once.
func New(catalog *questionnaire.Catalog) *Evaluator {
	table := map[string]questionnaire.Predicate{}
	for _, q := range catalog.Questions {
		if q.Visibility != nil {
			table[q.ID] = *q.Visibility
		}
	}
	return FromTable(table)
}

// FromTable builds an evaluator from a raw dependency table.
func FromTable(table map[string]questionnaire.Predicate) *Evaluator {
	ids := make([]string, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	e := &Evaluator{byID: map[string]int{}, parent: map[string][]string{}}
	for _, id := range ids {
		p := table[id]
		allowed := make(map[string]struct{}, len(p.Allowed))
		for _, v := range p.Allowed {
			allowed[v] = struct{}{}
		}
		e.byID[id] = len(e.rules)
		e.rules = append(e.rules, Rule{Question: id, Parent: p.Parent, Allowed: allowed})
		e.parent[p.Parent] = append(e.parent[p.Parent], id)
	}
	return e
}

// Rules returns the parsed rules in question id order.
func (e *Evaluator) Rules() []Rule { return e.rules }

// Dependents returns the questions whose visibility references parentID.
func (e *Evaluator) Dependents(parentID string) []string {
	return e.parent[parentID]
}

// Visible reports whether questionID is currently in scope. Unconditional
// questions are always visible; a conditional question needs a visible parent
// holding an allowed value.
func (e *Evaluator) Visible(questionID string, responses questionnaire.ResponseSet) bool {
	return e.visible(questionID, responses, map[string]bool{})
}

func (e *Evaluator) visible(questionID string, responses questionnaire.ResponseSet, seen map[string]bool) bool {
	i, ok := e.byID[questionID]
	if !ok {
		return true
	}
	if seen[questionID] {
		return false
	}
	seen[questionID] = true

	rule := e.rules[i]
	if !e.visible(rule.Parent, responses, seen) {
		return false
	}
	a, ok := responses.Get(rule.Parent)
	if !ok {
		return false
	}
	_, allowed := rule.Allowed[a.Value]
	return allowed
}

// Hidden returns the set of conditional questions currently out of scope.
func (e *Evaluator) Hidden(responses questionnaire.ResponseSet) map[string]bool {
	hidden := map[string]bool{}
	for _, r := range e.rules {
		if !e.Visible(r.Question, responses) {
			hidden[r.Question] = true
		}
	}
	return hidden
}

// Apply clears every recorded answer whose question is hidden, including
// descendants of newly hidden questions, and returns the cleared ids sorted.
func (e *Evaluator) Apply(responses *questionnaire.ResponseSet) []string {
	var cleared []string
	for {
		changed := false
		for id := range e.Hidden(*responses) {
			if responses.Remove(id) {
				cleared = append(cleared, id)
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	sort.Strings(cleared)
	return cleared
}

// VisibleQuestions returns the ids of catalog questions currently in scope.
func (e *Evaluator) VisibleQuestions(catalog *questionnaire.Catalog, responses questionnaire.ResponseSet) []string {
	hidden := e.Hidden(responses)
	out := make([]string, 0, len(catalog.Questions))
	for _, q := range catalog.Questions {
		if !hidden[q.ID] {
			out = append(out, q.ID)
		}
	}
	return out
}
