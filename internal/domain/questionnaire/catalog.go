package questionnaire

import "fmt"

// Predicate makes a question visible only while its parent holds one of the
// allowed values.
type Predicate struct {
	Parent  string
	Allowed []string
}

// Question is a single catalog entry.
type Question struct {
	ID         string
	Group      string
	Text       string
	Critical   bool
	Outcome    string
	Visibility *Predicate
}

// TextField is a free-text input the assessor needs before analysis.
type TextField struct {
	Key   string
	Label string
	Group string
}

// Catalog is the static question bank for one variant.
type Catalog struct {
	Variant   Variant
	Groups    []string
	Questions []Question
	Texts     []TextField
	// MinAnswered is the smallest number of answers accepted for analysis.
	MinAnswered int

	values map[string]bool
	index  map[string]int
}

func newCatalog(v Variant, groups []string, values []string, qs []Question, texts []TextField, minAnswered int) *Catalog {
	c := &Catalog{
		Variant:     v,
		Groups:      groups,
		Questions:   qs,
		Texts:       texts,
		MinAnswered: minAnswered,
		values:      map[string]bool{},
		index:       map[string]int{},
	}
	for _, val := range values {
		c.values[val] = true
	}
	for i, q := range qs {
		c.index[q.ID] = i
	}
	return c
}

// Question returns the catalog entry for id.
func (c *Catalog) Question(id string) (Question, bool) {
	i, ok := c.index[id]
	if !ok {
		return Question{}, false
	}
	return c.Questions[i], true
}

// Allows reports whether value is a permitted answer in this variant.
func (c *Catalog) Allows(value string) bool {
	return c.values[value]
}

// InGroup returns the questions owned by group in catalog order.
func (c *Catalog) InGroup(group string) []Question {
	var out []Question
	for _, q := range c.Questions {
		if q.Group == group {
			out = append(out, q)
		}
	}
	return out
}

// NewAnswer validates value against the catalog and denormalizes the
// question's critical flag and text into an Answer.
func (c *Catalog) NewAnswer(questionID, value, label string) (Question, Answer, error) {
	q, ok := c.Question(questionID)
	if !ok {
		return Question{}, Answer{}, fmt.Errorf("unknown question %q for %s", questionID, c.Variant)
	}
	if !c.Allows(value) {
		return Question{}, Answer{}, fmt.Errorf("value %q not permitted for %s", value, c.Variant)
	}
	if label == "" {
		label = q.Text
	}
	return q, Answer{Value: value, Critical: q.Critical, Text: label}, nil
}

// For returns the catalog of variant v.
func For(v Variant) (*Catalog, error) {
	switch v {
	case VariantChecklist:
		return Checklist(), nil
	case VariantFramework:
		return Framework(), nil
	default:
		return nil, fmt.Errorf("unknown variant %q", v)
	}
}
