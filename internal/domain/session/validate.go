package session

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
)

// Ready checks a response set against the catalog's analysis preconditions:
// the minimum answer count and every required free-text field.
func Ready(c *questionnaire.Catalog, r questionnaire.ResponseSet) error {
	if r.Answered() < c.MinAnswered || r.Answered() == 0 {
		return fmt.Errorf("%w: %d answered, need %d", ErrNoAnswers, r.Answered(), c.MinAnswered)
	}
	var missing []string
	for _, f := range c.Texts {
		if strings.TrimSpace(r.Text(f.Key)) == "" {
			missing = append(missing, f.Label)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
