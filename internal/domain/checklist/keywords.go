package checklist

import (
	"strings"

	"golang.org/x/text/cases"
)

// EndOfLifeKeywords name platforms that no longer receive security updates.
// Matching is a case-insensitive substring test.
var EndOfLifeKeywords = []string{"windows 7", "office 2010", "xp", "2003"}

var outdatedIssue = Remediation{
	Impact: "Legacy software no longer receives security updates and must be removed or upgraded",
	Action: "Upgrade to supported versions or remove this software completely from all systems",
}

// MatchesEndOfLife reports whether the outdated-software field names a known
// end-of-life platform. The literal "none" never matches.
func MatchesEndOfLife(text string) bool {
	fold := cases.Fold()
	folded := strings.TrimSpace(fold.String(text))
	if folded == "" || folded == "none" {
		return false
	}
	for _, kw := range EndOfLifeKeywords {
		if strings.Contains(folded, fold.String(kw)) {
			return true
		}
	}
	return false
}
