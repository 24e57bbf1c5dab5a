package questionnaire

import "fmt"

// SectionIDs lists the fourteen framework sections in catalog order.
var SectionIDs = []string{"A1", "A2", "A3", "A4", "B1", "B2", "B3", "B4", "B5", "B6", "C1", "C2", "D1", "D2"}

// SectionCounts is the number of questions per section.
var SectionCounts = map[string]int{
	"A1": 6, "A2": 4, "A3": 3, "A4": 4,
	"B1": 4, "B2": 8, "B3": 10, "B4": 8, "B5": 6, "B6": 4,
	"C1": 12, "C2": 4,
	"D1": 6, "D2": 4,
}

// SectionTitles names each section.
var SectionTitles = map[string]string{
	"A1": "Governance",
	"A2": "Risk Management",
	"A3": "Asset Management",
	"A4": "Supply Chain",
	"B1": "Service Protection Policies, Processes and Procedures",
	"B2": "Identity and Access Control",
	"B3": "Data Security",
	"B4": "System Security",
	"B5": "Resilient Networks and Systems",
	"B6": "Staff Awareness and Training",
	"C1": "Security Monitoring",
	"C2": "Proactive Security Event Discovery",
	"D1": "Response and Recovery Planning",
	"D2": "Lessons Learned",
}

// Objective groups sections under a higher-level objective.
type Objective struct {
	ID       string
	Sections []string
}

// Objectives is the fixed objective grouping.
var Objectives = []Objective{
	{ID: "A", Sections: []string{"A1", "A2", "A3", "A4"}},
	{ID: "B", Sections: []string{"B1", "B2", "B3", "B4", "B5", "B6"}},
	{ID: "C", Sections: []string{"C1", "C2"}},
	{ID: "D", Sections: []string{"D1", "D2"}},
}

// FrameworkQuestionID formats the id of question n (1-based) in section.
func FrameworkQuestionID(section string, n int) string {
	return fmt.Sprintf("%s_q%d", section, n)
}

var frameworkVisibility = map[string]*Predicate{
	"B4_q8": {Parent: "B4_q7", Allowed: []string{string(Achieved), string(PartiallyAchieved)}},
	"D1_q6": {Parent: "D1_q5", Allowed: []string{string(Achieved), string(PartiallyAchieved), string(NotAchieved)}},
}

var frameworkCatalog = buildFrameworkCatalog()

func buildFrameworkCatalog() *Catalog {
	var qs []Question
	for _, section := range SectionIDs {
		for n := 1; n <= SectionCounts[section]; n++ {
			id := FrameworkQuestionID(section, n)
			qs = append(qs, Question{
				ID:         id,
				Group:      section,
				Text:       fmt.Sprintf("%s (%s) outcome %s.%c", SectionTitles[section], section, section, rune('a'+n-1)),
				Outcome:    fmt.Sprintf("%s.%c", section, rune('a'+n-1)),
				Visibility: frameworkVisibility[id],
			})
		}
	}
	return newCatalog(
		VariantFramework,
		SectionIDs,
		[]string{string(Achieved), string(PartiallyAchieved), string(NotAchieved), string(NotApplicable)},
		qs,
		nil,
		10,
	)
}

// Framework returns the fourteen-section framework catalog.
func Framework() *Catalog { return frameworkCatalog }
