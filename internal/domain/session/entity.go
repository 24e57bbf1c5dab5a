package session

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bryanwahyu/automaton-ready/internal/domain/questionnaire"
	"github.com/bryanwahyu/automaton-ready/internal/domain/vendor"
)

// SchemaVersion is written into every snapshot; other versions are ignored
// on load.
const SchemaVersion = "1.1"

// Base keys of the scoped store, one per variant.
const (
	ChecklistKey = "cyber-essentials-assessment"
	FrameworkKey = "caf_assessment_v1"
)

// ID identifies a session.
type ID string

// Key returns the store key of a session snapshot.
func Key(v questionnaire.Variant, id ID) string {
	base := ChecklistKey
	if v == questionnaire.VariantFramework {
		base = FrameworkKey
	}
	return fmt.Sprintf("%s:%s", base, id)
}

// Snapshot is the persisted session document.
type Snapshot struct {
	Responses questionnaire.ResponseSet `json:"responses"`
	Timestamp time.Time                 `json:"timestamp"`
	Version   string                    `json:"version"`
	Vendors   []vendor.Vendor           `json:"vendors,omitempty"`
}

// Encode marshals s with the current schema version.
func Encode(s Snapshot) ([]byte, error) {
	s.Version = SchemaVersion
	return json.Marshal(s)
}

// Decode parses a stored snapshot. Corrupt data or an unknown version is
// reported as absent rather than as an error.
func Decode(data []byte) (Snapshot, bool) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Snapshot{}, false
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, false
	}
	if s.Version != SchemaVersion {
		return Snapshot{}, false
	}
	if s.Responses.Controls == nil {
		s.Responses.Controls = map[string]map[string]questionnaire.Answer{}
	}
	if s.Responses.TextInputs == nil {
		s.Responses.TextInputs = map[string]string{}
	}
	return s, true
}

// Export is the audit document produced on demand.
type Export struct {
	ExportedAt time.Time                 `json:"exportedAt"`
	Scores     questionnaire.ScoreMap    `json:"scores"`
	Responses  questionnaire.ResponseSet `json:"responses"`
}

// Progress reports answered questions against those currently visible.
type Progress struct {
	Answered int     `json:"answered"`
	Visible  int     `json:"visible"`
	Percent  float64 `json:"percent"`
}

// Low reports whether fewer than half the visible questions are answered.
func (p Progress) Low() bool {
	return p.Visible > 0 && p.Answered*2 < p.Visible
}
