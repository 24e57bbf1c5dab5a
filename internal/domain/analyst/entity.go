package analyst

import "time"

// AnalysisID identifier type
type AnalysisID string

// Mode records which producer answered an analysis request.
type Mode string

const (
	ModeRemote Mode = "remote"
	ModeLocal  Mode = "local"
)

// Analysis is one completed analysis run, stored as an audit trail.
type Analysis struct {
	ID        AnalysisID `json:"id"`
	SessionID string     `json:"session_id"`
	Variant   string     `json:"variant"`
	Mode      Mode       `json:"mode"`
	Reason    string     `json:"reason,omitempty"` // why the local scorer was used
	Verdict   string     `json:"verdict"`
	Score     float64    `json:"score"`
	Result    string     `json:"result"` // JSON document of the result
	CreatedAt time.Time  `json:"created_at"`
}
