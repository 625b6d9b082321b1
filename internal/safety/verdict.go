// Package safety implements the layered message-safety pipeline: a local
// pattern detector, a semantic classifier backed by an LLM gateway, and the
// decision policy that combines both into a final action.
package safety

// CrisisLevel is the severity of detected crisis language.
type CrisisLevel string

const (
	CrisisNone   CrisisLevel = "none"
	CrisisLow    CrisisLevel = "low"
	CrisisMedium CrisisLevel = "medium"
	CrisisHigh   CrisisLevel = "high"
)

var crisisRank = map[CrisisLevel]int{
	CrisisNone:   0,
	CrisisLow:    1,
	CrisisMedium: 2,
	CrisisHigh:   3,
}

// MaxCrisisLevel returns the more severe of the two levels. Unknown values
// rank as none, so a malformed classifier level can never downgrade a local
// finding.
func MaxCrisisLevel(a, b CrisisLevel) CrisisLevel {
	if crisisRank[b] > crisisRank[a] {
		return b
	}
	return a
}

// Action is a recommendation or final decision for one message.
type Action string

const (
	ActionAllow     Action = "allow"
	ActionBlock     Action = "block"
	ActionEscalate  Action = "escalate"
	ActionResources Action = "resources"
)

// Verdict is the unified safety assessment for a single message. It is
// produced fresh per message and never mutated after the decision is made.
type Verdict struct {
	IsSafe          bool        `json:"isSafe"`
	Concerns        []string    `json:"concerns"`
	Severity        string      `json:"severity"`
	Recommendation  Action      `json:"recommendation"`
	Explanation     string      `json:"explanation"`
	DetectedPII     []string    `json:"detectedPII"`
	CrisisLevel     CrisisLevel `json:"crisisLevel"`
	PatternDetected bool        `json:"patternDetected,omitempty"`
}
