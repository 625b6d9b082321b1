package models

// Match event types published over Redis and fanned out to connected clients.
const (
	EventMatchFound = "match_found"
	EventMatchEnded = "match_ended"
)

// MatchEvent notifies a specific user about a state change of their match.
type MatchEvent struct {
	Type      string `json:"type"`
	MatchID   string `json:"match_id"`
	UserID    string `json:"user_id"` // recipient
	PartnerID string `json:"partner_id,omitempty"`
	Topic     string `json:"topic,omitempty"`
}
