package models

import "gorm.io/gorm"

// Safety event types recorded in user_safety_logs.
const (
	EventCrisisDetected = "crisis_detected"
	EventPIIBlocked     = "pii_blocked"
)

// SafetyLog is an append-only record of a message that failed a safety check.
// The embedded gorm.Model provides ID and CreatedAt; CreatedAt ordering is the
// sole ordering guarantee relied on by the escalation window.
type SafetyLog struct {
	gorm.Model

	// UserID is the anonymous ID of the user whose message was flagged.
	UserID string `gorm:"type:text;not null;index"`
	// EventType is crisis_detected or pii_blocked.
	EventType string `gorm:"type:text;not null"`
	// Severity is the crisis level or classifier severity at flag time.
	Severity string `gorm:"type:text"`
	// Context holds the JSON-encoded concerns, recommendation and explanation.
	Context string `gorm:"type:text"`
}
