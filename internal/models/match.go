package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Match status values. A match is created waiting, becomes active exactly
// once when a partner claims it, and is ended by either participant.
const (
	MatchWaiting = "waiting"
	MatchActive  = "active"
	MatchEnded   = "ended"
)

// AnonymousMatch represents a 1-on-1 anonymous pairing between two users.
// While the match is waiting, User2ID is nil: a waiting match has no partner.
type AnonymousMatch struct {
	// ID is the unique identifier for the match (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// User1ID is the anonymous ID of the user who opened the match.
	User1ID string `gorm:"type:text;not null;index:idx_topic_status"`
	// User2ID is the anonymous ID of the partner, nil until claimed.
	User2ID *string `gorm:"type:text"`
	// Topic is the support topic both participants requested.
	Topic string `gorm:"type:text;not null;index:idx_topic_status"`
	// Status is one of waiting, active, ended.
	Status string `gorm:"type:text;not null;index:idx_topic_status"`

	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// BeforeCreate generates a UUID for the match if none is set.
func (m *AnonymousMatch) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// PartnerOf returns the other participant's ID, or "" if the match has no
// second participant yet or userID is not part of the match.
func (m *AnonymousMatch) PartnerOf(userID string) string {
	if m.User1ID == userID {
		if m.User2ID != nil {
			return *m.User2ID
		}
		return ""
	}
	if m.User2ID != nil && *m.User2ID == userID {
		return m.User1ID
	}
	return ""
}
