package models

import "github.com/lib/pq"

// Profile carries the matchmaking-relevant slice of a user's profile.
// It is read-only to this service; profile management writes it elsewhere.
type Profile struct {
	// ID is the anonymous user UUID.
	ID string `gorm:"primaryKey" json:"id"`
	// SeekingSupport is true when the user wants to receive support rather
	// than offer it.
	SeekingSupport bool `json:"seeking_support"`
	// SupportStyles lists the user's preferred support styles
	// (e.g. "listener", "advice", "shared-experience").
	SupportStyles pq.StringArray `gorm:"type:text[];column:support_preferences" json:"support_styles"`
}
