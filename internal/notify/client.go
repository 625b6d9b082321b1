package notify

import "tellnoone/backend/internal/models"

// Client is the interface for any type of connection receiving match events.
// It abstracts the underlying transport so the hub can manage different
// client types uniformly.
type Client interface {
	// GetUserID returns the anonymous ID of the connected user.
	GetUserID() string

	// GetSendChannel returns the channel the hub writes events to for this
	// client. It is a send-only channel.
	GetSendChannel() chan<- models.MatchEvent

	// Run starts the client's read and write pumps.
	Run()
	// Close shuts down the client's connection and associated channels.
	Close()
}
