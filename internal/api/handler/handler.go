package handler

import (
	"tellnoone/backend/internal/match"
	"tellnoone/backend/internal/moderation"
	"tellnoone/backend/internal/notify"
	"tellnoone/backend/internal/safety"
	"tellnoone/backend/internal/storage"
	"tellnoone/backend/internal/support"
)

// Handler bundles the services behind the HTTP API.
type Handler struct {
	Safety     *safety.Service
	Match      *match.Service
	Moderation *moderation.Service
	Companion  *support.Companion
	Hub        *notify.Hub
	Storage    storage.Storage

	jwtSecret []byte
}

func NewHandler(
	safetySvc *safety.Service,
	matchSvc *match.Service,
	moderationSvc *moderation.Service,
	companion *support.Companion,
	hub *notify.Hub,
	store storage.Storage,
	jwtSecret string,
) *Handler {
	return &Handler{
		Safety:     safetySvc,
		Match:      matchSvc,
		Moderation: moderationSvc,
		Companion:  companion,
		Hub:        hub,
		Storage:    store,
		jwtSecret:  []byte(jwtSecret),
	}
}
