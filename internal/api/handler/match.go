package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tellnoone/backend/internal/match"
	"tellnoone/backend/internal/storage"
)

// RequestMatch pairs the caller with a compatible waiting seeker or registers
// them as waiting. Banned users are refused.
func (h *Handler) RequestMatch(c *gin.Context) {
	var req match.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	banned, err := h.Storage.IsUserBanned(req.UserID)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Please try again"})
		return
	}
	if banned {
		c.JSON(http.StatusForbidden, gin.H{"error": "Matching is not available for this account"})
		return
	}

	outcome, err := h.Match.RequestMatch(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, match.ErrMissingTopic), errors.Is(err, match.ErrMissingUser):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// MatchStatus is the polling endpoint for waiting seekers.
func (h *Handler) MatchStatus(c *gin.Context) {
	matchID := c.Param("id")
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	info, err := h.Match.Status(c.Request.Context(), matchID, userID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		case errors.Is(err, match.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this match"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, info)
}

type endMatchRequest struct {
	UserID string `json:"user_id"`
}

// EndMatch terminates a match on behalf of either participant.
func (h *Handler) EndMatch(c *gin.Context) {
	matchID := c.Param("id")

	var req endMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	if err := h.Match.End(c.Request.Context(), matchID, req.UserID); err != nil {
		switch {
		case errors.Is(err, storage.ErrMatchNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Match not found"})
		case errors.Is(err, match.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "Not a participant of this match"})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ended": true})
}
