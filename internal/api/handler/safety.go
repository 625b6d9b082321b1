package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/safety"
)

type checkSafetyRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Context string `json:"context"`
}

// CheckSafety runs the full safety pipeline for one outbound message and
// returns the decision, merged verdict and any crisis resources.
func (h *Handler) CheckSafety(c *gin.Context) {
	var req checkSafetyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	decision, err := h.Safety.CheckMessage(c.Request.Context(), req.UserID, req.Message, req.Context)
	if err != nil {
		switch {
		case errors.Is(err, safety.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		case errors.Is(err, llm.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again in a moment."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Safety check failed"})
		}
		return
	}

	c.JSON(http.StatusOK, decision)
}
