package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tellnoone/backend/internal/llm"
	"tellnoone/backend/internal/safety"
)

type companionChatRequest struct {
	UserID   string        `json:"user_id"`
	UserName string        `json:"user_name"`
	Message  string        `json:"message"`
	History  []llm.Message `json:"conversation_history"`
}

// CompanionChat generates an AI peer reply. The user's message passes through
// the shared safety policy first; a blocked message returns the decision with
// no reply.
func (h *Handler) CompanionChat(c *gin.Context) {
	var req companionChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if req.UserName == "" {
		req.UserName = "Alex"
	}

	reply, err := h.Companion.Respond(c.Request.Context(), req.UserID, req.UserName, req.Message, req.History)
	if err != nil {
		switch {
		case errors.Is(err, safety.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		case errors.Is(err, llm.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded. Please try again in a moment."})
		case errors.Is(err, llm.ErrQuotaExhausted):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "AI service requires payment. Please contact support."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Companion chat failed"})
		}
		return
	}

	c.JSON(http.StatusOK, reply)
}
