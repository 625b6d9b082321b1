package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type moderatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ModeratePost gates a positive-feed post. Rejections are a normal 200
// response with isPositive=false; moderation never errors toward approval.
func (h *Handler) ModeratePost(c *gin.Context) {
	var req moderatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}

	result, err := h.Moderation.ModeratePost(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Moderation error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
