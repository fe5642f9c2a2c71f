package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/chat"
)

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (h HandlerSet) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		badRequest(c, "Message is required")
		return
	}

	reply := chat.Answer(c.Request.Context(), h.responder, req.Message, h.log)
	c.JSON(http.StatusOK, chatResponse{Reply: reply})
}
