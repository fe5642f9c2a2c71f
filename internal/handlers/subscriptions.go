package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/models"
)

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (h HandlerSet) Subscribe(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	respond(c, h.newsletter.Subscribe(c.Request.Context(), req.Email, req.Name))
}

func (h HandlerSet) SubscribeProducts(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	respond(c, h.newsletter.SubscribeToProducts(c.Request.Context(), req.Email, req.Name))
}

// UnsubscribeProducts serves the link embedded in product-update emails.
func (h HandlerSet) UnsubscribeProducts(c *gin.Context) {
	respond(c, h.newsletter.Unsubscribe(c.Request.Context(), c.Query("email"), c.Query("token")))
}

func respond(c *gin.Context, result models.SubscriptionResult) {
	if !result.Success {
		badRequest(c, result.Message)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": result.Message})
}
