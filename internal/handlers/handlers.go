package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/blog"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/chat"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/config"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/middleware"
	"github.com/akshatsharma-tmc/gracemobility-frontend/internal/newsletter"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	feed       *blog.Feed
	newsletter *newsletter.Service
	responder  chat.Responder
	limiter    *middleware.RateLimiter
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	feed *blog.Feed,
	subscriptions *newsletter.Service,
	responder chat.Responder,
) HandlerSet {
	return HandlerSet{
		log:        log,
		cfg:        cfg,
		feed:       feed,
		newsletter: subscriptions,
		responder:  responder,
		limiter:    middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
	}
}

// Limiter exposes the chat rate limiter so its stale entries can be swept.
func (h HandlerSet) Limiter() *middleware.RateLimiter {
	return h.limiter
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	router.GET("/posts", h.ListPosts)
	router.GET("/posts/:id", h.GetPost)

	router.POST("/chat", middleware.RateLimit(h.limiter), h.Chat)

	router.POST("/subscriptions", h.Subscribe)
	router.POST("/product-subscriptions", h.SubscribeProducts)
	router.DELETE("/product-subscriptions", h.UnsubscribeProducts)
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

func badRequest(c *gin.Context, message string) {
	errorJSON(c, http.StatusBadRequest, message)
}
