package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status      string    `json:"status"`
	Backend     string    `json:"backend"`
	Posts       int       `json:"posts"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Environment string    `json:"environment"`
}

// Health reports backend reachability as seen by the last feed refresh.
func (h HandlerSet) Health(c *gin.Context) {
	st := h.feed.Status()

	backend := "ok"
	if st.LastError != "" {
		backend = "error"
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Backend:     backend,
		Posts:       st.Posts,
		RefreshedAt: st.RefreshedAt,
		Environment: h.cfg.Environment,
	})
}
