package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) ListPosts(c *gin.Context) {
	c.JSON(http.StatusOK, h.feed.Posts())
}

func (h HandlerSet) GetPost(c *gin.Context) {
	post, ok := h.feed.Post(c.Param("id"))
	if !ok {
		errorJSON(c, http.StatusNotFound, "Post not found")
		return
	}
	c.JSON(http.StatusOK, post)
}
