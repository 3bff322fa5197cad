package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hxkterminal/taskboard-api/internal/feed"
)

// FeedHandler serves the cached third-party feed snapshot.
type FeedHandler struct {
	feedService *feed.Service
}

// NewFeedHandler creates a new FeedHandler.
func NewFeedHandler(feedService *feed.Service) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetDynamics returns the current feed snapshot. The snapshot is refreshed
// in the background; this handler never blocks on the vendor API.
func (h *FeedHandler) GetDynamics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"dynamics": h.feedService.Snapshot(),
	})
}
