package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	site project.SiteContext
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(site project.SiteContext) *HealthHandler {
	return &HealthHandler{site: site}
}

// Health reports liveness and the site the service resolves projects against.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"site":     h.site.Host,
		"dev_mode": h.site.DevMode,
	})
}
