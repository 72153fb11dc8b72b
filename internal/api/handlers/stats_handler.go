// internal/api/handlers/stats_handler.go
package handlers

import (
	"net/http"

	"greencycle-api-server/internal/stats"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	Stats *stats.Aggregator
}

// Dashboard serves the staff/admin request counts by status and material.
func (h *StatsHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.Stats.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
