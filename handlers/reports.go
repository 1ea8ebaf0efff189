package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats returns the dashboard summary
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Reports.Dashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, stats)
}

// GetAnalytics recomputes every aggregate on each call
func (h *Handler) GetAnalytics(c *gin.Context) {
	analytics, err := h.Reports.Analytics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, analytics)
}
