package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// botFilter reads the optional ?bot= query. Empty means both variants.
func botFilter(c *gin.Context) string {
	return c.Query("bot")
}

func (h *Handler) GetDashboard(c *gin.Context) {
	dashboard, err := h.stats.Dashboard()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

func (h *Handler) GetDailyStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	series, err := h.stats.Daily(botFilter(c), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load daily stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"daily": series})
}

func (h *Handler) GetTopUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	users, err := h.stats.TopUsers(botFilter(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load top users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) GetRecentActivity(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.stats.Recent(botFilter(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recent activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *Handler) GetPublicStats(c *gin.Context) {
	stats, err := h.stats.Public()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
