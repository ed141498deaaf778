package handlers

import (
	"net/http"

	"github.com/arnavshah/crew-scheduler-api/pkg/database"
	"github.com/gin-gonic/gin"
)

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get(ctxAPIKey)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := h.store.UsageHistory(apiKey.ID)
	if err != nil {
		h.storageError(c, err, "usage")
		return
	}

	var totalRequests, totalDays, totalStaff int64
	for _, u := range usage {
		totalRequests += int64(u.RequestCount)
		totalDays += int64(u.TotalDays)
		totalStaff += int64(u.TotalStaff)
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals": gin.H{
			"requests": totalRequests,
			"days":     totalDays,
			"staff":    totalStaff,
		},
	})
}
