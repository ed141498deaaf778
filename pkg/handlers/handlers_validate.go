package handlers

import (
	"net/http"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/arnavshah/crew-scheduler-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// ValidateInput handles the JSON-based validation request
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid":  false,
			"errors": []string{err.Error()},
		})
		return
	}
	if err := h.withStoredRules(&input); err != nil {
		h.storageError(c, err, "work rules")
		return
	}

	if errs := scheduler.ValidateInput(input); len(errs) > 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "errors": errs})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":  true,
		"errors": []string{},
		"stats": gin.H{
			"staff_count":   len(input.Staff),
			"day_count":     len(scheduler.DaysInRange(input.StartDate, input.EndDate)),
			"request_count": len(input.Requests),
		},
	})
}
