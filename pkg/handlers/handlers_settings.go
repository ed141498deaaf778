package handlers

import (
	"net/http"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/gin-gonic/gin"
)

// GetWorkRules returns the stored work rules or the defaults
func (h *Handler) GetWorkRules(c *gin.Context) {
	rules, err := h.store.GetWorkRules()
	if err != nil {
		h.storageError(c, err, "work rules")
		return
	}
	c.JSON(http.StatusOK, rules)
}

// SaveWorkRules stores the work rules; headcounts are saved as whole numbers
func (h *Handler) SaveWorkRules(c *gin.Context) {
	var rules models.WorkRules
	if err := c.ShouldBindJSON(&rules); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var errs []string
	if rules.WorkHours <= 0 {
		errs = append(errs, "work hours must be greater than 0")
	}
	if rules.BreakHours < 0 {
		errs = append(errs, "break hours must not be negative")
	}
	if rules.MaxHeadcount < rules.MinHeadcount {
		errs = append(errs, "maximum headcount must not be below the minimum")
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "errors": errs})
		return
	}

	saved, err := h.store.SaveWorkRules(rules)
	if err != nil {
		h.storageError(c, err, "work rules")
		return
	}
	c.JSON(http.StatusOK, saved)
}

// ListStaffPresets returns the saved rosters
func (h *Handler) ListStaffPresets(c *gin.Context) {
	presets, err := h.store.ListStaffPresets()
	if err != nil {
		h.storageError(c, err, "staff presets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// SaveStaffPreset creates a preset, or replaces it when the body carries an id
func (h *Handler) SaveStaffPreset(c *gin.Context) {
	var p models.StaffPreset
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.store.SaveStaffPreset(&p); err != nil {
		h.storageError(c, err, "staff preset")
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteStaffPreset removes a preset
func (h *Handler) DeleteStaffPreset(c *gin.Context) {
	if err := h.store.DeleteStaffPreset(c.Param("id")); err != nil {
		h.storageError(c, err, "staff preset")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preset deleted"})
}
