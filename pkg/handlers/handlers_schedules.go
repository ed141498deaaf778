package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/csvio"
	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/arnavshah/crew-scheduler-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// CreateSchedule generates a schedule and saves it
func (h *Handler) CreateSchedule(c *gin.Context) {
	var input models.ScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.withStoredRules(&input); err != nil {
		h.storageError(c, err, "work rules")
		return
	}

	res, ok := h.generate(c, input)
	if !ok {
		return
	}

	sch := models.SavedSchedule{
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		WorkRules:   input.WorkRules,
		Staff:       input.Staff,
		Requests:    input.Requests,
		Assignments: res.Assignments,
		Stats:       res.Stats,
	}
	if err := h.store.SaveSchedule(&sch); err != nil {
		h.storageError(c, err, "schedule")
		return
	}

	resp := h.buildResponse(input, sch.Assignments, nil)
	c.JSON(http.StatusCreated, gin.H{
		"schedule":       sch,
		"violations":     resp.Violations,
		"fairness_score": resp.FairnessScore,
	})
}

// ListSchedules returns saved schedules, newest first
func (h *Handler) ListSchedules(c *gin.Context) {
	list, err := h.store.ListSchedules()
	if err != nil {
		h.storageError(c, err, "schedules")
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedules": list})
}

// GetSchedule returns one saved schedule
func (h *Handler) GetSchedule(c *gin.Context) {
	sch, err := h.store.GetSchedule(c.Param("id"))
	if err != nil {
		h.storageError(c, err, "schedule")
		return
	}
	c.JSON(http.StatusOK, sch)
}

// UpdateSchedule stores hand-edited assignments. Stats are derived again and
// violations are reported without blocking the save. With as_copy the edit is
// saved as a new schedule pointing back to the original.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req struct {
		Assignments []models.ScheduleAssignment `json:"assignments" binding:"required"`
		AsCopy      bool                        `json:"as_copy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sch, err := h.store.GetSchedule(c.Param("id"))
	if err != nil {
		h.storageError(c, err, "schedule")
		return
	}

	input := sch.Input()
	days := make(map[string]bool)
	for _, d := range scheduler.DaysInRange(input.StartDate, input.EndDate) {
		days[d] = true
	}
	for _, a := range req.Assignments {
		if !days[a.Date] {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s is outside %s..%s", a.Date, input.StartDate, input.EndDate)})
			return
		}
	}

	if req.AsCopy {
		sch.EditSourceScheduleID = sch.ID
		sch.ID = ""
	}
	sch.Assignments = normalize(req.Assignments)
	sch.Stats = scheduler.BuildStats(input, sch.Assignments)

	if err := h.store.SaveSchedule(sch); err != nil {
		h.storageError(c, err, "schedule")
		return
	}

	resp := h.buildResponse(input, sch.Assignments, nil)
	c.JSON(http.StatusOK, gin.H{
		"schedule":       sch,
		"violations":     resp.Violations,
		"fairness_score": resp.FairnessScore,
	})
}

// DeleteSchedule removes a schedule and its extra work
func (h *Handler) DeleteSchedule(c *gin.Context) {
	if err := h.store.DeleteSchedule(c.Param("id")); err != nil {
		h.storageError(c, err, "schedule")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Schedule deleted"})
}

// ExportSchedule downloads a saved schedule as CSV; ?kind=stats exports the summary instead
func (h *Handler) ExportSchedule(c *gin.Context) {
	sch, err := h.store.GetSchedule(c.Param("id"))
	if err != nil {
		h.storageError(c, err, "schedule")
		return
	}

	var buf bytes.Buffer
	name := fmt.Sprintf("%s~%s_schedule.csv", sch.StartDate, sch.EndDate)
	if c.Query("kind") == "stats" {
		name = fmt.Sprintf("%s~%s_stats.csv", sch.StartDate, sch.EndDate)
		err = csvio.WriteStats(&buf, sch.Stats)
	} else {
		extra, lerr := h.store.ListExtraWork(sch.ID, "")
		if lerr != nil {
			h.storageError(c, lerr, "extra work")
			return
		}
		err = csvio.WriteSchedule(&buf, *sch, extra)
	}
	if err != nil {
		h.log.Error("csv export failed", "schedule_id", sch.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write CSV"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ScheduleHours reports total hours per staff member including extra work
func (h *Handler) ScheduleHours(c *gin.Context) {
	sch, err := h.store.GetSchedule(c.Param("id"))
	if err != nil {
		h.storageError(c, err, "schedule")
		return
	}
	extra, err := h.store.ExtraHours(sch.ID)
	if err != nil {
		h.storageError(c, err, "extra work")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule_id":    sch.ID,
		"total_hours":    scheduler.TotalWorkHours(sch.Assignments, extra),
		"extra_hours":    extra,
		"fairness_score": scheduler.FairnessScore(sch.Stats),
	})
}

// ListExtraWork returns a schedule's extra work, optionally for one ?date=
func (h *Handler) ListExtraWork(c *gin.Context) {
	works, err := h.store.ListExtraWork(c.Param("id"), c.Query("date"))
	if err != nil {
		h.storageError(c, err, "extra work")
		return
	}
	c.JSON(http.StatusOK, gin.H{"extra_work": works})
}

// AddExtraWork records hours worked outside the schedule
func (h *Handler) AddExtraWork(c *gin.Context) {
	var w models.ExtraWork
	if err := c.ShouldBindJSON(&w); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sch, err := h.store.GetSchedule(c.Param("id"))
	if err != nil {
		h.storageError(c, err, "schedule")
		return
	}
	if w.Date < sch.StartDate || w.Date > sch.EndDate || !scheduler.IsDate(w.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date is outside the schedule"})
		return
	}
	known := false
	for _, s := range sch.Staff {
		if s.ID == w.StaffID {
			known = true
			break
		}
	}
	if !known {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown staff %q", w.StaffID)})
		return
	}

	// always a new row; ids are assigned by the store
	w.ID = ""
	w.CreatedAt = time.Time{}
	w.ScheduleID = sch.ID
	if err := h.store.SaveExtraWork(&w); err != nil {
		h.storageError(c, err, "extra work")
		return
	}
	c.JSON(http.StatusCreated, w)
}

// DeleteExtraWork removes one extra work entry
func (h *Handler) DeleteExtraWork(c *gin.Context) {
	if err := h.store.DeleteExtraWork(c.Param("id")); err != nil {
		h.storageError(c, err, "extra work")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Extra work deleted"})
}
