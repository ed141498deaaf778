package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/csvio"
	"github.com/arnavshah/crew-scheduler-api/pkg/metrics"
	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/arnavshah/crew-scheduler-api/pkg/scheduler"
	"github.com/gin-gonic/gin"
)

// withStoredRules fills in the saved work rules when the request carries none
func (h *Handler) withStoredRules(input *models.ScheduleInput) error {
	if input.WorkRules != (models.WorkRules{}) {
		return nil
	}
	rules, err := h.store.GetWorkRules()
	if err != nil {
		return err
	}
	input.WorkRules = rules
	return nil
}

// generate validates and runs the engine, writing the error response itself.
// ok is false when a response has already been sent.
func (h *Handler) generate(c *gin.Context, input models.ScheduleInput) (res *models.ScheduleResult, ok bool) {
	if errs := scheduler.ValidateInput(input); len(errs) > 0 {
		h.metrics.ObserveGeneration(metrics.ResultInvalid, 0, 0)
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "errors": errs})
		return nil, false
	}

	start := time.Now()
	res, err := scheduler.Generate(input)
	elapsed := time.Since(start)

	var genErr *scheduler.GenerationError
	switch {
	case errors.As(err, &genErr):
		h.metrics.ObserveGeneration(metrics.ResultInfeasible, elapsed, 0)
		h.log.Warn("schedule generation failed",
			"date", genErr.Date,
			"rule", genErr.Rule,
			"available", genErr.Available,
			"required", genErr.Required,
			"target", genErr.Target,
		)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": genErr.Error(), "failure": genErr})
		return nil, false
	case err != nil:
		h.log.Error("schedule generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate schedule"})
		return nil, false
	}

	h.metrics.ObserveGeneration(metrics.ResultOK, elapsed, len(res.Assignments))
	h.RecordUsage(c, len(res.Assignments), len(input.Staff))
	h.log.Debug("schedule generated", "start", input.StartDate, "end", input.EndDate, "staff", len(input.Staff), "elapsed", elapsed)
	return res, true
}

// buildResponse checks assignments and attaches the derived figures
func (h *Handler) buildResponse(input models.ScheduleInput, assignments []models.ScheduleAssignment, extra map[string]float64) models.ScheduleResponse {
	violations := scheduler.ValidateSchedule(input, assignments)
	if violations == nil {
		violations = []string{}
	}
	h.metrics.AddViolations(len(violations))

	stats := scheduler.BuildStats(input, assignments)
	return models.ScheduleResponse{
		Assignments:   assignments,
		Stats:         stats,
		Violations:    violations,
		FairnessScore: scheduler.FairnessScore(stats),
		TotalHours:    scheduler.TotalWorkHours(assignments, extra),
	}
}

// ScheduleJSON generates a schedule without saving it
func (h *Handler) ScheduleJSON(c *gin.Context) {
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
	c.JSON(http.StatusOK, h.buildResponse(input, res.Assignments, nil))
}

// CheckSchedule validates externally edited assignments against a request
func (h *Handler) CheckSchedule(c *gin.Context) {
	var req models.CheckInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if errs := scheduler.ValidateInput(req.Input); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "errors": errs})
		return
	}

	c.JSON(http.StatusOK, h.buildResponse(req.Input, normalize(req.Assignments), nil))
}

// normalize makes sure every assignment lists all three blocks
func normalize(assignments []models.ScheduleAssignment) []models.ScheduleAssignment {
	out := make([]models.ScheduleAssignment, 0, len(assignments))
	for _, a := range assignments {
		n := models.NewScheduleAssignment(a.Date)
		for shift, slots := range a.ByShift {
			if len(slots) > 0 {
				n.ByShift[shift] = slots
			}
		}
		out = append(out, n)
	}
	return out
}

func readUpload(fh *multipart.FileHeader, read func(f multipart.File) error) error {
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	return read(f)
}

// ScheduleCSV handles CSV uploads: a roster file, an optional requests file
// and the date range as form fields. The schedule comes back as CSV text.
func (h *Handler) ScheduleCSV(c *gin.Context) {
	rosterFile, _ := c.FormFile("roster_file")
	requestsFile, _ := c.FormFile("requests_file")

	if rosterFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster_file is required"})
		return
	}

	input := models.ScheduleInput{
		StartDate: c.PostForm("start_date"),
		EndDate:   c.PostForm("end_date"),
	}

	err := readUpload(rosterFile, func(f multipart.File) (err error) {
		input.Staff, err = csvio.ReadRoster(f)
		return err
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "roster_file: " + err.Error()})
		return
	}
	if requestsFile != nil {
		err := readUpload(requestsFile, func(f multipart.File) (err error) {
			input.Requests, err = csvio.ReadRequests(f)
			return err
		})
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "requests_file: " + err.Error()})
			return
		}
	}

	if err := h.withStoredRules(&input); err != nil {
		h.storageError(c, err, "work rules")
		return
	}
	for field, dst := range map[string]*float64{
		"min_headcount": &input.WorkRules.MinHeadcount,
		"max_headcount": &input.WorkRules.MaxHeadcount,
	} {
		v := c.PostForm(field)
		if v == "" {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": field + " must be a number"})
			return
		}
		*dst = n
	}

	res, ok := h.generate(c, input)
	if !ok {
		return
	}
	resp := h.buildResponse(input, res.Assignments, nil)

	sch := models.SavedSchedule{
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Staff:       input.Staff,
		Assignments: res.Assignments,
	}
	var out, stats bytes.Buffer
	if err := csvio.WriteSchedule(&out, sch, nil); err != nil {
		h.log.Error("csv export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write CSV"})
		return
	}
	if err := csvio.WriteStats(&stats, resp.Stats); err != nil {
		h.log.Error("csv export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not write CSV"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"csv":            out.String(),
		"stats_csv":      stats.String(),
		"violations":     resp.Violations,
		"fairness_score": resp.FairnessScore,
	})
}
