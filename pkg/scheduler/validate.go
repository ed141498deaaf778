package scheduler

import (
	"fmt"
	"math"
	"strings"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

// MaxHeadcount is the largest headcount a request may ask for
const MaxHeadcount = math.MaxInt32

func isInteger(v float64) bool {
	return v == math.Trunc(v)
}

// headcount converts a whole-number headcount to int, clamped to [0, MaxHeadcount]
func headcount(v float64) int {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > MaxHeadcount:
		return MaxHeadcount
	}
	return int(v)
}

// ValidateInput checks a generation request before the engine runs.
// A non-empty result means the request must not be generated.
func ValidateInput(input models.ScheduleInput) []string {
	var errs []string

	startOK := IsDate(input.StartDate)
	endOK := IsDate(input.EndDate)
	if !startOK {
		errs = append(errs, fmt.Sprintf("start date %q is not a valid YYYY-MM-DD date", input.StartDate))
	}
	if !endOK {
		errs = append(errs, fmt.Sprintf("end date %q is not a valid YYYY-MM-DD date", input.EndDate))
	}
	if startOK && endOK {
		s, _ := ParseDate(input.StartDate)
		e, _ := ParseDate(input.EndDate)
		if e.Before(s) {
			errs = append(errs, "end date must not be before start date")
		}
		if daysBetween(s, e) > MaxRangeDays-1 {
			errs = append(errs, fmt.Sprintf("date range is too long: choose at most %d days", MaxRangeDays))
		}
	}

	if len(input.Staff) == 0 {
		errs = append(errs, "at least one staff member is required")
	}
	for _, s := range input.Staff {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			errs = append(errs, "staff name is empty")
			name = "(unnamed)"
		}
		if len(s.AvailableShifts) == 0 {
			errs = append(errs, fmt.Sprintf("%s: select at least one available shift", name))
		}
		for _, shift := range s.AvailableShifts {
			if !shift.Valid() {
				errs = append(errs, fmt.Sprintf("%s: unknown available shift %q", name, shift))
			}
		}
		if s.RequiredShift != "" && !s.RequiredShift.Valid() {
			errs = append(errs, fmt.Sprintf("%s: unknown required shift %q", name, s.RequiredShift))
		}
		if s.PreferredShift != "" && !s.PreferredShift.Valid() {
			errs = append(errs, fmt.Sprintf("%s: unknown preferred shift %q", name, s.PreferredShift))
		}
		if s.RequiredShift != "" && !s.CanWork(s.RequiredShift) {
			errs = append(errs, fmt.Sprintf("%s: required shift must be one of the available shifts", name))
		}
		if s.PreferredShift != "" && !s.CanWork(s.PreferredShift) {
			errs = append(errs, fmt.Sprintf("%s: preferred shift must be one of the available shifts", name))
		}
	}

	staffByID := make(map[string]models.StaffMember, len(input.Staff))
	for _, s := range input.Staff {
		staffByID[s.ID] = s
	}
	for _, req := range input.Requests {
		for _, h := range req.HalfStaff {
			s, ok := staffByID[h.StaffID]
			if !ok {
				errs = append(errs, fmt.Sprintf("%s: half request references unknown staff %q", req.Date, h.StaffID))
				continue
			}
			if !s.CanWork(h.Shift) {
				errs = append(errs, fmt.Sprintf("%s: %s requested a half %s shift which is not an available shift", req.Date, s.Name, h.Shift))
			}
			if s.RequiredShift != "" && s.RequiredShift != h.Shift {
				errs = append(errs, fmt.Sprintf("%s: %s requested a half %s shift but the required shift is %s", req.Date, s.Name, h.Shift, s.RequiredShift))
			}
		}
	}

	rules := input.WorkRules
	if rules.MinHeadcount < 1 {
		errs = append(errs, "minimum headcount must be at least 1")
	}
	if rules.MaxHeadcount < rules.MinHeadcount {
		errs = append(errs, "maximum headcount must not be below the minimum headcount")
	}
	if rules.WorkHours <= 0 {
		errs = append(errs, "work hours must be greater than 0")
	}
	if rules.BreakHours < 0 {
		errs = append(errs, "break hours must not be negative")
	}
	if !isInteger(rules.MinHeadcount) {
		errs = append(errs, "minimum headcount must be a whole number")
	}
	if !isInteger(rules.MaxHeadcount) {
		errs = append(errs, "maximum headcount must be a whole number")
	}
	if rules.MinHeadcount > MaxHeadcount || rules.MaxHeadcount > MaxHeadcount {
		errs = append(errs, fmt.Sprintf("headcounts must not exceed %d", MaxHeadcount))
	}

	return errs
}

// ValidateSchedule re-checks produced or hand-edited assignments against the
// request. Violations are advisory and returned as data.
// Headcount bounds are rounded here while the engine floors them.
func ValidateSchedule(input models.ScheduleInput, assignments []models.ScheduleAssignment) []string {
	var errs []string

	reqByDate := make(map[string]models.DayRequest, len(input.Requests))
	for _, r := range input.Requests {
		reqByDate[r.Date] = r
	}
	staffByID := make(map[string]models.StaffMember, len(input.Staff))
	for _, s := range input.Staff {
		staffByID[s.ID] = s
	}

	minHC := headcount(math.Round(input.WorkRules.MinHeadcount))
	maxHC := headcount(math.Round(input.WorkRules.MaxHeadcount))

	for _, a := range assignments {
		req, ok := reqByDate[a.Date]
		if !ok {
			req = models.DayRequest{Date: a.Date}
		}

		count := a.Headcount()
		if count < minHC {
			errs = append(errs, fmt.Sprintf("%s: assigned headcount (%d) is below the minimum (%d)", a.Date, count, minHC))
		}
		if count > maxHC {
			errs = append(errs, fmt.Sprintf("%s: assigned headcount (%d) is above the maximum (%d)", a.Date, count, maxHC))
		}

		hasOpen := len(a.ByShift[models.ShiftOpen]) > 0
		hasMiddle := len(a.ByShift[models.ShiftMiddle]) > 0
		hasClose := len(a.ByShift[models.ShiftClose]) > 0
		if !hasOpen || !hasClose {
			errs = append(errs, fmt.Sprintf("%s: open or close has no one assigned", a.Date))
		}

		available := 0
		for _, s := range input.Staff {
			if !req.IsOff(s.ID) {
				available++
			}
		}
		target := min(maxHC, available)
		if target >= 3 && (!hasOpen || !hasMiddle || !hasClose) {
			errs = append(errs, fmt.Sprintf("%s: target headcount is %d but one of open/middle/close is empty", a.Date, target))
		}

		for _, shift := range models.AllShifts {
			for _, slot := range a.ByShift[shift] {
				s, ok := staffByID[slot.StaffID]
				if !ok {
					errs = append(errs, fmt.Sprintf("%s: unknown staff %q is assigned", a.Date, slot.StaffID))
				} else {
					if !s.CanWork(shift) {
						errs = append(errs, fmt.Sprintf("%s: %s cannot work %s", a.Date, s.Name, shift))
					}
					if s.RequiredShift != "" && s.RequiredShift != shift {
						errs = append(errs, fmt.Sprintf("%s: %s must work %s but is assigned %s", a.Date, s.Name, s.RequiredShift, shift))
					}
				}
				if req.IsOff(slot.StaffID) {
					errs = append(errs, fmt.Sprintf("%s: %s is off but assigned %s", a.Date, slot.StaffID, shift))
				}
			}
		}
	}

	return errs
}
