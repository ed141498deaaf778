package scheduler

import (
	"math"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

// BuildStats derives per-staff day counts and work units from assignments.
// A day listed as off counts as an off day; otherwise the day's units decide
// between half (0.5) and full (1 or more). Unassigned days count as neither.
func BuildStats(input models.ScheduleInput, assignments []models.ScheduleAssignment) []models.ScheduleStats {
	reqByDate := make(map[string]models.DayRequest, len(input.Requests))
	for _, r := range input.Requests {
		reqByDate[r.Date] = r
	}

	stats := make([]models.ScheduleStats, 0, len(input.Staff))
	for _, s := range input.Staff {
		st := models.ScheduleStats{StaffID: s.ID, Name: s.Name}
		for _, a := range assignments {
			units := a.UnitsFor(s.ID)
			st.WorkUnits += units

			if req, ok := reqByDate[a.Date]; ok && req.IsOff(s.ID) {
				st.OffDays++
				continue
			}
			switch {
			case units == HalfUnit:
				st.HalfDays++
			case units >= FullUnit:
				st.FullDays++
			}
		}
		stats = append(stats, st)
	}
	return stats
}

// WorkHours returns the fixed hours of one slot in shift with the given unit
func WorkHours(shift models.Shift, unit float64) float64 {
	return CodeFor(shift, unit == HalfUnit).Hours()
}

// TotalWorkHours sums schedule hours per staff member plus any extra hours
// supplied by the caller. extra may be nil.
func TotalWorkHours(assignments []models.ScheduleAssignment, extra map[string]float64) map[string]float64 {
	total := make(map[string]float64)
	for _, a := range assignments {
		for _, shift := range models.AllShifts {
			for _, slot := range a.ByShift[shift] {
				total[slot.StaffID] += WorkHours(shift, slot.Unit)
			}
		}
	}
	for staffID, hours := range extra {
		total[staffID] += hours
	}
	return total
}

// FairnessScore returns a percentage (0-100) representing how evenly work
// units are spread over the roster. 100% is perfectly fair (Standard Deviation = 0).
func FairnessScore(stats []models.ScheduleStats) float64 {
	if len(stats) == 0 {
		return 100.0
	}

	var sum float64
	for _, s := range stats {
		sum += s.WorkUnits
	}
	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(stats))

	var varianceSum float64
	for _, s := range stats {
		diff := s.WorkUnits - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(stats)))

	// 0% once the deviation reaches the mean
	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
