package models

import "time"

// Shift is a coarse shift block a staff member can work
type Shift string

const (
	ShiftOpen   Shift = "open"
	ShiftMiddle Shift = "middle"
	ShiftClose  Shift = "close"
)

// AllShifts lists the blocks in display order
var AllShifts = []Shift{ShiftOpen, ShiftMiddle, ShiftClose}

// Valid reports whether s is one of the known blocks
func (s Shift) Valid() bool {
	return s == ShiftOpen || s == ShiftMiddle || s == ShiftClose
}

// WorkRules holds the daily headcount bounds and working hours.
// Headcounts are whole people but arrive as numbers from clients, so they are
// kept as float64 and checked by the validators.
type WorkRules struct {
	MinHeadcount float64 `json:"min_headcount"`
	MaxHeadcount float64 `json:"max_headcount"`
	WorkHours    float64 `json:"work_hours"`
	BreakHours   float64 `json:"break_hours"`
}

// StaffMember represents a crew member on the roster
type StaffMember struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	AvailableShifts []Shift       `json:"available_shifts"`
	RequiredShift   Shift         `json:"required_shift,omitempty"`
	PreferredShift  Shift         `json:"preferred_shift,omitempty"`
	Priority        map[Shift]int `json:"priority,omitempty"`
}

// CanWork reports whether shift is among the member's available shifts
func (m StaffMember) CanWork(shift Shift) bool {
	for _, s := range m.AvailableShifts {
		if s == shift {
			return true
		}
	}
	return false
}

// HalfRequest asks for a half shift in the given block
type HalfRequest struct {
	StaffID string `json:"staff_id"`
	Shift   Shift  `json:"shift"`
}

// DayRequest carries per-date absences and half-day requests
type DayRequest struct {
	Date        string        `json:"date"`
	OffStaffIDs []string      `json:"off_staff_ids"`
	HalfStaff   []HalfRequest `json:"half_staff"`
	// NeedDelta is stored for clients but not read by the engine.
	NeedDelta float64 `json:"need_delta"`
}

// IsOff reports whether staffID has the day off
func (r DayRequest) IsOff(staffID string) bool {
	for _, id := range r.OffStaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// HalfFor returns the first half request of staffID, if any
func (r DayRequest) HalfFor(staffID string) (HalfRequest, bool) {
	for _, h := range r.HalfStaff {
		if h.StaffID == staffID {
			return h, true
		}
	}
	return HalfRequest{}, false
}

// ShiftSlot is one staff member placed in a block with a workload unit (1 or 0.5)
type ShiftSlot struct {
	StaffID string  `json:"staff_id"`
	Unit    float64 `json:"unit"`
}

// ScheduleAssignment is the result for a single date
type ScheduleAssignment struct {
	Date    string                `json:"date"`
	ByShift map[Shift][]ShiftSlot `json:"by_shift"`
}

// NewScheduleAssignment returns an assignment with all three blocks present
func NewScheduleAssignment(date string) ScheduleAssignment {
	return ScheduleAssignment{
		Date: date,
		ByShift: map[Shift][]ShiftSlot{
			ShiftOpen:   {},
			ShiftMiddle: {},
			ShiftClose:  {},
		},
	}
}

// Has reports whether staffID is placed in shift on this date
func (a ScheduleAssignment) Has(shift Shift, staffID string) bool {
	for _, slot := range a.ByShift[shift] {
		if slot.StaffID == staffID {
			return true
		}
	}
	return false
}

// UnitsFor sums the units staffID works on this date across all blocks
func (a ScheduleAssignment) UnitsFor(staffID string) float64 {
	var units float64
	for _, shift := range AllShifts {
		for _, slot := range a.ByShift[shift] {
			if slot.StaffID == staffID {
				units += slot.Unit
			}
		}
	}
	return units
}

// Headcount counts distinct staff placed on this date
func (a ScheduleAssignment) Headcount() int {
	seen := make(map[string]bool)
	for _, shift := range AllShifts {
		for _, slot := range a.ByShift[shift] {
			seen[slot.StaffID] = true
		}
	}
	return len(seen)
}

// ScheduleStats summarises one staff member over the whole range
type ScheduleStats struct {
	StaffID   string  `json:"staff_id"`
	Name      string  `json:"name"`
	OffDays   int     `json:"off_days"`
	HalfDays  int     `json:"half_days"`
	FullDays  int     `json:"full_days"`
	WorkUnits float64 `json:"work_units"`
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	StartDate string        `json:"start_date" binding:"required"`
	EndDate   string        `json:"end_date" binding:"required"`
	WorkRules WorkRules     `json:"work_rules"`
	Staff     []StaffMember `json:"staff"`
	Requests  []DayRequest  `json:"requests"`
}

// ScheduleResult is what the engine produces
type ScheduleResult struct {
	Assignments []ScheduleAssignment `json:"assignments"`
	Stats       []ScheduleStats      `json:"stats"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	Assignments   []ScheduleAssignment `json:"assignments"`
	Stats         []ScheduleStats      `json:"stats"`
	Violations    []string             `json:"violations"`
	FairnessScore float64              `json:"fairness_score"`
	TotalHours    map[string]float64   `json:"total_hours"`
}

// CheckInput asks for an output check of externally edited assignments
type CheckInput struct {
	Input       ScheduleInput        `json:"input" binding:"required"`
	Assignments []ScheduleAssignment `json:"assignments"`
}

// SavedSchedule is a generated (and possibly edited) schedule kept in storage
type SavedSchedule struct {
	ID                   string               `json:"id"`
	StartDate            string               `json:"start_date"`
	EndDate              string               `json:"end_date"`
	Year                 int                  `json:"year"`
	Month                int                  `json:"month"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
	WorkRules            WorkRules            `json:"work_rules"`
	Staff                []StaffMember        `json:"staff"`
	Requests             []DayRequest         `json:"requests"`
	Assignments          []ScheduleAssignment `json:"assignments"`
	Stats                []ScheduleStats      `json:"stats"`
	EditSourceScheduleID string               `json:"edit_source_schedule_id,omitempty"`
}

// Input rebuilds the generation request a saved schedule came from
func (s SavedSchedule) Input() ScheduleInput {
	return ScheduleInput{
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
		WorkRules: s.WorkRules,
		Staff:     s.Staff,
		Requests:  s.Requests,
	}
}

// ExtraWork records hours worked outside the generated schedule
type ExtraWork struct {
	ID         string    `json:"id"`
	ScheduleID string    `json:"schedule_id"`
	Date       string    `json:"date" binding:"required"`
	StaffID    string    `json:"staff_id" binding:"required"`
	Hours      float64   `json:"hours" binding:"gt=0"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// StaffPreset is a named roster that can be reused between schedules
type StaffPreset struct {
	ID        string        `json:"id"`
	Name      string        `json:"name" binding:"required"`
	Staff     []StaffMember `json:"staff"`
	UpdatedAt time.Time     `json:"updated_at"`
}
