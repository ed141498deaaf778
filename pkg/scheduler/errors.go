package scheduler

import (
	"errors"
	"fmt"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

// ErrInfeasible is wrapped by every GenerationError
var ErrInfeasible = errors.New("schedule is infeasible")

// Rule names a constraint that made a date infeasible
type Rule string

const (
	RuleInvalidRange        Rule = "invalid_range"
	RuleMinHeadcount        Rule = "min_headcount"
	RuleOpenCloseCapability Rule = "open_close_capability"
	RuleMiddleCapability    Rule = "middle_capability"
	RuleOpenSlot            Rule = "open_slot"
	RuleCloseSlot           Rule = "close_slot"
	RuleMiddleSlot          Rule = "middle_slot"
)

// slotRule maps a mandatory block to the rule reported when it cannot be filled
var slotRule = map[models.Shift]Rule{
	models.ShiftOpen:   RuleOpenSlot,
	models.ShiftMiddle: RuleMiddleSlot,
	models.ShiftClose:  RuleCloseSlot,
}

// CandidateSnapshot describes one available staff member at the moment of failure
type CandidateSnapshot struct {
	StaffID         string         `json:"staff_id"`
	Name            string         `json:"name"`
	AvailableShifts []models.Shift `json:"available_shifts"`
	AllowedCodes    []ShiftCode    `json:"allowed_codes"`
	HalfRequest     models.Shift   `json:"half_request,omitempty"`
	Preferred       models.Shift   `json:"preferred,omitempty"`
	Assigned        bool           `json:"assigned"`
}

// maxSnapshotCandidates caps the candidate list carried by an error
const maxSnapshotCandidates = 50

// GenerationError reports the first date that could not be scheduled.
// Generation is all-or-nothing, so no assignments accompany it.
type GenerationError struct {
	Date       string              `json:"date"`
	Rule       Rule                `json:"rule"`
	Message    string              `json:"message"`
	Available  int                 `json:"available"`
	Required   int                 `json:"required"`
	Target     int                 `json:"target"`
	Assigned   []string            `json:"assigned,omitempty"`
	Candidates []CandidateSnapshot `json:"candidates,omitempty"`
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Date, e.Message)
}

func (e *GenerationError) Unwrap() error {
	return ErrInfeasible
}
