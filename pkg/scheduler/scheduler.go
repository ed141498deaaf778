package scheduler

import (
	"fmt"
	"math"
	"sort"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

// Scheduler handles the logic of assigning staff to daily shifts.
// Each date is planned greedily and on its own; earlier picks are never revisited.
type Scheduler struct {
	input    models.ScheduleInput
	requests map[string]models.DayRequest
	fairness *FairnessTracker
}

// NewScheduler creates a new scheduler instance for one request
func NewScheduler(input models.ScheduleInput) *Scheduler {
	requests := make(map[string]models.DayRequest, len(input.Requests))
	for _, r := range input.Requests {
		requests[r.Date] = r
	}
	return &Scheduler{
		input:    input,
		requests: requests,
	}
}

// Generate schedules every date of the request.
// It either returns a full result or the first date-level failure.
func Generate(input models.ScheduleInput) (*models.ScheduleResult, error) {
	return NewScheduler(input).Run()
}

// Run plans each date in order. Calling Run again starts from a clean slate.
func (s *Scheduler) Run() (*models.ScheduleResult, error) {
	dates := DaysInRange(s.input.StartDate, s.input.EndDate)
	if len(dates) == 0 {
		return nil, &GenerationError{
			Date:    s.input.StartDate,
			Rule:    RuleInvalidRange,
			Message: fmt.Sprintf("no dates between %q and %q", s.input.StartDate, s.input.EndDate),
		}
	}

	s.fairness = NewFairnessTracker()
	assignments := make([]models.ScheduleAssignment, 0, len(dates))

	for _, date := range dates {
		a, err := s.planDay(date)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
		s.fairness.Record(a)
	}

	return &models.ScheduleResult{
		Assignments: assignments,
		Stats:       BuildStats(s.input, assignments),
	}, nil
}

// RequestFor returns the stored request for date or an empty one
func (s *Scheduler) RequestFor(date string) models.DayRequest {
	if r, ok := s.requests[date]; ok {
		return r
	}
	return models.DayRequest{Date: date}
}

type pick struct {
	staffID string
	code    ShiftCode
}

// dayPlan holds the working state for a single date
type dayPlan struct {
	date      string
	req       models.DayRequest
	available []models.StaffMember
	allowed   map[string][]ShiftCode
	target    int
	required  int
	fairness  *FairnessTracker
	assigned  map[string]bool
	picks     []pick
}

func (s *Scheduler) planDay(date string) (models.ScheduleAssignment, error) {
	req := s.RequestFor(date)

	var available []models.StaffMember
	for _, st := range s.input.Staff {
		if !req.IsOff(st.ID) {
			available = append(available, st)
		}
	}

	minHC := headcount(math.Floor(s.input.WorkRules.MinHeadcount))
	maxHC := headcount(math.Floor(s.input.WorkRules.MaxHeadcount))

	p := &dayPlan{
		date:      date,
		req:       req,
		available: available,
		allowed:   make(map[string][]ShiftCode, len(available)),
		target:    min(maxHC, len(available)),
		required:  minHC,
		fairness:  s.fairness,
		assigned:  make(map[string]bool),
	}
	for _, st := range available {
		p.allowed[st.ID] = allowedCodes(st, req)
	}

	if len(available) < minHC {
		return models.ScheduleAssignment{}, p.fail(RuleMinHeadcount,
			fmt.Sprintf("available staff (%d) is below the minimum headcount (%d)", len(available), minHC))
	}

	if !p.anyCanWork(models.ShiftOpen) || !p.anyCanWork(models.ShiftClose) {
		return models.ScheduleAssignment{}, p.fail(RuleOpenCloseCapability,
			"no available staff can work open or no available staff can work close")
	}
	if p.target >= 3 && !p.anyCanWork(models.ShiftMiddle) {
		return models.ScheduleAssignment{}, p.fail(RuleMiddleCapability,
			fmt.Sprintf("target headcount is %d but no available staff can work middle", p.target))
	}

	mandatory := []models.Shift{models.ShiftOpen, models.ShiftClose}
	if p.target >= 3 {
		mandatory = append(mandatory, models.ShiftMiddle)
	}
	for _, shift := range mandatory {
		if !p.assignSlot(shift) {
			return models.ScheduleAssignment{}, p.fail(slotRule[shift],
				fmt.Sprintf("could not assign anyone to %s (target headcount %d)", shift, p.target))
		}
	}

	p.fill()

	return p.result(), nil
}

// allowedCodes lists the codes a staff member may take on a date.
// Every workable block offers both durations; a half request also adds the
// half code of the requested block. A required shift narrows the blocks to it.
func allowedCodes(st models.StaffMember, req models.DayRequest) []ShiftCode {
	var codes []ShiftCode
	add := func(c ShiftCode) {
		for _, existing := range codes {
			if existing == c {
				return
			}
		}
		codes = append(codes, c)
	}

	if h, ok := req.HalfFor(st.ID); ok && (st.RequiredShift == "" || st.RequiredShift == h.Shift) {
		add(CodeFor(h.Shift, true))
	}

	shifts := st.AvailableShifts
	if st.RequiredShift != "" {
		shifts = []models.Shift{st.RequiredShift}
	}
	for _, shift := range shifts {
		add(CodeFor(shift, false))
		add(CodeFor(shift, true))
	}
	return codes
}

func (p *dayPlan) anyCanWork(shift models.Shift) bool {
	for _, st := range p.available {
		if st.CanWork(shift) {
			return true
		}
	}
	return false
}

func (p *dayPlan) blockCodes(staffID string, shift models.Shift) []ShiftCode {
	var out []ShiftCode
	for _, c := range p.allowed[staffID] {
		if b, ok := c.Block(); ok && b == shift {
			out = append(out, c)
		}
	}
	return out
}

func (p *dayPlan) canCover(staffID string, shift models.Shift) bool {
	return len(p.blockCodes(staffID, shift)) > 0
}

// blocks returns the distinct blocks a staff member may work, in code order
func (p *dayPlan) blocks(staffID string) []models.Shift {
	var out []models.Shift
	seen := make(map[models.Shift]bool)
	for _, c := range p.allowed[staffID] {
		b, ok := c.Block()
		if !ok || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	return out
}

// chooseCode picks the half code for staff with a half request, otherwise the
// full code, falling back to whatever the block offers.
func (p *dayPlan) chooseCode(staffID string, shift models.Shift) (ShiftCode, bool) {
	codes := p.blockCodes(staffID, shift)
	if _, half := p.req.HalfFor(staffID); half {
		for _, c := range codes {
			if c.IsHalf() {
				return c, true
			}
		}
		return "", false
	}
	for _, c := range codes {
		if !c.IsHalf() {
			return c, true
		}
	}
	if len(codes) > 0 {
		return codes[0], true
	}
	return "", false
}

func (p *dayPlan) recent(staffID string, shift models.Shift) int {
	return p.fairness.RecentCount(staffID, shift, p.date)
}

func (p *dayPlan) hire(staffID string, code ShiftCode) {
	p.assigned[staffID] = true
	p.picks = append(p.picks, pick{staffID: staffID, code: code})
}

// halfElsewhere reports whether staffID asked for a half shift in another block
func (p *dayPlan) halfElsewhere(staffID string, shift models.Shift) bool {
	h, ok := p.req.HalfFor(staffID)
	return ok && h.Shift != shift
}

// assignSlot fills one mandatory block. Staff preferring the block go first,
// then the one who worked it least in the fairness window. On equal counts
// staff whose half request names another block step back, so they stay free
// for the block they asked to work half of; remaining ties keep roster order.
func (p *dayPlan) assignSlot(shift models.Shift) bool {
	var candidates []models.StaffMember
	for _, st := range p.available {
		if !p.assigned[st.ID] && p.canCover(st.ID, shift) {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		return false
	}

	pool := candidates
	var preferred []models.StaffMember
	for _, st := range candidates {
		if st.PreferredShift == shift {
			preferred = append(preferred, st)
		}
	}
	if len(preferred) > 0 {
		pool = preferred
	}

	counts := make(map[string]int, len(pool))
	for _, st := range pool {
		counts[st.ID] = p.recent(st.ID, shift)
	}
	sort.SliceStable(pool, func(i, j int) bool {
		ci, cj := counts[pool[i].ID], counts[pool[j].ID]
		if ci != cj {
			return ci < cj
		}
		return !p.halfElsewhere(pool[i].ID, shift) && p.halfElsewhere(pool[j].ID, shift)
	})

	selected := pool[0]
	code, ok := p.chooseCode(selected.ID, shift)
	if !ok {
		return false
	}
	p.hire(selected.ID, code)
	return true
}

// fill hires remaining staff until the target is met. A staff member whose
// preferred block is workable is hired straight away; otherwise the first
// remaining staff member takes their least recently worked block, favouring
// a half-requested block on equal counts.
// Running out of candidates is not an error.
func (p *dayPlan) fill() {
	for len(p.assigned) < p.target {
		var remaining []models.StaffMember
		for _, st := range p.available {
			if !p.assigned[st.ID] {
				remaining = append(remaining, st)
			}
		}
		if len(remaining) == 0 {
			break
		}

		var best *models.StaffMember
		var bestBlock models.Shift

		for i := range remaining {
			st := &remaining[i]
			pref := st.PreferredShift
			if pref != "" && p.canCover(st.ID, pref) {
				best = st
				bestBlock = pref
				break
			}

			if best == nil {
				blocks := p.blocks(st.ID)
				if len(blocks) > 0 {
					counts := make(map[models.Shift]int, len(blocks))
					for _, b := range blocks {
						counts[b] = p.recent(st.ID, b)
					}
					half, _ := p.req.HalfFor(st.ID)
					sort.SliceStable(blocks, func(i, j int) bool {
						ci, cj := counts[blocks[i]], counts[blocks[j]]
						if ci != cj {
							return ci < cj
						}
						return blocks[i] == half.Shift && blocks[j] != half.Shift
					})
					best = st
					bestBlock = blocks[0]
				}
			}
		}

		if best == nil {
			break
		}
		code, ok := p.chooseCode(best.ID, bestBlock)
		if !ok {
			break
		}
		p.hire(best.ID, code)
	}
}

func (p *dayPlan) result() models.ScheduleAssignment {
	a := models.NewScheduleAssignment(p.date)
	for _, pk := range p.picks {
		shift, ok := pk.code.Block()
		if !ok {
			continue
		}
		a.ByShift[shift] = append(a.ByShift[shift], models.ShiftSlot{
			StaffID: pk.staffID,
			Unit:    pk.code.Unit(),
		})
	}
	return a
}

// fail builds the structured error for this date with a snapshot of who was available
func (p *dayPlan) fail(rule Rule, msg string) *GenerationError {
	assigned := make([]string, 0, len(p.picks))
	for _, pk := range p.picks {
		assigned = append(assigned, pk.staffID)
	}

	var candidates []CandidateSnapshot
	for _, st := range p.available {
		if len(candidates) == maxSnapshotCandidates {
			break
		}
		snap := CandidateSnapshot{
			StaffID:         st.ID,
			Name:            st.Name,
			AvailableShifts: st.AvailableShifts,
			AllowedCodes:    p.allowed[st.ID],
			Preferred:       st.PreferredShift,
			Assigned:        p.assigned[st.ID],
		}
		if h, ok := p.req.HalfFor(st.ID); ok {
			snap.HalfRequest = h.Shift
		}
		candidates = append(candidates, snap)
	}

	return &GenerationError{
		Date:       p.date,
		Rule:       rule,
		Message:    msg,
		Available:  len(p.available),
		Required:   p.required,
		Target:     p.target,
		Assigned:   assigned,
		Candidates: candidates,
	}
}
