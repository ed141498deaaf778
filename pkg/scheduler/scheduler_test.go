package scheduler

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

func crew() []models.StaffMember {
	return []models.StaffMember{
		{ID: "alice", Name: "Alice", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
		{ID: "bob", Name: "Bob", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftMiddle, models.ShiftClose}},
		{ID: "carol", Name: "Carol", AvailableShifts: []models.Shift{models.ShiftMiddle, models.ShiftClose}},
	}
}

func oneDay(staff []models.StaffMember, requests ...models.DayRequest) models.ScheduleInput {
	return models.ScheduleInput{
		StartDate: "2025-03-03",
		EndDate:   "2025-03-03",
		WorkRules: models.WorkRules{MinHeadcount: 2, MaxHeadcount: 3, WorkHours: 8, BreakHours: 1},
		Staff:     staff,
		Requests:  requests,
	}
}

func staffIn(a models.ScheduleAssignment, shift models.Shift) []string {
	var ids []string
	for _, slot := range a.ByShift[shift] {
		ids = append(ids, slot.StaffID)
	}
	return ids
}

func TestGenerate_AllThreeBlocksWhenTargetIsThree(t *testing.T) {
	res, err := Generate(oneDay(crew()))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Assignments) != 1 {
		t.Fatalf("Expected 1 assignment, got %d", len(res.Assignments))
	}

	a := res.Assignments[0]
	if a.Headcount() != 3 {
		t.Errorf("Expected headcount 3, got %d", a.Headcount())
	}
	for shift, want := range map[models.Shift][]string{
		models.ShiftOpen:   {"alice"},
		models.ShiftClose:  {"bob"},
		models.ShiftMiddle: {"carol"},
	} {
		if got := staffIn(a, shift); !reflect.DeepEqual(got, want) {
			t.Errorf("Expected %s to be %v, got %v", shift, want, got)
		}
	}
}

func TestGenerate_OffDayDropsMiddle(t *testing.T) {
	res, err := Generate(oneDay(crew(), models.DayRequest{Date: "2025-03-03", OffStaffIDs: []string{"alice"}}))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	a := res.Assignments[0]
	if a.Headcount() != 2 {
		t.Errorf("Expected headcount 2, got %d", a.Headcount())
	}
	if len(a.ByShift[models.ShiftMiddle]) != 0 {
		t.Errorf("Expected no middle slot, got %v", staffIn(a, models.ShiftMiddle))
	}
	if a.Has(models.ShiftOpen, "alice") || a.Has(models.ShiftClose, "alice") {
		t.Errorf("Expected alice to be off, got %+v", a.ByShift)
	}
	if got := staffIn(a, models.ShiftOpen); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("Expected bob to open, got %v", got)
	}
	if got := staffIn(a, models.ShiftClose); !reflect.DeepEqual(got, []string{"carol"}) {
		t.Errorf("Expected carol to close, got %v", got)
	}

	if res.Stats[0].OffDays != 1 {
		t.Errorf("Expected alice to have 1 off day, got %d", res.Stats[0].OffDays)
	}
}

func TestGenerate_HalfRequest(t *testing.T) {
	req := models.DayRequest{
		Date:      "2025-03-03",
		HalfStaff: []models.HalfRequest{{StaffID: "bob", Shift: models.ShiftMiddle}},
	}
	res, err := Generate(oneDay(crew(), req))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	a := res.Assignments[0]
	mid := a.ByShift[models.ShiftMiddle]
	if len(mid) != 1 || mid[0].StaffID != "bob" || mid[0].Unit != HalfUnit {
		t.Errorf("Expected bob on a half middle, got %+v", mid)
	}

	for _, st := range res.Stats {
		if st.StaffID != "bob" {
			continue
		}
		if st.WorkUnits != 0.5 {
			t.Errorf("Expected bob to have 0.5 work units, got %v", st.WorkUnits)
		}
		if st.HalfDays != 1 || st.FullDays != 0 {
			t.Errorf("Expected 1 half day and 0 full days, got %d and %d", st.HalfDays, st.FullDays)
		}
	}
}

func TestGenerate_NotEnoughStaff(t *testing.T) {
	req := models.DayRequest{Date: "2025-03-03", OffStaffIDs: []string{"alice", "carol"}}
	res, err := Generate(oneDay(crew(), req))
	if res != nil {
		t.Errorf("Expected no result, got %+v", res)
	}
	if !errors.Is(err, ErrInfeasible) {
		t.Fatalf("Expected ErrInfeasible, got %v", err)
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %T", err)
	}
	if genErr.Rule != RuleMinHeadcount {
		t.Errorf("Expected rule %s, got %s", RuleMinHeadcount, genErr.Rule)
	}
	if genErr.Available != 1 || genErr.Required != 2 {
		t.Errorf("Expected 1 available vs 2 required, got %d vs %d", genErr.Available, genErr.Required)
	}
	if !strings.Contains(err.Error(), "2025-03-03") {
		t.Errorf("Expected error to name the date, got %q", err.Error())
	}
}

func TestGenerate_NoCloser(t *testing.T) {
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftMiddle}},
	}
	_, err := Generate(oneDay(staff))

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %v", err)
	}
	if genErr.Rule != RuleOpenCloseCapability {
		t.Errorf("Expected rule %s, got %s", RuleOpenCloseCapability, genErr.Rule)
	}
	if len(genErr.Candidates) != 2 {
		t.Errorf("Expected 2 candidates in the snapshot, got %d", len(genErr.Candidates))
	}
}

func TestGenerate_NoMiddleWhenTargetIsThree(t *testing.T) {
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftClose}},
		{ID: "c", Name: "C", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
	}
	_, err := Generate(oneDay(staff))

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %v", err)
	}
	if genErr.Rule != RuleMiddleCapability {
		t.Errorf("Expected rule %s, got %s", RuleMiddleCapability, genErr.Rule)
	}
}

func TestGenerate_GreedyMandatorySlotFailure(t *testing.T) {
	// The only middle-capable person is taken for open first, and the greedy
	// pass never revisits that pick.
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftMiddle}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftClose}},
		{ID: "c", Name: "C", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
	}
	_, err := Generate(oneDay(staff))

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %v", err)
	}
	if genErr.Rule != RuleMiddleSlot {
		t.Errorf("Expected rule %s, got %s", RuleMiddleSlot, genErr.Rule)
	}
	if !reflect.DeepEqual(genErr.Assigned, []string{"a", "b"}) {
		t.Errorf("Expected a and b already assigned, got %v", genErr.Assigned)
	}
}

func TestGenerate_PreferredShiftWinsMandatorySlot(t *testing.T) {
	staff := crew()
	staff[1].PreferredShift = models.ShiftOpen

	res, err := Generate(oneDay(staff))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := staffIn(res.Assignments[0], models.ShiftOpen); !reflect.DeepEqual(got, []string{"bob"}) {
		t.Errorf("Expected bob to open, got %v", got)
	}
}

func TestGenerate_FillPrefersPreference(t *testing.T) {
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftClose}},
		{ID: "c", Name: "C", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftMiddle, models.ShiftClose}},
		{ID: "d", Name: "D", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}, PreferredShift: models.ShiftClose},
		{ID: "e", Name: "E", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}, PreferredShift: models.ShiftClose},
	}
	input := oneDay(staff)
	input.WorkRules.MaxHeadcount = 5

	res, err := Generate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	a := res.Assignments[0]
	if a.Headcount() != 5 {
		t.Errorf("Expected headcount 5, got %d", a.Headcount())
	}
	// e comes after b in the roster but is hired first because of the preference
	if got := staffIn(a, models.ShiftOpen); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Expected open to be [a], got %v", got)
	}
	if got := staffIn(a, models.ShiftClose); !reflect.DeepEqual(got, []string{"d", "e", "b"}) {
		t.Errorf("Expected close to be [d e b], got %v", got)
	}
}

func TestGenerate_FairnessRotatesOpen(t *testing.T) {
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
	}
	input := oneDay(staff)
	input.EndDate = "2025-03-06"
	input.WorkRules.MaxHeadcount = 2

	res, err := Generate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Assignments) != 4 {
		t.Fatalf("Expected 4 days, got %d", len(res.Assignments))
	}

	var openers []string
	for _, a := range res.Assignments {
		openers = append(openers, staffIn(a, models.ShiftOpen)...)
	}
	want := []string{"a", "b", "a", "b"}
	if !reflect.DeepEqual(openers, want) {
		t.Errorf("Expected openers %v, got %v", want, openers)
	}
}

func TestGenerate_RequiredShiftIsHonoured(t *testing.T) {
	staff := crew()
	staff[0].RequiredShift = models.ShiftClose
	staff[1].RequiredShift = models.ShiftOpen

	input := oneDay(staff)
	res, err := Generate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v := ValidateSchedule(input, res.Assignments); len(v) != 0 {
		t.Errorf("Expected no violations, got %v", v)
	}
	if !res.Assignments[0].Has(models.ShiftClose, "alice") {
		t.Errorf("Expected alice on close, got %+v", res.Assignments[0].ByShift)
	}
}

// monthInput is a wider roster over two months with a few day requests
func monthInput() models.ScheduleInput {
	input := oneDay(append(crew(),
		models.StaffMember{ID: "dan", Name: "Dan", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftMiddle}, PreferredShift: models.ShiftMiddle},
		models.StaffMember{ID: "eve", Name: "Eve", AvailableShifts: []models.Shift{models.ShiftClose}, RequiredShift: models.ShiftClose},
	),
		models.DayRequest{Date: "2025-03-04", OffStaffIDs: []string{"alice", "eve"}},
		models.DayRequest{Date: "2025-03-07", HalfStaff: []models.HalfRequest{{StaffID: "alice", Shift: models.ShiftOpen}}},
		models.DayRequest{Date: "2025-03-09", OffStaffIDs: []string{"alice"}, HalfStaff: []models.HalfRequest{{StaffID: "eve", Shift: models.ShiftClose}}},
	)
	input.EndDate = "2025-04-30"
	input.WorkRules.MaxHeadcount = 4
	return input
}

func TestGenerate_Idempotent(t *testing.T) {
	first, err := Generate(monthInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	second, err := Generate(monthInput())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Expected identical results for identical inputs")
	}

	s := NewScheduler(monthInput())
	again1, _ := s.Run()
	again2, _ := s.Run()
	if !reflect.DeepEqual(again1, again2) {
		t.Errorf("Expected repeated runs of one scheduler to match")
	}
}

func TestGenerate_Properties(t *testing.T) {
	input := monthInput()
	if errs := ValidateInput(input); len(errs) != 0 {
		t.Fatalf("Expected valid input, got %v", errs)
	}
	res, err := Generate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(res.Assignments) != 59 {
		t.Errorf("Expected 59 days, got %d", len(res.Assignments))
	}

	staffByID := map[string]models.StaffMember{}
	for _, s := range input.Staff {
		staffByID[s.ID] = s
	}
	reqs := NewScheduler(input)

	for _, a := range res.Assignments {
		for _, shift := range []models.Shift{models.ShiftOpen, models.ShiftClose} {
			if len(a.ByShift[shift]) == 0 {
				t.Errorf("%s: Expected %s to be staffed", a.Date, shift)
			}
			for _, slot := range a.ByShift[shift] {
				if !staffByID[slot.StaffID].CanWork(shift) {
					t.Errorf("%s: %s cannot work %s", a.Date, slot.StaffID, shift)
				}
			}
		}
		req := reqs.RequestFor(a.Date)
		available := len(input.Staff) - len(req.OffStaffIDs)
		if min(4, available) >= 3 && len(a.ByShift[models.ShiftMiddle]) == 0 {
			t.Errorf("%s: Expected middle to be staffed", a.Date)
		}
		for _, id := range req.OffStaffIDs {
			if a.UnitsFor(id) != 0 {
				t.Errorf("%s: Expected off staff %s to be unassigned", a.Date, id)
			}
		}
	}

	if v := ValidateSchedule(input, res.Assignments); len(v) != 0 {
		t.Errorf("Expected no violations, got %v", v)
	}
}

func TestGenerate_InvalidRange(t *testing.T) {
	input := oneDay(crew())
	input.EndDate = "2025-03-01"

	_, err := Generate(input)
	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Rule != RuleInvalidRange {
		t.Errorf("Expected invalid range error, got %v", err)
	}
}

func TestGenerate_HugeHeadcountIsInfeasible(t *testing.T) {
	input := oneDay(crew())
	input.WorkRules.MinHeadcount = 1e19
	input.WorkRules.MaxHeadcount = 1e19

	res, err := Generate(input)
	if res != nil {
		t.Errorf("Expected no result, got %+v", res)
	}
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %v", err)
	}
	if genErr.Rule != RuleMinHeadcount {
		t.Errorf("Expected rule %s, got %s", RuleMinHeadcount, genErr.Rule)
	}
	if genErr.Required != MaxHeadcount || genErr.Available != 3 {
		t.Errorf("Expected 3 available vs %d required, got %d vs %d", MaxHeadcount, genErr.Available, genErr.Required)
	}
}

func TestGenerate_HalfRequestElsewhereStepsBackFromMandatorySlot(t *testing.T) {
	// Equal fairness counts: a asked for a half close, so b takes open even
	// though a comes first in the roster.
	staff := []models.StaffMember{
		{ID: "a", Name: "A", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
		{ID: "b", Name: "B", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}},
	}
	input := oneDay(staff, models.DayRequest{
		Date:      "2025-03-03",
		HalfStaff: []models.HalfRequest{{StaffID: "a", Shift: models.ShiftClose}},
	})
	input.WorkRules.MaxHeadcount = 2

	res, err := Generate(input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	a := res.Assignments[0]
	if got := a.ByShift[models.ShiftOpen]; !reflect.DeepEqual(got, []models.ShiftSlot{{StaffID: "b", Unit: 1}}) {
		t.Errorf("Expected b on a full open, got %v", got)
	}
	if got := a.ByShift[models.ShiftClose]; !reflect.DeepEqual(got, []models.ShiftSlot{{StaffID: "a", Unit: 0.5}}) {
		t.Errorf("Expected a on a half close, got %v", got)
	}
}

func TestGenerate_RequiredShiftLeavesNoOpener(t *testing.T) {
	// Alice is the only one available for open but must work close, so the
	// open slot has no candidate even though the capability check passes.
	staff := []models.StaffMember{
		{ID: "alice", Name: "Alice", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}, RequiredShift: models.ShiftClose},
		{ID: "carol", Name: "Carol", AvailableShifts: []models.Shift{models.ShiftMiddle, models.ShiftClose}},
	}
	input := oneDay(staff)
	input.WorkRules.MaxHeadcount = 2

	if errs := ValidateInput(input); len(errs) != 0 {
		t.Fatalf("Expected valid input, got %v", errs)
	}

	_, err := Generate(input)
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Expected *GenerationError, got %v", err)
	}
	if genErr.Rule != RuleOpenSlot {
		t.Errorf("Expected rule %s, got %s", RuleOpenSlot, genErr.Rule)
	}
	if len(genErr.Assigned) != 0 {
		t.Errorf("Expected nobody assigned yet, got %v", genErr.Assigned)
	}
}
