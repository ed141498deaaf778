package scheduler

import (
	"reflect"
	"testing"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

func TestShiftCodes(t *testing.T) {
	if got := CodeFor(models.ShiftMiddle, true); got != MiddleHalf {
		t.Errorf("Expected M_H, got %s", got)
	}
	if got := CodeFor(models.Shift("lunch"), false); got != CodeOff {
		t.Errorf("Expected OFF for an unknown block, got %s", got)
	}

	block, ok := CloseFull.Block()
	if !ok || block != models.ShiftClose {
		t.Errorf("Expected close, got %s", block)
	}
	if _, ok := CodeOff.Block(); ok {
		t.Errorf("Expected OFF to have no block")
	}

	if OpenHalf.Unit() != 0.5 || OpenFull.Unit() != 1 || CodeOff.Unit() != 0 {
		t.Errorf("Unexpected units: %v %v %v", OpenHalf.Unit(), OpenFull.Unit(), CodeOff.Unit())
	}
	if CloseHalf.Hours() != 4 || MiddleFull.Hours() != 8 || CodeOff.Hours() != 0 {
		t.Errorf("Unexpected hours")
	}
}

func TestAllowedCodes(t *testing.T) {
	st := models.StaffMember{ID: "a", AvailableShifts: []models.Shift{models.ShiftOpen, models.ShiftClose}}

	got := allowedCodes(st, models.DayRequest{})
	want := []ShiftCode{OpenFull, OpenHalf, CloseFull, CloseHalf}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	req := models.DayRequest{HalfStaff: []models.HalfRequest{{StaffID: "a", Shift: models.ShiftClose}}}
	got = allowedCodes(st, req)
	want = []ShiftCode{CloseHalf, OpenFull, OpenHalf, CloseFull}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	st.RequiredShift = models.ShiftOpen
	got = allowedCodes(st, models.DayRequest{})
	want = []ShiftCode{OpenFull, OpenHalf}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestDaysInRange(t *testing.T) {
	got := DaysInRange("2024-02-27", "2024-03-01")
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if DaysInRange("2024-03-02", "2024-03-01") != nil {
		t.Errorf("Expected nil for a reversed range")
	}
	if DaysInRange("bad", "2024-03-01") != nil {
		t.Errorf("Expected nil for an invalid date")
	}
}
