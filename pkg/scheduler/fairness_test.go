package scheduler

import (
	"testing"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
)

func TestFairnessTracker_Window(t *testing.T) {
	f := NewFairnessTracker()

	for _, date := range []string{"2025-03-01", "2025-03-10", "2025-03-14", "2025-03-15"} {
		a := models.NewScheduleAssignment(date)
		a.ByShift[models.ShiftOpen] = []models.ShiftSlot{{StaffID: "alice", Unit: 1}}
		f.Record(a)
	}

	// 2025-03-01 is exactly 14 days back and still counts; the date itself does not
	if got := f.RecentCount("alice", models.ShiftOpen, "2025-03-15"); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := f.RecentCount("alice", models.ShiftOpen, "2025-03-16"); got != 3 {
		t.Errorf("Expected 3 once 03-01 leaves the window, got %d", got)
	}
	if got := f.RecentCount("alice", models.ShiftClose, "2025-03-16"); got != 0 {
		t.Errorf("Expected 0 for another block, got %d", got)
	}
	if got := f.RecentCount("bob", models.ShiftOpen, "2025-03-16"); got != 0 {
		t.Errorf("Expected 0 for another staff member, got %d", got)
	}
	if got := f.RecentCount("alice", models.ShiftOpen, "not-a-date"); got != 0 {
		t.Errorf("Expected 0 for an invalid date, got %d", got)
	}
}
