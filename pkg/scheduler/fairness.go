package scheduler

import "github.com/arnavshah/crew-scheduler-api/pkg/models"

// FairnessWindowDays is the trailing lookback used for tie-breaks
const FairnessWindowDays = 14

// FairnessTracker remembers the assignments produced so far in one generation
// and counts how often a staff member recently worked a given block.
// Only dates recorded on this tracker are visible; nothing is read from storage.
type FairnessTracker struct {
	byDate map[string]models.ScheduleAssignment
}

// NewFairnessTracker creates an empty tracker
func NewFairnessTracker() *FairnessTracker {
	return &FairnessTracker{byDate: make(map[string]models.ScheduleAssignment)}
}

// Record makes a finished day visible to later lookups
func (f *FairnessTracker) Record(a models.ScheduleAssignment) {
	f.byDate[a.Date] = a
}

// RecentCount counts the days within the window before date on which staffID
// was placed in shift. The date itself is not included.
func (f *FairnessTracker) RecentCount(staffID string, shift models.Shift, date string) int {
	d, err := ParseDate(date)
	if err != nil {
		return 0
	}

	count := 0
	for i := 1; i <= FairnessWindowDays; i++ {
		prev := d.AddDate(0, 0, -i).Format(DateLayout)
		a, ok := f.byDate[prev]
		if !ok {
			continue
		}
		if a.Has(shift, staffID) {
			count++
		}
	}
	return count
}
