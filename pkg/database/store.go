package database

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/models"
	"github.com/arnavshah/crew-scheduler-api/pkg/scheduler"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultWorkRules are returned until rules have been saved
var DefaultWorkRules = models.WorkRules{MinHeadcount: 2, MaxHeadcount: 3, WorkHours: 8, BreakHours: 1}

// ScheduleRecord represents the schedules table
type ScheduleRecord struct {
	ID                   string                      `gorm:"primaryKey;size:36"`
	StartDate            string                      `gorm:"not null"`
	EndDate              string                      `gorm:"not null"`
	Year                 int                         `gorm:"index:idx_schedule_month"`
	Month                int                         `gorm:"index:idx_schedule_month"`
	WorkRules            models.WorkRules            `gorm:"serializer:json;type:text"`
	Staff                []models.StaffMember        `gorm:"serializer:json;type:text"`
	Requests             []models.DayRequest         `gorm:"serializer:json;type:text"`
	Assignments          []models.ScheduleAssignment `gorm:"serializer:json;type:text"`
	Stats                []models.ScheduleStats      `gorm:"serializer:json;type:text"`
	EditSourceScheduleID string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (ScheduleRecord) TableName() string { return "schedules" }

// ExtraWorkRecord represents the extra_work table
type ExtraWorkRecord struct {
	ID         string  `gorm:"primaryKey;size:36"`
	ScheduleID string  `gorm:"index;not null"`
	Date       string  `gorm:"not null"`
	StaffID    string  `gorm:"not null"`
	Hours      float64 `gorm:"not null"`
	Note       string
	CreatedAt  time.Time
}

func (ExtraWorkRecord) TableName() string { return "extra_work" }

// StaffPresetRecord represents the staff_presets table
type StaffPresetRecord struct {
	ID        string               `gorm:"primaryKey;size:36"`
	Name      string               `gorm:"not null"`
	Staff     []models.StaffMember `gorm:"serializer:json;type:text"`
	UpdatedAt time.Time
}

func (StaffPresetRecord) TableName() string { return "staff_presets" }

// WorkRulesRecord holds the single stored set of work rules
type WorkRulesRecord struct {
	ID           uint `gorm:"primaryKey"`
	MinHeadcount float64
	MaxHeadcount float64
	WorkHours    float64
	BreakHours   float64
	UpdatedAt    time.Time
}

func (WorkRulesRecord) TableName() string { return "work_rules" }

const workRulesRowID = 1

// Store is the repository for schedules and their supporting data
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStore wraps an open, migrated database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying connection for the admin tables
func (s *Store) DB() *gorm.DB {
	return s.db
}

func (r ScheduleRecord) toModel() models.SavedSchedule {
	return models.SavedSchedule{
		ID:                   r.ID,
		StartDate:            r.StartDate,
		EndDate:              r.EndDate,
		Year:                 r.Year,
		Month:                r.Month,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		WorkRules:            r.WorkRules,
		Staff:                r.Staff,
		Requests:             r.Requests,
		Assignments:          r.Assignments,
		Stats:                r.Stats,
		EditSourceScheduleID: r.EditSourceScheduleID,
	}
}

// SaveSchedule inserts the schedule or replaces the stored one with the same id.
// A missing id is generated; year and month are taken from the start date.
func (s *Store) SaveSchedule(sch *models.SavedSchedule) error {
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	if d, err := scheduler.ParseDate(sch.StartDate); err == nil {
		sch.Year = d.Year()
		sch.Month = int(d.Month())
	}

	now := s.now()
	sch.CreatedAt = now
	var existing ScheduleRecord
	err := s.db.Select("created_at").Where("id = ?", sch.ID).First(&existing).Error
	switch {
	case err == nil:
		sch.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("load schedule %s: %w", sch.ID, err)
	}
	sch.UpdatedAt = now

	rec := ScheduleRecord{
		ID:                   sch.ID,
		StartDate:            sch.StartDate,
		EndDate:              sch.EndDate,
		Year:                 sch.Year,
		Month:                sch.Month,
		WorkRules:            sch.WorkRules,
		Staff:                sch.Staff,
		Requests:             sch.Requests,
		Assignments:          sch.Assignments,
		Stats:                sch.Stats,
		EditSourceScheduleID: sch.EditSourceScheduleID,
		CreatedAt:            sch.CreatedAt,
		UpdatedAt:            sch.UpdatedAt,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save schedule %s: %w", sch.ID, err)
	}
	return nil
}

// GetSchedule loads one schedule by id
func (s *Store) GetSchedule(id string) (*models.SavedSchedule, error) {
	var rec ScheduleRecord
	if err := s.db.Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, notFound(err)
	}
	m := rec.toModel()
	return &m, nil
}

// ListSchedules returns every schedule, newest first
func (s *Store) ListSchedules() ([]models.SavedSchedule, error) {
	var recs []ScheduleRecord
	if err := s.db.Order("created_at desc").Order("id desc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	out := make([]models.SavedSchedule, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toModel())
	}
	return out, nil
}

// DeleteSchedule removes a schedule together with its extra work entries
func (s *Store) DeleteSchedule(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", id).Delete(&ExtraWorkRecord{}).Error; err != nil {
			return fmt.Errorf("delete extra work of %s: %w", id, err)
		}
		res := tx.Where("id = ?", id).Delete(&ScheduleRecord{})
		if res.Error != nil {
			return fmt.Errorf("delete schedule %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GetWorkRules returns the stored rules, or the defaults when none were saved
func (s *Store) GetWorkRules() (models.WorkRules, error) {
	var rec WorkRulesRecord
	err := s.db.Where("id = ?", workRulesRowID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultWorkRules, nil
	}
	if err != nil {
		return models.WorkRules{}, fmt.Errorf("load work rules: %w", err)
	}
	return models.WorkRules{
		MinHeadcount: rec.MinHeadcount,
		MaxHeadcount: rec.MaxHeadcount,
		WorkHours:    rec.WorkHours,
		BreakHours:   rec.BreakHours,
	}, nil
}

// SaveWorkRules stores rules with headcounts forced to whole numbers of at least 1
func (s *Store) SaveWorkRules(rules models.WorkRules) (models.WorkRules, error) {
	rules.MinHeadcount = sanitizeHeadcount(rules.MinHeadcount)
	rules.MaxHeadcount = sanitizeHeadcount(rules.MaxHeadcount)

	rec := WorkRulesRecord{
		ID:           workRulesRowID,
		MinHeadcount: rules.MinHeadcount,
		MaxHeadcount: rules.MaxHeadcount,
		WorkHours:    rules.WorkHours,
		BreakHours:   rules.BreakHours,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return models.WorkRules{}, fmt.Errorf("save work rules: %w", err)
	}
	return rules, nil
}

func sanitizeHeadcount(v float64) float64 {
	if math.IsNaN(v) {
		return 1
	}
	return math.Max(1, math.Floor(v))
}

// SaveStaffPreset inserts or replaces a named roster
func (s *Store) SaveStaffPreset(p *models.StaffPreset) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.UpdatedAt = s.now()
	rec := StaffPresetRecord{ID: p.ID, Name: p.Name, Staff: p.Staff, UpdatedAt: p.UpdatedAt}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save staff preset %s: %w", p.ID, err)
	}
	return nil
}

// ListStaffPresets returns presets ordered by name
func (s *Store) ListStaffPresets() ([]models.StaffPreset, error) {
	var recs []StaffPresetRecord
	if err := s.db.Order("name").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list staff presets: %w", err)
	}
	out := make([]models.StaffPreset, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.StaffPreset{ID: r.ID, Name: r.Name, Staff: r.Staff, UpdatedAt: r.UpdatedAt})
	}
	return out, nil
}

// DeleteStaffPreset removes a preset
func (s *Store) DeleteStaffPreset(id string) error {
	res := s.db.Where("id = ?", id).Delete(&StaffPresetRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete staff preset %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveExtraWork inserts or replaces an extra work entry
func (s *Store) SaveExtraWork(w *models.ExtraWork) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	rec := ExtraWorkRecord{
		ID:         w.ID,
		ScheduleID: w.ScheduleID,
		Date:       w.Date,
		StaffID:    w.StaffID,
		Hours:      w.Hours,
		Note:       w.Note,
		CreatedAt:  w.CreatedAt,
	}
	if err := s.db.Save(&rec).Error; err != nil {
		return fmt.Errorf("save extra work %s: %w", w.ID, err)
	}
	return nil
}

// DeleteExtraWork removes one extra work entry
func (s *Store) DeleteExtraWork(id string) error {
	res := s.db.Where("id = ?", id).Delete(&ExtraWorkRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete extra work %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListExtraWork returns a schedule's extra work, optionally limited to one date
func (s *Store) ListExtraWork(scheduleID, date string) ([]models.ExtraWork, error) {
	q := s.db.Where("schedule_id = ?", scheduleID)
	if date != "" {
		q = q.Where("date = ?", date)
	}

	var recs []ExtraWorkRecord
	if err := q.Order("date").Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list extra work of %s: %w", scheduleID, err)
	}
	out := make([]models.ExtraWork, 0, len(recs))
	for _, r := range recs {
		out = append(out, models.ExtraWork{
			ID:         r.ID,
			ScheduleID: r.ScheduleID,
			Date:       r.Date,
			StaffID:    r.StaffID,
			Hours:      r.Hours,
			Note:       r.Note,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// ExtraHours sums a schedule's extra work hours per staff member
func (s *Store) ExtraHours(scheduleID string) (map[string]float64, error) {
	works, err := s.ListExtraWork(scheduleID, "")
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, w := range works {
		out[w.StaffID] += w.Hours
	}
	return out, nil
}
