package database

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// usageHistoryDays is how many daily usage rows are returned per key
const usageHistoryDays = 30

// RecordUsage adds one request to the key's counters for date
func (s *Store) RecordUsage(keyID uint, date string, days, staff int) error {
	// OnConflict gives a single-query upsert on both Postgres and SQLite
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_days":    gorm.Expr("total_days + ?", days),
			"total_staff":   gorm.Expr("total_staff + ?", staff),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         date,
		RequestCount: 1,
		TotalDays:    days,
		TotalStaff:   staff,
	}).Error
	if err != nil {
		return fmt.Errorf("record usage for key %d: %w", keyID, err)
	}
	return nil
}

// UsageHistory returns the most recent daily usage rows of a key
func (s *Store) UsageHistory(keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := s.db.Where("key_id = ?", keyID).Order("date desc").Limit(usageHistoryDays).Find(&usage).Error
	if err != nil {
		return nil, fmt.Errorf("load usage for key %d: %w", keyID, err)
	}
	return usage, nil
}

// RequestCount returns how many requests a key made on date
func (s *Store) RequestCount(keyID uint, date string) (int, error) {
	var usage APIUsage
	err := s.db.Where("key_id = ? AND date = ?", keyID, date).Limit(1).Find(&usage).Error
	if err != nil {
		return 0, fmt.Errorf("load usage for key %d: %w", keyID, err)
	}
	return usage.RequestCount, nil
}
