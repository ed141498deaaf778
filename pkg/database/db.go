package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/arnavshah/crew-scheduler-api/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// APIKey represents the api_keys table
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	Revoked    bool       `gorm:"default:false" json:"revoked"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// APIUsage represents the api_usage table
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalDays    int    `gorm:"default:0" json:"total_days"`
	TotalStaff   int    `gorm:"default:0" json:"total_staff"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Open connects to Postgres when DATABASE_URL is set and to a local sqlite
// file otherwise, then migrates the schema.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if cfg.DatabaseURL != "" {
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.DatabaseURL,
			PreferSimpleProtocol: true,
		})
		gormCfg.PrepareStmt = false
	} else {
		dialector = sqlite.Open(cfg.DataPath)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table the service uses
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&APIKey{}, &APIUsage{}, &MasterUser{},
		&ScheduleRecord{}, &ExtraWorkRecord{}, &StaffPresetRecord{}, &WorkRulesRecord{},
	)
	if err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
