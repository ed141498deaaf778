package database

import (
	"fmt"
	"time"
)

// CreateAPIKey stores a newly issued key
func (s *Store) CreateAPIKey(key, name string, rateLimit int) (*APIKey, error) {
	apiKey := APIKey{
		Key:        key,
		Name:       name,
		KeyPreview: KeyPreview(key),
		RateLimit:  rateLimit,
	}
	if err := s.db.Create(&apiKey).Error; err != nil {
		return nil, fmt.Errorf("create api key %s: %w", name, err)
	}
	return &apiKey, nil
}

// FindOrCreateAPIKey returns the row for a verified key, creating it on first use
func (s *Store) FindOrCreateAPIKey(key, name string, rateLimit int) (*APIKey, error) {
	var apiKey APIKey
	err := s.db.Where(APIKey{Key: key}).FirstOrCreate(&apiKey, APIKey{
		Key:        key,
		Name:       name,
		KeyPreview: KeyPreview(key),
		RateLimit:  rateLimit,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("load api key %s: %w", name, err)
	}
	return &apiKey, nil
}

// TouchAPIKey records the last time a key was used
func (s *Store) TouchAPIKey(id uint) error {
	now := s.now()
	if err := s.db.Model(&APIKey{}).Where("id = ?", id).Update("last_used", &now).Error; err != nil {
		return fmt.Errorf("touch api key %d: %w", id, err)
	}
	return nil
}

// ListAPIKeys returns every key, oldest first
func (s *Store) ListAPIKeys() ([]APIKey, error) {
	var keys []APIKey
	if err := s.db.Order("id").Find(&keys).Error; err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey marks a key as revoked. Signed keys stay verifiable, so the
// row is kept and checked on every request instead of being deleted.
func (s *Store) RevokeAPIKey(id uint) error {
	res := s.db.Model(&APIKey{}).Where("id = ?", id).Update("revoked", true)
	if res.Error != nil {
		return fmt.Errorf("revoke api key %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRateLimit changes the daily request limit of a key
func (s *Store) UpdateRateLimit(id uint, limit int) error {
	res := s.db.Model(&APIKey{}).Where("id = ?", id).Update("rate_limit", limit)
	if res.Error != nil {
		return fmt.Errorf("update rate limit of key %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// KeyPreview masks a key for display, e.g. "sho...9f3c"
func KeyPreview(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

// Today is the usage date key for now
func Today(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}
