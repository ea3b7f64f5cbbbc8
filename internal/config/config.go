// Package config provides runtime configuration for Visaport.
// Bootstrap values (database DSN, JWT secret) come from the
// environment in main; everything tunable at runtime lives in the
// settings table and is served from an in-memory cache here.
package config

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/atlasgate/visaport/internal/models"
)

// Well-known setting keys.
const (
	KeyPortalTitle        = "portal.title"
	KeyDefaultCurrency    = "portal.default_currency"
	KeyGroupsEnabled      = "portal.groups_enabled"
	KeyUploadMaxMB        = "portal.upload_max_mb"
	KeySetupComplete      = "system.setup_complete"
	KeySMSGatewayURL      = "sms.gateway_url"
	KeySMSAPIKey          = "sms.api_key"
	KeySMSSender          = "sms.sender"
	KeySMSEnabled         = "sms.enabled"
	KeyNotifyOnSubmission = "sms.notify_on_submission"
)

// defaults apply when a key has no row yet.
var defaults = map[string]string{
	KeyPortalTitle:        "Visaport",
	KeyDefaultCurrency:    "TL",
	KeyGroupsEnabled:      "true",
	KeyUploadMaxMB:        "5",
	KeySetupComplete:      "false",
	KeySMSEnabled:         "false",
	KeyNotifyOnSubmission: "false",
}

// Service reads and writes the settings table through a cache.
type Service struct {
	db *gorm.DB

	mu       sync.RWMutex
	cache    map[string]string
	loadedAt time.Time
	ttl      time.Duration
}

// NewService creates a settings service with a 1 minute cache.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		cache: map[string]string{},
		ttl:   time.Minute,
	}
}

func (s *Service) refreshLocked() {
	var rows []models.Setting
	if err := s.db.Find(&rows).Error; err != nil {
		log.Printf("Warning: settings refresh failed: %v", err)
		return
	}
	cache := make(map[string]string, len(rows))
	for _, row := range rows {
		cache[row.Key] = row.Value
	}
	s.cache = cache
	s.loadedAt = time.Now()
}

// GetString returns the value for key, falling back to the built-in
// default and then to "".
func (s *Service) GetString(key string) string {
	s.mu.RLock()
	fresh := time.Since(s.loadedAt) < s.ttl
	value, ok := s.cache[key]
	s.mu.RUnlock()

	if !fresh {
		s.mu.Lock()
		if time.Since(s.loadedAt) >= s.ttl {
			s.refreshLocked()
		}
		value, ok = s.cache[key]
		s.mu.Unlock()
	}

	if ok {
		return value
	}
	if def, has := defaults[key]; has {
		return def
	}
	return ""
}

// GetBool parses the value as a boolean, treating parse failures as false.
func (s *Service) GetBool(key string) bool {
	b, err := strconv.ParseBool(s.GetString(key))
	return err == nil && b
}

// GetInt parses the value as an integer, falling back to def.
func (s *Service) GetInt(key string, def int) int {
	n, err := strconv.Atoi(s.GetString(key))
	if err != nil {
		return def
	}
	return n
}

// Set upserts one setting and refreshes the cache.
func (s *Service) Set(key, value string) error {
	row := models.Setting{Key: key, Value: value}
	err := s.db.Where("key = ?", key).
		Assign(models.Setting{Value: value}).
		FirstOrCreate(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save setting %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()
	return nil
}

// All returns every stored setting for the admin settings screen.
func (s *Service) All() ([]models.Setting, error) {
	var rows []models.Setting
	err := s.db.Order("key ASC").Find(&rows).Error
	return rows, err
}
