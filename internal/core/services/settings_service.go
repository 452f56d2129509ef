package services

import (
	"context"
	"errors"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
)

// Settings errors
var (
	ErrSettingKeyRequired = errors.New("setting key is required")
)

// SettingsService exposes the key-value setting store to the admin console.
// Forum-specific settings have dedicated endpoints; this is the raw surface.
type SettingsService struct {
	settingRepo repositories.SettingRepository
	auditSvc    *AuditService
}

// NewSettingsService creates a new settings service
func NewSettingsService(settingRepo repositories.SettingRepository, auditSvc *AuditService) *SettingsService {
	return &SettingsService{settingRepo: settingRepo, auditSvc: auditSvc}
}

// Get returns a setting value; missing keys read as an empty string
func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrSettingKeyRequired
	}
	return s.settingRepo.Get(ctx, key)
}

// Set upserts a setting value and records the change
func (s *SettingsService) Set(ctx context.Context, actorID uint, key, value, ip string) error {
	if key == "" {
		return ErrSettingKeyRequired
	}

	if err := s.settingRepo.Set(ctx, key, value); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditSettingUpdate, "setting", nil, map[string]interface{}{
		"key":   key,
		"value": value,
	}, ip)

	return nil
}
