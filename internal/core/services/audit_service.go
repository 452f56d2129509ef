package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
)

// AuditService records privileged mutations. Recording is best effort:
// failures are logged and swallowed so they never abort the action itself.
type AuditService struct {
	auditRepo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo repositories.AuditRepository) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Record writes one audit entry. Metadata may be nil.
func (s *AuditService) Record(ctx context.Context, actorID uint, action, entityType string, entityID *uint, metadata map[string]interface{}, ip string) {
	entry := &models.AuditLog{
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  ip,
	}

	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			entry.Metadata = string(raw)
		}
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Printf("⚠️ Audit record failed for action %s: %v", action, err)
	}
}

// List returns audit entries, newest first
func (s *AuditService) List(ctx context.Context, offset, limit int) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, offset, limit)
}

// PurgeOlderThan trims entries past the retention window
func (s *AuditService) PurgeOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return s.auditRepo.DeleteOlderThan(ctx, cutoff)
}
