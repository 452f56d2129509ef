package services

import (
	"context"
	"log"
	"time"

	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/config"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled housekeeping: expired session cleanup and
// audit log retention
type CronService struct {
	cron             *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
	auditSvc         *AuditService
	cfg              *config.Config
}

// NewCronService creates a new cron service
func NewCronService(
	refreshTokenRepo repositories.RefreshTokenRepository,
	auditSvc *AuditService,
	cfg *config.Config,
) *CronService {
	return &CronService{
		cron:             cron.New(),
		refreshTokenRepo: refreshTokenRepo,
		auditSvc:         auditSvc,
		cfg:              cfg,
	}
}

// Start registers the jobs and starts the scheduler
func (s *CronService) Start() error {
	if _, err := s.cron.AddFunc("@daily", s.purgeExpiredTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("@daily", s.trimAuditLog); err != nil {
		return err
	}

	s.cron.Start()
	log.Println("✅ Cron scheduler started")
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Cron scheduler stopped")
}

// purgeExpiredTokens removes expired and revoked refresh tokens
func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Refresh token cleanup failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Removed %d expired refresh tokens", removed)
	}
}

// trimAuditLog enforces the audit retention window
func (s *CronService) trimAuditLog() {
	if s.cfg.Audit.RetentionDays <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed, err := s.auditSvc.PurgeOlderThan(ctx, s.cfg.Audit.RetentionDays)
	if err != nil {
		log.Printf("⚠️ Audit log trim failed: %v", err)
		return
	}
	if removed > 0 {
		log.Printf("✅ Trimmed %d audit log entries", removed)
	}
}
