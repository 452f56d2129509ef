package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/domain"

	"gorm.io/gorm"
)

// ShiftService handles the staff time clock
type ShiftService struct {
	shiftRepo repositories.ShiftRepository
	auditSvc  *AuditService
	// now is swappable so tests can control the clock
	now func() time.Time
}

// NewShiftService creates a new shift service
func NewShiftService(shiftRepo repositories.ShiftRepository, auditSvc *AuditService) *ShiftService {
	return &ShiftService{
		shiftRepo: shiftRepo,
		auditSvc:  auditSvc,
		now:       time.Now,
	}
}

// ShiftSummary is a user's accumulated time plus their open shift, if any
type ShiftSummary struct {
	TotalSeconds int64              `json:"total_seconds"`
	OpenShift    *models.StaffShift `json:"open_shift,omitempty"`
}

// Open starts a shift for the user. Opening with a shift already open
// returns that shift unchanged, so double clicks are harmless.
func (s *ShiftService) Open(ctx context.Context, userID uint) (*models.StaffShift, error) {
	existing, err := s.shiftRepo.GetOpenByUser(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	shift := &models.StaffShift{
		UserID:   userID,
		OpenedAt: s.now(),
	}
	if err := s.shiftRepo.Create(ctx, shift); err != nil {
		return nil, err
	}

	log.Printf("✅ Shift opened for user %d", userID)
	return shift, nil
}

// Close ends the user's open shift and credits the elapsed whole seconds.
// Clock skew can make the interval negative; it is floored at zero.
func (s *ShiftService) Close(ctx context.Context, userID uint) (*models.StaffShift, error) {
	shift, err := s.shiftRepo.GetOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewPrecondition(domain.ReasonShiftNotOpen, "no open shift to close")
		}
		return nil, err
	}

	now := s.now()
	elapsed := int64(now.Sub(shift.OpenedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}

	shift.ClosedAt = &now
	shift.Seconds = elapsed
	if err := s.shiftRepo.Update(ctx, shift); err != nil {
		return nil, err
	}

	log.Printf("✅ Shift closed for user %d (%d seconds)", userID, elapsed)
	return shift, nil
}

// Summary returns the user's total accumulated seconds and open shift
func (s *ShiftService) Summary(ctx context.Context, userID uint) (*ShiftSummary, error) {
	total, err := s.shiftRepo.SumSecondsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := &ShiftSummary{TotalSeconds: total}

	open, err := s.shiftRepo.GetOpenByUser(ctx, userID)
	if err == nil {
		summary.OpenShift = open
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return summary, nil
}

// ListOwn lists the caller's shifts
func (s *ShiftService) ListOwn(ctx context.Context, userID uint, offset, limit int) ([]*models.StaffShift, int64, error) {
	return s.shiftRepo.ListByUser(ctx, userID, offset, limit)
}

// ListAll lists every shift for the staff overview
func (s *ShiftService) ListAll(ctx context.Context, offset, limit int) ([]*models.StaffShift, int64, error) {
	return s.shiftRepo.ListAll(ctx, offset, limit)
}

// ResetAll wipes the whole time clock. Owner only; the route guard
// enforces that, the audit record makes it traceable.
func (s *ShiftService) ResetAll(ctx context.Context, actorID uint, ip string) error {
	if err := s.shiftRepo.DeleteAll(ctx); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditShiftReset, "staff_shift", nil, nil, ip)

	log.Printf("⚠️ Staff time clock reset by user %d", actorID)
	return nil
}
