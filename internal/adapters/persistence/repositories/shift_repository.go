package repositories

import (
	"context"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// shiftRepository implements ShiftRepository interface
type shiftRepository struct {
	db *gorm.DB
}

// NewShiftRepository creates a new staff shift repository
func NewShiftRepository(db *gorm.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

// Create creates a new shift
func (r *shiftRepository) Create(ctx context.Context, shift *models.StaffShift) error {
	return r.db.WithContext(ctx).Create(shift).Error
}

// Update updates a shift
func (r *shiftRepository) Update(ctx context.Context, shift *models.StaffShift) error {
	return r.db.WithContext(ctx).Save(shift).Error
}

// GetOpenByUser gets the user's currently open shift, if any
func (r *shiftRepository) GetOpenByUser(ctx context.Context, userID uint) (*models.StaffShift, error) {
	var shift models.StaffShift
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND closed_at IS NULL", userID).
		First(&shift).Error
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

// ListByUser lists a user's shifts, newest first
func (r *shiftRepository) ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.StaffShift, int64, error) {
	var shifts []*models.StaffShift
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StaffShift{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("opened_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&shifts).Error
	if err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// ListAll lists all shifts, newest first
func (r *shiftRepository) ListAll(ctx context.Context, offset, limit int) ([]*models.StaffShift, int64, error) {
	var shifts []*models.StaffShift
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StaffShift{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("User").
		Order("opened_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&shifts).Error
	if err != nil {
		return nil, 0, err
	}

	return shifts, total, nil
}

// SumSecondsByUser totals the accumulated seconds across a user's closed shifts
func (r *shiftRepository) SumSecondsByUser(ctx context.Context, userID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StaffShift{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(seconds), 0)").
		Scan(&total).Error
	return total, err
}

// DeleteAll removes every shift record
func (r *shiftRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&models.StaffShift{}).Error
}
