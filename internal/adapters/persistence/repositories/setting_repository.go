package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingRepository implements SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// Get returns a setting value; missing keys return an empty string
func (r *settingRepository) Get(ctx context.Context, key string) (string, error) {
	var setting models.Setting
	err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

// Set upserts a setting value
func (r *settingRepository) Set(ctx context.Context, key, value string) error {
	setting := models.Setting{Key: key, Value: value}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&setting).Error
}

// GetIDList reads a JSON-encoded id list setting
func (r *settingRepository) GetIDList(ctx context.Context, key string) ([]uint, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if value == "" {
		return []uint{}, nil
	}

	var ids []uint
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// SetIDList stores a JSON-encoded id list setting
func (r *settingRepository) SetIDList(ctx context.Context, key string, ids []uint) error {
	if ids == nil {
		ids = []uint{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return r.Set(ctx, key, string(data))
}

// GetBool reads a boolean setting; missing keys are false
func (r *settingRepository) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := r.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if value == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}
	return b, nil
}

// SetBool stores a boolean setting
func (r *settingRepository) SetBool(ctx context.Context, key string, value bool) error {
	return r.Set(ctx, key, strconv.FormatBool(value))
}
