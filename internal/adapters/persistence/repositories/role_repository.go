package repositories

import (
	"context"
	"strings"

	"ember-portal/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// roleRepository implements RoleRepository interface
type roleRepository struct {
	db *gorm.DB
}

// NewRoleRepository creates a new role repository
func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

// List lists all roles with their permissions, ordered by rank
func (r *roleRepository) List(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Order("rank ASC").
		Find(&roles).Error
	return roles, err
}

// GetByName gets a role by name with its permissions
func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).
		Preload("Permissions").
		Where("name = ?", name).
		First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// ReplacePermissions replaces a role's permission set in one transaction:
// readers observe either the old set or the full new set, never a partial
// one. Duplicate or blank keys are silently skipped.
func (r *roleRepository) ReplacePermissions(ctx context.Context, roleID uint, keys []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		seen := make(map[string]bool, len(keys))
		for _, key := range keys {
			key = strings.TrimSpace(key)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true

			perm := &models.RolePermission{RoleID: roleID, PermissionKey: key}
			if err := tx.Create(perm).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
