package services

import (
	"context"
	"errors"
	"log"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// Role errors
var (
	ErrRoleNotFound = errors.New("role not found")
)

// RoleService handles the fixed role hierarchy and its permission sets
type RoleService struct {
	roleRepo repositories.RoleRepository
	auditSvc *AuditService
}

// NewRoleService creates a new role service
func NewRoleService(roleRepo repositories.RoleRepository, auditSvc *AuditService) *RoleService {
	return &RoleService{roleRepo: roleRepo, auditSvc: auditSvc}
}

// RoleResponse DTO
type RoleResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Rank        int      `json:"rank"`
	Color       string   `json:"color"`
	Permissions []string `json:"permissions"`
}

func toRoleResponse(role *models.Role) *RoleResponse {
	perms := make([]string, len(role.Permissions))
	for i, p := range role.Permissions {
		perms[i] = p.PermissionKey
	}
	return &RoleResponse{
		ID:          role.ID,
		Name:        role.Name,
		Rank:        role.Rank,
		Color:       role.Color,
		Permissions: perms,
	}
}

// List lists all roles ordered by rank with their permission sets
func (s *RoleService) List(ctx context.Context) ([]*RoleResponse, error) {
	roles, err := s.roleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*RoleResponse, len(roles))
	for i, r := range roles {
		responses[i] = toRoleResponse(r)
	}
	return responses, nil
}

// Get gets one role by name
func (s *RoleService) Get(ctx context.Context, name string) (*RoleResponse, error) {
	role, err := s.roleRepo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return toRoleResponse(role), nil
}

// ReplacePermissions swaps a role's entire permission set for the given
// keys. The change is atomic: a mid-way failure leaves the old set intact.
func (s *RoleService) ReplacePermissions(ctx context.Context, actorID uint, roleName string, keys []string, ip string) (*RoleResponse, error) {
	role, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}

	if err := s.roleRepo.ReplacePermissions(ctx, role.ID, keys); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditRoleReplacePerms, "role", &role.ID, map[string]interface{}{
		"role": role.Name,
		"keys": keys,
	}, ip)

	// Re-read so the response reflects the stored set
	updated, err := s.roleRepo.GetByName(ctx, roleName)
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Permissions replaced for role %s (%d keys)", role.Name, len(updated.Permissions))
	return toRoleResponse(updated), nil
}
