package services

import (
	"context"
	"errors"
	"log"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/pkg/password"

	"gorm.io/gorm"
)

// User errors
var (
	ErrInvalidRole      = errors.New("unknown role name")
	ErrCannotDemoteSelf = errors.New("cannot change own role")
	ErrCannotBanSelf    = errors.New("cannot ban own account")
	ErrEmailTaken       = errors.New("email already in use")
)

// UserService handles account profiles and staff account management
type UserService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	auditSvc *AuditService
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	auditSvc *AuditService,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		roleRepo: roleRepo,
		auditSvc: auditSvc,
	}
}

// UpdateProfileInput represents profile update input
type UpdateProfileInput struct {
	Email         *string `json:"email" validate:"omitempty,email"`
	MinecraftName *string `json:"minecraft_name" validate:"omitempty,max=16"`
	Password      *string `json:"password" validate:"omitempty,min=8"`
}

// GetProfile gets a user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateProfile updates the caller's own profile fields
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailTaken
		}
		user.Email = *input.Email
	}

	if input.MinecraftName != nil {
		user.MinecraftName = *input.MinecraftName
	}

	if input.Password != nil {
		if !password.Validate(*input.Password) {
			return nil, ErrWeakPassword
		}
		hashed, err := password.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// List lists users with optional username/email search
func (s *UserService) List(ctx context.Context, search string, offset, limit int) ([]*models.UserResponse, int64, error) {
	users, total, err := s.userRepo.List(ctx, search, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]*models.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, total, nil
}

// SetRole changes a user's role to another role in the fixed hierarchy
func (s *UserService) SetRole(ctx context.Context, actorID, userID uint, roleName, ip string) (*models.UserResponse, error) {
	if !authz.IsValidRole(roleName) {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrCannotDemoteSelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	previous := user.RoleName
	user.RoleName = roleName
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserUpdate, "user", &user.ID, map[string]interface{}{
		"field": "role",
		"from":  previous,
		"to":    roleName,
	}, ip)

	log.Printf("✅ Role of %s changed: %s -> %s", user.Username, previous, roleName)
	return user.ToResponse(), nil
}

// Ban sets a temporary or permanent ban on a user. A nil until means
// permanent (far future).
func (s *UserService) Ban(ctx context.Context, actorID, userID uint, until *time.Time, ip string) (*models.UserResponse, error) {
	if actorID == userID {
		return nil, ErrCannotBanSelf
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if until == nil {
		permanent := time.Now().AddDate(100, 0, 0)
		until = &permanent
	}
	user.BannedUntil = until

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserBan, "user", &user.ID, map[string]interface{}{
		"until": until.Format(time.RFC3339),
	}, ip)

	log.Printf("⚠️ User banned: %s until %s", user.Username, until.Format(time.RFC3339))
	return user.ToResponse(), nil
}

// Unban lifts a user's ban
func (s *UserService) Unban(ctx context.Context, actorID, userID uint, ip string) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.BannedUntil = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserUnban, "user", &user.ID, nil, ip)

	log.Printf("✅ User unbanned: %s", user.Username)
	return user.ToResponse(), nil
}

// Delete soft deletes a user account
func (s *UserService) Delete(ctx context.Context, actorID, userID uint, ip string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserDelete, "user", &user.ID, map[string]interface{}{
		"username": user.Username,
	}, ip)

	log.Printf("⚠️ User deleted: %s", user.Username)
	return nil
}

// GrantPermission adds an explicit per-user permission key
func (s *UserService) GrantPermission(ctx context.Context, actorID, userID uint, key, ip string) error {
	if key == "" {
		return errors.New("permission key required")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	grant := &models.UserPermission{
		UserID:        userID,
		PermissionKey: key,
		GrantedBy:     actorID,
	}
	if err := s.userRepo.AddPermission(ctx, grant); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserUpdate, "user", &userID, map[string]interface{}{
		"field": "grant_add",
		"key":   key,
	}, ip)
	return nil
}

// RevokePermission removes an explicit per-user permission key
func (s *UserService) RevokePermission(ctx context.Context, actorID, userID uint, key, ip string) error {
	if err := s.userRepo.RemovePermission(ctx, userID, key); err != nil {
		return err
	}

	s.auditSvc.Record(ctx, actorID, models.AuditUserUpdate, "user", &userID, map[string]interface{}{
		"field": "grant_remove",
		"key":   key,
	}, ip)
	return nil
}

// ResolveSubject loads the authorization view for a user: rank, role
// permission set and explicit grants. Called per request by the auth
// middleware.
func (s *UserService) ResolveSubject(ctx context.Context, userID uint) (authz.Subject, error) {
	user, err := s.userRepo.GetByIDWithGrants(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return authz.Subject{}, ErrUserNotFound
		}
		return authz.Subject{}, err
	}

	if !user.IsActive {
		return authz.Subject{}, ErrUserInactive
	}
	if user.IsBanned() {
		return authz.Subject{}, ErrUserBanned
	}

	rank, ok := authz.RankOf(user.RoleName)
	if !ok {
		rank = 0
	}

	sub := authz.Subject{
		UserID: user.ID,
		Role:   user.RoleName,
		Rank:   rank,
		Grants: user.GrantSet(),
	}

	role, err := s.roleRepo.GetByName(ctx, user.RoleName)
	if err == nil {
		sub.RolePermissions = role.PermissionSet()
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return authz.Subject{}, err
	} else {
		sub.RolePermissions = map[string]bool{}
	}

	return sub, nil
}
