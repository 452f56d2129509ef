package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Accounts, Roles & Sessions
// ============================================================

// Whitelist statuses
const (
	WhitelistNone     = "NONE"
	WhitelistPending  = "PENDING"
	WhitelistApproved = "APPROVED"
	WhitelistRejected = "REJECTED"
	WhitelistRevoked  = "REVOKED"
)

// User represents users table
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Username        string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email           string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password        string         `gorm:"size:255" json:"-"` // empty for OAuth-only accounts
	RoleName        string         `gorm:"size:20;not null;default:'MEMBER';index" json:"role"`
	MinecraftName   string         `gorm:"size:16" json:"minecraft_name"`
	WhitelistStatus string         `gorm:"size:10;not null;default:'NONE';index" json:"whitelist_status"`
	BannedUntil     *time.Time     `json:"banned_until"`
	IsActive        bool           `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	Permissions []UserPermission `gorm:"foreignKey:UserID" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsBanned reports whether the user is currently banned
func (u *User) IsBanned() bool {
	return u.BannedUntil != nil && time.Now().Before(*u.BannedUntil)
}

// GrantSet returns the user's explicit permission grants as a set
func (u *User) GrantSet() map[string]bool {
	set := make(map[string]bool, len(u.Permissions))
	for _, p := range u.Permissions {
		set[p.PermissionKey] = true
	}
	return set
}

// UserResponse DTO
type UserResponse struct {
	ID              uint       `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	MinecraftName   string     `json:"minecraft_name,omitempty"`
	WhitelistStatus string     `json:"whitelist_status"`
	BannedUntil     *time.Time `json:"banned_until,omitempty"`
	IsActive        bool       `json:"is_active"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.RoleName,
		MinecraftName:   u.MinecraftName,
		WhitelistStatus: u.WhitelistStatus,
		BannedUntil:     u.BannedUntil,
		IsActive:        u.IsActive,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// Role represents the fixed role hierarchy rows (rank is unique and ordered)
type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:20;not null" json:"name"`
	Rank      int       `gorm:"uniqueIndex;not null" json:"rank"`
	Color     string    `gorm:"size:10" json:"color"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Permissions []RolePermission `gorm:"foreignKey:RoleID" json:"permissions,omitempty"`
}

func (Role) TableName() string {
	return "roles"
}

// PermissionSet returns the role's permission keys as a set
func (r *Role) PermissionSet() map[string]bool {
	set := make(map[string]bool, len(r.Permissions))
	for _, p := range r.Permissions {
		set[p.PermissionKey] = true
	}
	return set
}

// RolePermission maps a role to a permission key
type RolePermission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	RoleID        uint      `gorm:"not null;uniqueIndex:idx_role_perm" json:"role_id"`
	PermissionKey string    `gorm:"size:100;not null;uniqueIndex:idx_role_perm" json:"permission_key"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RolePermission) TableName() string {
	return "role_permissions"
}

// UserPermission is an explicit per-user grant, additive on top of the role
type UserPermission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_perm" json:"user_id"`
	PermissionKey string    `gorm:"size:100;not null;uniqueIndex:idx_user_perm" json:"permission_key"`
	GrantedBy     uint      `json:"granted_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}

// OAuth providers
const (
	ProviderGoogle  = "google"
	ProviderDiscord = "discord"
)

// OAuthIdentity links an external provider account to a user
type OAuthIdentity struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;index" json:"user_id"`
	Provider       string    `gorm:"size:20;not null;uniqueIndex:idx_provider_subject" json:"provider"`
	ProviderUserID string    `gorm:"size:100;not null;uniqueIndex:idx_provider_subject" json:"provider_user_id"`
	Email          string    `gorm:"size:100" json:"email"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (OAuthIdentity) TableName() string {
	return "oauth_identities"
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all portal tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Accounts & roles
		&User{},
		&Role{},
		&RolePermission{},
		&UserPermission{},
		&OAuthIdentity{},
		&RefreshToken{},
		// Forum
		&Category{},
		&Board{},
		&Topic{},
		&Post{},
		&Setting{},
		// Support & community
		&Ticket{},
		&TicketMessage{},
		&TicketRatingRequirement{},
		&WhitelistQuestion{},
		&WhitelistApplication{},
		&WhitelistAnswer{},
		&DirectMessage{},
		&StaffShift{},
		&AuditLog{},
	)
}
