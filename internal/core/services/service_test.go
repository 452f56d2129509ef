package services

import (
	"testing"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/config"
	"ember-portal/internal/core/authz"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an in-memory SQLite database with the full schema.
// The pool is pinned to one connection so ":memory:" survives reuse.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func newAudit(db *gorm.DB) *AuditService {
	return NewAuditService(repositories.NewAuditRepository(db))
}

// newNotify builds a notification service with mail disabled
func newNotify() *NotificationService {
	return NewNotificationService(&config.Config{})
}

func createUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	user := &models.User{
		Username:        username,
		Email:           username + "@test.local",
		RoleName:        role,
		WhitelistStatus: models.WhitelistNone,
		IsActive:        true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func subjectFor(user *models.User) authz.Subject {
	rank, _ := authz.RankOf(user.RoleName)
	return authz.Subject{
		UserID:          user.ID,
		Role:            user.RoleName,
		Rank:            rank,
		RolePermissions: map[string]bool{},
		Grants:          map[string]bool{},
	}
}

func auditCount(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", action).Count(&count).Error)
	return count
}
