package services

import (
	"context"
	"testing"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsGetSet(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(repositories.NewSettingRepository(db), newAudit(db))
	admin := createUser(t, db, "admin", "ADMIN")
	ctx := context.Background()

	// Missing keys read as empty
	value, err := svc.Get(ctx, "motd")
	require.NoError(t, err)
	assert.Equal(t, "", value)

	require.NoError(t, svc.Set(ctx, admin.ID, "motd", "Welcome to the server", "10.0.0.1"))

	value, err = svc.Get(ctx, "motd")
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the server", value)

	// Upsert replaces in place
	require.NoError(t, svc.Set(ctx, admin.ID, "motd", "Maintenance tonight", ""))

	value, err = svc.Get(ctx, "motd")
	require.NoError(t, err)
	assert.Equal(t, "Maintenance tonight", value)

	assert.EqualValues(t, 2, auditCount(t, db, models.AuditSettingUpdate))
}

func TestSettingsEmptyKeyRejected(t *testing.T) {
	db := newTestDB(t)
	svc := NewSettingsService(repositories.NewSettingRepository(db), newAudit(db))
	admin := createUser(t, db, "admin", "ADMIN")
	ctx := context.Background()

	_, err := svc.Get(ctx, "")
	assert.ErrorIs(t, err, ErrSettingKeyRequired)

	err = svc.Set(ctx, admin.ID, "", "value", "")
	assert.ErrorIs(t, err, ErrSettingKeyRequired)
}
