package services

import (
	"context"
	"testing"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRecordAndList(t *testing.T) {
	db := newTestDB(t)
	svc := newAudit(db)
	ctx := context.Background()

	actor := createUser(t, db, "actor", authz.RoleAdmin)

	entityID := uint(42)
	svc.Record(ctx, actor.ID, models.AuditUserBan, "user", &entityID, map[string]interface{}{
		"until": "2026-12-31",
	}, "10.0.0.1")
	svc.Record(ctx, actor.ID, models.AuditShiftReset, "staff_shift", nil, nil, "")

	entries, total, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, entries, 2)

	// newest first
	assert.Equal(t, models.AuditShiftReset, entries[0].Action)
	assert.Equal(t, models.AuditUserBan, entries[1].Action)
	assert.Contains(t, entries[1].Metadata, "2026-12-31")
	assert.Equal(t, "10.0.0.1", entries[1].IPAddress)
}

func TestAuditPurgeOlderThan(t *testing.T) {
	db := newTestDB(t)
	svc := newAudit(db)
	ctx := context.Background()

	actor := createUser(t, db, "actor", authz.RoleAdmin)

	old := &models.AuditLog{ActorID: actor.ID, Action: models.AuditUserBan, EntityType: "user"}
	require.NoError(t, db.Create(old).Error)
	require.NoError(t, db.Model(old).UpdateColumn("created_at", time.Now().AddDate(0, 0, -40)).Error)

	svc.Record(ctx, actor.ID, models.AuditUserUnban, "user", nil, nil, "")

	// retention disabled keeps everything
	purged, err := svc.PurgeOlderThan(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, purged)

	purged, err = svc.PurgeOlderThan(ctx, 30)
	require.NoError(t, err)
	assert.EqualValues(t, 1, purged)

	_, total, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestAuditRecordFailureDoesNotPanic(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuditService(repositories.NewAuditRepository(db))
	ctx := context.Background()

	// drop the table so the insert fails; Record must swallow the error
	require.NoError(t, db.Migrator().DropTable(&models.AuditLog{}))
	svc.Record(ctx, 1, models.AuditUserBan, "user", nil, nil, "")
}
