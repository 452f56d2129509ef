package services

import (
	"context"
	"testing"
	"time"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"
	"ember-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newShiftService(db *gorm.DB) *ShiftService {
	return NewShiftService(repositories.NewShiftRepository(db), newAudit(db))
}

func TestShiftOpenIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := newShiftService(db)
	ctx := context.Background()

	helper := createUser(t, db, "helper", authz.RoleHelper)

	first, err := svc.Open(ctx, helper.ID)
	require.NoError(t, err)

	// a double click returns the same shift instead of opening a second one
	second, err := svc.Open(ctx, helper.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.StaffShift{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestShiftCloseAccumulates(t *testing.T) {
	db := newTestDB(t)
	svc := newShiftService(db)
	ctx := context.Background()

	helper := createUser(t, db, "helper", authz.RoleHelper)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	_, err := svc.Open(ctx, helper.ID)
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(90 * time.Minute) }
	closed, err := svc.Close(ctx, helper.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5400, closed.Seconds)
	require.NotNil(t, closed.ClosedAt)

	// a second shift stacks on top of the first
	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = svc.Open(ctx, helper.ID)
	require.NoError(t, err)
	svc.now = func() time.Time { return base.Add(2*time.Hour + 30*time.Minute) }
	_, err = svc.Close(ctx, helper.ID)
	require.NoError(t, err)

	summary, err := svc.Summary(ctx, helper.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5400+1800, summary.TotalSeconds)
	assert.Nil(t, summary.OpenShift)
}

func TestShiftCloseWithoutOpen(t *testing.T) {
	db := newTestDB(t)
	svc := newShiftService(db)
	ctx := context.Background()

	helper := createUser(t, db, "helper", authz.RoleHelper)

	_, err := svc.Close(ctx, helper.ID)
	pre, ok := domain.AsPrecondition(err)
	require.True(t, ok)
	assert.Equal(t, domain.ReasonShiftNotOpen, pre.Reason)
}

func TestShiftCloseFloorsClockSkew(t *testing.T) {
	db := newTestDB(t)
	svc := newShiftService(db)
	ctx := context.Background()

	helper := createUser(t, db, "helper", authz.RoleHelper)

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }
	_, err := svc.Open(ctx, helper.ID)
	require.NoError(t, err)

	// the clock went backwards; credit zero rather than negative time
	svc.now = func() time.Time { return base.Add(-time.Minute) }
	closed, err := svc.Close(ctx, helper.ID)
	require.NoError(t, err)
	assert.Zero(t, closed.Seconds)
}

func TestShiftResetAll(t *testing.T) {
	db := newTestDB(t)
	svc := newShiftService(db)
	ctx := context.Background()

	helper := createUser(t, db, "helper", authz.RoleHelper)
	owner := createUser(t, db, "owner", authz.RoleOwner)

	_, err := svc.Open(ctx, helper.ID)
	require.NoError(t, err)
	_, err = svc.Close(ctx, helper.ID)
	require.NoError(t, err)

	require.NoError(t, svc.ResetAll(ctx, owner.ID, "127.0.0.1"))

	summary, err := svc.Summary(ctx, helper.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalSeconds)

	assert.EqualValues(t, 1, auditCount(t, db, models.AuditShiftReset))
}
