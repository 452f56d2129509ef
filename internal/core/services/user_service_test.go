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
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *UserService {
	return NewUserService(
		repositories.NewUserRepository(db),
		repositories.NewRoleRepository(db),
		newAudit(db),
	)
}

func TestUserSetRole(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	admin := createUser(t, db, "admin", authz.RoleAdmin)
	member := createUser(t, db, "member", authz.RoleMember)

	_, err := svc.SetRole(ctx, admin.ID, member.ID, "SUPREME", "")
	assert.ErrorIs(t, err, ErrInvalidRole)

	// nobody edits their own role, not even to the same value
	_, err = svc.SetRole(ctx, admin.ID, admin.ID, authz.RoleAdmin, "")
	assert.ErrorIs(t, err, ErrCannotDemoteSelf)

	updated, err := svc.SetRole(ctx, admin.ID, member.ID, authz.RoleHelper, "")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleHelper, updated.Role)
	assert.EqualValues(t, 1, auditCount(t, db, models.AuditUserUpdate))
}

func TestUserBanUnban(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	mod := createUser(t, db, "mod", authz.RoleModerator)
	target := createUser(t, db, "target", authz.RoleMember)

	_, err := svc.Ban(ctx, mod.ID, mod.ID, nil, "")
	assert.ErrorIs(t, err, ErrCannotBanSelf)

	// nil until means permanent
	_, err = svc.Ban(ctx, mod.ID, target.ID, nil, "")
	require.NoError(t, err)

	var banned models.User
	require.NoError(t, db.First(&banned, target.ID).Error)
	assert.True(t, banned.IsBanned())

	_, err = svc.ResolveSubject(ctx, target.ID)
	assert.ErrorIs(t, err, ErrUserBanned)

	_, err = svc.Unban(ctx, mod.ID, target.ID, "")
	require.NoError(t, err)

	sub, err := svc.ResolveSubject(ctx, target.ID)
	require.NoError(t, err)
	assert.Equal(t, target.ID, sub.UserID)

	// an expired ban no longer blocks the subject
	past := time.Now().Add(-time.Hour)
	_, err = svc.Ban(ctx, mod.ID, target.ID, &past, "")
	require.NoError(t, err)
	_, err = svc.ResolveSubject(ctx, target.ID)
	assert.NoError(t, err)
}

func TestUserResolveSubject(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	role := &models.Role{Name: authz.RoleHelper, Rank: 10}
	require.NoError(t, db.Create(role).Error)
	require.NoError(t, db.Create(&models.RolePermission{
		RoleID: role.ID, PermissionKey: "ticket.reply",
	}).Error)

	helper := createUser(t, db, "helper", authz.RoleHelper)
	require.NoError(t, svc.GrantPermission(ctx, helper.ID, helper.ID, "forum.pin", ""))

	sub, err := svc.ResolveSubject(ctx, helper.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, sub.Rank)
	assert.True(t, sub.RolePermissions["ticket.reply"])
	assert.True(t, sub.Grants["forum.pin"])

	assert.NoError(t, authz.Authorize(sub, authz.Permission("ticket.reply")))
	assert.NoError(t, authz.Authorize(sub, authz.Permission("forum.pin")))
	assert.Error(t, authz.Authorize(sub, authz.Permission("user.ban")))

	// deactivated accounts resolve to an error so stale tokens die
	helper.IsActive = false
	require.NoError(t, db.Save(helper).Error)
	_, err = svc.ResolveSubject(ctx, helper.ID)
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestUserUpdateProfile(t *testing.T) {
	db := newTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice", authz.RoleMember)
	createUser(t, db, "bob", authz.RoleMember)

	taken := "bob@test.local"
	_, err := svc.UpdateProfile(ctx, alice.ID, &UpdateProfileInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	short := "short"
	_, err = svc.UpdateProfile(ctx, alice.ID, &UpdateProfileInput{Password: &short})
	assert.ErrorIs(t, err, ErrWeakPassword)

	mcName := "AliceCraft"
	updated, err := svc.UpdateProfile(ctx, alice.ID, &UpdateProfileInput{MinecraftName: &mcName})
	require.NoError(t, err)
	assert.Equal(t, mcName, updated.MinecraftName)
}
