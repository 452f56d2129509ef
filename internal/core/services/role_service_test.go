package services

import (
	"context"
	"testing"

	"ember-portal/internal/adapters/persistence/models"
	"ember-portal/internal/adapters/persistence/repositories"
	"ember-portal/internal/core/authz"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newRoleService(t *testing.T, db *gorm.DB) *RoleService {
	t.Helper()

	for _, name := range authz.Roles() {
		rank, _ := authz.RankOf(name)
		require.NoError(t, db.Create(&models.Role{Name: name, Rank: rank}).Error)
	}
	return NewRoleService(repositories.NewRoleRepository(db), newAudit(db))
}

func TestRoleReplacePermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newRoleService(t, db)
	ctx := context.Background()

	owner := createUser(t, db, "owner", authz.RoleOwner)

	_, err := svc.ReplacePermissions(ctx, owner.ID, authz.RoleHelper, []string{"ticket.reply", "ticket.assign"}, "")
	require.NoError(t, err)

	// the new set fully replaces the old one
	role, err := svc.ReplacePermissions(ctx, owner.ID, authz.RoleHelper, []string{"ticket.reply", "forum.moderate"}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ticket.reply", "forum.moderate"}, role.Permissions)

	// blank and duplicate keys are dropped
	role, err = svc.ReplacePermissions(ctx, owner.ID, authz.RoleHelper, []string{"a", " ", "a", "b"}, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, role.Permissions)

	_, err = svc.ReplacePermissions(ctx, owner.ID, "SUPREME", nil, "")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	assert.EqualValues(t, 3, auditCount(t, db, models.AuditRoleReplacePerms))
}

func TestRoleList(t *testing.T) {
	db := newTestDB(t)
	svc := newRoleService(t, db)
	ctx := context.Background()

	roles, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, roles, len(authz.Roles()))

	// ordered by rank, member first
	assert.Equal(t, authz.RoleMember, roles[0].Name)
	assert.Equal(t, authz.RoleOwner, roles[len(roles)-1].Name)
}
