package authz

import (
	"testing"

	"ember-portal/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func subject(role string, grants ...string) Subject {
	rank, _ := RankOf(role)
	g := make(map[string]bool, len(grants))
	for _, k := range grants {
		g[k] = true
	}
	return Subject{Role: role, Rank: rank, Grants: g, RolePermissions: map[string]bool{}}
}

func TestAuthorizeMinRole(t *testing.T) {
	cases := []struct {
		name  string
		sub   Subject
		req   Requirement
		allow bool
	}{
		{name: "member vs member", sub: subject(RoleMember), req: MinRole(RoleMember), allow: true},
		{name: "member vs moderator", sub: subject(RoleMember), req: MinRole(RoleModerator), allow: false},
		{name: "moderator vs helper", sub: subject(RoleModerator), req: MinRole(RoleHelper), allow: true},
		{name: "admin vs admin", sub: subject(RoleAdmin), req: MinRole(RoleAdmin), allow: true},
		{name: "admin vs owner", sub: subject(RoleAdmin), req: MinRole(RoleOwner), allow: false},
		{name: "owner vs everything", sub: subject(RoleOwner), req: MinRole(RoleOwner), allow: true},
		{name: "unknown required role", sub: subject(RoleOwner), req: MinRole("SUPREME"), allow: false},
		{name: "exact grant beats rank", sub: subject(RoleMember, RoleModerator), req: MinRole(RoleModerator), allow: true},
		{name: "grant is exact not prefix", sub: subject(RoleMember, RoleModerator), req: MinRole(RoleAdmin), allow: false},
		{name: "star grant bypasses role check", sub: subject(RoleMember, PermAll), req: MinRole(RoleOwner), allow: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.sub, tc.req)
			if tc.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrUnauthorized)
			}
		})
	}
}

func TestAuthorizePermissionKey(t *testing.T) {
	sub := subject(RoleHelper, "forum.pin")
	sub.RolePermissions = map[string]bool{"ticket.assign": true}

	assert.NoError(t, Authorize(sub, Permission("forum.pin")), "explicit grant")
	assert.NoError(t, Authorize(sub, Permission("ticket.assign")), "role permission")
	assert.ErrorIs(t, Authorize(sub, Permission("user.ban")), domain.ErrUnauthorized)

	// role-level "*" covers every key
	sub.RolePermissions[PermAll] = true
	assert.NoError(t, Authorize(sub, Permission("user.ban")))
}

func TestAuthorizeOwnerSentinel(t *testing.T) {
	assert.ErrorIs(t, Authorize(subject(RoleAdmin), Permission(PermAll)), domain.ErrUnauthorized)
	assert.NoError(t, Authorize(subject(RoleOwner), Permission(PermAll)))
	assert.NoError(t, Authorize(subject(RoleMember, PermAll), Permission(PermAll)))
}

func TestRanksTotallyOrdered(t *testing.T) {
	prev := -1
	for _, name := range Roles() {
		rank, ok := RankOf(name)
		require.True(t, ok, name)
		require.Greater(t, rank, prev, "ranks must be unique and ascending")
		prev = rank
	}
}
