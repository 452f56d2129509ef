// Package authz decides whether a user may perform an action. It is a pure
// rule lookup over the fixed role hierarchy plus permission grant sets; all
// persistence lives behind the callers.
package authz

import (
	"ember-portal/internal/core/domain"
)

// Role names, ordered by rank
const (
	RoleMember    = "MEMBER"
	RoleHelper    = "HELPER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
	RoleOwner     = "OWNER"
)

// PermAll is the owner-equivalent sentinel grant: it bypasses every check.
const PermAll = "*"

// ranks maps each role name to its privilege level. Higher satisfies lower.
var ranks = map[string]int{
	RoleMember:    0,
	RoleHelper:    10,
	RoleModerator: 20,
	RoleAdmin:     30,
	RoleOwner:     40,
}

// RankOf returns the rank for a role name
func RankOf(role string) (int, bool) {
	r, ok := ranks[role]
	return r, ok
}

// Roles returns all role names ordered by ascending rank
func Roles() []string {
	return []string{RoleMember, RoleHelper, RoleModerator, RoleAdmin, RoleOwner}
}

// IsValidRole reports whether name is a known role
func IsValidRole(name string) bool {
	_, ok := ranks[name]
	return ok
}

// Subject is the resolved authorization view of a user: their role rank,
// the permission set attached to the role, and their explicit grants.
type Subject struct {
	UserID          uint
	Role            string
	Rank            int
	RolePermissions map[string]bool
	Grants          map[string]bool
}

// Requirement is either a minimum role or a specific permission key
type Requirement struct {
	role string
	perm string
}

// MinRole requires at least the given role's rank
func MinRole(name string) Requirement {
	return Requirement{role: name}
}

// Permission requires a specific permission key
func Permission(key string) Requirement {
	return Requirement{perm: key}
}

// Key returns the permission key the requirement is checked under
func (r Requirement) Key() string {
	if r.role != "" {
		return r.role
	}
	return r.perm
}

// Authorize returns nil when sub satisfies req, domain.ErrUnauthorized
// otherwise. Explicit grants are additive only: they can never take a
// permission away from a rank that already has it.
func Authorize(sub Subject, req Requirement) error {
	if sub.Grants[PermAll] {
		return nil
	}

	if req.role != "" {
		required, ok := ranks[req.role]
		if !ok {
			return domain.ErrUnauthorized
		}
		if sub.Rank >= required {
			return nil
		}
		// a grant of the exact key satisfies the check independent of rank
		if sub.Grants[req.role] {
			return nil
		}
		return domain.ErrUnauthorized
	}

	if req.perm == PermAll {
		// owner-equivalent requirement: only the top rank or a "*" grant passes
		if sub.Rank >= ranks[RoleOwner] || sub.RolePermissions[PermAll] {
			return nil
		}
		return domain.ErrUnauthorized
	}

	if sub.RolePermissions[PermAll] || sub.RolePermissions[req.perm] || sub.Grants[req.perm] {
		return nil
	}
	return domain.ErrUnauthorized
}

// Can is a convenience wrapper returning a bool instead of an error
func Can(sub Subject, req Requirement) bool {
	return Authorize(sub, req) == nil
}
