package domain

import (
	"fmt"
	"strings"

	dErrors "navshell/pkg/domain-errors"
)

// Role is the access category of the authenticated user. It is a domain
// primitive: only values from the closed set below are ever constructed by
// ParseRole. The zero value means no authenticated user.
type Role string

const (
	RoleNone   Role = ""
	RoleClient Role = "CLIENT"
	RoleAgent  Role = "AGENT"
	RoleAdmin  Role = "ADMIN"
)

// AllRoles lists the closed role set in a stable order.
var AllRoles = []Role{RoleClient, RoleAgent, RoleAdmin}

// ParseRole accepts a role name case-insensitively. The empty string is
// rejected; callers that mean "no user" use RoleNone directly.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllRoles {
		if r == known {
			return r, nil
		}
	}
	return RoleNone, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown role: %q", s))
}

// String returns the role name.
func (r Role) String() string {
	return string(r)
}

// IsNil returns true for the absent role.
func (r Role) IsNil() bool {
	return r == RoleNone
}

// RoleSet is an unordered set of roles.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set, ignoring RoleNone.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		if r.IsNil() {
			continue
		}
		set[r] = struct{}{}
	}
	return set
}

// Contains reports membership. The absent role is never a member.
func (s RoleSet) Contains(r Role) bool {
	if r.IsNil() {
		return false
	}
	_, ok := s[r]
	return ok
}

// Slice returns the members in AllRoles order.
func (s RoleSet) Slice() []Role {
	out := make([]Role, 0, len(s))
	for _, r := range AllRoles {
		if _, ok := s[r]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Clone returns an independent copy.
func (s RoleSet) Clone() RoleSet {
	out := make(RoleSet, len(s))
	for r := range s {
		out[r] = struct{}{}
	}
	return out
}
