package models

import "strings"

// Role is a group membership in the identity provider.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is the local mirror of an identity provider account. Sub and Email are
// each unique.
type User struct {
	Sub       string
	FirstName string
	LastName  string
	Email     string
	Roles     []Role
	Active    bool
	Project   *Project
}

// Project is the project a user is assigned to.
type Project struct {
	ID   string
	Name string
}

// HasAnyRole reports whether u holds at least one of roles.
func (u *User) HasAnyRole(roles ...Role) bool {
	return IntersectRoles(u.Roles, roles)
}

// UserUpdate carries the fields of a partial profile update. Nil pointers are
// left untouched; ClearProject unsets the project reference.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Email        *string
	ProjectID    *string
	ClearProject bool
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.Email == nil && u.ProjectID == nil && !u.ClearProject
}

// IntersectRoles reports whether have and want share at least one role.
func IntersectRoles(have, want []Role) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(string(h), string(w)) {
				return true
			}
		}
	}
	return false
}

// RolesFromGroups converts group claims into roles, dropping unknown groups.
func RolesFromGroups(groups []string) []Role {
	roles := make([]Role, 0, len(groups))
	for _, g := range groups {
		switch Role(strings.ToLower(g)) {
		case RoleUser:
			roles = append(roles, RoleUser)
		case RoleAdmin:
			roles = append(roles, RoleAdmin)
		}
	}
	return roles
}
