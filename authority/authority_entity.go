package authority

import (
	"strings"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAlumni  = "alumni"
	RoleAdmin   = "admin"
)

var KnownRoles = []string{RoleStudent, RoleTeacher, RoleAlumni, RoleAdmin}

func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// IsOwnerRole reports whether the role may own projects.
func IsOwnerRole(role string) bool {
	return strings.EqualFold(role, RoleTeacher) || strings.EqualFold(role, RoleAlumni)
}

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasRolePrefix(prefix string) bool {
	for _, v := range c {
		if strings.HasPrefix(strings.ToLower(v), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}

func (c Permissions) IsAdmin() bool {
	return c.HasRole(RoleAdmin)
}

func (c Permissions) IsFreelancer() bool {
	return c.HasRole(RoleStudent)
}

// CanOwnProjects reports whether the principal may create projects.
func (c Permissions) CanOwnProjects() bool {
	return c.HasRole(RoleTeacher) || c.HasRole(RoleAlumni) || c.IsAdmin()
}
