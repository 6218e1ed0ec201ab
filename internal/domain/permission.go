package domain

import (
	"fmt"
	"strings"
)

// Permission is a flat "<resource>.<action>" capability string.
type Permission string

// Enumerated permissions. Strings outside this set are rejected.
const (
	PermSubjectsRead    Permission = "subjects.read"
	PermSubjectsWrite   Permission = "subjects.write"
	PermPackagesRead    Permission = "packages.read"
	PermPackagesWrite   Permission = "packages.write"
	PermVideosRead      Permission = "videos.read"
	PermVideosWrite     Permission = "videos.write"
	PermFacultyRead     Permission = "faculty.read"
	PermFacultyWrite    Permission = "faculty.write"
	PermUsersRead       Permission = "users.read"
	PermUsersWrite      Permission = "users.write"
	PermPermissionsRead Permission = "permissions.read"
)

// AllPermissions lists every known permission in display order.
var AllPermissions = []Permission{
	PermSubjectsRead, PermSubjectsWrite,
	PermPackagesRead, PermPackagesWrite,
	PermVideosRead, PermVideosWrite,
	PermFacultyRead, PermFacultyWrite,
	PermUsersRead, PermUsersWrite,
	PermPermissionsRead,
}

// Resource returns the resource part of p.
func (p Permission) Resource() string {
	r, _, _ := strings.Cut(string(p), ".")
	return r
}

// Action returns the action part of p.
func (p Permission) Action() string {
	_, a, _ := strings.Cut(string(p), ".")
	return a
}

// ParsePermission validates s against the enumerated permissions.
func ParsePermission(s string) (Permission, error) {
	for _, p := range AllPermissions {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown permission %q", s)
}

// MustPermission is ParsePermission for route setup; it panics on unknown
// strings so a typo fails at startup rather than silently denying access.
func MustPermission(s string) Permission {
	p, err := ParsePermission(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Role is a named bundle of permissions.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleContentManager Role = "content_manager"
	RoleViewer         Role = "viewer"
)

// AllRoles lists the known roles.
var AllRoles = []Role{RoleSuperAdmin, RoleContentManager, RoleViewer}

// RolePermissions is the default role policy.
var RolePermissions = map[Role][]Permission{
	RoleSuperAdmin: AllPermissions,
	RoleContentManager: {
		PermSubjectsRead, PermSubjectsWrite,
		PermPackagesRead, PermPackagesWrite,
		PermVideosRead, PermVideosWrite,
		PermFacultyRead, PermFacultyWrite,
	},
	RoleViewer: {
		PermSubjectsRead, PermPackagesRead, PermVideosRead, PermFacultyRead,
	},
}

// ParseRole validates s against the known roles.
func ParseRole(s string) (Role, error) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}
