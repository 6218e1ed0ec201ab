package entities

import (
	"slices"

	"github.com/learnhub/admin/internal/authz"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/listview"
)

// Permissions is the read-only permission catalog. It is served from memory,
// never from the catalog API.
var Permissions = define(Entity[authz.Grant]{
	Slug:     "permissions",
	Title:    "Permissions",
	Singular: "permission",
	Read:     domain.PermPermissionsRead,
	Columns: []listview.Column[authz.Grant]{
		{ID: "permission", Header: "Permission", Sortable: true, Cell: func(g authz.Grant) string { return string(g.Permission) }},
		{ID: "resource", Header: "Resource", Width: "10rem", Sortable: true, Cell: authz.Grant.Resource},
		{ID: "action", Header: "Action", Width: "7rem", Cell: authz.Grant.Action},
		{ID: "roles", Header: "Roles", Cell: authz.Grant.RoleList},
	},
	Schema: listview.Schema{
		Filters: []listview.Filter{
			{Key: "resource", Label: "Resource", Options: options(permissionResources()...)},
			{Key: "role", Label: "Role", Options: roleOptions()},
		},
		DefaultSort: "permission:asc",
	},
	Empty: listview.EmptyStates{
		Initial:  listview.EmptyState{Icon: "shield", Title: "No permissions defined"},
		Filtered: listview.EmptyState{Icon: "search", Title: "No matching permissions", Description: "Try a different search or clear the filters."},
	},
	ID: func(g authz.Grant) uint { return uint(slices.Index(domain.AllPermissions, g.Permission) + 1) },
})

// PermissionMemoryOptions configures the in-memory tier over the catalog.
func PermissionMemoryOptions(maxRows int) listview.MemoryOptions[authz.Grant] {
	return listview.MemoryOptions[authz.Grant]{
		Max:        maxRows,
		SearchText: func(g authz.Grant) []string { return []string{string(g.Permission), g.RoleList()} },
		FilterMatch: func(g authz.Grant, key, value string) bool {
			switch key {
			case "resource":
				return g.Resource() == value
			case "role":
				return g.HoldsRole(domain.Role(value))
			}
			return true
		},
		SortValue: func(g authz.Grant, field string) string {
			if field == "resource" {
				return g.Resource() + "." + g.Action()
			}
			return string(g.Permission)
		},
	}
}

func permissionResources() []string {
	var out []string
	for _, p := range domain.AllPermissions {
		if r := p.Resource(); !slices.Contains(out, r) {
			out = append(out, r)
		}
	}
	return out
}

func roleOptions() []listview.FilterOption {
	out := make([]listview.FilterOption, len(domain.AllRoles))
	for i, r := range domain.AllRoles {
		out[i] = listview.FilterOption{Value: string(r), Label: string(r)}
	}
	return out
}
