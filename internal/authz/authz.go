// Package authz decides which permissions a set of roles grants, using a
// casbin RBAC policy.
package authz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/learnhub/admin/internal/domain"
)

// modelText is a role-based model: subjects are roles, objects are resources
// and actions are "read" or "write". Roles may inherit through g rules.
const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Enforcer answers permission questions for role sets.
type Enforcer struct {
	e *casbin.Enforcer
}

// New builds an Enforcer. With an empty policyPath the built-in role policy
// (domain.RolePermissions) is loaded; otherwise policies come from the CSV
// file at policyPath.
func New(policyPath string) (*Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: parse model: %w", err)
	}

	var e *casbin.Enforcer
	if policyPath != "" {
		e, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
	} else {
		e, err = casbin.NewEnforcer(m)
	}
	if err != nil {
		return nil, fmt.Errorf("authz: init enforcer: %w", err)
	}

	if policyPath == "" {
		if _, err := e.AddPolicies(defaultPolicy()); err != nil {
			return nil, fmt.Errorf("authz: load default policy: %w", err)
		}
	}
	return &Enforcer{e: e}, nil
}

func defaultPolicy() [][]string {
	var rules [][]string
	for _, role := range domain.AllRoles {
		for _, p := range domain.RolePermissions[role] {
			rules = append(rules, []string{string(role), p.Resource(), p.Action()})
		}
	}
	return rules
}

// Can reports whether any of roles grants p.
func (a *Enforcer) Can(roles []string, p domain.Permission) bool {
	for _, role := range roles {
		ok, err := a.e.Enforce(role, p.Resource(), p.Action())
		if err == nil && ok {
			return true
		}
	}
	return false
}

// Permissions lists, in catalog order, every permission granted by roles.
func (a *Enforcer) Permissions(roles []string) []domain.Permission {
	var out []domain.Permission
	for _, p := range domain.AllPermissions {
		if a.Can(roles, p) {
			out = append(out, p)
		}
	}
	return out
}

// Grant is one row of the permission catalog: a permission and the known
// roles that hold it.
type Grant struct {
	Permission domain.Permission
	Roles      []domain.Role
}

// Resource returns the resource part of the permission.
func (g Grant) Resource() string { return g.Permission.Resource() }

// Action returns the action part of the permission.
func (g Grant) Action() string { return g.Permission.Action() }

// RoleList joins the role names for display.
func (g Grant) RoleList() string {
	names := make([]string, len(g.Roles))
	for i, r := range g.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}

// Catalog returns every enumerated permission with the roles granting it.
func (a *Enforcer) Catalog() []Grant {
	out := make([]Grant, 0, len(domain.AllPermissions))
	for _, p := range domain.AllPermissions {
		g := Grant{Permission: p}
		for _, role := range domain.AllRoles {
			if a.Can([]string{string(role)}, p) {
				g.Roles = append(g.Roles, role)
			}
		}
		out = append(out, g)
	}
	return out
}

// HoldsRole reports whether g is granted to role.
func (g Grant) HoldsRole(role domain.Role) bool {
	return slices.Contains(g.Roles, role)
}
