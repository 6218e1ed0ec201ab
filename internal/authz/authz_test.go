package authz

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/learnhub/admin/internal/domain"
)

func newDefault(t *testing.T) *Enforcer {
	t.Helper()
	e, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestEnforcer_DefaultPolicy(t *testing.T) {
	e := newDefault(t)

	tests := []struct {
		roles []string
		perm  domain.Permission
		want  bool
	}{
		{[]string{"viewer"}, domain.PermSubjectsRead, true},
		{[]string{"viewer"}, domain.PermSubjectsWrite, false},
		{[]string{"content_manager"}, domain.PermVideosWrite, true},
		{[]string{"content_manager"}, domain.PermUsersRead, false},
		{[]string{"viewer", "content_manager"}, domain.PermFacultyWrite, true},
		{[]string{"super_admin"}, domain.PermPermissionsRead, true},
		{[]string{"intruder"}, domain.PermSubjectsRead, false},
		{nil, domain.PermSubjectsRead, false},
	}
	for _, tt := range tests {
		if got := e.Can(tt.roles, tt.perm); got != tt.want {
			t.Errorf("Can(%v, %s) = %v; want %v", tt.roles, tt.perm, got, tt.want)
		}
	}
}

func TestEnforcer_Permissions(t *testing.T) {
	e := newDefault(t)

	got := e.Permissions([]string{"viewer"})
	want := domain.RolePermissions[domain.RoleViewer]
	if !slices.Equal(got, want) {
		t.Errorf("Permissions(viewer) = %v; want %v", got, want)
	}
	if got := e.Permissions([]string{"super_admin"}); !slices.Equal(got, domain.AllPermissions) {
		t.Errorf("Permissions(super_admin) = %v", got)
	}
}

func TestEnforcer_Catalog(t *testing.T) {
	e := newDefault(t)

	catalog := e.Catalog()
	if len(catalog) != len(domain.AllPermissions) {
		t.Fatalf("len(Catalog) = %d", len(catalog))
	}
	first := catalog[0]
	if first.Permission != domain.PermSubjectsRead || first.RoleList() != "super_admin, content_manager, viewer" {
		t.Errorf("first grant = %+v (%s)", first, first.RoleList())
	}
	last := catalog[len(catalog)-1]
	if !last.HoldsRole(domain.RoleSuperAdmin) || last.HoldsRole(domain.RoleViewer) {
		t.Errorf("permissions.read grant = %+v", last)
	}
	if first.Resource() != "subjects" || first.Action() != "read" {
		t.Errorf("Resource/Action = %s/%s", first.Resource(), first.Action())
	}
}

func TestEnforcer_PolicyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.csv")
	policy := "p, auditor, users, read\n" +
		"p, editor, subjects, write\n" +
		"g, lead, editor\n"
	if err := os.WriteFile(path, []byte(policy), 0o644); err != nil {
		t.Fatal(err)
	}

	e, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !e.Can([]string{"auditor"}, domain.PermUsersRead) {
		t.Error("auditor should read users")
	}
	if !e.Can([]string{"lead"}, domain.PermSubjectsWrite) {
		t.Error("lead should inherit editor")
	}
	if e.Can([]string{"viewer"}, domain.PermSubjectsRead) {
		t.Error("built-in policy should not apply when a file is given")
	}
}

func TestNew_MissingPolicyFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Fatal("expected error for missing policy file")
	}
}
