package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func subjectRepo(db *gorm.DB) *Repository[domain.Subject] {
	return NewRepository[domain.Subject](db, Query{
		SortFields:   []string{"name", "code", "id"},
		FilterFields: []string{"status"},
		SearchFields: []string{"name", "code"},
	})
}

func createSubjects(t *testing.T, repo *Repository[domain.Subject], subjects ...domain.Subject) {
	t.Helper()
	for i := range subjects {
		if err := repo.Create(context.Background(), &subjects[i]); err != nil {
			t.Fatalf("create %s: %v", subjects[i].Name, err)
		}
	}
}

func TestRepository_CRUD(t *testing.T) {
	repo := subjectRepo(setupTestDB(t))
	ctx := context.Background()

	s := &domain.Subject{Name: "Algebra", Code: "MATH-1", Status: domain.StatusActive}
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByID(ctx, s.ID)
	if err != nil || got.Code != "MATH-1" {
		t.Fatalf("GetByID = %+v, %v", got, err)
	}

	got.Name = "Linear Algebra"
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	found, err := repo.FindBy(ctx, "code", "MATH-1")
	if err != nil || found.Name != "Linear Algebra" {
		t.Fatalf("FindBy = %+v, %v", found, err)
	}

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, s.ID); !domain.IsNotFound(err) {
		t.Errorf("GetByID after delete = %v; want not found", err)
	}
	if err := repo.Delete(ctx, s.ID); !domain.IsNotFound(err) {
		t.Errorf("second Delete = %v; want not found", err)
	}
}

func TestRepository_DuplicateCode(t *testing.T) {
	repo := subjectRepo(setupTestDB(t))
	createSubjects(t, repo, domain.Subject{Name: "Algebra", Code: "MATH-1", Status: domain.StatusActive})

	err := repo.Create(context.Background(), &domain.Subject{Name: "Other", Code: "MATH-1", Status: domain.StatusActive})
	if !domain.IsAlreadyExists(err) {
		t.Errorf("err = %v; want already exists", err)
	}
}

func TestRepository_List(t *testing.T) {
	repo := subjectRepo(setupTestDB(t))
	createSubjects(t, repo,
		domain.Subject{Name: "Chemistry", Code: "CHEM-1", Status: domain.StatusActive},
		domain.Subject{Name: "Algebra", Code: "MATH-1", Status: domain.StatusActive},
		domain.Subject{Name: "Biology", Code: "BIO-1", Status: domain.StatusInactive},
		domain.Subject{Name: "Geometry", Code: "MATH-2", Status: domain.StatusActive},
	)

	tests := []struct {
		name      string
		req       domain.PageRequest
		wantNames []string
		wantTotal int64
		wantPages int
	}{
		{
			name:      "sorted first page",
			req:       domain.PageRequest{Page: 1, Limit: 2, Sort: "name:asc"},
			wantNames: []string{"Algebra", "Biology"},
			wantTotal: 4,
			wantPages: 2,
		},
		{
			name:      "filter and search",
			req:       domain.PageRequest{Page: 1, Limit: 10, Sort: "code:desc", Search: "math", Filter: map[string]string{"status": "active"}},
			wantNames: []string{"Geometry", "Algebra"},
			wantTotal: 2,
			wantPages: 1,
		},
		{
			name:      "disallowed filter ignored",
			req:       domain.PageRequest{Page: 1, Limit: 10, Sort: "name:asc", Filter: map[string]string{"description": "x"}},
			wantNames: []string{"Algebra", "Biology", "Chemistry", "Geometry"},
			wantTotal: 4,
			wantPages: 1,
		},
		{
			name:      "page past the end",
			req:       domain.PageRequest{Page: 5, Limit: 2, Sort: "name:asc"},
			wantNames: []string{},
			wantTotal: 4,
			wantPages: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := repo.List(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if res.Pagination.Total != tt.wantTotal || res.Pagination.TotalPages != tt.wantPages {
				t.Errorf("pagination = %+v", res.Pagination)
			}
			if len(res.Entities) != len(tt.wantNames) {
				t.Fatalf("got %d entities; want %d", len(res.Entities), len(tt.wantNames))
			}
			for i, want := range tt.wantNames {
				if res.Entities[i].Name != want {
					t.Errorf("entity %d = %s; want %s", i, res.Entities[i].Name, want)
				}
			}
		})
	}
}

func TestMapError(t *testing.T) {
	if mapError(nil) != nil {
		t.Error("nil should map to nil")
	}
	if !domain.IsNotFound(mapError(gorm.ErrRecordNotFound)) {
		t.Error("record not found should map to not found")
	}
	if !domain.IsAlreadyExists(mapError(errors.New("UNIQUE constraint failed: subjects.code"))) {
		t.Error("unique violation should map to already exists")
	}
	if !domain.IsInternal(mapError(errors.New("disk I/O error"))) {
		t.Error("other errors should map to internal")
	}
}
