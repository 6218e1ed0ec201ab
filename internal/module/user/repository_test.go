package user

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
)

// setupTestDB creates an in-memory SQLite database with the User table.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestCreateAndGetByEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	user := &domain.User{Name: "Alice", Email: "alice@example.com", Roles: []string{"viewer"}, Status: domain.StatusActive}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected non-zero ID after Create")
	}

	got, err := repo.GetByEmail(ctx, "  ALICE@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != user.ID || len(got.Roles) != 1 || got.Roles[0] != "viewer" {
		t.Errorf("got %+v", got)
	}
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	if !domain.IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(setupTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{Name: "Alice", Email: "dup@example.com", Status: domain.StatusActive}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := repo.Create(ctx, &domain.User{Name: "Bob", Email: "dup@example.com", Status: domain.StatusActive})
	if !domain.IsAlreadyExists(err) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}
