package user

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/module/catalog"
)

// userRepository implements domain.UserRepository on the catalog repository.
type userRepository struct {
	repo *catalog.Repository[domain.User]
}

// NewUserRepository creates a UserRepository backed by db.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{repo: catalog.NewRepository[domain.User](db, catalog.Query{
		SortFields:   entities.Users.SortFields(),
		FilterFields: entities.Users.FilterKeys(),
		SearchFields: entities.Users.SearchFields,
	})}
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.repo.Create(ctx, user)
}

// GetByEmail looks a user up by normalized email.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.repo.FindBy(ctx, "email", normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
