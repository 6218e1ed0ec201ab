package catalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/pkg"
)

// Query lists the columns a list request may sort, filter and search on.
type Query struct {
	SortFields   []string
	FilterFields []string
	SearchFields []string
}

// Repository is a gorm-backed store for one entity type.
type Repository[T any] struct {
	db    *gorm.DB
	query Query
}

// NewRepository creates a Repository over db.
func NewRepository[T any](db *gorm.DB, q Query) *Repository[T] {
	return &Repository[T]{db: db, query: q}
}

// Create inserts entity.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	return mapError(r.db.WithContext(ctx).Create(entity).Error)
}

// GetByID retrieves an entity by primary key.
func (r *Repository[T]) GetByID(ctx context.Context, id uint) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

// FindBy retrieves the first entity whose column equals value. column must
// be a trusted identifier.
func (r *Repository[T]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	var entity T
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&entity).Error; err != nil {
		return nil, mapError(err)
	}
	return &entity, nil
}

// List returns one page of entities matching req.
func (r *Repository[T]) List(ctx context.Context, req domain.PageRequest) (*domain.PageResult[T], error) {
	matching := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(new(T)).Scopes(
			pkg.Filter(req, r.query.FilterFields),
			pkg.Search(req, r.query.SearchFields),
		)
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return nil, mapError(err)
	}

	items := make([]T, 0, req.Limit)
	if err := matching().Scopes(
		pkg.Paginate(req),
		pkg.Sort(req, r.query.SortFields),
	).Find(&items).Error; err != nil {
		return nil, mapError(err)
	}

	return pkg.NewPageResult(items, total, req), nil
}

// Update saves all fields of entity.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	return mapError(r.db.WithContext(ctx).Save(entity).Error)
}

// Delete removes the entity with id.
func (r *Repository[T]) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return mapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// WithDB returns a copy of r bound to db, typically a transaction.
func (r *Repository[T]) WithDB(db *gorm.DB) *Repository[T] {
	return &Repository[T]{db: db, query: r.query}
}

// mapError converts GORM errors to domain errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err) {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", err)
	}
	return domain.NewAppError(domain.CodeInternal, "database error", err)
}

// isDuplicateKeyError detects unique constraint violations by message; the
// pure-Go SQLite driver does not translate them to gorm.ErrDuplicatedKey.
func isDuplicateKeyError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}
