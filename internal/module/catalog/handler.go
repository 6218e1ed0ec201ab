package catalog

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/pkg"
)

// Handler serves the REST routes of one entity.
type Handler[T any] struct {
	entity entities.Entity[T]
	repo   *Repository[T]
}

// NewHandler creates a Handler for e backed by repo.
func NewHandler[T any](e entities.Entity[T], repo *Repository[T]) *Handler[T] {
	return &Handler[T]{entity: e, repo: repo}
}

// NewResource wires a repository and handler for e. Sorting, filtering and
// searching are limited to what the entity declares.
func NewResource[T any](db *gorm.DB, e entities.Entity[T]) *Handler[T] {
	q := Query{
		SortFields:   append(append([]string{}, e.SortFields()...), "id"),
		FilterFields: e.FilterKeys(),
		SearchFields: e.SearchFields,
	}
	return NewHandler(e, NewRepository[T](db, q))
}

// Mount registers the entity routes on g. Read routes require the read
// permission; write routes, absent for read-only entities, the write one.
func (h *Handler[T]) Mount(g *gin.RouterGroup, checker middleware.PermissionChecker) {
	r := g.Group("/" + h.entity.Slug)
	read := middleware.RequirePermission(checker, h.entity.Read)
	r.GET("", read, h.List)
	r.GET("/:id", read, h.Get)
	if h.entity.ReadOnly() {
		return
	}

	write := middleware.RequirePermission(checker, h.entity.Write)
	r.POST("", write, h.Create)
	r.PUT("/:id", write, h.Update)
	r.DELETE("/:id", write, h.Delete)
}

// List handles GET /api/v1/{resource}.
func (h *Handler[T]) List(c *gin.Context) {
	req := pkg.ParsePageRequest(c)
	if c.Query("sort") == "" && h.entity.Schema.DefaultSort != "" {
		req.Sort = h.entity.Schema.DefaultSort
	}

	result, err := h.repo.List(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}

// Get handles GET /api/v1/{resource}/:id.
func (h *Handler[T]) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	entity, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, h.describe(err))
		return
	}
	pkg.Success(c, entity)
}

// Create handles POST /api/v1/{resource}.
func (h *Handler[T]) Create(c *gin.Context) {
	in := h.entity.NewInput()
	if !pkg.BindAndValidate(c, in) {
		return
	}

	var entity T
	in.Apply(&entity)
	if err := h.repo.Create(c.Request.Context(), &entity); err != nil {
		pkg.Error(c, h.describe(err))
		return
	}
	pkg.Created(c, entity)
}

// Update handles PUT /api/v1/{resource}/:id.
func (h *Handler[T]) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	in := h.entity.NewInput()
	if !pkg.BindAndValidate(c, in) {
		return
	}

	ctx := c.Request.Context()
	entity, err := h.repo.GetByID(ctx, id)
	if err != nil {
		pkg.Error(c, h.describe(err))
		return
	}
	in.Apply(entity)
	if err := h.repo.Update(ctx, entity); err != nil {
		pkg.Error(c, h.describe(err))
		return
	}
	pkg.Success(c, entity)
}

// Delete handles DELETE /api/v1/{resource}/:id.
func (h *Handler[T]) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, err.Error(), nil))
		return
	}

	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		pkg.Error(c, h.describe(err))
		return
	}
	pkg.Success(c, nil)
}

// describe names the entity in not-found and conflict messages.
func (h *Handler[T]) describe(err error) error {
	switch {
	case domain.IsNotFound(err):
		return domain.NewAppError(domain.CodeNotFound, h.entity.Singular+" not found", err)
	case domain.IsAlreadyExists(err):
		return domain.NewAppError(domain.CodeAlreadyExists, h.entity.Singular+" already exists", err)
	}
	return err
}

// parseID extracts and validates the "id" URL parameter.
func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 || id > uint64(^uint(0)) {
		return 0, fmt.Errorf("invalid id: %s", raw)
	}
	return uint(id), nil
}
