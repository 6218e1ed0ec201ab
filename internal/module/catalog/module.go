package catalog

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/middleware"
)

// Resource is a set of routes guarded by entity permissions.
type Resource interface {
	Mount(g *gin.RouterGroup, checker middleware.PermissionChecker)
}

// Module serves the catalog resources behind bearer authentication.
type Module struct {
	verifier  middleware.TokenVerifier
	checker   middleware.PermissionChecker
	resources []Resource
}

// NewModule creates a Module. Panics if verifier or checker is nil.
func NewModule(verifier middleware.TokenVerifier, checker middleware.PermissionChecker, resources ...Resource) *Module {
	if verifier == nil {
		panic("catalog.NewModule: verifier must not be nil")
	}
	if checker == nil {
		panic("catalog.NewModule: checker must not be nil")
	}
	return &Module{verifier: verifier, checker: checker, resources: resources}
}

// RegisterAPI mounts every resource under api.
func (m *Module) RegisterAPI(api *gin.RouterGroup) {
	g := api.Group("", middleware.BearerAuth(m.verifier))
	for _, r := range m.resources {
		r.Mount(g, m.checker)
	}
}

// Resources builds the handlers of every catalog entity over db.
func Resources(db *gorm.DB) []Resource {
	return []Resource{
		NewResource(db, entities.Subjects),
		NewResource(db, entities.Packages),
		NewResource(db, entities.Videos),
		NewResource(db, entities.Faculty),
		NewResource(db, entities.Users),
	}
}

// Models lists the tables owned by the catalog API.
func Models() []any {
	return []any{
		&domain.User{},
		&domain.Subject{},
		&domain.Package{},
		&domain.Video{},
		&domain.Faculty{},
	}
}

// Migrate creates or updates the catalog tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
