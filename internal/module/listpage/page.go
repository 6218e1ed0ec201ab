// Package listpage builds the dashboard pages of a catalog entity from its
// definition: a list shell, the lazily loaded rows fragment, an XLSX export
// and, for writable entities, the create, edit and delete modals.
package listpage

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/listview"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/ui"
)

// Template names rendered by a Page.
const (
	templateIndex = "listpage/index.html"
	templateRows  = "listpage/rows.html"
	templateForm  = "listpage/form.html"
	templateError = "errors/500.html"
)

// DefaultExportMax caps the rows written by an export.
const DefaultExportMax = 5000

// Options tune every page built by New.
type Options struct {
	PageSize       int
	SkeletonRows   int
	SearchDebounce time.Duration
	ExportMax      int
	Logger         *slog.Logger
	Metrics        *listview.Metrics
}

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = 20
	}
	if o.SkeletonRows <= 0 {
		o.SkeletonRows = listview.DefaultSkeletonCount
	}
	if o.SearchDebounce <= 0 {
		o.SearchDebounce = listview.DefaultDebounce
	}
	if o.ExportMax <= 0 {
		o.ExportMax = DefaultExportMax
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Page serves one entity's list and forms.
type Page[T any] struct {
	entity entities.Entity[T]
	source SourceFunc[T]
	guard  *middleware.SessionGuard
	opts   Options
}

// New returns the page of e. It panics when e is not a valid definition.
func New[T any](e entities.Entity[T], source SourceFunc[T], guard *middleware.SessionGuard, opts Options) *Page[T] {
	if err := e.Validate(); err != nil {
		panic("listpage.New: " + err.Error())
	}
	if source == nil || guard == nil {
		panic("listpage.New: source and guard are required")
	}
	return &Page[T]{entity: e, source: source, guard: guard, opts: opts.withDefaults()}
}

// NavItem is the navigation entry of the page.
func (p *Page[T]) NavItem() ui.NavItem {
	return ui.NavItem{Title: p.entity.Title, Href: p.path(), Icon: p.entity.Empty.Initial.Icon, Permission: p.entity.Read}
}

// RegisterPages mounts the page under /<slug>. The group must load the
// session; anonymous requests are sent to the login page.
func (p *Page[T]) RegisterPages(r *gin.RouterGroup) {
	g := r.Group(p.path(), p.guard.RequirePermission(p.entity.Read))
	g.GET("", p.Index)
	g.GET("/rows", p.Rows)
	g.GET("/export", p.Export)

	if p.entity.ReadOnly() {
		return
	}
	w := g.Group("", p.guard.RequirePermission(p.entity.Write))
	w.GET("/new", p.New)
	w.POST("", p.Create)
	w.GET("/:id/edit", p.Edit)
	w.PUT("/:id", p.Update)
	w.DELETE("/:id", p.Delete)
}

func (p *Page[T]) path() string {
	return "/" + p.entity.Slug
}

func (p *Page[T]) itemPath(id uint) string {
	return p.path() + "/" + strconv.FormatUint(uint64(id), 10)
}

// sourceFor returns the source bound to the request's session.
func (p *Page[T]) sourceFor(c *gin.Context) Source[T] {
	return p.source(middleware.CurrentSession(c))
}

// requestContext forwards the request id to the catalog API.
func requestContext(c *gin.Context) context.Context {
	return apiclient.ContextWithRequestID(c.Request.Context(), middleware.GetRequestID(c))
}

func (p *Page[T]) canWrite(c *gin.Context) bool {
	return !p.entity.ReadOnly() && middleware.CurrentSession(c).HasPermission(p.entity.Write)
}
