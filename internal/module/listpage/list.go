package listpage

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/export"
	"github.com/learnhub/admin/internal/listview"
	"github.com/learnhub/admin/internal/middleware"
	"github.com/learnhub/admin/internal/pkg"
	"github.com/learnhub/admin/internal/ui"
)

// listElementID is the id of the element the rows fragment replaces. htmx
// sends it in HX-Trigger when the list reloads itself.
const listElementID = "list"

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type filterView struct {
	Key     string
	Label   string
	Options []optionView
}

type headerView struct {
	listview.HeaderView
	Direction string
	Href      string
}

type entityView struct {
	Slug     string
	Title    string
	Singular string
	Path     string
}

// listData is the view data of the list shell and the rows fragment.
type listData struct {
	ui.Layout
	Entity     entityView
	ElementID  string
	Search     string
	Sort       string
	Filters    []filterView
	Headers    []headerView
	Table      listview.View
	RowsURL    string
	ExportURL  string
	NewURL     string
	CanWrite   bool
	DebounceMS int64
}

// Index renders the list shell with a skeleton table. The rows are fetched by
// the browser from /rows as soon as the shell loads.
func (p *Page[T]) Index(c *gin.Context) {
	q := p.entity.Schema.Parse(c.Request.URL.Query())
	data := p.listData(c, q, nil)
	data.Layout = ui.NewLayout(c, p.entity.Title, p.path())
	c.HTML(http.StatusOK, templateIndex, data)
}

// Rows fetches one page and renders the table fragment. The canonical list
// URL is pushed into the browser history, or replaced when the list reloaded
// itself.
func (p *Page[T]) Rows(c *gin.Context) {
	schema := p.entity.Schema
	q := schema.Parse(c.Request.URL.Query())
	src := p.sourceFor(c)

	out := p.load(c, src, q)
	if out.Err == nil && out.Page.TotalPages > 0 && q.Page > out.Page.TotalPages {
		q, _ = schema.WithPage(q, out.Page.TotalPages)
		out = p.load(c, src, q)
	}

	canonical := schema.URL(p.path(), q)
	if out.Err != nil {
		if p.rejectAuth(c, out.Err, canonical) {
			return
		}
		p.opts.Logger.WarnContext(c.Request.Context(), "list fetch failed",
			"list", p.entity.Slug, "error", out.Err)
		pkg.Toast(c, pkg.ToastError, p.failureMessage(out.Err))
	}

	p.syncURL(c, canonical)
	c.HTML(http.StatusOK, templateRows, p.listData(c, q, &out))
}

// Export writes every row matching the current query as an XLSX workbook.
func (p *Page[T]) Export(c *gin.Context) {
	schema := p.entity.Schema
	q := schema.Parse(c.Request.URL.Query())

	rows, err := export.Collect(requestContext(c), p.sourceFor(c), schema.Params(q, 0), p.opts.ExportMax)
	if err != nil {
		if p.rejectAuth(c, err, schema.URL(p.path(), q)) {
			return
		}
		p.opts.Logger.WarnContext(c.Request.Context(), "export failed", "list", p.entity.Slug, "error", err)
		if errors.Is(err, export.ErrTooManyRows) {
			ui.ErrorPage(c, http.StatusBadRequest,
				fmt.Sprintf("More than %d %s match. Narrow the search or filters and export again.", p.opts.ExportMax, strings.ToLower(p.entity.Title)))
			return
		}
		ui.ErrorPage(c, http.StatusBadGateway, p.failureMessage(err))
		return
	}

	view := listview.Table[T]{Data: rows, Columns: p.entity.Columns}.Render()
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, p.entity.Title, view); err != nil {
		p.opts.Logger.ErrorContext(c.Request.Context(), "write export", "list", p.entity.Slug, "error", err)
		ui.ErrorPage(c, http.StatusInternalServerError, "")
		return
	}

	filename := fmt.Sprintf("%s-%s.xlsx", p.entity.Slug, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (p *Page[T]) load(c *gin.Context, src Source[T], q listview.QueryState) listview.Outcome[T] {
	start := time.Now()
	out := listview.Load(requestContext(c), src, p.entity.Schema, q, p.opts.PageSize)
	p.opts.Metrics.Observe(p.entity.Slug, out.Result(), time.Since(start))
	return out
}

// rejectAuth turns authorization failures of the catalog API into redirects.
// An expired token ends the session.
func (p *Page[T]) rejectAuth(c *gin.Context, err error, next string) bool {
	switch {
	case domain.IsUnauthorized(err):
		if endErr := p.guard.End(c); endErr != nil {
			p.opts.Logger.WarnContext(c.Request.Context(), "end session", "error", endErr)
		}
		pkg.Redirect(c, middleware.LoginPath+"?next="+url.QueryEscape(next))
		return true
	case domain.IsForbidden(err):
		pkg.Redirect(c, middleware.UnauthorizedPath)
		return true
	}
	return false
}

func (p *Page[T]) failureMessage(err error) string {
	return domain.UserMessage(err, "Could not load "+strings.ToLower(p.entity.Title)+". Try again in a moment.")
}

// syncURL pushes canonical unless the browser already shows it.
func (p *Page[T]) syncURL(c *gin.Context, canonical string) {
	if !pkg.IsHTMX(c) {
		return
	}
	if current, err := url.Parse(c.GetHeader(pkg.HeaderHXCurrentURL)); err == nil && current.RequestURI() == canonical {
		return
	}
	if c.GetHeader(pkg.HeaderHXTrigger) == listElementID {
		c.Header(pkg.HeaderHXReplaceURL, canonical)
		return
	}
	c.Header(pkg.HeaderHXPushURL, canonical)
}

// listData builds the view data for q. A nil outcome renders the loading
// state.
func (p *Page[T]) listData(c *gin.Context, q listview.QueryState, out *listview.Outcome[T]) listData {
	schema := p.entity.Schema
	canWrite := p.canWrite(c)
	rowsPath := p.path() + "/rows"

	empty := p.entity.Empty.For(schema, q)
	if !canWrite {
		empty.Action = nil
	}

	table := listview.Table[T]{
		Columns:       p.entity.Columns,
		IsLoading:     out == nil,
		EmptyState:    empty,
		RowKey:        p.entity.RowKey,
		SkeletonCount: p.opts.SkeletonRows,
	}
	if canWrite {
		table.Columns = append(slices.Clip(p.entity.Columns), p.actionsColumn())
		table.RowHref = func(row T) string { return p.itemPath(p.entity.ID(row)) + "/edit" }
	}
	if out != nil {
		table.Data = out.Rows
		if pg := out.Pagination(); pg != nil {
			pg.PageHref = func(page int) string {
				next, _ := schema.WithPage(q, page)
				return schema.URL(rowsPath, next)
			}
			table.Pagination = pg
		}
	}
	view := table.Render()

	headers := make([]headerView, len(view.Headers))
	for i, h := range view.Headers {
		headers[i] = headerView{HeaderView: h}
		if h.Sortable {
			headers[i].Direction = schema.SortDirection(q, h.ID)
			next, _ := schema.WithSort(q, schema.ToggleSort(q, h.ID))
			headers[i].Href = schema.URL(rowsPath, next)
		}
	}

	filters := make([]filterView, len(schema.Filters))
	for i, f := range schema.Filters {
		current := q.Filter(f.Key)
		fv := filterView{Key: f.Key, Label: f.Label}
		fv.Options = append(fv.Options, optionView{Value: listview.AllValue, Label: "All", Selected: current == listview.AllValue})
		for _, o := range f.Options {
			fv.Options = append(fv.Options, optionView{Value: o.Value, Label: o.Label, Selected: current == o.Value})
		}
		filters[i] = fv
	}

	data := listData{
		Entity: entityView{
			Slug:     p.entity.Slug,
			Title:    p.entity.Title,
			Singular: p.entity.Singular,
			Path:     p.path(),
		},
		ElementID:  listElementID,
		Search:     q.Search,
		Sort:       q.Sort,
		Filters:    filters,
		Headers:    headers,
		Table:      view,
		RowsURL:    schema.URL(rowsPath, q),
		ExportURL:  schema.URL(p.path()+"/export", q),
		CanWrite:   canWrite,
		DebounceMS: p.opts.SearchDebounce.Milliseconds(),
	}
	if canWrite {
		data.NewURL = p.path() + "/new"
	}
	return data
}

// actionsColumn renders the per-row delete control.
func (p *Page[T]) actionsColumn() listview.Column[T] {
	confirm := template.HTMLEscapeString("Delete this " + p.entity.Singular + "?")
	return listview.Column[T]{
		ID:    "actions",
		Width: "6rem",
		Cell:  func(T) string { return "" },
		HTML: func(row T) template.HTML {
			return template.HTML(`<button type="button" class="btn btn-link btn-danger" hx-delete="` +
				p.itemPath(p.entity.ID(row)) + `" hx-confirm="` + confirm + `" hx-swap="none">Delete</button>`)
		},
	}
}
