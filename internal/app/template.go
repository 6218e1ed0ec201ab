package app

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/session"
)

const (
	templateRoot    = "templates"
	htmlContentType = "text/html; charset=utf-8"
)

// sharedDirs hold the templates every view can call.
var sharedDirs = []string{"layouts", "partials"}

// TemplateRenderer renders the dashboard's views for gin.
//
// Files under templates/layouts and templates/partials form one shared set.
// Every other .html file is a view, compiled on its own clone of that set and
// looked up by its path below templates/, e.g. "listpage/index.html". Views
// come in two shapes:
//
//   - full pages invoke "base" and fill its "content" block (the list shell,
//     login, error pages);
//   - htmx fragments skip the layout and invoke partials directly, so
//     listpage/rows.html swaps a freshly rendered "table" into #list and
//     listpage/form.html fills #modal.
//
// Because each view owns its clone, two full pages may both define "content".
type TemplateRenderer struct {
	fsys   fs.FS
	funcs  template.FuncMap
	reload bool
	views  map[string]*template.Template
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

// NewTemplateRenderer compiles the views found in fsys. With reload set the
// tree is compiled again for every response instead, which lets the dashboard
// serve templates from disk while they are being edited.
func NewTemplateRenderer(fsys fs.FS, reload bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fsys: fsys, funcs: templateFuncMap(), reload: reload}
	if reload {
		return r, nil
	}
	views, err := r.compile()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.views = views
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	views := r.views
	if r.reload {
		var err error
		if views, err = r.compile(); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: views[name], Name: name, Data: data}
}

func (r *TemplateRenderer) compile() (map[string]*template.Template, error) {
	shared, err := r.sharedSet()
	if err != nil {
		return nil, err
	}
	names, err := r.viewNames()
	if err != nil {
		return nil, fmt.Errorf("list views: %w", err)
	}

	views := make(map[string]*template.Template, len(names))
	for _, name := range names {
		view, err := shared.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone shared set for %s: %w", name, err)
		}
		if err := r.parseFile(view, name, path.Join(templateRoot, name)); err != nil {
			return nil, err
		}
		views[name] = view
	}
	return views, nil
}

func (r *TemplateRenderer) sharedSet() (*template.Template, error) {
	set := template.New("").Funcs(r.funcs)
	for _, dir := range sharedDirs {
		files, err := fs.Glob(r.fsys, path.Join(templateRoot, dir, "*.html"))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", dir, err)
		}
		for _, file := range files {
			if err := r.parseFile(set, file, file); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func (r *TemplateRenderer) parseFile(set *template.Template, name, file string) error {
	src, err := fs.ReadFile(r.fsys, file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if _, err := set.New(name).Parse(string(src)); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	return nil
}

// viewNames returns every view below templates/, relative to it.
func (r *TemplateRenderer) viewNames() ([]string, error) {
	var names []string
	err := fs.WalkDir(r.fsys, templateRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(p, templateRoot+"/")
		if d.IsDir() {
			if isSharedDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if path.Ext(p) == ".html" {
			names = append(names, rel)
		}
		return nil
	})
	return names, err
}

func isSharedDir(rel string) bool {
	for _, dir := range sharedDirs {
		if rel == dir {
			return true
		}
	}
	return false
}

// templateFuncMap returns the helper functions available to every template.
func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},

		// can reports whether the signed-in session grants the named
		// permission.
		"can": func(s *session.Session, p string) bool {
			return s.HasPermission(domain.Permission(p))
		},

		// initial returns the upper-cased first letter of s, for avatars.
		"initial": func(s string) string {
			for _, r := range s {
				return strings.ToUpper(string(r))
			}
			return ""
		},
	}
}

// HTMLInstance executes one view for one response.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error // compile error in reload mode
}

// Render implements render.Render.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	switch {
	case h.err != nil:
		return h.err
	case h.Template == nil:
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType sets an HTML content type unless a handler already chose
// one.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", htmlContentType)
	}
}
