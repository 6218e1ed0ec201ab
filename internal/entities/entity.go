// Package entities declares the catalog resources once: their permissions,
// list columns, filters, search fields and form inputs. The catalog API and
// the dashboard both build on these definitions.
package entities

import (
	"errors"
	"fmt"
	"html/template"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/listview"
)

// Input is a create or update payload for entities of type T. Inputs carry
// json and form tags plus validator rules.
type Input[T any] interface {
	Apply(dst *T)
}

// Field is one control of an entity form.
type Field[T any] struct {
	Name     string
	Label    string
	Type     string
	Options  []listview.FilterOption
	Required bool
	Value    func(row T) string
}

// Form field types.
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldNumber   = "number"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
)

// Entity describes one catalog resource.
type Entity[T any] struct {
	Slug     string
	Title    string
	Singular string
	Read     domain.Permission
	Write    domain.Permission

	Columns      []listview.Column[T]
	Schema       listview.Schema
	SearchFields []string
	Empty        listview.EmptyStates
	ID           func(row T) uint

	// NewInput returns an empty payload. Nil marks the entity read-only.
	NewInput func() Input[T]
	Fields   []Field[T]
}

// ReadOnly reports whether the entity has no create or update payload.
func (e Entity[T]) ReadOnly() bool {
	return e.NewInput == nil
}

// FilterKeys lists the filter keys in declaration order.
func (e Entity[T]) FilterKeys() []string {
	keys := make([]string, len(e.Schema.Filters))
	for i, f := range e.Schema.Filters {
		keys[i] = f.Key
	}
	return keys
}

// SortFields lists the sortable column IDs.
func (e Entity[T]) SortFields() []string {
	return e.Schema.SortFields
}

// RowKey identifies a row across renders.
func (e Entity[T]) RowKey(row T) string {
	return e.Slug + "-" + strconv.FormatUint(uint64(e.ID(row)), 10)
}

// Validate checks the definition for inconsistencies that would otherwise
// surface as broken pages.
func (e Entity[T]) Validate() error {
	if e.Slug == "" || e.Title == "" {
		return errors.New("entity slug and title are required")
	}
	if _, err := domain.ParsePermission(string(e.Read)); err != nil {
		return fmt.Errorf("entity %s: %w", e.Slug, err)
	}
	if !e.ReadOnly() {
		if _, err := domain.ParsePermission(string(e.Write)); err != nil {
			return fmt.Errorf("entity %s: %w", e.Slug, err)
		}
		if len(e.Fields) == 0 {
			return fmt.Errorf("entity %s: writable entity needs form fields", e.Slug)
		}
	}
	if e.ID == nil {
		return fmt.Errorf("entity %s: id func is required", e.Slug)
	}
	if err := listview.ValidateColumns(e.Columns); err != nil {
		return fmt.Errorf("entity %s: %w", e.Slug, err)
	}
	if !slices.Equal(e.Schema.SortFields, listview.SortableIDs(e.Columns)) {
		return fmt.Errorf("entity %s: sort fields must match the sortable columns", e.Slug)
	}
	if err := e.Schema.Validate(); err != nil {
		return fmt.Errorf("entity %s: %w", e.Slug, err)
	}
	return nil
}

// define fills the derived parts of e and panics on an invalid definition.
func define[T any](e Entity[T]) Entity[T] {
	e.Schema.SortFields = listview.SortableIDs(e.Columns)
	if err := e.Validate(); err != nil {
		panic(err)
	}
	return e
}

var statusClasses = map[string]string{
	domain.StatusActive:    "badge-success",
	domain.StatusPublished: "badge-success",
	domain.StatusInactive:  "badge-muted",
	domain.StatusDraft:     "badge-warning",
	domain.StatusArchived:  "badge-muted",
}

func statusBadge(status string) template.HTML {
	class, ok := statusClasses[status]
	if !ok {
		class = "badge-muted"
	}
	return template.HTML(`<span class="badge ` + class + `">` + template.HTMLEscapeString(status) + `</span>`)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func options(values ...string) []listview.FilterOption {
	out := make([]listview.FilterOption, len(values))
	for i, v := range values {
		out[i] = listview.FilterOption{Value: v, Label: titleCase(v)}
	}
	return out
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func statusFilter(values ...string) listview.Filter {
	return listview.Filter{Key: "status", Label: "Status", Options: options(values...)}
}

func uintString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
