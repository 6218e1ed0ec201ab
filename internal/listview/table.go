package listview

import (
	"html/template"
	"strconv"
)

// DefaultSkeletonCount is the number of placeholder rows shown while loading.
const DefaultSkeletonCount = 5

// State is the visual state a table renders in.
type State int

const (
	StateLoading State = iota
	StateEmpty
	StatePopulated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	default:
		return "unknown"
	}
}

// Action is a call to action offered by an empty state.
type Action struct {
	Label string
	Href  string
}

// EmptyState is the block shown in place of rows when there is nothing to list.
type EmptyState struct {
	Icon        string
	Title       string
	Description string
	Action      *Action
}

var defaultEmptyState = EmptyState{Title: "No results"}

// Table is a typed, stateless table over rows of type T. Render produces a
// View; the table itself holds no state between renders.
type Table[T any] struct {
	Data       []T
	Columns    []Column[T]
	IsLoading  bool
	EmptyState *EmptyState
	Pagination *Pagination

	// OnRowClick is invoked synchronously with the activated row.
	OnRowClick func(row T)
	// RowKey overrides the positional "row-<index>" key.
	RowKey func(row T) string
	// RowHref gives a row a navigation target in HTML output.
	RowHref func(row T) string

	SkeletonCount int
}

// HeaderView is a rendered column header.
type HeaderView struct {
	ID       string
	Label    string
	Width    string
	Sortable bool
}

// CellView is a rendered cell.
type CellView struct {
	ColumnID string
	Text     string
	HTML     template.HTML
}

// RowView is a rendered data row.
type RowView struct {
	Key   string
	Href  string
	Cells []CellView
}

// View is the render output of a Table. Exactly one of Skeleton, Empty or Rows
// is populated, selected by State.
type View struct {
	State    State
	Headers  []HeaderView
	Skeleton []int
	Empty    *EmptyState
	Rows     []RowView

	// ShowFooter is true when a pagination footer belongs under the rows.
	// Footer is nil when the footer is shown but the control itself is hidden.
	ShowFooter bool
	Footer     *PaginationView
}

// Render selects the table state (loading, then empty, then populated) and
// renders it. Cell functions are called directly; a panicking cell propagates.
func (t Table[T]) Render() View {
	v := View{Headers: make([]HeaderView, 0, len(t.Columns))}
	for _, col := range t.Columns {
		v.Headers = append(v.Headers, HeaderView{
			ID:       col.ID,
			Label:    col.Header,
			Width:    col.Width,
			Sortable: col.Sortable,
		})
	}

	switch {
	case t.IsLoading:
		v.State = StateLoading
		n := t.SkeletonCount
		if n <= 0 {
			n = DefaultSkeletonCount
		}
		v.Skeleton = make([]int, n)
		for i := range v.Skeleton {
			v.Skeleton[i] = i
		}
		return v
	case len(t.Data) == 0:
		v.State = StateEmpty
		empty := defaultEmptyState
		if t.EmptyState != nil {
			empty = *t.EmptyState
		}
		v.Empty = &empty
		return v
	}

	v.State = StatePopulated
	v.Rows = make([]RowView, 0, len(t.Data))
	for i, row := range t.Data {
		rv := RowView{Key: t.key(row, i), Cells: make([]CellView, 0, len(t.Columns))}
		if t.RowHref != nil {
			rv.Href = t.RowHref(row)
		}
		for _, col := range t.Columns {
			rv.Cells = append(rv.Cells, CellView{
				ColumnID: col.ID,
				Text:     col.text(row),
				HTML:     col.html(row),
			})
		}
		v.Rows = append(v.Rows, rv)
	}

	if t.Pagination != nil {
		v.ShowFooter = true
		v.Footer = t.Pagination.View()
	}
	return v
}

// Click activates the row with the given key. It reports whether a row was
// found and a click handler invoked.
func (t Table[T]) Click(key string) bool {
	if t.OnRowClick == nil || t.IsLoading {
		return false
	}
	for i, row := range t.Data {
		if t.key(row, i) == key {
			t.OnRowClick(row)
			return true
		}
	}
	return false
}

func (t Table[T]) key(row T, index int) string {
	if t.RowKey != nil {
		return t.RowKey(row)
	}
	return "row-" + strconv.Itoa(index)
}
