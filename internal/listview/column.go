// Package listview implements the list view core shared by every entity page:
// a typed table renderer, the pagination control, the URL-backed query state
// and a fetch controller that drops stale responses.
package listview

import (
	"errors"
	"fmt"
	"html/template"
)

// Column describes one column of a table over rows of type T.
//
// Cell and HTML are pure functions of the row. When HTML is set it is used for
// the HTML rendering of the cell; Cell is always used for text output (console,
// export) and as the escaped HTML fallback.
type Column[T any] struct {
	ID       string
	Header   string
	Width    string
	Sortable bool
	Cell     func(row T) string
	HTML     func(row T) template.HTML
}

// ValidateColumns reports whether cols is a usable column set: every column has
// a non-empty, unique ID and a cell function.
func ValidateColumns[T any](cols []Column[T]) error {
	if len(cols) == 0 {
		return errors.New("at least one column is required")
	}
	seen := make(map[string]struct{}, len(cols))
	for i, col := range cols {
		if col.ID == "" {
			return fmt.Errorf("column %d: id is required", i)
		}
		if _, dup := seen[col.ID]; dup {
			return fmt.Errorf("column %d: duplicate id %q", i, col.ID)
		}
		seen[col.ID] = struct{}{}
		if col.Cell == nil && col.HTML == nil {
			return fmt.Errorf("column %q: cell function is required", col.ID)
		}
	}
	return nil
}

// SortableIDs returns the IDs of the sortable columns in declaration order.
func SortableIDs[T any](cols []Column[T]) []string {
	var ids []string
	for _, col := range cols {
		if col.Sortable {
			ids = append(ids, col.ID)
		}
	}
	return ids
}

func (c Column[T]) text(row T) string {
	if c.Cell == nil {
		return ""
	}
	return c.Cell(row)
}

func (c Column[T]) html(row T) template.HTML {
	if c.HTML != nil {
		return c.HTML(row)
	}
	return template.HTML(template.HTMLEscapeString(c.text(row)))
}
