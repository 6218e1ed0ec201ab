package listview

import "fmt"

// Pagination is the page navigation control under a table.
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalCount  int64

	// OnPageChange receives the requested page. It is only called for
	// transitions the control allows.
	OnPageChange func(page int)
	// PageHref builds the link target of a page in HTML output.
	PageHref func(page int) string
}

// PaginationView is the rendered control.
type PaginationView struct {
	Label         string
	CurrentPage   int
	TotalPages    int
	TotalCount    int64
	CanGoPrevious bool
	CanGoNext     bool
	PreviousPage  int
	NextPage      int
	PreviousHref  string
	NextHref      string
}

// Visible reports whether the control renders at all.
func (p Pagination) Visible() bool {
	return p.TotalPages > 1
}

func (p Pagination) CanGoPrevious() bool {
	return p.CurrentPage > 1
}

func (p Pagination) CanGoNext() bool {
	return p.CurrentPage < p.TotalPages
}

// Previous requests the previous page. It reports whether OnPageChange was called.
func (p Pagination) Previous() bool {
	if !p.CanGoPrevious() || p.OnPageChange == nil {
		return false
	}
	p.OnPageChange(p.CurrentPage - 1)
	return true
}

// Next requests the next page. It reports whether OnPageChange was called.
func (p Pagination) Next() bool {
	if !p.CanGoNext() || p.OnPageChange == nil {
		return false
	}
	p.OnPageChange(p.CurrentPage + 1)
	return true
}

func (p Pagination) Label() string {
	return fmt.Sprintf("Page %d of %d", p.CurrentPage, p.TotalPages)
}

// View renders the control, or returns nil when there is at most one page.
func (p Pagination) View() *PaginationView {
	if !p.Visible() {
		return nil
	}
	v := &PaginationView{
		Label:         p.Label(),
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalCount:    p.TotalCount,
		CanGoPrevious: p.CanGoPrevious(),
		CanGoNext:     p.CanGoNext(),
	}
	if v.CanGoPrevious {
		v.PreviousPage = p.CurrentPage - 1
		if p.PageHref != nil {
			v.PreviousHref = p.PageHref(v.PreviousPage)
		}
	}
	if v.CanGoNext {
		v.NextPage = p.CurrentPage + 1
		if p.PageHref != nil {
			v.NextHref = p.PageHref(v.NextPage)
		}
	}
	return v
}

// NormalizePage clamps page into [1, max(totalPages, 1)].
func NormalizePage(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// TotalPages computes the page count for total rows at limit rows per page.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
