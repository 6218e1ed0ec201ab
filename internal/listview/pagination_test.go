package listview

import "testing"

func TestPaginationVisible(t *testing.T) {
	tests := []struct {
		totalPages int
		want       bool
	}{
		{0, false},
		{1, false},
		{2, true},
	}
	for _, tt := range tests {
		p := Pagination{CurrentPage: 1, TotalPages: tt.totalPages}
		if got := p.Visible(); got != tt.want {
			t.Errorf("Visible() with %d pages = %v; want %v", tt.totalPages, got, tt.want)
		}
		if !tt.want && p.View() != nil {
			t.Errorf("View() with %d pages should be nil", tt.totalPages)
		}
	}
}

func TestPaginationNavigation(t *testing.T) {
	var requested []int
	onChange := func(p int) { requested = append(requested, p) }

	first := Pagination{CurrentPage: 1, TotalPages: 3, OnPageChange: onChange}
	if first.Previous() {
		t.Error("Previous on first page should not fire")
	}
	if !first.Next() {
		t.Error("Next on first page should fire")
	}

	last := Pagination{CurrentPage: 3, TotalPages: 3, OnPageChange: onChange}
	if last.Next() {
		t.Error("Next on last page should not fire")
	}
	if !last.Previous() {
		t.Error("Previous on last page should fire")
	}

	if len(requested) != 2 || requested[0] != 2 || requested[1] != 2 {
		t.Errorf("requested pages = %v; want [2 2]", requested)
	}
}

func TestPaginationView(t *testing.T) {
	p := Pagination{
		CurrentPage: 2,
		TotalPages:  5,
		TotalCount:  97,
		PageHref:    func(n int) string { return "/subjects?page=" + string(rune('0'+n)) },
	}
	v := p.View()
	if v == nil {
		t.Fatal("View() = nil")
	}
	if v.Label != "Page 2 of 5" {
		t.Errorf("Label = %q", v.Label)
	}
	if !v.CanGoPrevious || !v.CanGoNext {
		t.Errorf("navigation flags = %v/%v; want both enabled", v.CanGoPrevious, v.CanGoNext)
	}
	if v.PreviousHref != "/subjects?page=1" || v.NextHref != "/subjects?page=3" {
		t.Errorf("hrefs = %q, %q", v.PreviousHref, v.NextHref)
	}
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, total, want int
	}{
		{0, 3, 1},
		{-4, 3, 1},
		{2, 3, 2},
		{9, 3, 3},
		{5, 0, 1},
	}
	for _, tt := range tests {
		if got := NormalizePage(tt.page, tt.total); got != tt.want {
			t.Errorf("NormalizePage(%d, %d) = %d; want %d", tt.page, tt.total, got, tt.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("TotalPages(%d, %d) = %d; want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
