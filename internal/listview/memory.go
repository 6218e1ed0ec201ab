package listview

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/fvbommel/sortorder"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultMemoryTierMax bounds the collections served by a MemoryFetcher.
const DefaultMemoryTierMax = 1000

// ErrTooManyRows is returned when a collection exceeds the in-memory tier.
var ErrTooManyRows = errors.New("collection exceeds the in-memory tier")

// MemoryOptions describe how a MemoryFetcher reads its rows.
type MemoryOptions[T any] struct {
	// Max is the largest collection accepted. Zero means DefaultMemoryTierMax.
	Max int
	// SearchText returns the strings a search term is fuzzy-matched against.
	SearchText func(row T) []string
	// FilterValue returns the value of a filter key for a row.
	FilterValue func(row T, key string) string
	// FilterMatch replaces the equality test of FilterValue for filters over
	// multi-valued fields.
	FilterMatch func(row T, key, value string) bool
	// SortValue returns the value of a sort field for a row.
	SortValue func(row T, field string) string
}

// MemoryFetcher serves a bounded, locally known collection through the
// Fetcher contract: filtering, searching, natural-order sorting and
// pagination all happen in memory.
type MemoryFetcher[T any] struct {
	rows []T
	opts MemoryOptions[T]
}

var _ Fetcher[struct{}] = (*MemoryFetcher[struct{}])(nil)

// NewMemoryFetcher returns a fetcher over rows, or ErrTooManyRows when rows
// exceeds the configured maximum.
func NewMemoryFetcher[T any](rows []T, opts MemoryOptions[T]) (*MemoryFetcher[T], error) {
	if opts.Max <= 0 {
		opts.Max = DefaultMemoryTierMax
	}
	if len(rows) > opts.Max {
		return nil, fmt.Errorf("%w: %d rows, max %d", ErrTooManyRows, len(rows), opts.Max)
	}
	return &MemoryFetcher[T]{rows: slices.Clone(rows), opts: opts}, nil
}

func (m *MemoryFetcher[T]) List(ctx context.Context, params ListParams) (*ListResult[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched := make([]T, 0, len(m.rows))
	for _, row := range m.rows {
		if m.matches(row, params) {
			matched = append(matched, row)
		}
	}

	if field, dir, ok := strings.Cut(params.Sort, ":"); ok && m.opts.SortValue != nil {
		slices.SortStableFunc(matched, func(a, b T) int {
			av, bv := m.opts.SortValue(a, field), m.opts.SortValue(b, field)
			cmp := 0
			switch {
			case sortorder.NaturalLess(av, bv):
				cmp = -1
			case sortorder.NaturalLess(bv, av):
				cmp = 1
			}
			if dir == "desc" {
				return -cmp
			}
			return cmp
		})
	}

	limit := params.Limit
	if limit <= 0 {
		limit = len(matched)
	}
	page := max(params.Page, 1)
	total := int64(len(matched))
	meta := PageMeta{Total: total, TotalPages: TotalPages(total, limit), Page: page, Limit: limit}

	start := (page - 1) * limit
	if start >= len(matched) {
		return &ListResult[T]{Entities: []T{}, Pagination: meta}, nil
	}
	end := min(start+limit, len(matched))
	return &ListResult[T]{Entities: matched[start:end], Pagination: meta}, nil
}

func (m *MemoryFetcher[T]) matches(row T, params ListParams) bool {
	for key, want := range params.Filters {
		if want == AllValue {
			continue
		}
		switch {
		case m.opts.FilterMatch != nil:
			if !m.opts.FilterMatch(row, key, want) {
				return false
			}
		case m.opts.FilterValue != nil:
			if m.opts.FilterValue(row, key) != want {
				return false
			}
		}
	}
	if params.Search == "" || m.opts.SearchText == nil {
		return true
	}
	for _, text := range m.opts.SearchText(row) {
		if fuzzy.MatchFold(params.Search, text) {
			return true
		}
	}
	return false
}
