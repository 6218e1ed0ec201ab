package listview

import (
	"context"
	"maps"
	"net/url"
	"slices"
	"strconv"
)

// ListParams are the parameters of one collection request.
type ListParams struct {
	Page    int
	Limit   int
	Search  string
	Filters map[string]string
	Sort    string
}

// Values encodes p as list API query parameters. Filters are emitted in key
// order.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPage, strconv.Itoa(max(p.Page, 1)))
	if p.Limit > 0 {
		v.Set(ParamLimit, strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		v.Set(ParamSearch, p.Search)
	}
	for _, k := range slices.Sorted(maps.Keys(p.Filters)) {
		v.Set(k, p.Filters[k])
	}
	if p.Sort != "" {
		v.Set(ParamSort, p.Sort)
	}
	return v
}

// PageMeta is the pagination block of a list response.
type PageMeta struct {
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
}

// ListResult is one page of a collection.
type ListResult[T any] struct {
	Entities   []T      `json:"entities"`
	Pagination PageMeta `json:"pagination"`
}

// Fetcher loads one page of a collection.
type Fetcher[T any] interface {
	List(ctx context.Context, params ListParams) (*ListResult[T], error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc[T any] func(ctx context.Context, params ListParams) (*ListResult[T], error)

func (f FetcherFunc[T]) List(ctx context.Context, params ListParams) (*ListResult[T], error) {
	return f(ctx, params)
}
