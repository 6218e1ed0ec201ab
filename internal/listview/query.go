package listview

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// AllValue is the conventional "no filtering" filter value.
const AllValue = "all"

// URL parameter names owned by the query state.
const (
	ParamSearch = "search"
	ParamSort   = "sort"
	ParamPage   = "page"
	ParamLimit  = "limit"
)

// FilterOption is one selectable value of a filter.
type FilterOption struct {
	Value string
	Label string
}

// Filter declares one URL-backed filter of a list page.
type Filter struct {
	Key   string
	Label string
	// Default is the value the filter takes when absent from the URL. Empty
	// means AllValue.
	Default string
	// Options restricts the accepted values. A URL value outside the set falls
	// back to Default. Empty Options accepts any value.
	Options []FilterOption
}

// DefaultValue returns the effective default of the filter.
func (f Filter) DefaultValue() string {
	if f.Default == "" {
		return AllValue
	}
	return f.Default
}

func (f Filter) accepts(v string) bool {
	if len(f.Options) == 0 || v == f.DefaultValue() {
		return true
	}
	for _, o := range f.Options {
		if o.Value == v {
			return true
		}
	}
	return false
}

// Schema declares the query parameters of one list page: its filters in URL
// order, the sortable fields and the default sort.
type Schema struct {
	Filters     []Filter
	SortFields  []string
	DefaultSort string
}

// QueryState is the list state mirrored into the URL.
type QueryState struct {
	Search  string
	Filters map[string]string
	Sort    string
	Page    int
}

var reservedKeys = []string{ParamSearch, ParamSort, ParamPage, ParamLimit}

// Validate checks that filter keys are unique and do not collide with the
// reserved parameters.
func (s Schema) Validate() error {
	seen := make(map[string]struct{}, len(s.Filters))
	for _, f := range s.Filters {
		if f.Key == "" {
			return errors.New("filter key is required")
		}
		if slices.Contains(reservedKeys, f.Key) {
			return fmt.Errorf("filter key %q is reserved", f.Key)
		}
		if _, dup := seen[f.Key]; dup {
			return fmt.Errorf("duplicate filter key %q", f.Key)
		}
		seen[f.Key] = struct{}{}
	}
	if s.DefaultSort != "" && !s.validSort(s.DefaultSort) {
		return fmt.Errorf("default sort %q is not a sortable field", s.DefaultSort)
	}
	return nil
}

// Filter returns the declared filter with the given key.
func (s Schema) Filter(key string) (Filter, bool) {
	for _, f := range s.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter{}, false
}

// Default returns the state of a URL without parameters.
func (s Schema) Default() QueryState {
	q := QueryState{
		Filters: make(map[string]string, len(s.Filters)),
		Sort:    s.DefaultSort,
		Page:    1,
	}
	for _, f := range s.Filters {
		q.Filters[f.Key] = f.DefaultValue()
	}
	return q
}

// Parse derives the query state from URL parameters. Missing or invalid
// values take their defaults.
func (s Schema) Parse(values url.Values) QueryState {
	q := s.Default()
	q.Search = values.Get(ParamSearch)

	for _, f := range s.Filters {
		if v := values.Get(f.Key); v != "" && f.accepts(v) {
			q.Filters[f.Key] = v
		}
	}
	if v := values.Get(ParamSort); v != "" && s.validSort(v) {
		q.Sort = v
	}
	if page, err := strconv.Atoi(values.Get(ParamPage)); err == nil && page > 1 {
		q.Page = page
	}
	return q
}

// Encode serializes q as a raw query string. Parameters equal to their
// default are omitted; the order is search, filters in declaration order,
// sort, page.
func (s Schema) Encode(q QueryState) string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}

	if q.Search != "" {
		add(ParamSearch, q.Search)
	}
	for _, f := range s.Filters {
		if v, ok := q.Filters[f.Key]; ok && v != "" && v != f.DefaultValue() {
			add(f.Key, v)
		}
	}
	if q.Sort != "" && q.Sort != s.DefaultSort {
		add(ParamSort, q.Sort)
	}
	if q.Page > 1 {
		add(ParamPage, strconv.Itoa(q.Page))
	}
	return b.String()
}

// URL joins path with the encoded state.
func (s Schema) URL(path string, q QueryState) string {
	if enc := s.Encode(q); enc != "" {
		return path + "?" + enc
	}
	return path
}

// WithSearch sets the search term and resets the page. It reports false and
// returns q unchanged when the term is already current.
func (s Schema) WithSearch(q QueryState, search string) (QueryState, bool) {
	if q.Search == search {
		return q, false
	}
	next := q.clone()
	next.Search = search
	next.Page = 1
	return next, true
}

// WithFilter sets a filter value and resets the page. Unknown keys and values
// equal to the current one are no-ops; an empty value restores the default.
func (s Schema) WithFilter(q QueryState, key, value string) (QueryState, bool) {
	f, ok := s.Filter(key)
	if !ok {
		return q, false
	}
	if value == "" || !f.accepts(value) {
		value = f.DefaultValue()
	}
	if q.filter(f) == value {
		return q, false
	}
	next := q.clone()
	next.Filters[key] = value
	next.Page = 1
	return next, true
}

// WithSort sets the sort and resets the page. Invalid sorts restore the
// default.
func (s Schema) WithSort(q QueryState, sort string) (QueryState, bool) {
	if sort == "" || !s.validSort(sort) {
		sort = s.DefaultSort
	}
	if q.Sort == sort {
		return q, false
	}
	next := q.clone()
	next.Sort = sort
	next.Page = 1
	return next, true
}

// WithPage moves to page, clamped to at least 1.
func (s Schema) WithPage(q QueryState, page int) (QueryState, bool) {
	if page < 1 {
		page = 1
	}
	if q.Page == page {
		return q, false
	}
	next := q.clone()
	next.Page = page
	return next, true
}

// IsFiltered reports whether q narrows the list: a search term or any
// non-default filter.
func (s Schema) IsFiltered(q QueryState) bool {
	if q.Search != "" {
		return true
	}
	for _, f := range s.Filters {
		if q.filter(f) != f.DefaultValue() {
			return true
		}
	}
	return false
}

// Params converts q into fetch parameters. Filters set to AllValue are not
// sent.
func (s Schema) Params(q QueryState, limit int) ListParams {
	p := ListParams{
		Page:   max(q.Page, 1),
		Limit:  limit,
		Search: q.Search,
		Sort:   q.Sort,
	}
	for _, f := range s.Filters {
		v := q.filter(f)
		if v == "" || v == AllValue {
			continue
		}
		if p.Filters == nil {
			p.Filters = make(map[string]string)
		}
		p.Filters[f.Key] = v
	}
	return p
}

// SortDirection returns "asc" or "desc" when q sorts by field, or "" otherwise.
func (s Schema) SortDirection(q QueryState, field string) string {
	f, dir, ok := strings.Cut(q.Sort, ":")
	if !ok || f != field {
		return ""
	}
	return dir
}

// ToggleSort returns the sort value a header click on field selects: ascending
// first, then flipping direction.
func (s Schema) ToggleSort(q QueryState, field string) string {
	if s.SortDirection(q, field) == "asc" {
		return field + ":desc"
	}
	return field + ":asc"
}

func (s Schema) validSort(v string) bool {
	field, dir, ok := strings.Cut(v, ":")
	if !ok || (dir != "asc" && dir != "desc") {
		return false
	}
	return slices.Contains(s.SortFields, field)
}

// Equal reports whether two states encode to the same URL.
func (q QueryState) Equal(o QueryState) bool {
	if q.Search != o.Search || q.Sort != o.Sort || max(q.Page, 1) != max(o.Page, 1) {
		return false
	}
	return maps.Equal(q.Filters, o.Filters)
}

// Filter returns the value of a filter, or "" when unset.
func (q QueryState) Filter(key string) string {
	return q.Filters[key]
}

func (q QueryState) filter(f Filter) string {
	if v, ok := q.Filters[f.Key]; ok && v != "" {
		return v
	}
	return f.DefaultValue()
}

func (q QueryState) clone() QueryState {
	next := q
	next.Filters = maps.Clone(q.Filters)
	if next.Filters == nil {
		next.Filters = make(map[string]string)
	}
	return next
}
