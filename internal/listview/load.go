package listview

import (
	"context"
	"errors"
)

// Outcome is the settled result of one fetch. A failed fetch carries Err and
// no rows, so it renders as an empty list.
type Outcome[T any] struct {
	Rows []T
	Page PageMeta
	Err  error
}

// Result returns the metrics result label of o.
func (o Outcome[T]) Result() string {
	switch {
	case o.Err != nil:
		return ResultFailed
	case len(o.Rows) == 0:
		return ResultEmpty
	default:
		return ResultPopulated
	}
}

// Pagination builds the control for o's page metadata.
func (o Outcome[T]) Pagination() *Pagination {
	if o.Err != nil {
		return nil
	}
	return &Pagination{
		CurrentPage: max(o.Page.Page, 1),
		TotalPages:  o.Page.TotalPages,
		TotalCount:  o.Page.Total,
	}
}

var errNilResult = errors.New("fetcher returned no result")

// Load performs a single fetch of q.
func Load[T any](ctx context.Context, f Fetcher[T], s Schema, q QueryState, limit int) Outcome[T] {
	return settle(f.List(ctx, s.Params(q, limit)))
}

func settle[T any](res *ListResult[T], err error) Outcome[T] {
	if err != nil {
		return Outcome[T]{Err: err}
	}
	if res == nil {
		return Outcome[T]{Err: errNilResult}
	}
	return Outcome[T]{Rows: res.Entities, Page: res.Pagination}
}
