package apiclient

import (
	"context"
	"net/http"
	"strconv"

	"github.com/learnhub/admin/internal/listview"
)

// Resource is a typed view of one catalog collection, such as "subjects".
// It satisfies listview.Fetcher.
type Resource[T any] struct {
	client *Client
	path   string
}

var _ listview.Fetcher[struct{}] = (*Resource[struct{}])(nil)

// NewResource returns the collection at /api/v1/<slug>.
func NewResource[T any](c *Client, slug string) *Resource[T] {
	return &Resource[T]{client: c, path: "/" + slug}
}

// List fetches one page.
func (r *Resource[T]) List(ctx context.Context, params listview.ListParams) (*listview.ListResult[T], error) {
	var out listview.ListResult[T]
	if err := r.client.do(ctx, http.MethodGet, r.path, params.Values(), nil, &out); err != nil {
		return nil, err
	}
	if out.Entities == nil {
		out.Entities = []T{}
	}
	return &out, nil
}

// Get fetches one entity.
func (r *Resource[T]) Get(ctx context.Context, id uint) (*T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodGet, r.item(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create posts input and returns the created entity.
func (r *Resource[T]) Create(ctx context.Context, input any) (*T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodPost, r.path, nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces entity id with input.
func (r *Resource[T]) Update(ctx context.Context, id uint, input any) (*T, error) {
	var out T
	if err := r.client.do(ctx, http.MethodPut, r.item(id), nil, input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes entity id.
func (r *Resource[T]) Delete(ctx context.Context, id uint) error {
	return r.client.do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
}

func (r *Resource[T]) item(id uint) string {
	return r.path + "/" + strconv.FormatUint(uint64(id), 10)
}
