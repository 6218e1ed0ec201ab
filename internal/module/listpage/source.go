package listpage

import (
	"context"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/listview"
	"github.com/learnhub/admin/internal/session"
)

// Source is the collection behind a list page.
type Source[T any] interface {
	listview.Fetcher[T]
	Get(ctx context.Context, id uint) (*T, error)
	Create(ctx context.Context, input any) (*T, error)
	Update(ctx context.Context, id uint, input any) (*T, error)
	Delete(ctx context.Context, id uint) error
}

// SourceFunc returns the Source a signed-in session reads through.
type SourceFunc[T any] func(s *session.Session) Source[T]

// Remote serves the catalog API collection slug with the session's token.
func Remote[T any](client *apiclient.Client, slug string) SourceFunc[T] {
	return func(s *session.Session) Source[T] {
		var token string
		if s != nil {
			token = s.Token
		}
		return apiclient.NewResource[T](client.WithToken(token), slug)
	}
}

// Local serves a fetcher that has no item operations, such as a
// listview.MemoryFetcher over a locally known collection.
func Local[T any](f listview.Fetcher[T]) SourceFunc[T] {
	src := readOnly[T]{Fetcher: f}
	return func(*session.Session) Source[T] { return src }
}

type readOnly[T any] struct {
	listview.Fetcher[T]
}

func (readOnly[T]) Get(context.Context, uint) (*T, error) {
	return nil, domain.ErrNotFound
}

func (readOnly[T]) Create(context.Context, any) (*T, error) {
	return nil, domain.ErrForbidden
}

func (readOnly[T]) Update(context.Context, uint, any) (*T, error) {
	return nil, domain.ErrForbidden
}

func (readOnly[T]) Delete(context.Context, uint) error {
	return domain.ErrForbidden
}
