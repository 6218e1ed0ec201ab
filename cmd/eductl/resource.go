package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/learnhub/admin/internal/apiclient"
	"github.com/learnhub/admin/internal/domain"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/listview"
)

// resource runs the list commands for one catalog entity.
type resource interface {
	list(ctx context.Context, c *apiclient.Client, o listOptions, w io.Writer) error
	browse(ctx context.Context, c *apiclient.Client, o browseOptions, in io.Reader, out io.Writer, log *slog.Logger) error
}

type entityResource[T any] struct {
	entity entities.Entity[T]
}

func (r entityResource[T]) list(ctx context.Context, c *apiclient.Client, o listOptions, w io.Writer) error {
	return runList(ctx, apiclient.NewResource[T](c, r.entity.Slug), r.entity, o, w)
}

func (r entityResource[T]) browse(ctx context.Context, c *apiclient.Client, o browseOptions, in io.Reader, out io.Writer, log *slog.Logger) error {
	return runBrowse(ctx, apiclient.NewResource[T](c, r.entity.Slug), r.entity, o, in, out, log)
}

var resources = map[string]resource{
	entities.Subjects.Slug: entityResource[domain.Subject]{entities.Subjects},
	entities.Packages.Slug: entityResource[domain.Package]{entities.Packages},
	entities.Videos.Slug:   entityResource[domain.Video]{entities.Videos},
	entities.Faculty.Slug:  entityResource[domain.Faculty]{entities.Faculty},
	entities.Users.Slug:    entityResource[domain.User]{entities.Users},
}

func resourceNames() []string {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupResource(name string) (resource, error) {
	r, ok := resources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown resource %q (one of %s)", name, strings.Join(resourceNames(), ", "))
	}
	return r, nil
}

// renderOutcome renders one settled fetch of q as a table view.
func renderOutcome[T any](e entities.Entity[T], q listview.QueryState, out listview.Outcome[T]) listview.View {
	return listview.Table[T]{
		Data:       out.Rows,
		Columns:    e.Columns,
		EmptyState: e.Empty.For(e.Schema, q),
		Pagination: out.Pagination(),
		RowKey:     e.RowKey,
	}.Render()
}
