package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/export"
	"github.com/learnhub/admin/internal/listview"
)

// Output formats of "eductl list".
const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputXLSX  = "xlsx"
)

// exportMax caps the rows written by an xlsx export.
const exportMax = 5000

type listOptions struct {
	Search  string
	Filters []string
	Page    int
	Limit   int
	Sort    string
	Output  string
	File    string
}

func newListCmd(root *rootOptions) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "Print one page of a catalog resource",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lookupResource(args[0])
			if err != nil {
				return err
			}
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			client, err := root.signedInClient(cfg)
			if err != nil {
				return err
			}
			if opts.Limit <= 0 {
				opts.Limit = cfg.ListView.PageSize
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			return res.list(ctx, client, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Search, "search", "", "search text")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "filter as key=value (repeatable)")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "rows per page (default listview.page_size)")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "sort as field:asc|desc")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", outputTable, "output format: table, json, yaml or xlsx")
	cmd.Flags().StringVar(&opts.File, "file", "", "xlsx destination (default <resource>.xlsx)")
	return cmd
}

// query builds the list state the flags describe, rejecting filters and
// sorts the entity does not declare.
func (o listOptions) query(s listview.Schema) (listview.QueryState, error) {
	values := url.Values{}
	if o.Search != "" {
		values.Set(listview.ParamSearch, o.Search)
	}
	for _, raw := range o.Filters {
		key, value, ok := strings.Cut(raw, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return listview.QueryState{}, fmt.Errorf("invalid filter %q: want key=value", raw)
		}
		if _, known := s.Filter(key); !known {
			return listview.QueryState{}, fmt.Errorf("unknown filter %q (filters: %s)", key, strings.Join(filterKeys(s), ", "))
		}
		values.Set(key, strings.TrimSpace(value))
	}
	if o.Sort != "" {
		values.Set(listview.ParamSort, o.Sort)
	}
	if o.Page > 1 {
		values.Set(listview.ParamPage, strconv.Itoa(o.Page))
	}

	q := s.Parse(values)
	if o.Sort != "" && q.Sort != o.Sort {
		return listview.QueryState{}, fmt.Errorf("cannot sort by %q (sortable: %s)", o.Sort, strings.Join(s.SortFields, ", "))
	}
	for key, value := range q.Filters {
		if want := values.Get(key); want != "" && value != want {
			return listview.QueryState{}, fmt.Errorf("invalid value %q for filter %q", want, key)
		}
	}
	return q, nil
}

// listDocument is the json and yaml form of one page.
type listDocument struct {
	Resource   string              `json:"resource" yaml:"resource"`
	Page       int                 `json:"page" yaml:"page"`
	TotalPages int                 `json:"total_pages" yaml:"total_pages"`
	Total      int64               `json:"total" yaml:"total"`
	Rows       []map[string]string `json:"rows" yaml:"rows"`
}

func runList[T any](ctx context.Context, f listview.Fetcher[T], e entities.Entity[T], o listOptions, w io.Writer) error {
	q, err := o.query(e.Schema)
	if err != nil {
		return err
	}
	if o.Output == outputXLSX {
		return writeWorkbook(ctx, f, e, q, o.File, w)
	}

	out := listview.Load(ctx, f, e.Schema, q, o.Limit)
	if out.Err != nil {
		return fmt.Errorf("list %s: %w", e.Slug, out.Err)
	}
	view := renderOutcome(e, q, out)

	switch o.Output {
	case outputTable, "":
		return listview.WriteText(w, view)
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newListDocument(e.Slug, view, out.Page))
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newListDocument(e.Slug, view, out.Page)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output %q", o.Output)
	}
}

func newListDocument(slug string, v listview.View, meta listview.PageMeta) listDocument {
	doc := listDocument{
		Resource:   slug,
		Page:       max(meta.Page, 1),
		TotalPages: meta.TotalPages,
		Total:      meta.Total,
		Rows:       make([]map[string]string, 0, len(v.Rows)),
	}
	for _, row := range v.Rows {
		rec := make(map[string]string, len(row.Cells))
		for _, c := range row.Cells {
			rec[c.ColumnID] = c.Text
		}
		doc.Rows = append(doc.Rows, rec)
	}
	return doc
}

// writeWorkbook exports every row matching q, not only the current page.
func writeWorkbook[T any](ctx context.Context, f listview.Fetcher[T], e entities.Entity[T], q listview.QueryState, path string, w io.Writer) (err error) {
	rows, err := export.Collect(ctx, f, e.Schema.Params(q, 0), exportMax)
	if err != nil {
		if errors.Is(err, export.ErrTooManyRows) {
			return fmt.Errorf("more than %d %s match; narrow the search or filters", exportMax, e.Slug)
		}
		return fmt.Errorf("export %s: %w", e.Slug, err)
	}
	view := listview.Table[T]{Data: rows, Columns: e.Columns, RowKey: e.RowKey}.Render()

	if path == "" {
		path = e.Slug + ".xlsx"
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); err == nil {
			err = cerr
		}
	}()
	if err := export.WriteXLSX(file, e.Title, view); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Wrote %d %s to %s\n", len(rows), e.Slug, path)
	return err
}

func filterKeys(s listview.Schema) []string {
	keys := make([]string, 0, len(s.Filters))
	for _, f := range s.Filters {
		keys = append(keys, f.Key)
	}
	return keys
}
