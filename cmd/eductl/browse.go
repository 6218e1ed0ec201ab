package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/learnhub/admin/internal/config"
	"github.com/learnhub/admin/internal/entities"
	"github.com/learnhub/admin/internal/listview"
)

var (
	promptStyle = color.New(color.FgGreen)
	warnStyle   = color.New(color.FgYellow)
	errorStyle  = color.New(color.FgRed)
)

const browseHelp = `Commands:
  search <text>   search (empty clears)
  filter k=v      set a filter (k= restores the default)
  sort field:dir  sort by a column (asc or desc)
  page <n>        go to page n
  next, prev      move one page
  back, forward   walk the query history
  refresh         fetch the current page again
  help            show this text
  quit            leave`

type browseOptions struct {
	Query string
	Limit int
}

func newBrowseCmd(root *rootOptions) *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:       "browse <resource>",
		Short:     "Interactively page, search and filter a catalog resource",
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
			log, err := config.SetupLogger(&cfg.Log)
			if err != nil {
				return err
			}
			defer log.Close()
			if opts.Limit <= 0 {
				opts.Limit = cfg.ListView.PageSize
			}
			return res.browse(cmd.Context(), client, opts, cmd.InOrStdin(), cmd.OutOrStdout(), log.Logger)
		},
	}

	cmd.Flags().StringVar(&opts.Query, "query", "", "initial query string, e.g. \"search=alg&status=active\"")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "rows per page (default listview.page_size)")
	return cmd
}

// browser is a line-oriented console over one list controller.
type browser[T any] struct {
	entity  entities.Entity[T]
	ctrl    *listview.Controller[T]
	history *listview.History
	out     io.Writer
	drawn   uint64
}

func runBrowse[T any](ctx context.Context, f listview.Fetcher[T], e entities.Entity[T], o browseOptions, in io.Reader, out io.Writer, log *slog.Logger) error {
	history := listview.NewHistory(strings.TrimPrefix(o.Query, "?"))
	ctrl, err := listview.NewController(e.Schema, f, history, listview.Options{
		Name:     e.Slug,
		Limit:    o.Limit,
		Debounce: -1,
		Logger:   log,
	})
	if err != nil {
		return err
	}
	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	defer ctrl.Close()

	b := &browser[T]{entity: e, ctrl: ctrl, history: history, out: out}
	if err := b.settle(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for {
		promptStyle.Fprintf(out, "%s> ", e.Slug)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		quit, err := b.exec(strings.TrimSpace(scanner.Text()))
		if err != nil {
			warnStyle.Fprintln(out, err.Error())
			continue
		}
		if quit {
			return nil
		}
		if err := b.settle(ctx); err != nil {
			return err
		}
	}
}

// exec applies one command line. It reports true when the console should
// exit.
func (b *browser[T]) exec(line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "":
		return false, nil
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(b.out, browseHelp)
	case "search", "s":
		b.ctrl.SetSearchInput(arg)
	case "filter", "f":
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return false, errors.New("usage: filter key=value")
		}
		key = strings.TrimSpace(key)
		if _, known := b.entity.Schema.Filter(key); !known {
			return false, fmt.Errorf("unknown filter %q (filters: %s)", key, strings.Join(filterKeys(b.entity.Schema), ", "))
		}
		b.ctrl.SetFilter(key, strings.TrimSpace(value))
	case "sort":
		b.ctrl.SetSort(arg)
	case "page", "p":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return false, errors.New("usage: page <n>")
		}
		b.ctrl.SetPage(n)
	case "next", "n":
		pg := b.ctrl.Snapshot().Pagination()
		if pg == nil || !pg.CanGoNext() {
			return false, errors.New("already on the last page")
		}
		b.ctrl.SetPage(pg.CurrentPage + 1)
	case "prev", "previous":
		pg := b.ctrl.Snapshot().Pagination()
		if pg == nil || !pg.CanGoPrevious() {
			return false, errors.New("already on the first page")
		}
		b.ctrl.SetPage(pg.CurrentPage - 1)
	case "back", "b":
		if !b.history.Back() {
			return false, errors.New("no earlier query")
		}
	case "forward":
		if !b.history.Forward() {
			return false, errors.New("no later query")
		}
	case "refresh", "r":
		b.ctrl.Refresh()
	default:
		return false, fmt.Errorf("unknown command %q; type help", name)
	}
	return false, nil
}

// settle waits for the latest fetch and redraws when the state changed.
func (b *browser[T]) settle(ctx context.Context) error {
	if err := b.ctrl.Wait(ctx); err != nil {
		return err
	}
	snap := b.ctrl.Snapshot()
	if snap.Token == b.drawn {
		return nil
	}
	b.drawn = snap.Token
	return b.draw(snap)
}

func (b *browser[T]) draw(snap listview.Snapshot[T]) error {
	fmt.Fprintf(b.out, "\n%s ?%s\n", b.entity.Title, b.history.Current())
	if snap.Err != nil {
		errorStyle.Fprintf(b.out, "Failed to load %s: %v\n", b.entity.Slug, snap.Err)
	}
	view := listview.Table[T]{
		Data:       snap.Rows,
		Columns:    b.entity.Columns,
		IsLoading:  snap.IsLoading(),
		EmptyState: b.entity.Empty.For(b.entity.Schema, snap.Query),
		Pagination: snap.Pagination(),
		RowKey:     b.entity.RowKey,
	}.Render()
	return listview.WriteText(b.out, view)
}
