package listview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"
)

// Phase is the fetch lifecycle state of a controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhasePopulated
	PhaseEmpty
	// PhaseFailed renders like PhaseEmpty; the failure has been reported
	// through the Notifier.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhasePopulated:
		return "populated"
	case PhaseEmpty:
		return "empty"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Notice is a non-blocking user notification (a toast).
type Notice struct {
	Level   string
	Message string
}

// Notifier delivers notices to the user.
type Notifier interface {
	Notify(n Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notice)

func (f NotifierFunc) Notify(n Notice) { f(n) }

// Options configure a Controller.
type Options struct {
	// Name labels logs and metrics.
	Name  string
	Limit int
	// Debounce is the search settle delay. Zero means DefaultDebounce; a
	// negative value commits every keystroke immediately.
	Debounce time.Duration
	Logger   *slog.Logger
	Notifier Notifier
	Metrics  *Metrics
	// FailureMessage builds the notice text of a failed fetch.
	FailureMessage func(err error) string
}

// Snapshot is a consistent copy of a controller's state.
type Snapshot[T any] struct {
	Query       QueryState
	SearchInput string
	Phase       Phase
	Rows        []T
	Page        PageMeta
	Err         error
	// Token identifies the fetch the rows came from.
	Token uint64
}

// IsLoading reports whether the table should render its skeleton.
func (s Snapshot[T]) IsLoading() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseIdle
}

// Pagination returns the control for the current page, or nil while loading
// or after a failure.
func (s Snapshot[T]) Pagination() *Pagination {
	if s.Phase != PhasePopulated && s.Phase != PhaseEmpty {
		return nil
	}
	return &Pagination{
		CurrentPage: max(s.Page.Page, 1),
		TotalPages:  s.Page.TotalPages,
		TotalCount:  s.Page.Total,
	}
}

var (
	ErrStarted = errors.New("controller already started")
	ErrClosed  = errors.New("controller closed")
)

// Controller owns the query state of one list, keeps it mirrored in a
// URLState and fetches the matching page whenever it changes.
//
// Every fetch is issued a token from a monotonically increasing counter and
// the previous in-flight fetch is cancelled. A response is applied only when
// its token is the latest issued, so an older request that resolves late
// never overwrites newer results.
type Controller[T any] struct {
	schema  Schema
	fetcher Fetcher[T]
	url     URLState
	opts    Options
	log     *slog.Logger
	search  *Debouncer

	mu          sync.Mutex
	base        context.Context
	stop        context.CancelFunc
	started     bool
	closed      bool
	query       QueryState
	searchInput string
	phase       Phase
	rows        []T
	meta        PageMeta
	err         error
	issued      uint64
	cancel      context.CancelFunc
	idle        chan struct{}
	pending     bool
	listeners   map[int]func(Snapshot[T])
	nextID      int
	unsubscribe func()

	emitMu     sync.Mutex
	delivering bool
	redeliver  bool

	wg sync.WaitGroup
}

// NewController builds a controller over fetcher whose state lives in u.
func NewController[T any](schema Schema, fetcher Fetcher[T], u URLState, opts Options) (*Controller[T], error) {
	if fetcher == nil {
		return nil, errors.New("fetcher is nil")
	}
	if u == nil {
		return nil, errors.New("url state is nil")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if opts.Debounce == 0 {
		opts.Debounce = DefaultDebounce
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)
	return &Controller[T]{
		schema:    schema,
		fetcher:   fetcher,
		url:       u,
		opts:      opts,
		log:       log.With(slog.String("list", opts.Name)),
		search:    NewDebouncer(opts.Debounce),
		query:     schema.Default(),
		idle:      idle,
		listeners: make(map[int]func(Snapshot[T])),
	}, nil
}

// Start derives the query state from the URL, rewrites the URL in canonical
// form, subscribes to navigation and issues the first fetch. Fetches run
// under ctx until Close.
func (c *Controller[T]) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.started {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	c.base, c.stop = context.WithCancel(ctx)
	c.query = c.schema.Parse(c.url.Query())
	c.searchInput = c.query.Search
	c.url.Replace(c.schema.Encode(c.query))
	c.fetchLocked()
	c.mu.Unlock()

	unsubscribe := c.url.Subscribe(c.navigate)
	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.emit()
	return nil
}

// Close cancels any in-flight fetch and pending search, detaches from the
// URL and waits for fetch goroutines to return.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.stop != nil {
		c.stop()
	}
	if c.pending {
		c.pending = false
		close(c.idle)
	}
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	c.search.Cancel()
	if unsubscribe != nil {
		unsubscribe()
	}
	c.wg.Wait()
}

// OnChange registers fn to receive the state after changes. fn runs on the
// goroutine that made the change; changes that land while a delivery is in
// progress are coalesced into one later snapshot.
func (c *Controller[T]) OnChange(fn func(Snapshot[T])) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Snapshot returns the current state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until the latest issued fetch has settled or ctx is done.
// A search still inside its debounce window has not issued a fetch yet.
func (c *Controller[T]) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetSearchInput updates the visible search text immediately and commits it
// to the query state once input settles.
func (c *Controller[T]) SetSearchInput(text string) {
	c.mu.Lock()
	if !c.started || c.closed || c.searchInput == text {
		c.mu.Unlock()
		return
	}
	c.searchInput = text
	c.mu.Unlock()

	c.emit()
	c.search.Trigger(func() { c.commitSearch(text) })
}

// SetFilter changes a filter value. Setting the current value is a no-op.
func (c *Controller[T]) SetFilter(key, value string) {
	c.update(func(q QueryState) (QueryState, bool) {
		return c.schema.WithFilter(q, key, value)
	})
}

// SetSort changes the sort. Setting the current value is a no-op.
func (c *Controller[T]) SetSort(sort string) {
	c.update(func(q QueryState) (QueryState, bool) {
		return c.schema.WithSort(q, sort)
	})
}

// SetPage moves to page. Setting the current page is a no-op.
func (c *Controller[T]) SetPage(page int) {
	c.update(func(q QueryState) (QueryState, bool) {
		return c.schema.WithPage(q, page)
	})
}

// Refresh re-fetches the current query state.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.fetchLocked()
	c.mu.Unlock()
	c.emit()
}

func (c *Controller[T]) commitSearch(text string) {
	c.update(func(q QueryState) (QueryState, bool) {
		return c.schema.WithSearch(q, text)
	})
}

func (c *Controller[T]) update(change func(QueryState) (QueryState, bool)) {
	c.mu.Lock()
	if !c.started || c.closed {
		c.mu.Unlock()
		return
	}
	next, changed := change(c.query)
	if !changed {
		c.mu.Unlock()
		return
	}
	c.query = next
	c.url.Push(c.schema.Encode(next))
	c.fetchLocked()
	c.mu.Unlock()
	c.emit()
}

// navigate re-derives the state after back/forward navigation.
func (c *Controller[T]) navigate(values url.Values) {
	c.search.Cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next := c.schema.Parse(values)
	c.searchInput = next.Search
	if next.Equal(c.query) {
		c.mu.Unlock()
		c.emit()
		return
	}
	c.query = next
	c.fetchLocked()
	c.mu.Unlock()
	c.emit()
}

func (c *Controller[T]) fetchLocked() {
	c.issued++
	token := c.issued
	if c.cancel != nil {
		c.cancel()
	}
	ctx, cancel := context.WithCancel(c.base)
	c.cancel = cancel
	c.phase = PhaseLoading
	c.err = nil
	if !c.pending {
		c.pending = true
		c.idle = make(chan struct{})
	}

	params := c.schema.Params(c.query, c.opts.Limit)
	c.wg.Add(1)
	go c.run(ctx, cancel, token, params)
}

func (c *Controller[T]) run(ctx context.Context, cancel context.CancelFunc, token uint64, params ListParams) {
	defer c.wg.Done()
	defer cancel()

	start := time.Now()
	out := settle(c.fetcher.List(ctx, params))
	elapsed := time.Since(start)

	c.mu.Lock()
	if c.closed || token != c.issued {
		latest := c.issued
		c.mu.Unlock()
		c.opts.Metrics.Observe(c.opts.Name, ResultStale, elapsed)
		c.log.Debug("stale list response dropped",
			slog.Uint64("token", token),
			slog.Uint64("latest", latest),
		)
		return
	}
	c.cancel = nil
	c.rows, c.meta, c.err = out.Rows, out.Page, out.Err
	switch out.Result() {
	case ResultFailed:
		c.phase = PhaseFailed
	case ResultEmpty:
		c.phase = PhaseEmpty
	default:
		c.phase = PhasePopulated
	}
	c.pending = false
	close(c.idle)
	c.mu.Unlock()

	c.opts.Metrics.Observe(c.opts.Name, out.Result(), elapsed)
	if out.Err != nil {
		c.log.Warn("list fetch failed", slog.Uint64("token", token), slog.Any("error", out.Err))
		c.notify(token, Notice{Level: "error", Message: c.failureMessage(out.Err)})
	}
	c.emit()
}

// notify reports n unless a newer fetch has been issued since token.
func (c *Controller[T]) notify(token uint64, n Notice) {
	if c.opts.Notifier == nil {
		return
	}
	c.mu.Lock()
	current := !c.closed && token == c.issued
	c.mu.Unlock()
	if current {
		c.opts.Notifier.Notify(n)
	}
}

func (c *Controller[T]) failureMessage(err error) string {
	if c.opts.FailureMessage != nil {
		return c.opts.FailureMessage(err)
	}
	if c.opts.Name != "" {
		return "Failed to load " + c.opts.Name
	}
	return "Failed to load list"
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Query:       c.query.clone(),
		SearchInput: c.searchInput,
		Phase:       c.phase,
		Rows:        c.rows,
		Page:        c.meta,
		Err:         c.err,
		Token:       c.issued,
	}
}

// emit hands the current state to the listeners. One goroutine delivers at
// a time and every pass reads the state afresh, so listeners never see a
// token older than one already delivered. Changes made during a pass,
// including by the listeners themselves, are folded into one more pass.
func (c *Controller[T]) emit() {
	c.emitMu.Lock()
	if c.delivering {
		c.redeliver = true
		c.emitMu.Unlock()
		return
	}
	c.delivering = true
	for {
		c.redeliver = false
		c.emitMu.Unlock()

		c.mu.Lock()
		snap := c.snapshotLocked()
		fns := make([]func(Snapshot[T]), 0, len(c.listeners))
		for _, fn := range c.listeners {
			fns = append(fns, fn)
		}
		c.mu.Unlock()
		for _, fn := range fns {
			fn(snap)
		}

		c.emitMu.Lock()
		if !c.redeliver {
			c.delivering = false
			c.emitMu.Unlock()
			return
		}
	}
}
