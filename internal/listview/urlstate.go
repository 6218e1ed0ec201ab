package listview

import (
	"net/url"
	"sync"
)

// URLState is the location primitive a controller keeps its query state in.
//
// Push and Replace change the location without notifying subscribers.
// Subscribers are notified of external navigation only (back, forward).
type URLState interface {
	Query() url.Values
	Push(rawQuery string)
	Replace(rawQuery string)
	Subscribe(fn func(url.Values)) (unsubscribe func())
}

// History is an in-memory URLState with back and forward navigation.
type History struct {
	mu      sync.Mutex
	entries []string
	pos     int
	subs    map[int]func(url.Values)
	nextSub int
}

var _ URLState = (*History)(nil)

// NewHistory starts a history at the given raw query.
func NewHistory(rawQuery string) *History {
	return &History{
		entries: []string{rawQuery},
		subs:    make(map[int]func(url.Values)),
	}
}

// Current returns the raw query of the current entry.
func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.pos]
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

func (h *History) Query() url.Values {
	v, _ := url.ParseQuery(h.Current())
	return v
}

// Push adds an entry after the current one, discarding forward entries.
// Pushing the current query is a no-op.
func (h *History) Push(rawQuery string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.entries[h.pos] == rawQuery {
		return
	}
	h.entries = append(h.entries[:h.pos+1], rawQuery)
	h.pos++
}

// Replace overwrites the current entry.
func (h *History) Replace(rawQuery string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[h.pos] = rawQuery
}

// Back moves to the previous entry and notifies subscribers. It reports false
// at the first entry.
func (h *History) Back() bool {
	return h.move(-1)
}

// Forward moves to the next entry and notifies subscribers. It reports false
// at the last entry.
func (h *History) Forward() bool {
	return h.move(1)
}

func (h *History) Subscribe(fn func(url.Values)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *History) move(delta int) bool {
	h.mu.Lock()
	next := h.pos + delta
	if next < 0 || next >= len(h.entries) {
		h.mu.Unlock()
		return false
	}
	h.pos = next
	raw := h.entries[next]
	subs := make([]func(url.Values), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()

	v, _ := url.ParseQuery(raw)
	for _, fn := range subs {
		fn(v)
	}
	return true
}
