// Package listing holds the client-side list behaviour shared by every
// resource screen: load with stale-response protection, text and facet
// filtering, pagination, and the in-flight flag for mutations.
package listing

import (
	"context"
	"strings"
)

type State int

const (
	Loading State = iota
	Failed
	Empty
	Populated
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Failed:
		return "error"
	case Empty:
		return "empty"
	default:
		return "populated"
	}
}

// Facet is a categorical filter. The empty value means "all". Remote facets
// are sent to the backend and force a reload; a Match, when set, is still
// applied to the reloaded items.
type Facet[T any] struct {
	Key     string
	Label   string
	Options []string
	Match   func(item T, value string) bool
	Remote  bool
}

// Exact matches a facet value against one string field, ignoring case.
func Exact[T any](field func(T) string) func(T, string) bool {
	return func(item T, value string) bool {
		return strings.EqualFold(field(item), value)
	}
}

// Contains matches when the field contains the value, ignoring case.
func Contains[T any](field func(T) string) func(T, string) bool {
	return func(item T, value string) bool {
		return strings.Contains(strings.ToLower(field(item)), strings.ToLower(value))
	}
}

// Filter keeps items whose haystack contains query (case-insensitive) and
// that match every set facet with a Match func. Order is preserved.
func Filter[T any](items []T, query string, haystack func(T) string, facets []Facet[T], values map[string]string) []T {
	q := strings.ToLower(strings.TrimSpace(query))

	out := make([]T, 0, len(items))
	for _, item := range items {
		if q != "" && haystack != nil && !strings.Contains(strings.ToLower(haystack(item)), q) {
			continue
		}
		if !matchFacets(item, facets, values) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func matchFacets[T any](item T, facets []Facet[T], values map[string]string) bool {
	for _, f := range facets {
		v := values[f.Key]
		if v == "" || f.Match == nil {
			continue
		}
		if !f.Match(item, v) {
			return false
		}
	}
	return true
}

// Paginate returns the 1-based page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, size int) []T {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	return items[start:min(start+size, len(items))]
}

// TotalPages is max(1, ceil(n/size)).
func TotalPages(n, size int) int {
	if size < 1 {
		size = 1
	}
	return max(1, (n+size-1)/size)
}

type Config[T any] struct {
	PageSize int
	Haystack func(T) string
	Facets   []Facet[T]
}

// Controller is the state of one list screen. It is not safe for concurrent
// use; it lives inside the UI update loop and backend work reports back
// through BeginLoad/FinishLoad.
type Controller[T any] struct {
	cfg Config[T]

	items      []T
	err        error
	loading    bool
	processing bool

	gen    uint64
	cancel context.CancelFunc

	query  string
	values map[string]string
	page   int
}

func New[T any](cfg Config[T]) *Controller[T] {
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	return &Controller[T]{
		cfg:    cfg,
		values: make(map[string]string),
		page:   1,
	}
}

// BeginLoad starts a new load generation, cancelling the one in flight.
// The returned context belongs to this load only.
func (c *Controller[T]) BeginLoad(parent context.Context) (context.Context, uint64) {
	if c.cancel != nil {
		c.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.gen++
	c.loading = true

	return ctx, c.gen
}

// FinishLoad applies the result of load gen. Results from a superseded load
// are dropped and false is returned. On error the previous items are kept.
func (c *Controller[T]) FinishLoad(gen uint64, items []T, err error) bool {
	if gen != c.gen {
		return false
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false

	if err != nil {
		c.err = err
		return true
	}

	if items == nil {
		items = []T{}
	}
	c.items = items
	c.err = nil

	// a delete can shrink the list under the current page
	if total := c.TotalPages(); c.page > total {
		c.page = total
	}
	return true
}

// Stop cancels any load in flight and invalidates its result.
func (c *Controller[T]) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.loading = false
}

func (c *Controller[T]) State() State {
	switch {
	case c.loading:
		return Loading
	case c.err != nil:
		return Failed
	case len(c.Visible()) == 0:
		return Empty
	default:
		return Populated
	}
}

func (c *Controller[T]) Err() error    { return c.err }
func (c *Controller[T]) Items() []T    { return c.items }
func (c *Controller[T]) Query() string { return c.query }
func (c *Controller[T]) Page() int     { return c.page }
func (c *Controller[T]) Facets() []Facet[T] {
	return c.cfg.Facets
}

// Visible is the filtered collection, before pagination.
func (c *Controller[T]) Visible() []T {
	return Filter(c.items, c.query, c.cfg.Haystack, c.cfg.Facets, c.values)
}

func (c *Controller[T]) PageItems() []T {
	return Paginate(c.Visible(), c.page, c.cfg.PageSize)
}

func (c *Controller[T]) PageSize() int { return c.cfg.PageSize }

func (c *Controller[T]) TotalPages() int {
	return TotalPages(len(c.Visible()), c.cfg.PageSize)
}

// SetQuery changes the search text; a real change returns to page 1.
func (c *Controller[T]) SetQuery(q string) {
	if q == c.query {
		return
	}
	c.query = q
	c.page = 1
}

func (c *Controller[T]) FacetValue(key string) string {
	return c.values[key]
}

// SetFacet sets facet key to value and returns to page 1 on a real change.
// It reports whether the caller must reload because the facet is remote.
func (c *Controller[T]) SetFacet(key, value string) (reload bool) {
	f, ok := c.facet(key)
	if !ok || c.values[key] == value {
		return false
	}

	if value == "" {
		delete(c.values, key)
	} else {
		c.values[key] = value
	}
	c.page = 1
	return f.Remote
}

// CycleFacet moves facet key to its next option, wrapping through "all".
func (c *Controller[T]) CycleFacet(key string) (reload bool) {
	f, ok := c.facet(key)
	if !ok {
		return false
	}

	cycle := append([]string{""}, f.Options...)
	current := c.values[key]
	next := ""
	for i, v := range cycle {
		if v == current {
			next = cycle[(i+1)%len(cycle)]
			break
		}
	}
	return c.SetFacet(key, next)
}

// RemoteParams returns the set remote facets as backend query parameters.
func (c *Controller[T]) RemoteParams() map[string]string {
	params := make(map[string]string)
	for _, f := range c.cfg.Facets {
		if v := c.values[f.Key]; f.Remote && v != "" {
			params[f.Key] = v
		}
	}
	return params
}

func (c *Controller[T]) facet(key string) (Facet[T], bool) {
	for _, f := range c.cfg.Facets {
		if f.Key == key {
			return f, true
		}
	}
	return Facet[T]{}, false
}

func (c *Controller[T]) CanPrev() bool { return c.page > 1 }
func (c *Controller[T]) CanNext() bool { return c.page < c.TotalPages() }

func (c *Controller[T]) PrevPage() bool {
	if !c.CanPrev() {
		return false
	}
	c.page--
	return true
}

func (c *Controller[T]) NextPage() bool {
	if !c.CanNext() {
		return false
	}
	c.page++
	return true
}

// BeginMutation marks a create, update or delete as in flight. It returns
// false while another one is still running.
func (c *Controller[T]) BeginMutation() bool {
	if c.processing {
		return false
	}
	c.processing = true
	return true
}

func (c *Controller[T]) EndMutation() { c.processing = false }

func (c *Controller[T]) Processing() bool { return c.processing }

func (c *Controller[T]) Loading() bool { return c.loading }
