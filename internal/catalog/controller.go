package catalog

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pders01/larder/internal/debounce"
	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/domain"
)

// DefaultSearchDelay is how long typing must pause before the query applies.
const DefaultSearchDelay = 350 * time.Millisecond

// Source fetches the full recipe catalog.
type Source interface {
	Recipes(ctx context.Context) ([]domain.Recipe, error)
}

// Controller bridges the Store to the recipe source, to input events and to
// the presenter. It owns no derived state of its own.
type Controller struct {
	source    Source
	presenter Presenter
	dispatch  func(func())
	delay     time.Duration
	after     debounce.AfterFunc
	search    *debounce.Debouncer

	mu      sync.Mutex
	store   *Store
	status  Status
	err     error
	started bool
	pending string
}

// Option configures a Controller.
type Option func(*Controller)

// WithDispatcher routes deferred work (fetch completion, debounced queries)
// onto the caller's event loop. The default runs it inline.
func WithDispatcher(dispatch func(func())) Option {
	return func(c *Controller) {
		if dispatch != nil {
			c.dispatch = dispatch
		}
	}
}

// WithSearchDelay overrides the typing debounce window.
func WithSearchDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithAfterFunc swaps the debounce scheduler.
func WithAfterFunc(after debounce.AfterFunc) Option {
	return func(c *Controller) { c.after = after }
}

// NewController wires a fresh Store to source and presenter.
func NewController(source Source, presenter Presenter, opts ...Option) *Controller {
	c := &Controller{
		source:    source,
		presenter: presenter,
		dispatch:  func(f func()) { f() },
		delay:     DefaultSearchDelay,
		after:     debounce.RealAfterFunc,
		store:     NewStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.presenter == nil {
		c.presenter = PresenterFunc(func(Projection) {})
	}
	c.search = debounce.NewWithAfterFunc(c.delay, c.applyPendingQuery, c.after)
	return c
}

// Start issues the one catalog fetch of this view. displayName comes from a
// prior successful login; without it Start refuses to run. A failed fetch
// leaves the store empty and is reported both to the presenter and to the
// caller as a *FetchError.
func (c *Controller) Start(ctx context.Context, displayName string) error {
	if strings.TrimSpace(displayName) == "" {
		return ErrMissingSession
	}

	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	c.mu.Unlock()

	c.dispatch(func() {
		c.run(func() (Projection, bool) {
			c.status = StatusLoading
			return Projection{Mode: ModeReplace, Status: StatusLoading}, true
		})
	})

	debuglog.Infof("fetching catalog for %s", displayName)
	records, err := c.source.Recipes(ctx)
	if err != nil {
		ferr := &FetchError{Err: err}
		debuglog.Errorf("catalog fetch failed: %v", err)
		c.dispatch(func() {
			c.run(func() (Projection, bool) {
				c.status = StatusFailed
				c.err = ferr
				return Projection{Mode: ModeReplace, Status: StatusFailed, Err: ferr}, true
			})
		})
		return ferr
	}

	normalized := make([]domain.Recipe, len(records))
	for i, r := range records {
		normalized[i] = r.Normalized()
	}
	debuglog.Infof("catalog fetched: %d recipes", len(normalized))

	c.dispatch(func() {
		c.run(func() (Projection, bool) {
			c.store.Load(normalized)
			p := c.replaceProjection()
			p.Cuisines = c.store.AvailableCuisines()
			return p, true
		})
	})
	return nil
}

// InputQuery records raw search-box text and schedules it through the
// debouncer. Only the last text of a burst reaches the store.
func (c *Controller) InputQuery(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
	c.search.Call()
}

// ApplyQuery sets the query immediately, bypassing the debouncer.
func (c *Controller) ApplyQuery(text string) {
	c.mu.Lock()
	c.pending = text
	c.mu.Unlock()
	c.run(c.setQuery)
}

// SetCuisine applies a cuisine selection immediately. Selections are
// discrete so they are not debounced.
func (c *Controller) SetCuisine(label string) {
	c.run(func() (Projection, bool) {
		if !c.store.SetCuisineFilter(label) || !c.loaded() {
			return Projection{}, false
		}
		debuglog.WithFields(map[string]interface{}{"cuisine": label}).Debugf("cuisine filter changed")
		return c.replaceProjection(), true
	})
}

// ShowMore advances one page and presents only the newly visible items.
// Before the catalog has loaded it does nothing.
func (c *Controller) ShowMore() {
	c.run(func() (Projection, bool) {
		if !c.loaded() {
			return Projection{}, false
		}
		c.store.NextPage()
		return c.pageProjection(ModeAppend), true
	})
}

// Current returns the projection of the current page.
func (c *Controller) Current() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded() {
		return Projection{Mode: ModeReplace, Status: c.status, Err: c.err}
	}
	mode := ModeReplace
	if c.store.PageIndex() > 0 {
		mode = ModeAppend
	}
	return c.pageProjection(mode)
}

// Cuisines lists the filter options of the loaded catalog.
func (c *Controller) Cuisines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.AvailableCuisines()
}

// Lookup finds a loaded recipe by id.
func (c *Controller) Lookup(id int) (domain.Recipe, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Lookup(id)
}

// Status reports the current view status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller) applyPendingQuery() {
	c.dispatch(func() { c.run(c.setQuery) })
}

// setQuery must be called with c.mu held.
func (c *Controller) setQuery() (Projection, bool) {
	if !c.store.SetQuery(c.pending) || !c.loaded() {
		return Projection{}, false
	}
	debuglog.WithFields(map[string]interface{}{"query": c.store.Query()}).Debugf("query changed")
	return c.replaceProjection(), true
}

// run applies mutate under the lock and presents its projection afterwards.
func (c *Controller) run(mutate func() (Projection, bool)) {
	c.mu.Lock()
	p, ok := mutate()
	c.mu.Unlock()
	if ok {
		c.presenter.Present(p)
	}
}

// replaceProjection must be called with c.mu held. It is only used right
// after a change that rewound the cursor to page 0.
func (c *Controller) replaceProjection() Projection {
	c.status = c.statusFor(len(c.store.Filtered()))
	return c.pageProjection(ModeReplace)
}

// pageProjection must be called with c.mu held.
func (c *Controller) pageProjection(mode Mode) Projection {
	page := c.store.VisiblePage()
	matches := len(c.store.Filtered())
	shown := (c.store.PageIndex() + 1) * PageSize
	if shown > matches {
		shown = matches
	}
	return Projection{
		Mode:    mode,
		Status:  c.statusFor(matches),
		Items:   page.Items,
		HasMore: page.HasMore,
		Page:    c.store.PageIndex(),
		Shown:   shown,
		Matches: matches,
		Total:   c.store.Len(),
		Query:   c.store.Query(),
		Cuisine: c.store.CuisineFilter(),
	}
}

// loaded must be called with c.mu held.
func (c *Controller) loaded() bool {
	return c.status == StatusReady || c.status == StatusEmpty
}

func (c *Controller) statusFor(matches int) Status {
	if matches == 0 {
		return StatusEmpty
	}
	return StatusReady
}
