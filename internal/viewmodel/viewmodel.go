// Package viewmodel holds the state behind one dashboard view: the fetched
// quotes, the live search term and the fetch status.
package viewmodel

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"cryptohub/internal/filter"
	"cryptohub/internal/provider"
)

const (
	// DefaultLimit is how many assets a view requests.
	DefaultLimit = 10
	// DefaultTimeout bounds the single fetch of a view.
	DefaultTimeout = 10 * time.Second
)

// Status is one of Loading, Ready or Failed.
type Status interface{ isStatus() }

// Loading means the fetch has not settled yet.
type Loading struct{}

// Ready means the quotes were fetched.
type Ready struct{}

// Failed carries the message of the fetch error.
type Failed struct{ Message string }

func (Loading) isStatus() {}
func (Ready) isStatus()   {}
func (Failed) isStatus()  {}

func (Loading) String() string  { return "loading" }
func (Ready) String() string    { return "ready" }
func (f Failed) String() string { return "failed: " + f.Message }

// State is a point-in-time copy of a view's state.
type State struct {
	Status     Status
	SearchTerm string
	Quotes     []provider.Quote
}

// Visible returns the quotes matching the state's search term.
func (s State) Visible() []provider.Quote { return filter.Filter(s.Quotes, s.SearchTerm) }

type Option func(*Controller)

// WithLimit sets how many assets are requested. Values <= 0 are ignored.
func WithLimit(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithTimeout bounds the fetch. Values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Controller owns the state of one mounted view. It is safe for concurrent
// use: the fetch settles on its own goroutine while the renderer reads.
type Controller struct {
	p       provider.Provider
	limit   int
	timeout time.Duration

	once sync.Once
	done chan struct{}

	mu         sync.RWMutex
	status     Status
	quotes     []provider.Quote
	searchTerm string
	active     bool
	cancel     context.CancelFunc
}

func New(p provider.Provider, opts ...Option) *Controller {
	c := &Controller{
		p:       p,
		limit:   DefaultLimit,
		timeout: DefaultTimeout,
		done:    make(chan struct{}),
		status:  Loading{},
		active:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize starts the view's only fetch. Later calls start nothing and
// return the same channel, which is closed once the status has settled or
// the fetch was abandoned by Teardown.
func (c *Controller) Initialize(ctx context.Context) <-chan struct{} {
	c.once.Do(func() {
		c.mu.Lock()
		if !c.active {
			c.mu.Unlock()
			close(c.done)
			return
		}
		fctx, cancel := context.WithTimeout(ctx, c.timeout)
		c.cancel = cancel
		c.status = Loading{}
		c.mu.Unlock()

		go c.fetch(fctx, cancel)
	})
	return c.done
}

func (c *Controller) fetch(ctx context.Context, cancel context.CancelFunc) {
	defer close(c.done)
	defer cancel()

	quotes, err := c.fetchTop(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancel = nil
	if !c.active {
		log.Printf("viewmodel: discarding %s result after teardown", c.p.Name())
		return
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "fetch failed"
		}
		c.status = Failed{Message: msg}
		return
	}
	c.quotes = quotes
	c.status = Ready{}
}

// fetchTop calls the provider, turning a panic into an error so a broken
// provider cannot take the renderer down.
func (c *Controller) fetchTop(ctx context.Context) (quotes []provider.Quote, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			quotes, err = nil, fmt.Errorf("%s: panic: %v", c.p.Name(), rec)
		}
	}()
	return c.p.FetchTop(ctx, c.limit)
}

// Teardown marks the view inactive and cancels an in-flight fetch. A result
// arriving afterwards is discarded and the state is left as it was.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	if c.cancel != nil {
		c.cancel()
	}
}

// SetSearchTerm replaces the search term. It never triggers a fetch.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.searchTerm = term
	c.mu.Unlock()
}

func (c *Controller) SearchTerm() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.searchTerm
}

func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Quotes returns every fetched quote, ignoring the search term.
func (c *Controller) Quotes() []provider.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.quotes)
}

// VisibleQuotes filters the fetched quotes by the current search term.
func (c *Controller) VisibleQuotes() []provider.Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return filter.Filter(c.quotes, c.searchTerm)
}

func (c *Controller) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return State{Status: c.status, SearchTerm: c.searchTerm, Quotes: slices.Clone(c.quotes)}
}
