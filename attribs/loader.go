// Package attribs loads the attribute tables of feature classes into memory.
//
// A Loader hands out at most one load per cycle: every call to Attributes
// before Reset returns the same *Result, so concurrent callers share a single
// pagination sequence against the server.
package attribs

import (
	"context"
	"sync"
)

// Loader is implemented by the remote (paginated) and local (in-memory) loaders.
type Loader interface {
	// Attributes starts the load on first call and returns the cached result afterwards.
	Attributes() *Result
	// Abort stops the current load before its next page request.
	Abort()
	// Reset drops the cached result so the next Attributes call loads again.
	Reset()
	// LoadedCount is the number of records received in the current cycle.
	LoadedCount() int
	// Done reports whether the current cycle finished, including by abort.
	Done() bool
}

// Result is the eventual outcome of a load. It resolves exactly once.
type Result struct {
	done chan struct{}
	set  *Set
	err  error
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

func (r *Result) resolve(set *Set, err error) {
	r.set, r.err = set, err
	close(r.done)
}

// Done is closed once the result is available.
func (r *Result) Done() <-chan struct{} { return r.done }

// Wait blocks until the load settles or ctx ends. Giving up on ctx does not
// stop the load; other waiters still receive it.
func (r *Result) Wait(ctx context.Context) (*Set, error) {
	select {
	case <-r.done:
		return r.set, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cycle is the cached load shared by both loader variants. The zero value is ready to use.
type cycle struct {
	mu       sync.Mutex
	result   *Result
	token    *Token
	progress *Progress
}

// init must be called with mu held.
func (c *cycle) init() {
	if c.token == nil {
		c.token = &Token{}
	}
	if c.progress == nil {
		c.progress = &Progress{}
	}
}

// get returns the cached result, calling start to create it when there is none.
// The check and the assignment happen under one lock.
func (c *cycle) get(start func(tok *Token, prog *Progress, res *Result)) *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()

	if c.result != nil {
		return c.result
	}
	c.result = newResult()
	start(c.token, c.progress, c.result)
	return c.result
}

func (c *cycle) Abort() {
	c.mu.Lock()
	c.init()
	c.token.Abort()
	c.mu.Unlock()
}

func (c *cycle) Reset() {
	c.mu.Lock()
	// an orphaned load stops at its next page and reports to nobody
	if c.token != nil {
		c.token.Abort()
	}
	c.token = &Token{}
	c.progress = &Progress{}
	c.result = nil
	c.mu.Unlock()
}

func (c *cycle) LoadedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	return c.progress.Loaded()
}

func (c *cycle) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.init()
	return c.progress.Done()
}
