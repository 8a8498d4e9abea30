package crash

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
)

// Handler receives every report that reaches the top of a guarded goroutine.
type Handler func(r *Report)

// Default writes the report to stderr, the same place the Go runtime prints unrecovered panics.
var Default = Printer(os.Stderr)

// Printer returns a Handler that writes each report to w.
func Printer(w io.Writer) Handler {
	return func(r *Report) {
		fmt.Fprintln(w, r.Text())
	}
}

// Chain holds the process-wide handler. Goroutines started with Go, or that
// defer Recover, report their panics to whichever handler is current.
type Chain struct {
	mu      sync.RWMutex
	current Handler
}

// NewChain creates a Chain starting with h, or Default when h is nil.
func NewChain(h Handler) *Chain {
	if h == nil {
		h = Default
	}
	return &Chain{current: h}
}

// Current returns the active handler.
func (c *Chain) Current() Handler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Replace swaps in h and returns the handler it replaced.
func (c *Chain) Replace(h Handler) (previous Handler) {
	return c.Wrap(func(Handler) Handler { return h })
}

// Wrap builds the new handler from the current one under a single lock, so no
// report can observe a half-installed handler.
func (c *Chain) Wrap(build func(previous Handler) Handler) (previous Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	previous = c.current
	c.current = build(previous)
	return previous
}

// Dispatch hands r to the active handler.
func (c *Chain) Dispatch(r *Report) {
	if h := c.Current(); h != nil {
		h(r)
	}
}

// Recover must be deferred directly. It turns a panic into a report for the active handler.
func (c *Chain) Recover() {
	if v := recover(); v != nil {
		c.Dispatch(Capture(v))
	}
}

// Go runs fn on a new goroutine whose panics are reported to the chain.
func (c *Chain) Go(fn func()) {
	go func() {
		defer c.Recover()
		fn()
	}()
}

// Guard wraps fn so a panic inside it is reported instead of unwinding further.
// Use it for toolkit callbacks that run on the UI thread.
func (c *Chain) Guard(fn func()) func() {
	return func() {
		defer c.Recover()
		fn()
	}
}

// Notify relays interrupt signals into the chain until ctx is done.
func (c *Chain) Notify(ctx context.Context) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	go func() {
		defer signal.Stop(sigs)
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigs:
				c.Dispatch(InterruptReport(sig))
			}
		}
	}()
}
