package crash

import (
	"fmt"
	"os"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

const defaultMailboxSize = 16

// ErrAlreadyInstalled is returned when Install is called a second time on the same Bridge.
var ErrAlreadyInstalled = eris.New("crash bridge is already installed")

// exit is replaced in tests.
var exit = os.Exit

// Presenter displays a report to the user. It is only ever called on the UI thread.
type Presenter interface {
	ShowReport(text string)
}

// Loop schedules work on the UI thread.
type Loop interface {
	Do(fn func())
}

// LoopFunc adapts a function to the Loop interface.
type LoopFunc func(fn func())

// Do calls f(fn).
func (f LoopFunc) Do(fn func()) { f(fn) }

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for handler-internal failures.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// WithInterruptHandler replaces DefaultInterrupt.
func WithInterruptHandler(h Handler) Option {
	return func(b *Bridge) { b.interrupt = h }
}

// WithMailboxSize sets how many reports can wait for the UI thread before senders spill into goroutines.
func WithMailboxSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			b.mailbox = make(chan string, n)
		}
	}
}

// DefaultInterrupt prints the interrupt and exits with the conventional SIGINT status.
func DefaultInterrupt(r *Report) {
	fmt.Fprintln(os.Stderr, r.Kind+": "+r.Message)
	exit(130)
}

// Bridge is the handler that makes panics visible in the GUI. Reports travel
// from the panicking goroutine through a mailbox to the UI thread, where the
// current application instance, if any, shows them.
type Bridge struct {
	chain     *Chain
	loop      Loop
	instance  func() Presenter
	interrupt Handler
	mailbox   chan string
	log       zerolog.Logger

	mu        sync.Mutex
	installed bool
	previous  Handler
}

// NewBridge creates an uninstalled Bridge. instance returns nil while no application exists.
func NewBridge(chain *Chain, loop Loop, instance func() Presenter, opts ...Option) *Bridge {
	b := &Bridge{
		chain:     chain,
		loop:      loop,
		instance:  instance,
		interrupt: DefaultInterrupt,
		mailbox:   make(chan string, defaultMailboxSize),
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Install makes the bridge the chain's active handler and keeps the handler it
// replaced so every report is passed on to it afterwards.
func (b *Bridge) Install() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.installed {
		return ErrAlreadyInstalled
	}

	b.chain.Wrap(func(previous Handler) Handler {
		b.previous = previous
		return b.handle
	})
	b.installed = true
	return nil
}

// Installed reports whether Install has succeeded.
func (b *Bridge) Installed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.installed
}

func (b *Bridge) handle(r *Report) {
	if r.Interrupt {
		b.guard("interrupt", func() { b.interrupt(r) })
	} else {
		b.guard("deliver", func() { b.deliver(r.Text()) })
	}

	if b.previous != nil {
		b.previous(r)
	}
}

// deliver queues text for the UI thread without ever blocking the reporting goroutine.
func (b *Bridge) deliver(text string) {
	select {
	case b.mailbox <- text:
		b.loop.Do(b.drain)
	default:
		go b.guard("deliver", func() {
			b.mailbox <- text
			b.loop.Do(b.drain)
		})
	}
}

// drain runs on the UI thread and shows everything queued so far.
func (b *Bridge) drain() {
	for {
		select {
		case text := <-b.mailbox:
			b.guard("display", func() { b.show(text) })
		default:
			return
		}
	}
}

func (b *Bridge) show(text string) {
	p := b.instance()
	if p == nil {
		b.log.Debug().Msg("No application instance, skipping crash dialog")
		return
	}
	p.ShowReport(text)
}

// guard swallows failures of the reporting machinery itself.
func (b *Bridge) guard(step string, fn func()) {
	defer func() {
		if v := recover(); v != nil {
			b.log.Error().Str("step", step).Interface("panic", v).Msg("Crash handler failed")
		}
	}()
	fn()
}
