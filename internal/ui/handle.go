package ui

import (
	"sync"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/vial-kb/vial-gui/internal/clipboard"
	"github.com/vial-kb/vial-gui/internal/config"
	"github.com/vial-kb/vial-gui/internal/crash"
)

// InterruptExitCode is returned by Run when the loop was stopped by an interrupt.
const InterruptExitCode = 130

// AppFactory constructs the toolkit application for an application ID.
type AppFactory func(id string) fyne.App

// Handle owns the single application instance of the process. The instance is
// created on first use and never recreated.
type Handle struct {
	identity config.Identity
	factory  AppFactory

	once sync.Once
	mu   sync.RWMutex
	app  fyne.App

	window   fyne.Window
	reports  *ReportDialog
	exitCode atomic.Int32

	// Work scheduled while the event loop is not running waits here.
	running bool
	queued  []func()
}

// NewHandle creates a Handle. A nil factory uses app.NewWithID.
func NewHandle(identity config.Identity, factory AppFactory) *Handle {
	if factory == nil {
		factory = app.NewWithID
	}
	return &Handle{identity: identity, factory: factory}
}

// App returns the application instance, constructing it and registering the identity on first call.
func (h *Handle) App() fyne.App {
	h.once.Do(func() {
		app.SetMetadata(fyne.AppMetadata{
			ID:      h.identity.ID(),
			Name:    h.identity.Name,
			Version: h.identity.Version,
		})

		a := h.factory(h.identity.ID())
		a.Lifecycle().SetOnStarted(h.started)
		a.Lifecycle().SetOnStopped(h.stopped)

		h.mu.Lock()
		h.app = a
		h.reports = NewReportDialog(h, clipboard.NewFyneCopier(a.Clipboard()))
		h.mu.Unlock()
	})

	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.app
}

// Identity returns the identity registered with the application.
func (h *Handle) Identity() config.Identity {
	return h.identity
}

// Exists reports whether the application instance has been constructed.
func (h *Handle) Exists() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.app != nil
}

// Do runs fn on the UI thread. Without an application there is no UI thread
// and fn runs inline. Work scheduled before the event loop starts is held
// back and runs, in order, once it has started.
func (h *Handle) Do(fn func()) {
	h.mu.Lock()
	switch {
	case h.app == nil:
		h.mu.Unlock()
		fn()
	case !h.running:
		h.queued = append(h.queued, fn)
		h.mu.Unlock()
	default:
		h.mu.Unlock()
		fyne.Do(fn)
	}
}

func (h *Handle) started() {
	h.mu.Lock()
	h.running = true
	queued := h.queued
	h.queued = nil
	h.mu.Unlock()

	if len(queued) > 0 {
		fyne.Do(func() {
			for _, fn := range queued {
				fn()
			}
		})
	}
}

func (h *Handle) stopped() {
	h.mu.Lock()
	h.running = false
	h.mu.Unlock()
}

// Presenter returns the crash dialog, or nil while no application exists.
func (h *Handle) Presenter() crash.Presenter {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.app == nil {
		return nil
	}
	return h.reports
}

// SetMainWindow makes w the parent of crash dialogs.
func (h *Handle) SetMainWindow(w fyne.Window) {
	h.mu.Lock()
	h.window = w
	h.mu.Unlock()
}

func (h *Handle) mainWindow() fyne.Window {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.window
}

// Quit records code as the exit code and stops the event loop.
func (h *Handle) Quit(code int) {
	h.exitCode.Store(int32(code))
	if h.Exists() {
		h.Do(h.App().Quit)
	}
}

// QuitAfterReports records code as the exit code and stops the event loop once
// every crash report scheduled so far has been dismissed.
func (h *Handle) QuitAfterReports(code int) {
	h.exitCode.Store(int32(code))
	if !h.Exists() {
		return
	}

	h.Do(func() {
		if h.reports.Active() {
			h.reports.SetOnDrained(func() { h.Quit(code) })
			return
		}
		h.Quit(code)
	})
}

// Interrupt is the crash.Handler that stops the event loop on an interrupt signal.
// Before the application exists it falls back to crash.DefaultInterrupt.
func (h *Handle) Interrupt(r *crash.Report) {
	if !h.Exists() {
		crash.DefaultInterrupt(r)
		return
	}
	h.Quit(InterruptExitCode)
}

// Run enters the event loop and returns its exit code once the loop ends.
func (h *Handle) Run() int {
	h.App().Run()
	return int(h.exitCode.Load())
}
