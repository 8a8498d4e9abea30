// Package uitest provides a headless application whose Run drives the
// lifecycle callbacks, for tests that need work to happen "inside" the event loop.
package uitest

import (
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
)

// Lifecycle records the started and stopped callbacks so App.Run can fire them.
type Lifecycle struct {
	fyne.Lifecycle
	started func()
	stopped func()
}

// SetOnStarted implements fyne.Lifecycle.
func (l *Lifecycle) SetOnStarted(f func()) { l.started = f }

// SetOnStopped implements fyne.Lifecycle.
func (l *Lifecycle) SetOnStopped(f func()) { l.stopped = f }

// App wraps the fyne test application.
type App struct {
	fyne.App
	lifecycle *Lifecycle
	quits     atomic.Int32

	// OnRun is the body of the event loop. It runs after the started callback.
	OnRun func()
}

// NewApp creates an App on top of test.NewApp.
func NewApp() *App {
	a := test.NewApp()
	return &App{App: a, lifecycle: &Lifecycle{Lifecycle: a.Lifecycle()}}
}

// Lifecycle returns the recording lifecycle.
func (a *App) Lifecycle() fyne.Lifecycle {
	return a.lifecycle
}

// Run fires started, runs OnRun, then fires stopped.
func (a *App) Run() {
	if a.lifecycle.started != nil {
		a.lifecycle.started()
	}
	if a.OnRun != nil {
		a.OnRun()
	}
	if a.lifecycle.stopped != nil {
		a.lifecycle.stopped()
	}
}

// Quit counts the request and forwards it.
func (a *App) Quit() {
	a.quits.Add(1)
	a.App.Quit()
}

// Quits returns how often Quit was called.
func (a *App) Quits() int {
	return int(a.quits.Load())
}
