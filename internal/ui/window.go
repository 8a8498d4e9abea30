package ui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/vial-kb/vial-gui/internal/clipboard"
	"github.com/vial-kb/vial-gui/internal/crash"
	"github.com/vial-kb/vial-gui/internal/devices"
	"github.com/vial-kb/vial-gui/internal/renderer"
	"github.com/vial-kb/vial-gui/internal/resource"
)

const (
	windowWidth  = 800
	windowHeight = 600

	scanTimeout = 10 * time.Second

	msgReady      = "Ready. Press Refresh to look for keyboards."
	msgScanning   = "Looking for keyboards..."
	msgCopied     = "Device list copied to clipboard!"
	msgScanFailed = "Scan failed"
)

// MainWindow is the primary window of the application: a list of attached
// keyboards plus the actions around it.
type MainWindow struct {
	handle    *Handle
	chain     *crash.Chain
	locator   resource.PathResolver
	window    fyne.Window
	scanner   devices.Scanner
	renderer  renderer.DeviceRenderer
	clipboard clipboard.Copier

	list        *widget.List
	statusLabel *widget.Label

	// State - UI thread only
	found      []devices.Device
	cancelFunc context.CancelFunc
}

// NewMainWindow builds the main window. Callbacks are guarded so their panics reach chain.
func NewMainWindow(h *Handle, chain *crash.Chain, locator resource.PathResolver, scanner devices.Scanner) *MainWindow {
	a := h.App()

	w := &MainWindow{
		handle:      h,
		chain:       chain,
		locator:     locator,
		window:      a.NewWindow(h.Identity().Name),
		scanner:     scanner,
		renderer:    &renderer.VendorTreeRenderer{},
		clipboard:   clipboard.NewFyneCopier(a.Clipboard()),
		statusLabel: widget.NewLabel(msgReady),
	}
	w.window.Resize(fyne.NewSize(windowWidth, windowHeight))
	w.window.SetContent(w.createMainContent())
	w.window.SetMaster()
	return w
}

// Window returns the underlying toolkit window.
func (w *MainWindow) Window() fyne.Window {
	return w.window
}

// SetIcon sets the window icon.
func (w *MainWindow) SetIcon(icon fyne.Resource) {
	w.window.SetIcon(icon)
}

// Show registers the window as the parent of crash dialogs and shows it.
func (w *MainWindow) Show() {
	w.handle.SetMainWindow(w.window)
	w.window.Show()
}

// Devices returns the result of the last completed scan.
func (w *MainWindow) Devices() []devices.Device {
	return w.found
}

// Status returns the status line text.
func (w *MainWindow) Status() string {
	return w.statusLabel.Text
}

func (w *MainWindow) createMainContent() fyne.CanvasObject {
	title := widget.NewLabel(w.handle.Identity().Name)
	title.TextStyle.Bold = true

	refreshBtn := widget.NewButton("Refresh", w.chain.Guard(w.Refresh))
	copyBtn := widget.NewButton("Copy Device List", w.chain.Guard(w.handleCopy))
	aboutBtn := widget.NewButton("About", w.chain.Guard(w.handleAbout))

	w.list = widget.NewList(
		func() int { return len(w.found) },
		func() fyne.CanvasObject { return widget.NewLabel("device") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(w.found[id].String())
		},
	)

	header := container.NewVBox(title, container.NewGridWithColumns(3, refreshBtn, copyBtn, aboutBtn), w.statusLabel)
	return container.NewBorder(header, nil, nil, nil, w.list)
}

// Refresh rescans attached keyboards on a worker goroutine.
func (w *MainWindow) Refresh() {
	w.refresh(nil)
}

// refresh calls done on the UI thread once the scan result has been applied.
func (w *MainWindow) refresh(done func()) {
	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	w.cancelFunc = cancel
	w.statusLabel.SetText(msgScanning)

	w.chain.Go(func() {
		defer cancel()

		found, err := w.scanner.Scan(ctx)
		fyne.Do(w.chain.Guard(func() {
			if done != nil {
				defer done()
			}

			switch {
			case errors.Is(err, context.Canceled):
				// superseded by a newer refresh
			case errors.Is(err, context.DeadlineExceeded):
				w.statusLabel.SetText("Scan timed out")
			case err != nil:
				w.statusLabel.SetText(msgScanFailed)
				dialog.ShowError(err, w.window)
			default:
				w.found = found
				w.list.Refresh()
				w.statusLabel.SetText(fmt.Sprintf("Found %d device(s)", len(found)))
			}
		}))
	})
}

func (w *MainWindow) handleCopy() {
	if err := w.clipboard.Copy(w.renderer.RenderDevices(w.found)); err != nil {
		dialog.ShowError(err, w.window)
		return
	}
	w.statusLabel.SetText(msgCopied)
}

func (w *MainWindow) handleAbout() {
	id := w.handle.Identity()
	dialog.ShowInformation("About "+id.Name,
		fmt.Sprintf("%s %s\n%s\nResources: %s", id.Name, id.Version, id.OrganizationDomain, w.locator.Resolve(".")), w.window)
}
