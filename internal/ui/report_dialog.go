package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/vial-kb/vial-gui/internal/clipboard"
)

const (
	reportTitle  = "Unexpected error"
	reportWidth  = 640
	reportHeight = 420
)

// ReportDialog shows crash reports one at a time. Reports arriving while one
// is open wait until it is dismissed. All methods run on the UI thread.
type ReportDialog struct {
	handle  *Handle
	copier  clipboard.Copier
	pending []string
	open    bool
	current dialog.Dialog
	drained func()
}

// NewReportDialog creates a ReportDialog for the application behind handle.
func NewReportDialog(handle *Handle, copier clipboard.Copier) *ReportDialog {
	return &ReportDialog{handle: handle, copier: copier}
}

// ShowReport displays text in a modal dialog, or queues it behind the open one.
func (d *ReportDialog) ShowReport(text string) {
	d.pending = append(d.pending, text)
	if !d.open {
		d.next()
	}
}

// Pending returns how many reports are waiting behind the open dialog.
func (d *ReportDialog) Pending() int {
	return len(d.pending)
}

// Active reports whether a report is on screen.
func (d *ReportDialog) Active() bool {
	return d.open
}

// SetOnDrained sets a one-shot callback run when the last queued report is dismissed.
func (d *ReportDialog) SetOnDrained(fn func()) {
	d.drained = fn
}

// Dismiss closes the report on screen, if any.
func (d *ReportDialog) Dismiss() {
	if d.current != nil {
		d.current.Hide()
	}
}

func (d *ReportDialog) next() {
	if len(d.pending) == 0 {
		d.open = false
		if fn := d.drained; fn != nil {
			d.drained = nil
			fn()
		}
		return
	}

	text := d.pending[0]
	d.pending = d.pending[1:]
	d.open = true

	parent := d.handle.mainWindow()
	var own fyne.Window
	if parent == nil {
		own = d.handle.App().NewWindow(reportTitle)
		own.Resize(fyne.NewSize(reportWidth, reportHeight))
		parent = own
	}

	content := d.content(text, parent)
	dlg := dialog.NewCustom(reportTitle, "OK", content, parent)
	dlg.Resize(fyne.NewSize(reportWidth, reportHeight))
	dlg.SetOnClosed(func() {
		d.current = nil
		if own != nil {
			own.Close()
		}
		d.next()
	})
	d.current = dlg

	if own != nil {
		own.SetCloseIntercept(dlg.Hide)
		own.Show()
	}
	dlg.Show()
}

func (d *ReportDialog) content(text string, parent fyne.Window) fyne.CanvasObject {
	label := widget.NewLabel(text)
	label.Wrapping = fyne.TextWrapBreak
	label.TextStyle.Monospace = true

	copyBtn := widget.NewButton("Copy to Clipboard", func() {
		if err := d.copier.Copy(text); err != nil {
			dialog.ShowError(err, parent)
		}
	})

	return container.NewBorder(nil, copyBtn, nil, nil, container.NewVScroll(label))
}
