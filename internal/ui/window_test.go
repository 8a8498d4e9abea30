package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vial-kb/vial-gui/internal/crash"
	"github.com/vial-kb/vial-gui/internal/devices"
	"github.com/vial-kb/vial-gui/internal/resource"
)

type fakeScanner struct {
	found []devices.Device
	err   error
	panic any
}

func (s *fakeScanner) Scan(context.Context) ([]devices.Device, error) {
	if s.panic != nil {
		panic(s.panic)
	}
	return s.found, s.err
}

type reportLog struct {
	mu      sync.Mutex
	reports []*crash.Report
}

func (l *reportLog) handle(r *crash.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = append(l.reports, r)
}

func (l *reportLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.reports)
}

func newTestWindow(t *testing.T, scanner devices.Scanner) (*MainWindow, *reportLog) {
	t.Helper()
	h, _ := newTestHandle(t)
	reports := &reportLog{}
	locator := resource.New(resource.RuntimeContext{BasePath: "/opt/vial"})
	w := NewMainWindow(h, crash.NewChain(reports.handle), locator, scanner)
	t.Cleanup(w.Window().Close)
	return w, reports
}

func TestMainWindowShowRegistersParent(t *testing.T) {
	w, _ := newTestWindow(t, &fakeScanner{})
	assert.Nil(t, w.handle.mainWindow())

	w.Show()
	assert.Equal(t, w.Window(), w.handle.mainWindow())
	assert.Equal(t, "Vial", w.Window().Title())
}

func TestMainWindowRefreshListsDevices(t *testing.T) {
	w, reports := newTestWindow(t, &fakeScanner{found: []devices.Device{
		{Path: "/dev/hidraw0", Name: "Vial Macropad", VendorID: 0xfeed, ProductID: 0x6060},
		{Path: "/dev/hidraw1", Name: "Other", VendorID: 0x320f, ProductID: 0x5000},
	}})

	applied := make(chan struct{})
	w.refresh(func() { close(applied) })

	select {
	case <-applied:
	case <-time.After(time.Second):
		t.Fatal("scan result was not applied")
	}
	assert.Equal(t, "Found 2 device(s)", w.Status())
	assert.Len(t, w.Devices(), 2)
	assert.Equal(t, 0, reports.count())

	w.handleCopy()
	assert.Equal(t, msgCopied, w.Status())
	assert.Contains(t, w.handle.App().Clipboard().Content(), "Devices: 2")
}

func TestMainWindowScanPanicIsReported(t *testing.T) {
	w, reports := newTestWindow(t, &fakeScanner{panic: "hidraw exploded"})

	w.Refresh()

	require.Eventually(t, func() bool { return reports.count() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, "hidraw exploded", reports.reports[0].Message)
	assert.Empty(t, w.Devices())
}
