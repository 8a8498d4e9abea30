package ui

import (
	"os"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vial-kb/vial-gui/internal/config"
	"github.com/vial-kb/vial-gui/internal/crash"
	"github.com/vial-kb/vial-gui/internal/ui/uitest"
)

var testIdentity = config.Identity{Name: "Vial", OrganizationDomain: "vial.today", Version: "0.7.x-ilc"}

func newTestHandle(t *testing.T) (*Handle, *int) {
	t.Helper()
	created := 0
	var ids []string
	h := NewHandle(testIdentity, func(id string) fyne.App {
		created++
		ids = append(ids, id)
		a := test.NewApp()
		t.Cleanup(a.Quit)
		return a
	})
	t.Cleanup(func() {
		for _, id := range ids {
			assert.Equal(t, "today.vial.vial", id)
		}
	})
	return h, &created
}

func newLoopHandle(t *testing.T) (*Handle, *uitest.App) {
	t.Helper()
	loop := uitest.NewApp()
	h := NewHandle(testIdentity, func(string) fyne.App { return loop })
	h.App()
	return h, loop
}

func TestAppIsConstructedOnce(t *testing.T) {
	h, created := newTestHandle(t)
	assert.False(t, h.Exists())

	first := h.App()
	second := h.App()

	assert.Same(t, first, second)
	assert.Equal(t, 1, *created)
	assert.True(t, h.Exists())
	assert.Equal(t, testIdentity, h.Identity())
}

func TestPresenterRequiresApp(t *testing.T) {
	h, _ := newTestHandle(t)
	assert.Nil(t, h.Presenter())

	h.App()
	assert.NotNil(t, h.Presenter())
}

func TestDoWithoutAppRunsInline(t *testing.T) {
	h, created := newTestHandle(t)

	ran := false
	h.Do(func() { ran = true })

	assert.True(t, ran)
	assert.Equal(t, 0, *created)
}

func TestRunReturnsZeroByDefault(t *testing.T) {
	h, _ := newTestHandle(t)
	assert.Equal(t, 0, h.Run())
}

func TestQuitSetsExitCode(t *testing.T) {
	h, _ := newTestHandle(t)
	h.App()

	h.Quit(3)
	assert.Equal(t, 3, h.Run())
}

func TestInterruptQuitsWithInterruptCode(t *testing.T) {
	h, _ := newTestHandle(t)
	h.App()

	report := crash.InterruptReport(os.Interrupt)
	require.True(t, report.Interrupt)

	h.Interrupt(report)
	assert.Equal(t, InterruptExitCode, h.Run())
}

func TestDoWaitsForEventLoop(t *testing.T) {
	h, loop := newLoopHandle(t)

	var ran []string
	h.Do(func() { ran = append(ran, "first") })
	h.Do(func() { ran = append(ran, "second") })
	assert.Empty(t, ran)

	loop.OnRun = func() {
		assert.Equal(t, []string{"first", "second"}, ran)
		h.Do(func() { ran = append(ran, "running") })
	}
	h.Run()
	assert.Equal(t, []string{"first", "second", "running"}, ran)

	h.Do(func() { ran = append(ran, "stopped") })
	assert.Len(t, ran, 3)
}

func TestQuitAfterReportsWaitsForDismissal(t *testing.T) {
	h, loop := newLoopHandle(t)
	h.Do(func() {
		h.Presenter().ShowReport("first")
		h.Presenter().ShowReport("second")
	})
	h.QuitAfterReports(1)

	loop.OnRun = func() {
		require.True(t, h.reports.Active())
		h.reports.Dismiss()
		assert.Equal(t, 0, loop.Quits())

		h.reports.Dismiss()
		assert.False(t, h.reports.Active())
		assert.Equal(t, 1, loop.Quits())
	}

	assert.Equal(t, 1, h.Run())
}

func TestQuitAfterReportsWithoutReports(t *testing.T) {
	h, loop := newLoopHandle(t)
	h.QuitAfterReports(1)

	assert.Equal(t, 1, h.Run())
	assert.Equal(t, 1, loop.Quits())
}
