package crash

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceReturnsPrevious(t *testing.T) {
	var got []string
	first := func(*Report) { got = append(got, "first") }
	second := func(*Report) { got = append(got, "second") }

	chain := NewChain(first)
	prev := chain.Replace(second)
	prev(&Report{})
	chain.Dispatch(&Report{})

	assert.Equal(t, []string{"first", "second"}, got)
}

func TestNewChainDefaultsToPrinter(t *testing.T) {
	chain := NewChain(nil)
	assert.NotNil(t, chain.Current())
}

func TestPrinterWritesText(t *testing.T) {
	var buf bytes.Buffer
	Printer(&buf)(&Report{Kind: "string", Message: "boom", Traceback: "main.main(...)"})

	assert.Equal(t, "main.main(...)\nstring: boom\n", buf.String())
}

func TestGoReportsPanics(t *testing.T) {
	reports := make(chan *Report, 1)
	chain := NewChain(func(r *Report) { reports <- r })

	chain.Go(func() { panic(errors.New("worker failed")) })

	select {
	case r := <-reports:
		assert.Equal(t, "worker failed", r.Message)
		assert.Contains(t, r.Traceback, "TestGoReportsPanics")
	case <-time.After(5 * time.Second):
		t.Fatal("panic was not reported")
	}
}

func TestGuardReportsAndReturns(t *testing.T) {
	var reports []*Report
	chain := NewChain(func(r *Report) { reports = append(reports, r) })

	fn := chain.Guard(func() { panic("button handler") })
	assert.NotPanics(t, fn)
	require.Len(t, reports, 1)
	assert.Equal(t, "button handler", reports[0].Message)
}

func TestNotifyStopsWithContext(t *testing.T) {
	chain := NewChain(func(*Report) {})
	ctx, cancel := context.WithCancel(context.Background())

	chain.Notify(ctx)
	cancel()
}
