// Package crash captures panics from any goroutine and routes them through a
// replaceable, process-wide handler chain. The Bridge handler shows each report
// to the user on the UI thread and then hands it to whatever handler was active
// before it was installed.
package crash

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-stack/stack"
)

// ErrInterrupt marks a panic or report as an interrupt request rather than a failure.
var ErrInterrupt = errors.New("interrupted")

// InterruptKind is the Kind of reports built from interrupt signals.
const InterruptKind = "Interrupt"

// Report is one captured failure.
type Report struct {
	Kind      string
	Message   string
	Traceback string
	// Value is the recovered panic value or the signal that triggered the report.
	Value     any
	Interrupt bool
}

// Text renders the full report shown to the user.
func (r *Report) Text() string {
	return r.Traceback + "\n" + r.Kind + ": " + r.Message
}

// Capture builds a Report for a recovered panic value. It must be called from
// the deferred function that called recover, so the panicking frames are still
// on the stack.
func Capture(v any) *Report {
	r := &Report{
		Kind:      kindOf(v),
		Message:   messageOf(v),
		Traceback: formatTrace(panicTrace(stack.Trace())),
		Value:     v,
	}
	if err, ok := v.(error); ok && errors.Is(err, ErrInterrupt) {
		r.Interrupt = true
	}
	return r
}

// InterruptReport builds the report relayed for an interrupt signal.
func InterruptReport(sig os.Signal) *Report {
	return &Report{
		Kind:      InterruptKind,
		Message:   sig.String(),
		Value:     sig,
		Interrupt: true,
	}
}

func kindOf(v any) string {
	if v == nil {
		return "nil"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}

func messageOf(v any) string {
	switch value := v.(type) {
	case error:
		return value.Error()
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(v)
	}
}

// panicTrace cuts everything above the panic site and the runtime frames below the goroutine entry.
func panicTrace(cs stack.CallStack) stack.CallStack {
	for i := len(cs) - 1; i >= 0; i-- {
		if cs[i].Frame().Function == "runtime.gopanic" {
			cs = cs[i+1:]
			break
		}
	}
	for len(cs) > 0 && strings.HasPrefix(cs[0].Frame().Function, "runtime.") {
		cs = cs[1:]
	}
	return cs.TrimRuntime()
}

func formatTrace(cs stack.CallStack) string {
	var builder strings.Builder
	for _, call := range cs {
		frame := call.Frame()
		builder.WriteString(fmt.Sprintf("%s(...)\n\t%s:%d\n", frame.Function, frame.File, frame.Line))
	}
	return strings.TrimSuffix(builder.String(), "\n")
}
