package crash

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rotisserie/eris"
)

// SentryOptions configures the crash reporter.
type SentryOptions struct {
	DSN         string
	Release     string
	Environment string
	// BeforeSend is passed through to the sentry client.
	BeforeSend func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event
}

// NewSentryHub creates a hub with its own client so nothing depends on sentry's global state.
func NewSentryHub(opts SentryOptions) (*sentry.Hub, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Release:          opts.Release,
		Environment:      opts.Environment,
		AttachStacktrace: true,
		BeforeSend:       opts.BeforeSend,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failed to create sentry client")
	}

	return sentry.NewHub(client, sentry.NewScope()), nil
}

// SentryHandler sends every failure to hub and then calls next. Interrupts are
// not failures and only go to next.
func SentryHandler(hub *sentry.Hub, timeout time.Duration, next Handler) Handler {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return func(r *Report) {
		if !r.Interrupt {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("kind", r.Kind)
				scope.SetContext("report", sentry.Context{"traceback": r.Traceback})
				hub.Recover(r.Value)
			})
			hub.Flush(timeout)
		}

		if next != nil {
			next(r)
		}
	}
}
