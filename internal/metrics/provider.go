// internal/metrics/provider.go
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/mwiater/petit/internal/logging"
	"github.com/mwiater/petit/internal/providers"
)

// Provider is a decorator that wraps a Completer to record metrics.
type Provider struct {
	wrapped    providers.Completer
	aggregator *Aggregator
}

// NewProvider creates a metrics-enabled Completer wrapping an existing one.
func NewProvider(wrapped providers.Completer, aggregator *Aggregator) *Provider {
	logging.LogEvent("[METRICS] Wrapping provider with metrics provider")
	return &Provider{wrapped: wrapped, aggregator: aggregator}
}

// Complete times the wrapped call and records its outcome. The result and
// error of the wrapped completer are returned untouched.
func (p *Provider) Complete(ctx context.Context, prompt string, opts providers.Options) (string, error) {
	start := time.Now()
	out, err := p.wrapped.Complete(ctx, prompt, opts)
	if p.aggregator != nil {
		p.aggregator.Record(time.Since(start).Seconds(), outcomeOf(err), out)
	}
	return out, err
}

// EnsureModelReady passes the call through when the wrapped completer supports it.
func (p *Provider) EnsureModelReady(ctx context.Context) error {
	if preparer, ok := p.wrapped.(providers.Preparer); ok {
		return preparer.EnsureModelReady(ctx)
	}
	return nil
}

// Wrapped returns the decorated completer.
func (p *Provider) Wrapped() providers.Completer {
	return p.wrapped
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, providers.ErrMalformedOutput):
		return OutcomeMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}
