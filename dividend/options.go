package dividend

import (
	"time"

	"go.uber.org/zap"

	"github.com/bitfsorg/libdividend-go/budget"
	"github.com/bitfsorg/libdividend-go/events"
	"github.com/bitfsorg/libdividend-go/metrics"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSink sets where events are emitted. Defaults to events.Discard.
func WithSink(s events.Sink) Option {
	return func(e *Engine) {
		if s != nil {
			e.sink = s
		}
	}
}

// WithMetrics sets the metrics collector. A nil collector records nothing.
func WithMetrics(c *metrics.Collector) Option {
	return func(e *Engine) { e.metrics = c }
}

// WithBudget sets the default budget for batch operations.
func WithBudget(cfg budget.Config) Option {
	return func(e *Engine) { e.budget = cfg }
}

// WithClock sets the time source stamped on new distributions.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// CallOption adjusts a single batch call.
type CallOption func(*callOptions)

type callOptions struct {
	meter *budget.Meter
}

// WithCallBudget meters the call with m instead of a fresh meter built from
// the engine's default budget.
func WithCallBudget(m *budget.Meter) CallOption {
	return func(o *callOptions) { o.meter = m }
}

func (e *Engine) callMeter(opts []CallOption) *budget.Meter {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.meter != nil {
		return o.meter
	}
	// e.budget is validated in New.
	m, _ := budget.NewMeter(e.budget)
	return m
}
