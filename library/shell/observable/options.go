package observable

import (
	"github.com/softlib/loantracker/library/shell"
)

// observers holds the optional collectors shared by both wrappers. Each one may be nil.
type observers struct {
	metricsCollector shell.MetricsCollector
	tracingCollector shell.TracingCollector
	contextualLogger shell.ContextualLogger
	logger           shell.Logger
}

// Option configures a CommandWrapper or QueryWrapper.
type Option func(*observers) error

// WithMetrics sets the metrics collector.
func WithMetrics(collector shell.MetricsCollector) Option {
	return func(o *observers) error {
		o.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector.
func WithTracing(collector shell.TracingCollector) Option {
	return func(o *observers) error {
		o.tracingCollector = collector
		return nil
	}
}

// WithContextualLogging sets the context-aware logger, which takes precedence over WithLogging.
func WithContextualLogging(logger shell.ContextualLogger) Option {
	return func(o *observers) error {
		o.contextualLogger = logger
		return nil
	}
}

// WithLogging sets the basic logger.
func WithLogging(logger shell.Logger) Option {
	return func(o *observers) error {
		o.logger = logger
		return nil
	}
}

func newObservers(opts []Option) (observers, error) {
	var o observers

	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return observers{}, err
		}
	}

	return o, nil
}
