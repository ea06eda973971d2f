package button

import (
	"time"

	"github.com/dshills/buttonkit/internal/logging"
)

// DefaultHoldInterval is the time between hold notifications.
const DefaultHoldInterval = 2000 * time.Millisecond

// Option configures a Base.
type Option func(*options)

type options struct {
	name         string
	tag          string
	holdInterval time.Duration
	queueLimit   int
	logger       *logging.Logger
}

func defaultOptions() options {
	return options{
		name:         "button",
		holdInterval: DefaultHoldInterval,
	}
}

// WithName sets the component name.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithTag sets the component tag.
func WithTag(tag string) Option {
	return func(o *options) {
		o.tag = tag
	}
}

// WithHoldInterval sets the hold notification interval.
func WithHoldInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.holdInterval = d
		}
	}
}

// WithQueueLimit caps the number of undelivered notifications.
// Zero, the default, means unbounded.
func WithQueueLimit(limit int) Option {
	return func(o *options) {
		if limit >= 0 {
			o.queueLimit = limit
		}
	}
}

// WithLogger sets the logger. Defaults to logging.Default().
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
