package draw

import (
	"time"

	"go.uber.org/zap"

	"github.com/dshills/indentscope/internal/scope"
)

// DefaultGranularity is the shortest wait worth arming a timer for.
const DefaultGranularity = time.Millisecond

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Failed draws are reported at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l.Named("draw")
		}
	}
}

// WithGranularity sets the clock granularity. Accumulated waits below it
// are drawn without arming the timer.
func WithGranularity(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.granularity = d
		}
	}
}

// WithIntersectPolicy replaces the test deciding that a new scope continues
// the visible one and should be revealed instantly.
func WithIntersectPolicy(fn func(visible, next scope.Scope) bool) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.intersects = fn
		}
	}
}

// WithGuard sets a check run before every marker draw. Returning false
// stops the animation, for example when the engine is disabled for the
// document mid-way.
func WithGuard(fn func(doc string) bool) Option {
	return func(s *Scheduler) {
		s.guard = fn
	}
}
