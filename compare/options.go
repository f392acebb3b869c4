package compare

import (
	"log/slog"

	"github.com/viant/imgsim/filter"
)

// Option configures a Comparator.
type Option func(*Comparator)

// WithRatio sets the ratio-test threshold.
func WithRatio(ratio float64) Option {
	return func(c *Comparator) { c.Ratio = ratio }
}

// WithPolicy sets how candidates with fewer than two neighbors are handled.
func WithPolicy(policy filter.Policy) Option {
	return func(c *Comparator) { c.Policy = policy }
}

// WithLogger sets the logger used for per-comparison diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Comparator) { c.Logger = logger }
}
