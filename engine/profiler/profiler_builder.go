package profiler

import (
	"time"

	"github.com/Carmen-Shannon/oxy-render/engine/log"
)

// ProfilerBuilderOption is a functional option for configuring a Profiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often Tick logs statistics.
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithLogger replaces the profiler logger.
func WithLogger(l log.Logger) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.logger = l
	}
}
