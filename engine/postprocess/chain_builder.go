package postprocess

import "github.com/Carmen-Shannon/oxy-render/engine/log"

// ChainBuilderOption is a functional option for configuring a Chain.
type ChainBuilderOption func(*chain)

// WithLogger replaces the chain logger.
func WithLogger(l log.Logger) ChainBuilderOption {
	return func(c *chain) {
		c.logger = l
	}
}
