package debug

import "github.com/Carmen-Shannon/oxy-render/engine/log"

// DumperBuilderOption is a functional option for configuring a Dumper.
type DumperBuilderOption func(*Dumper)

// WithPrefix sets the file name prefix. Defaults to "frame".
func WithPrefix(prefix string) DumperBuilderOption {
	return func(d *Dumper) {
		d.prefix = prefix
	}
}

// WithExposure sets the exposure used to preview the HDR target.
func WithExposure(exposure float32) DumperBuilderOption {
	return func(d *Dumper) {
		if exposure > 0 {
			d.exposure = exposure
		}
	}
}

// WithCascadeTile sets the side of each cascade in the atlas.
func WithCascadeTile(tile int) DumperBuilderOption {
	return func(d *Dumper) {
		if tile > 0 {
			d.tile = tile
		}
	}
}

// WithThumbnail bounds the longest side of every written image. 0 keeps
// full size.
func WithThumbnail(maxDim int) DumperBuilderOption {
	return func(d *Dumper) {
		d.thumb = maxDim
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) DumperBuilderOption {
	return func(d *Dumper) {
		if l != nil {
			d.logger = l
		}
	}
}
