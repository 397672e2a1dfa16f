package renderer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/compositor"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/profiler"
	"github.com/Carmen-Shannon/oxy-render/engine/shading"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

// MaxRenderScale bounds the internal resolution multiplier.
const MaxRenderScale = 4

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	pool       *target.Pool
	dispatcher dispatch.Dispatcher
	shadow     shadow.ShadowPass
	shading    shading.ShadingPass
	chain      postprocess.Chain
	compositor compositor.Compositor
	profiler   *profiler.Profiler
	logger     log.Logger

	width         int
	height        int
	renderScale   float32
	fit           shadow.FitParams
	post          postprocess.Config
	clearColor    common.Vec4
	debugCascades bool
	culling       bool
	closed        bool

	// Pre-creation config collected from builder options
	workers   int
	maxTexels int
	surface   compositor.Surface
	quality   light.ShadowQuality
	errs      []error
}

// Renderer produces one finished frame per call from a draw list, light and
// camera.
//
// Frames are serialized: shadow maps and intermediate targets are reused, so
// a FrameResult is only valid until the next Frame call.
type Renderer interface {
	// Frame renders and, when a surface is bound, presents one frame.
	// The context is only consulted before the frame starts; a started frame
	// always runs to completion or fails as a whole.
	//
	// Parameters:
	//   - ctx: cancels the frame if done before it starts
	//   - f: the frame input
	//
	// Returns:
	//   - *FrameResult: the output image, debug intermediates, warnings and timings
	//   - error: ErrInvalidFrame, ErrFrameAborted wrapping target.ErrAllocation,
	//     ErrClosed, or the context error
	Frame(ctx context.Context, f Frame) (*FrameResult, error)

	// SetPostProcessConfig validates and installs a new post-process
	// configuration for subsequent frames.
	//
	// Parameters:
	//   - cfg: the new configuration
	//
	// Returns:
	//   - error: ErrInvalidConfig joined with every invalid field
	SetPostProcessConfig(cfg postprocess.Config) error

	// PostProcessConfig returns the active post-process configuration.
	PostProcessConfig() postprocess.Config

	// SetDebugCascades toggles per-cascade tinting of the shading output.
	SetDebugCascades(enabled bool)

	// Resize changes the output size. A bound surface must match the new size.
	//
	// Parameters:
	//   - width, height: new output size in pixels
	//
	// Returns:
	//   - error: ErrInvalidConfig or compositor.ErrIncompatibleSurface
	Resize(width, height int) error

	// Size returns the output size.
	Size() (int, int)

	// InternalSize returns the size the shading pass renders at.
	InternalSize() (int, int)

	// Pool returns the target pool that owns every intermediate.
	Pool() *target.Pool

	// Profiler returns the profiler receiving pass timings, or nil.
	Profiler() *profiler.Profiler

	// Close releases the worker pool. Subsequent frames fail with ErrClosed.
	Close()
}

var _ Renderer = &renderer{}

// NewRenderer creates a renderer and validates its configuration. Every
// invalid option is reported before any frame runs.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
//   - error: ErrInvalidConfig or compositor.ErrIncompatibleSurface
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		logger:      log.New("renderer"),
		width:       1280,
		height:      720,
		renderScale: 1,
		quality:     light.ShadowQualityHigh,
		post:        postprocess.DefaultConfig(),
		clearColor:  common.Vec4{0, 0, 0, 1},
		culling:     true,
	}
	r.fit = shadow.DefaultFitParams(r.quality)
	for _, option := range options {
		option(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}

	r.pool = target.NewPool(r.maxTexels)
	var dispatchOptions []dispatch.DispatcherBuilderOption
	if r.workers > 0 {
		dispatchOptions = append(dispatchOptions, dispatch.WithWorkers(r.workers))
	}
	r.dispatcher = dispatch.NewDispatcher(dispatchOptions...)
	r.shadow = shadow.NewShadowPass(r.pool, r.dispatcher, shadow.WithCulling(r.culling))
	r.shading = shading.NewShadingPass(r.pool, r.dispatcher, shading.WithCulling(r.culling))
	r.chain = postprocess.NewChain(r.pool, r.dispatcher)
	if r.surface != nil {
		c, err := compositor.NewCompositor(r.surface, r.width, r.height)
		if err != nil {
			r.dispatcher.Close()
			return nil, err
		}
		r.compositor = c
	}

	iw, ih := r.internalSize()
	r.logger.Infof("renderer ready: output %dx%d, internal %dx%d, %d workers, %d cascades at %d texels (%s)",
		r.width, r.height, iw, ih, r.dispatcher.Workers(), len(r.fit.Splits), r.fit.Resolution, r.quality)
	return r, nil
}

func (r *renderer) validate() error {
	errs := append([]error(nil), r.errs...)
	if r.width <= 0 || r.height <= 0 {
		errs = append(errs, fmt.Errorf("%w: output size %dx%d", ErrInvalidConfig, r.width, r.height))
	}
	if !(r.renderScale > 0 && r.renderScale <= MaxRenderScale) {
		errs = append(errs, fmt.Errorf("%w: render scale %g", ErrInvalidConfig, r.renderScale))
	}
	if err := r.fit.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: shadows: %w", ErrInvalidConfig, err))
	}
	if err := r.post.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("%w: postprocess: %w", ErrInvalidConfig, err))
	}
	if r.surface != nil && r.width > 0 && r.height > 0 {
		if err := compositor.Check(r.surface, r.width, r.height); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *renderer) internalSize() (int, int) {
	w := max(int(math32.Round(float32(r.width)*r.renderScale)), 1)
	h := max(int(math32.Round(float32(r.height)*r.renderScale)), 1)
	return w, h
}

func (r *renderer) Frame(ctx context.Context, f Frame) (*FrameResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.Light.Validate(); err != nil {
		return nil, fmt.Errorf("%w: light: %w", ErrInvalidFrame, err)
	}
	if !(f.Camera.Far > f.Camera.Near && f.Camera.Near > 0) {
		return nil, fmt.Errorf("%w: camera depth range [%g, %g]", ErrInvalidFrame, f.Camera.Near, f.Camera.Far)
	}

	res := &FrameResult{Index: f.Index}
	post := r.post
	start := time.Now()

	thresholds := shadow.SplitDistances(f.Camera.Near, f.Camera.Far, r.fit.MaxDistance, r.fit.Splits)
	set, err := shadow.FitCascades(f.Camera, f.Light, thresholds, r.fit)
	if err != nil {
		return nil, fmt.Errorf("%w: cascades: %w", ErrInvalidFrame, err)
	}
	res.Cascades = set
	maps, warnings, err := r.shadow.Render(set, f.Items)
	if err != nil {
		return nil, r.abort(PassShadow, err)
	}
	res.ShadowMaps = maps
	res.Warnings = append(res.Warnings, warnings...)
	r.time(res, PassShadow, start)

	start = time.Now()
	iw, ih := r.internalSize()
	hdr, err := r.pool.Acquire("frame.hdr", iw, ih, target.FormatHDR)
	if err != nil {
		return nil, r.abort(PassShading, err)
	}
	_, warnings, err = r.shading.Render(shading.Params{
		Camera:        f.Camera,
		Light:         f.Light,
		Cascades:      set,
		ShadowMaps:    maps,
		ClearColor:    r.clearColor,
		DebugCascades: r.debugCascades,
	}, f.Items, hdr.Writer())
	if err != nil {
		return nil, r.abort(PassShading, err)
	}
	res.HDR = hdr.Reader()
	res.Warnings = append(res.Warnings, warnings...)
	r.time(res, PassShading, start)

	out, err := r.chain.Run(hdr.Reader(), post, r.width, r.height, f.Index)
	if err != nil {
		return nil, r.abort("postprocess", err)
	}
	res.Output = out.Output
	res.Warnings = append(res.Warnings, out.Warnings...)
	for _, t := range stageTimings(out.Timings) {
		res.Timings = append(res.Timings, t)
		if r.profiler != nil {
			r.profiler.Record(t.Pass, t.Duration)
		}
	}

	if r.compositor != nil {
		start = time.Now()
		if err := r.compositor.Composite(res.Output); err != nil {
			return nil, r.abort(PassComposite, err)
		}
		r.time(res, PassComposite, start)
	}

	for _, w := range res.Warnings {
		r.logger.Warningf("frame %d: %s", f.Index, w)
	}
	if r.profiler != nil {
		r.profiler.Tick()
	}
	r.logger.Debugf("frame %d: %d items, %d cascades, %d warnings in %s",
		f.Index, len(f.Items), set.Len(), len(res.Warnings), res.Duration())
	return res, nil
}

func (r *renderer) abort(pass string, err error) error {
	r.logger.Errorf("%s: %v", pass, err)
	return fmt.Errorf("%w: %s: %w", ErrFrameAborted, pass, err)
}

func (r *renderer) time(res *FrameResult, pass string, start time.Time) {
	d := time.Since(start)
	res.Timings = append(res.Timings, PassTiming{Pass: pass, Duration: d})
	if r.profiler != nil {
		r.profiler.Record(pass, d)
	}
}

func (r *renderer) SetPostProcessConfig(cfg postprocess.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: postprocess: %w", ErrInvalidConfig, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.post = cfg
	return nil
}

func (r *renderer) PostProcessConfig() postprocess.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.post
}

func (r *renderer) SetDebugCascades(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.debugCascades = enabled
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalidConfig, width, height)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compositor != nil {
		c, err := compositor.NewCompositor(r.compositor.Surface(), width, height)
		if err != nil {
			return err
		}
		r.compositor = c
	}
	r.width, r.height = width, height
	r.logger.Infof("resized to %dx%d", width, height)
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) InternalSize() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.internalSize()
}

func (r *renderer) Pool() *target.Pool {
	return r.pool
}

func (r *renderer) Profiler() *profiler.Profiler {
	return r.profiler
}

func (r *renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.dispatcher.Close()
}
