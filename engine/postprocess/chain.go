package postprocess

import (
	"errors"
	"fmt"
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/cogentcore/webgpu/wgpu"
)

const passName = "postprocess"

// ErrAliasedTargets is returned when a filter step would read and write the
// same target.
var ErrAliasedTargets = errors.New("postprocess: source and destination alias")

// Stage names, in execution order. Each stage writes the pool target
// "post.<name>".
const (
	StageBloom    = "bloom"
	StageToneMap  = "tonemap"
	StageGrading  = "grading"
	StageFXAA     = "fxaa"
	StageEffects  = "effects"
	StageResample = "resample"
)

// StageTiming is the wall time one stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is the output of one chain run. Output stays valid until the next
// Run on the same chain.
type Result struct {
	Output   target.Reader
	Warnings []common.Warning
	Timings  []StageTiming
}

type chain struct {
	pool       *target.Pool
	dispatcher dispatch.Dispatcher
	logger     log.Logger
}

// Chain runs the fixed post-process stage sequence over an HDR image.
//
// Run is not safe for concurrent use; the renderer serializes frames.
type Chain interface {
	// Run executes every enabled stage in order. A disabled stage passes its
	// input through untouched. A stage failing for any reason other than
	// allocation is skipped with a warning.
	//
	// Parameters:
	//   - in: the HDR shading output
	//   - cfg: validated post-process settings for this frame
	//   - width, height: size of the display image
	//   - frame: frame counter seeding the film grain
	//
	// Returns:
	//   - Result: the final image, warnings and per-stage timings
	//   - error: target.ErrAllocation or target.ErrInvalidSize
	Run(in target.Reader, cfg Config, width, height int, frame uint64) (Result, error)
}

var _ Chain = &chain{}

// NewChain creates a post-process chain.
//
// Parameters:
//   - pool: target pool owning the stage outputs
//   - dispatcher: row-band dispatcher
//   - options: functional options
//
// Returns:
//   - Chain: the chain
func NewChain(pool *target.Pool, dispatcher dispatch.Dispatcher, options ...ChainBuilderOption) Chain {
	c := &chain{
		pool:       pool,
		dispatcher: dispatcher,
		logger:     log.New(passName),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *chain) Run(in target.Reader, cfg Config, width, height int, frame uint64) (Result, error) {
	var res Result
	if !in.Valid() {
		return res, fmt.Errorf("%w: no input image", target.ErrInvalidSize)
	}
	if width <= 0 || height <= 0 {
		return res, fmt.Errorf("%w: output %dx%d", target.ErrInvalidSize, width, height)
	}

	cur := in
	var err error
	if cfg.Bloom.Enabled {
		u := cfg.Bloom.Uniform()
		cur, err = c.stage(&res, StageBloom, cur, cur.Width(), cur.Height(), cur.Format(), func(src target.Reader, out target.Writer) error {
			return c.bloomStage(src, out, u)
		})
		if err != nil {
			return res, err
		}
	}
	if cfg.ToneMap.Enabled {
		u := cfg.ToneMap.Uniform()
		cur, err = c.stage(&res, StageToneMap, cur, cur.Width(), cur.Height(), target.FormatLDR, func(src target.Reader, out target.Writer) error {
			return c.toneMapStage(src, out, u)
		})
		if err != nil {
			return res, err
		}
	}
	if cfg.Grading.Enabled {
		u := cfg.Grading.Uniform()
		cur, err = c.stage(&res, StageGrading, cur, cur.Width(), cur.Height(), cur.Format(), func(src target.Reader, out target.Writer) error {
			return c.gradingStage(src, out, u, cfg.Grading.LUT)
		})
		if err != nil {
			return res, err
		}
	}
	if cfg.FXAA.Enabled {
		u := cfg.FXAA.Uniform(cur.Width(), cur.Height())
		cur, err = c.stage(&res, StageFXAA, cur, cur.Width(), cur.Height(), cur.Format(), func(src target.Reader, out target.Writer) error {
			return c.fxaaStage(src, out, u)
		})
		if err != nil {
			return res, err
		}
	}
	if u := cfg.EffectsUniform(cur.Width(), cur.Height(), frame); u.Flags != 0 {
		cur, err = c.stage(&res, StageEffects, cur, cur.Width(), cur.Height(), cur.Format(), func(src target.Reader, out target.Writer) error {
			return c.effectsStage(src, out, u)
		})
		if err != nil {
			return res, err
		}
	}
	if cur.Width() != width || cur.Height() != height {
		cur, err = c.stage(&res, StageResample, cur, width, height, cur.Format(), c.resampleStage)
		if err != nil {
			return res, err
		}
	}

	res.Output = cur
	return res, nil
}

// stage acquires the stage's output target and runs fn into it. Allocation
// and size errors abort the run; anything else forwards the input.
func (c *chain) stage(res *Result, name string, in target.Reader, width, height int, format wgpu.TextureFormat, fn func(target.Reader, target.Writer) error) (target.Reader, error) {
	out, err := c.pool.Acquire("post."+name, width, height, format)
	if err != nil {
		return in, fmt.Errorf("%s: %w", name, err)
	}
	w := out.Writer()
	if target.Aliases(in, w) {
		c.skip(res, name, ErrAliasedTargets)
		return in, nil
	}

	start := time.Now()
	if err := fn(in, w); err != nil {
		if errors.Is(err, target.ErrAllocation) || errors.Is(err, target.ErrInvalidSize) {
			return in, fmt.Errorf("%s: %w", name, err)
		}
		c.skip(res, name, err)
		return in, nil
	}
	elapsed := time.Since(start)
	res.Timings = append(res.Timings, StageTiming{Stage: name, Duration: elapsed})
	c.logger.Debugf("%s: %dx%d %s in %s", name, width, height, target.FormatName(format), elapsed)
	return out.Reader(), nil
}

func (c *chain) skip(res *Result, name string, err error) {
	warning := common.Warning{Pass: passName, Item: name, Reason: err.Error()}
	res.Warnings = append(res.Warnings, warning)
	c.logger.Warningf("%s", warning)
}
