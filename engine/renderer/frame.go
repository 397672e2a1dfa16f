package renderer

import (
	"time"

	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/postprocess"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
)

// Pass names reported in FrameResult.Timings.
const (
	PassShadow    = "shadow"
	PassShading   = "shading"
	PassComposite = "composite"
)

// Frame is the per-frame input of the renderer. It is read-only while the
// frame runs.
type Frame struct {
	Camera camera.State
	Light  light.State
	Items  []model.DrawItem
	// Index seeds per-frame noise such as film grain.
	Index uint64
}

// PassTiming is the wall time of one pass or post-process stage.
type PassTiming struct {
	Pass     string
	Duration time.Duration
}

// FrameResult is the output of a completed frame. The targets it references
// are owned by the renderer and stay valid until the next Frame call.
type FrameResult struct {
	Index uint64
	// Output is the display-ready image, sized to the output surface.
	Output target.Reader
	// HDR is the shading output before post-processing.
	HDR target.Reader
	// ShadowMaps holds one depth map per cascade; empty when the light
	// casts no shadows.
	ShadowMaps *shadow.ShadowMap
	Cascades   shadow.CascadeSet
	Warnings   []common.Warning
	Timings    []PassTiming
}

// Duration returns the sum of all pass timings.
func (r *FrameResult) Duration() time.Duration {
	var d time.Duration
	for _, t := range r.Timings {
		d += t.Duration
	}
	return d
}

func stageTimings(in []postprocess.StageTiming) []PassTiming {
	out := make([]PassTiming, len(in))
	for i, t := range in {
		out[i] = PassTiming{Pass: "post." + t.Stage, Duration: t.Duration}
	}
	return out
}
