package shadow

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/raster"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
)

const passName = "shadow"

type shadowPass struct {
	pool       *target.Pool
	dispatcher dispatch.Dispatcher
	logger     log.Logger
	culling    bool
}

// ShadowPass renders the depth of every opaque draw item into one map per cascade.
type ShadowPass interface {
	// Render clears and fills the shadow maps for a frame.
	//
	// Parameters:
	//   - set: the frame's cascades; an empty set renders nothing
	//   - items: the frame's draw list
	//
	// Returns:
	//   - *ShadowMap: the filled maps
	//   - []common.Warning: items that were skipped
	//   - error: target.ErrAllocation when the maps cannot be allocated
	Render(set CascadeSet, items []model.DrawItem) (*ShadowMap, []common.Warning, error)
}

var _ ShadowPass = &shadowPass{}

// NewShadowPass creates a shadow pass that allocates from pool and rasterizes through dispatcher.
//
// Parameters:
//   - pool: target pool owning the shadow maps
//   - dispatcher: row-band dispatcher
//   - options: functional options
//
// Returns:
//   - ShadowPass: the pass
func NewShadowPass(pool *target.Pool, dispatcher dispatch.Dispatcher, options ...ShadowPassBuilderOption) ShadowPass {
	p := &shadowPass{
		pool:       pool,
		dispatcher: dispatcher,
		logger:     log.New(passName),
		culling:    true,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// caster is a draw item that passed validation.
type caster struct {
	item   *model.DrawItem
	center common.Vec3
	radius float32
}

func (p *shadowPass) Render(set CascadeSet, items []model.DrawItem) (*ShadowMap, []common.Warning, error) {
	maps, err := NewShadowMap(p.pool, set)
	if err != nil {
		return nil, nil, err
	}
	if set.Len() == 0 {
		return maps, nil, nil
	}
	casters, warnings := collectCasters(items)

	for k, c := range set.Cascades {
		frustum := common.ExtractFrustumFromMatrix(c.ViewProj[:])
		var tris []raster.Triangle
		drawn := 0
		for _, cs := range casters {
			if p.culling && !frustum.IntersectsSphere(cs.center, cs.radius) {
				continue
			}
			mvp := common.MulMat4(c.ViewProj, cs.item.World)
			tris = appendTriangles(tris, cs.item.Mesh, mvp, c.Resolution)
			drawn++
		}

		w := maps.writer(k)
		r := w.Reader()
		p.dispatcher.Rows(c.Resolution, func(y0, y1 int) {
			for i := range tris {
				tris[i].Rasterize(y0, y1, func(f raster.Fragment) {
					if f.Depth > 1 {
						return
					}
					if f.Depth < r.Depth(f.X, f.Y) {
						w.StoreDepth(f.X, f.Y, f.Depth)
					}
				})
			}
		})
		p.logger.Debugf("cascade %d: %d/%d casters, %d triangles, %dpx", k, drawn, len(casters), len(tris), c.Resolution)
	}
	return maps, warnings, nil
}

// collectCasters filters the draw list down to valid opaque items.
func collectCasters(items []model.DrawItem) ([]caster, []common.Warning) {
	var (
		out      []caster
		warnings []common.Warning
	)
	for i := range items {
		it := &items[i]
		if it.Mesh == nil {
			warnings = append(warnings, common.Warning{Pass: passName, Item: it.Name(), Reason: "missing mesh"})
			continue
		}
		if !it.CastsShadows() {
			continue
		}
		if err := it.Mesh.Validate(); err != nil {
			warnings = append(warnings, common.Warning{Pass: passName, Item: it.Name(), Reason: err.Error()})
			continue
		}
		var inv [16]float32
		if !common.Invert4(inv[:], it.World[:]) {
			warnings = append(warnings, common.Warning{Pass: passName, Item: it.Name(), Reason: "degenerate transform"})
			continue
		}
		center, radius := it.WorldBounds()
		out = append(out, caster{item: it, center: center, radius: radius})
	}
	return out, warnings
}

// appendTriangles transforms a mesh into clip space and sets up its triangles.
func appendTriangles(dst []raster.Triangle, mesh *model.Mesh, mvp [16]float32, res int) []raster.Triangle {
	clip := make([]common.Vec4, len(mesh.Vertices))
	for i, v := range mesh.Vertices {
		clip[i] = common.TransformPoint(mvp[:], v.Position)
	}
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		tri := [3]common.Vec4{clip[mesh.Indices[i]], clip[mesh.Indices[i+1]], clip[mesh.Indices[i+2]]}
		dst = append(dst, raster.Setup(tri, res, res)...)
	}
	return dst
}
