// Package shading rasterizes the draw list from the camera and evaluates
// direct lighting, modulated by cascaded shadow visibility, into an HDR target.
package shading

import (
	"github.com/Carmen-Shannon/oxy-render/common"
	"github.com/Carmen-Shannon/oxy-render/engine/camera"
	"github.com/Carmen-Shannon/oxy-render/engine/dispatch"
	"github.com/Carmen-Shannon/oxy-render/engine/light"
	"github.com/Carmen-Shannon/oxy-render/engine/log"
	"github.com/Carmen-Shannon/oxy-render/engine/material"
	"github.com/Carmen-Shannon/oxy-render/engine/model"
	"github.com/Carmen-Shannon/oxy-render/engine/raster"
	"github.com/Carmen-Shannon/oxy-render/engine/shadow"
	"github.com/Carmen-Shannon/oxy-render/engine/target"
	"github.com/chewxy/math32"
)

const passName = "shading"

// AmbientFactor scales albedo into the unshadowed ambient term.
const AmbientFactor float32 = 0.1

// SpecularPower is the Blinn-Phong exponent.
const SpecularPower float32 = 32

// CascadeTints color each cascade when cascade debugging is enabled.
var CascadeTints = [light.MaxCascades]common.Vec3{
	{1, 0.4, 0.4},
	{0.4, 1, 0.4},
	{0.4, 0.4, 1},
	{1, 1, 0.4},
}

// Params is the immutable per-frame input of the shading pass.
type Params struct {
	Camera     camera.State
	Light      light.State
	Cascades   shadow.CascadeSet
	ShadowMaps *shadow.ShadowMap
	// ClearColor fills texels no opaque item covers.
	ClearColor common.Vec4
	// DebugCascades multiplies lit color by the selected cascade's tint.
	DebugCascades bool
}

type shadingPass struct {
	pool       *target.Pool
	dispatcher dispatch.Dispatcher
	logger     log.Logger
	culling    bool

	// visibility buffer, reused across frames
	triangle []int32
	bary     []common.Vec3
}

// ShadingPass renders lit geometry into an HDR color target.
//
// Render is not safe for concurrent use; the renderer serializes frames.
type ShadingPass interface {
	// Render shades the draw list into out.
	//
	// Parameters:
	//   - p: the frame's camera, light and shadow state
	//   - items: the frame's draw list
	//   - out: HDR color target, fully overwritten
	//
	// Returns:
	//   - *target.Target: the depth buffer produced for out
	//   - []common.Warning: items that were skipped
	//   - error: target.ErrAllocation when the depth buffer cannot be allocated
	Render(p Params, items []model.DrawItem, out target.Writer) (*target.Target, []common.Warning, error)
}

var _ ShadingPass = &shadingPass{}

// NewShadingPass creates a shading pass.
//
// Parameters:
//   - pool: target pool owning the depth buffer
//   - dispatcher: row-band dispatcher
//   - options: functional options
//
// Returns:
//   - ShadingPass: the pass
func NewShadingPass(pool *target.Pool, dispatcher dispatch.Dispatcher, options ...ShadingPassBuilderOption) ShadingPass {
	p := &shadingPass{
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

// primitive holds the world-space attributes of one source triangle.
type primitive struct {
	mat material.Material
	pos [3]common.Vec3
	nrm [3]common.Vec3
	uv  [3][2]float32
}

// screenTri is a rasterizable piece of a primitive.
type screenTri struct {
	tri  raster.Triangle
	prim int32
}

func (p *shadingPass) Render(params Params, items []model.DrawItem, out target.Writer) (*target.Target, []common.Warning, error) {
	width, height := out.Width(), out.Height()
	depth, err := p.pool.Acquire("shading.depth", width, height, target.FormatDepth)
	if err != nil {
		return nil, nil, err
	}
	dw := depth.Writer()
	dr := dw.Reader()
	dw.Clear(common.Vec4{1, 1, 1, 1})
	p.resize(width * height)

	prims, opaque, blended, warnings := p.setup(params, items, width, height)

	// depth and visibility
	p.dispatcher.Rows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				p.triangle[y*width+x] = -1
			}
		}
		for i := range opaque {
			st := &opaque[i]
			st.tri.Rasterize(y0, y1, func(f raster.Fragment) {
				if f.Depth > 1 || !(f.Depth < dr.Depth(f.X, f.Y)) {
					return
				}
				dw.StoreDepth(f.X, f.Y, f.Depth)
				idx := f.Y*width + f.X
				p.triangle[idx] = st.prim
				p.bary[idx] = f.Bary
			})
		}
	})

	// resolve
	p.dispatcher.Rows(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				idx := y*width + x
				t := p.triangle[idx]
				if t < 0 {
					out.Store(x, y, params.ClearColor)
					continue
				}
				c := shade(&params, &prims[t], p.bary[idx])
				out.Store(x, y, common.Vec4{c[0], c[1], c[2], 1})
			}
		}
	})

	// transparent items blend over the resolved image in draw order and never write depth.
	if len(blended) > 0 {
		or := out.Reader()
		p.dispatcher.Rows(height, func(y0, y1 int) {
			for i := range blended {
				st := &blended[i]
				pr := &prims[st.prim]
				alpha := common.Saturate(pr.mat.BaseColor()[3])
				st.tri.Rasterize(y0, y1, func(f raster.Fragment) {
					if f.Depth > 1 || !(f.Depth < dr.Depth(f.X, f.Y)) {
						return
					}
					c := shade(&params, pr, f.Bary)
					dst := or.LoadRGB(f.X, f.Y)
					out.StoreRGB(f.X, f.Y, dst.Lerp(c, alpha))
				})
			}
		})
	}

	p.logger.Debugf("%d primitives, %d opaque and %d blended triangles, %d warnings",
		len(prims), len(opaque), len(blended), len(warnings))
	return depth, warnings, nil
}

func (p *shadingPass) resize(n int) {
	if cap(p.triangle) < n {
		p.triangle = make([]int32, n)
		p.bary = make([]common.Vec3, n)
	}
	p.triangle = p.triangle[:n]
	p.bary = p.bary[:n]
}

// setup validates items, transforms them to world and clip space and splits
// the resulting triangles into opaque and blended lists.
func (p *shadingPass) setup(params Params, items []model.DrawItem, width, height int) ([]primitive, []screenTri, []screenTri, []common.Warning) {
	var (
		prims    []primitive
		opaque   []screenTri
		blended  []screenTri
		warnings []common.Warning
	)
	frustum := params.Camera.Frustum()
	warn := func(it *model.DrawItem, reason string) {
		warnings = append(warnings, common.Warning{Pass: passName, Item: it.Name(), Reason: reason})
	}

	for i := range items {
		it := &items[i]
		switch {
		case it.Mesh == nil:
			warn(it, "missing mesh")
			continue
		case it.Material == nil:
			warn(it, "missing material")
			continue
		}
		if err := it.Mesh.Validate(); err != nil {
			warn(it, err.Error())
			continue
		}
		nm, ok := common.NormalMatrix(it.World)
		if !ok {
			warn(it, "degenerate transform")
			continue
		}
		if p.culling {
			center, radius := it.WorldBounds()
			if !frustum.IntersectsSphere(center, radius) {
				continue
			}
		}

		mesh := it.Mesh
		world := make([]common.Vec3, len(mesh.Vertices))
		normal := make([]common.Vec3, len(mesh.Vertices))
		clip := make([]common.Vec4, len(mesh.Vertices))
		for v, vert := range mesh.Vertices {
			world[v] = common.TransformPoint(it.World[:], vert.Position).XYZ()
			n := vert.Normal
			normal[v] = nm[0].Scale(n[0]).Add(nm[1].Scale(n[1])).Add(nm[2].Scale(n[2])).Normalize()
			clip[v] = common.TransformPoint(params.Camera.ViewProj[:], world[v])
		}

		for t := 0; t+2 < len(mesh.Indices); t += 3 {
			a, b, c := mesh.Indices[t], mesh.Indices[t+1], mesh.Indices[t+2]
			tris := raster.Setup([3]common.Vec4{clip[a], clip[b], clip[c]}, width, height)
			if len(tris) == 0 {
				continue
			}
			id := int32(len(prims))
			prims = append(prims, primitive{
				mat: it.Material,
				pos: [3]common.Vec3{world[a], world[b], world[c]},
				nrm: [3]common.Vec3{normal[a], normal[b], normal[c]},
				uv:  [3][2]float32{mesh.Vertices[a].TexCoord, mesh.Vertices[b].TexCoord, mesh.Vertices[c].TexCoord},
			})
			for _, tri := range tris {
				if it.Material.Opaque() {
					opaque = append(opaque, screenTri{tri: tri, prim: id})
				} else {
					blended = append(blended, screenTri{tri: tri, prim: id})
				}
			}
		}
	}
	return prims, opaque, blended, warnings
}

// shade evaluates lighting for one fragment of a primitive.
func shade(params *Params, pr *primitive, bary common.Vec3) common.Vec3 {
	pos := raster.Interpolate3(bary, pr.pos[0], pr.pos[1], pr.pos[2])
	n := raster.Interpolate3(bary, pr.nrm[0], pr.nrm[1], pr.nrm[2]).Normalize()
	v := params.Camera.Position.Sub(pos).Normalize()
	if n.Dot(v) < 0 {
		n = n.Negate()
	}
	uv := raster.Interpolate2(bary, pr.uv[0], pr.uv[1], pr.uv[2])
	albedo := pr.mat.Albedo(uv)

	l, radiance := params.Light.Incident(pos)
	color, nDotL := Lighting(albedo, n, v, l, radiance)

	vis, k := float32(1), -1
	if params.Light.CastsShadows {
		vis, k = params.Cascades.Visibility(params.ShadowMaps, params.Camera.ViewDepth(pos), pos, nDotL)
	}
	ambient := albedo.Scale(AmbientFactor)
	out := ambient.Add(color.Sub(ambient).Scale(vis))
	if params.DebugCascades && k >= 0 && k < len(CascadeTints) {
		out = out.Mul(CascadeTints[k])
	}
	return out
}

// Lighting returns the unshadowed diffuse plus specular contribution.
//
// Parameters:
//   - albedo: surface color
//   - n: unit surface normal
//   - v: unit direction to the viewer
//   - l: unit direction to the light
//   - radiance: light color times intensity times attenuation
//
// Returns:
//   - common.Vec3: diffuse + specular
//   - float32: N dot L, unclamped
func Lighting(albedo, n, v, l, radiance common.Vec3) (common.Vec3, float32) {
	nDotL := n.Dot(l)
	diffuse := radiance.Mul(albedo).Scale(math32.Max(nDotL, 0))
	if nDotL <= 0 {
		return diffuse, nDotL
	}
	h := l.Add(v).Normalize()
	spec := math32.Pow(math32.Max(n.Dot(h), 0), SpecularPower)
	return diffuse.Add(radiance.Scale(spec)), nDotL
}
