package common

import "github.com/chewxy/math32"

// Vec3 is a three component float32 vector (position, direction or RGB color).
type Vec3 [3]float32

// Vec4 is a four component float32 vector (homogeneous position or RGBA color).
type Vec4 [4]float32

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }
func (v Vec3) Mul(o Vec3) Vec3 { return Vec3{v[0] * o[0], v[1] * o[1], v[2] * o[2]} }

func (v Vec3) Scale(s float32) Vec3 { return Vec3{v[0] * s, v[1] * s, v[2] * s} }
func (v Vec3) Dot(o Vec3) float32   { return v[0]*o[0] + v[1]*o[1] + v[2]*o[2] }
func (v Vec3) LengthSq() float32    { return v.Dot(v) }
func (v Vec3) Length() float32      { return math32.Sqrt(v.Dot(v)) }
func (v Vec3) Negate() Vec3         { return Vec3{-v[0], -v[1], -v[2]} }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v[1]*o[2] - v[2]*o[1],
		v[2]*o[0] - v[0]*o[2],
		v[0]*o[1] - v[1]*o[0],
	}
}

// Normalize returns v scaled to unit length, or the zero vector if v has no length.
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 || math32.IsNaN(l) {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates component-wise between v and o.
func (v Vec3) Lerp(o Vec3, t float32) Vec3 {
	return Vec3{Mix(v[0], o[0], t), Mix(v[1], o[1], t), Mix(v[2], o[2], t)}
}

// XYZ drops the w component.
func (v Vec4) XYZ() Vec3 { return Vec3{v[0], v[1], v[2]} }

// PerspectiveDivide returns xyz/w. Callers must reject w <= 0 first.
func (v Vec4) PerspectiveDivide() Vec3 {
	inv := 1 / v[3]
	return Vec3{v[0] * inv, v[1] * inv, v[2] * inv}
}

// AnyPerpendicular returns a unit vector orthogonal to n.
func AnyPerpendicular(n Vec3) Vec3 {
	if math32.Abs(n[0]) < 0.9 {
		return Vec3{1, 0, 0}.Cross(n).Normalize()
	}
	return Vec3{0, 1, 0}.Cross(n).Normalize()
}

// Luminance returns the Rec.601 weighted luminance of an RGB color.
func Luminance(c Vec3) float32 {
	return 0.299*c[0] + 0.587*c[1] + 0.114*c[2]
}
