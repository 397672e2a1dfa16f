package common

import (
	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// IdentityMat4 returns a new identity matrix by value.
func IdentityMat4() [16]float32 {
	var m [16]float32
	Identity(m[:])
	return m
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// MulMat4 returns a * b by value.
func MulMat4(a, b [16]float32) [16]float32 {
	var out [16]float32
	Mul4(out[:], a[:], b[:])
	return out
}

// Perspective creates a perspective projection matrix mapping view depth
// [near, far] onto clip depth [0, 1] (WebGPU convention).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1.0 / math32.Tan(fovY/2.0)
	Identity(out)

	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	out[15] = 0.0
}

// Ortho creates an orthographic projection matrix for the box
// [left, right] x [bottom, top] x [near, far] with clip depth in [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right, bottom, top: view-space extents
//   - near, far: view-space depth range along -Z
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	rl := right - left
	tb := top - bottom
	fn := far - near

	out[0] = 2 / rl
	out[5] = 2 / tb
	out[10] = -1 / fn
	out[12] = -(right + left) / rl
	out[13] = -(top + bottom) / tb
	out[14] = -near / fn
}

// BuildModelMatrix constructs a 4x4 model matrix from position, Euler rotation, and scale.
// The rotation order is Y * X * Z (yaw-pitch-roll). All matrices are column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - pos: translation in world space
//   - rot: rotation angles in radians around each axis
//   - scale: scale factors along each axis
func BuildModelMatrix(out []float32, pos, rot, scale Vec3) {
	cx, sx := math32.Cos(rot[0]), math32.Sin(rot[0])
	cy, sy := math32.Cos(rot[1]), math32.Sin(rot[1])
	cz, sz := math32.Cos(rot[2]), math32.Sin(rot[2])

	out[0] = (cy*cz + sy*sx*sz) * scale[0]
	out[1] = (cx * sz) * scale[0]
	out[2] = (-sy*cz + cy*sx*sz) * scale[0]
	out[3] = 0

	out[4] = (cy*-sz + sy*sx*cz) * scale[1]
	out[5] = (cx * cz) * scale[1]
	out[6] = (sy*sz + cy*sx*cz) * scale[1]
	out[7] = 0

	out[8] = (sy * cx) * scale[2]
	out[9] = (-sx) * scale[2]
	out[10] = (cy * cx) * scale[2]
	out[11] = 0

	out[12] = pos[0]
	out[13] = pos[1]
	out[14] = pos[2]
	out[15] = 1
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if math32.Abs(det) < 1e-12 || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return false
	}

	invDet := 1.0 / det
	var buf [16]float32

	buf[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	buf[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	buf[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	buf[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	buf[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	buf[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	buf[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	buf[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	buf[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	buf[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	buf[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	buf[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	buf[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	buf[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	buf[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	buf[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	copy(out, buf[:])
	return true
}

// NormalMatrix returns the inverse-transpose of the upper 3x3 of a model
// matrix as three columns. ok is false when the matrix is singular.
func NormalMatrix(model [16]float32) (n [3]Vec3, ok bool) {
	var inv [16]float32
	if !Invert4(inv[:], model[:]) {
		return n, false
	}
	// transpose(inv): column c of the result is row c of inv.
	for c := 0; c < 3; c++ {
		n[c] = Vec3{inv[c], inv[4+c], inv[8+c]}
	}
	return n, true
}

// LookAt creates a view matrix that positions and orients the camera.
// The resulting matrix transforms world coordinates to view/camera space.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - center: target point the camera looks at
//   - up: up vector defining camera orientation (typically 0,1,0)
func LookAt(out []float32, eye, center, up Vec3) {
	z := eye.Sub(center).Normalize()
	if z.LengthSq() == 0 {
		z = Vec3{0, 0, 1}
	}
	x := up.Cross(z).Normalize()
	if x.LengthSq() == 0 {
		// up is parallel to the view axis; pick any perpendicular.
		x = AnyPerpendicular(z)
	}
	y := z.Cross(x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// TransformPoint multiplies the homogeneous point (p, 1) by m.
func TransformPoint(m []float32, p Vec3) Vec4 {
	return Vec4{
		m[0]*p[0] + m[4]*p[1] + m[8]*p[2] + m[12],
		m[1]*p[0] + m[5]*p[1] + m[9]*p[2] + m[13],
		m[2]*p[0] + m[6]*p[1] + m[10]*p[2] + m[14],
		m[3]*p[0] + m[7]*p[1] + m[11]*p[2] + m[15],
	}
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate clamps v to [0, 1].
func Saturate(v float32) float32 {
	return Clamp(v, 0, 1)
}

// Mix linearly interpolates between a and b by t.
func Mix(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Smoothstep performs Hermite interpolation between 0 and 1 when edge0 < x < edge1.
func Smoothstep(edge0, edge1, x float32) float32 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Saturate((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}
