package math

import (
	"encoding/binary"
	"fmt"
	gomath "math"

	"github.com/chewxy/math32"
)

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
//
// Element (row, col) lives at index col*4+row, so the translation is in m12..m14.
type Mat4 [16]float32

// Mat4Size is the size in bytes of a serialized Mat4.
const Mat4Size = 16 * 4

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Perspective returns a right-handed perspective projection matrix
// mapping view-space depth to OpenGL clip space (z in [-1, 1]).
// fovY is in radians, aspect is width/height.
// It panics if near <= 0, far <= near, aspect <= 0 or fovY is not in (0, π).
func Perspective(fovY, aspect, near, far float32) Mat4 {
	switch {
	case near <= 0:
		panic(fmt.Sprintf("math: perspective near plane %v must be positive", near))
	case far <= near:
		panic(fmt.Sprintf("math: perspective far plane %v must exceed near plane %v", far, near))
	case aspect <= 0:
		panic(fmt.Sprintf("math: perspective aspect %v must be positive", aspect))
	case fovY <= 0 || fovY >= math32.Pi:
		panic(fmt.Sprintf("math: perspective fovY %v out of range", fovY))
	}

	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAt returns a right-handed view matrix looking from eye to center
// with up direction.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translation returns a translation matrix.
func Translation(x, y, z float32) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		x, y, z, 1,
	}
}

// Scaling returns a scale matrix.
func Scaling(x, y, z float32) Mat4 {
	return Mat4{
		x, 0, 0, 0,
		0, y, 0, 0,
		0, 0, z, 0,
		0, 0, 0, 1,
	}
}

// RotationX returns a rotation matrix around the X axis.
// angle is in radians.
func RotationX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)

	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotationY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotationY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)

	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotationZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotationZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)

	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * other.
// Applied to a vector, other transforms it first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// Multiply sets m to m * other and returns m.
func (m *Mat4) Multiply(other *Mat4) *Mat4 {
	*m = m.Mul(*other)
	return m
}

// MultiplyLeft sets m to parent * m and returns m.
func (m *Mat4) MultiplyLeft(parent *Mat4) *Mat4 {
	*m = parent.Mul(*m)
	return m
}

// Translate post-multiplies m by a translation and returns m.
func (m *Mat4) Translate(x, y, z float32) *Mat4 {
	t := Translation(x, y, z)
	return m.Multiply(&t)
}

// Scale post-multiplies m by a scale and returns m.
func (m *Mat4) Scale(x, y, z float32) *Mat4 {
	s := Scaling(x, y, z)
	return m.Multiply(&s)
}

// RotateAround post-multiplies m by the Euler rotation Rz·Ry·Rx and returns m.
// A vector is rotated around X first, then Y, then Z.
// Angles are in radians.
func (m *Mat4) RotateAround(x, y, z float32) *Mat4 {
	r := RotationZ(z).Mul(RotationY(y)).Mul(RotationX(x))
	return m.Multiply(&r)
}

// Vec4 is a 4-component vector.
type Vec4 [4]float32

// MulVec4 multiplies the matrix by a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v[0] + m[4]*v[1] + m[8]*v[2] + m[12]*v[3],
		m[1]*v[0] + m[5]*v[1] + m[9]*v[2] + m[13]*v[3],
		m[2]*v[0] + m[6]*v[1] + m[10]*v[2] + m[14]*v[3],
		m[3]*v[0] + m[7]*v[1] + m[11]*v[2] + m[15]*v[3],
	}
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	v := m.MulVec4(Vec4{p.X, p.Y, p.Z, 1})
	if v[3] != 0 && v[3] != 1 {
		return Vec3{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
	}
	return Vec3{v[0], v[1], v[2]}
}

// PutBytes writes m into b as 16 little-endian float32 values in column-major order.
// b must hold at least Mat4Size bytes.
func (m *Mat4) PutBytes(b []byte) {
	_ = b[Mat4Size-1]
	for i, f := range m {
		binary.LittleEndian.PutUint32(b[i*4:], gomath.Float32bits(f))
	}
}

// Bytes returns the serialized form of m.
func (m Mat4) Bytes() []byte {
	b := make([]byte, Mat4Size)
	m.PutBytes(b)
	return b
}

// FromBytes decodes a matrix written by PutBytes.
func FromBytes(b []byte) Mat4 {
	_ = b[Mat4Size-1]
	var m Mat4
	for i := range m {
		m[i] = gomath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return m
}
