package math

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const eps = 1e-5

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translation(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslateInPlace(t *testing.T) {
	m := Identity()
	m.Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTranslateThenScale(t *testing.T) {
	m := Identity()
	m.Translate(1, 0, 0).Scale(2, 2, 2)

	// The origin only picks up the translation.
	origin := m.MulVec4(Vec4{0, 0, 0, 1})
	if origin != (Vec4{1, 0, 0, 1}) {
		t.Errorf("origin: got %v, want (1, 0, 0, 1)", origin)
	}

	// Geometry is scaled in local space, then translated.
	p := m.MulVec4(Vec4{1, 0, 0, 1})
	if p != (Vec4{3, 0, 0, 1}) {
		t.Errorf("unit x: got %v, want (3, 0, 0, 1)", p)
	}
}

func TestRotateAroundOrder(t *testing.T) {
	half := float32(gomath.Pi / 2)

	m := Identity()
	m.RotateAround(half, half, 0)

	// X first: (0,1,0) -> (0,0,1); then Y: (0,0,1) -> (1,0,0).
	got := m.TransformPoint(Vec3{0, 1, 0})
	if abs(got.X-1) > eps || abs(got.Y) > eps || abs(got.Z) > eps {
		t.Errorf("RotateAround(π/2, π/2, 0) * (0,1,0) = %v, want (1, 0, 0)", got)
	}
}

func TestRotationY90(t *testing.T) {
	m := RotationY(float32(gomath.Pi / 2)) // 90 degrees
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result.X) > 0.001 || abs(result.Y) > 0.001 || abs(result.Z+1) > 0.001 {
		t.Errorf("RotationY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestModelMatrixMatchesMathGL(t *testing.T) {
	tests := []struct {
		name       string
		tx, ty, tz float32
		rx, ry, rz float32
		s          float32
	}{
		{"identity", 0, 0, 0, 0, 0, 0, 1},
		{"translate", 0.5, -1, -7, 0, 0, 0, 1},
		{"rotate", 0, 0, 0, 0.3, -1.2, 2.5, 1},
		{"all", 0.25, 0.5, -3, 0.4, 0.7, -0.1, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Identity()
			m.Translate(tt.tx, tt.ty, tt.tz).RotateAround(tt.rx, tt.ry, tt.rz).Scale(tt.s, tt.s, tt.s)

			want := mgl32.Translate3D(tt.tx, tt.ty, tt.tz).
				Mul4(mgl32.HomogRotate3DZ(tt.rz)).
				Mul4(mgl32.HomogRotate3DY(tt.ry)).
				Mul4(mgl32.HomogRotate3DX(tt.rx)).
				Mul4(mgl32.Scale3D(tt.s, tt.s, tt.s))

			if !approxEqual(m, want, eps) {
				t.Errorf("model matrix mismatch:\n got %v\nwant %v", m, want)
			}
		})
	}
}

func TestMultiplyLeft(t *testing.T) {
	parent := Translation(0, 0, -5)
	local := Scaling(2, 2, 2)

	world := local
	world.MultiplyLeft(&parent)

	want := parent.Mul(local)
	if world != want {
		t.Errorf("MultiplyLeft: got %v, want %v", world, want)
	}

	p := world.TransformPoint(Vec3{1, 1, 1})
	if p != (Vec3{2, 2, -3}) {
		t.Errorf("world * (1,1,1) = %v, want (2, 2, -3)", p)
	}
}

func TestPerspective(t *testing.T) {
	fov := Radians(85)
	aspect := float32(16.0 / 9.0)
	near := float32(0.01)
	far := float32(100.0)

	m := Perspective(fov, aspect, near, far)

	// Element [15] should be 0 for perspective projection
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	// Element [11] should be -1 for perspective projection
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}

	want := mgl32.Perspective(fov, aspect, near, far)
	if !approxEqual(m, want, 1e-4) {
		t.Errorf("Perspective mismatch:\n got %v\nwant %v", m, want)
	}
}

func TestPerspectiveInvalid(t *testing.T) {
	tests := []struct {
		name                   string
		fov, aspect, near, far float32
	}{
		{"zero near", 1, 1, 0, 10},
		{"negative near", 1, 1, -1, 10},
		{"far before near", 1, 1, 10, 1},
		{"zero aspect", 1, 0, 0.1, 10},
		{"zero fov", 0, 1, 0.1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			Perspective(tt.fov, tt.aspect, tt.near, tt.far)
		})
	}
}

func TestBytesRoundTrip(t *testing.T) {
	m := Perspective(Radians(60), 1.5, 0.1, 50)
	m.Translate(1, 2, 3)

	b := m.Bytes()
	if len(b) != Mat4Size {
		t.Fatalf("Bytes length = %d, want %d", len(b), Mat4Size)
	}

	got := FromBytes(b)
	for i := range m {
		if gomath.Float32bits(got[i]) != gomath.Float32bits(m[i]) {
			t.Errorf("element %d: got %v, want %v", i, got[i], m[i])
		}
	}

	// Column-major: the translation column starts at element 12.
	if FromBytes(Translation(7, 8, 9).Bytes())[12] != 7 {
		t.Error("translation x should serialize at element 12")
	}
}

func TestLookAt(t *testing.T) {
	tests := []struct {
		name        string
		eye, center Vec3
	}{
		{"front", Vec3{0, 0, 5}, Vec3{0, 0, 0}},
		{"above right", Vec3{3, 4, 5}, Vec3{0, 0, 0}},
		{"off center", Vec3{-2, 1, 7}, Vec3{1, 0.5, -1}},
	}
	up := Vec3{0, 1, 0}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := LookAt(tt.eye, tt.center, up)
			want := mgl32.LookAtV(
				mgl32.Vec3{tt.eye.X, tt.eye.Y, tt.eye.Z},
				mgl32.Vec3{tt.center.X, tt.center.Y, tt.center.Z},
				mgl32.Vec3{up.X, up.Y, up.Z})
			if !approxEqual(m, want, 1e-5) {
				t.Errorf("LookAt = %v, want %v", m, want)
			}
		})
	}

	// Looking down -Z from (0,0,5) is a plain translation.
	if got, want := LookAt(Vec3{0, 0, 5}, Vec3{}, up), Translation(0, 0, -5); got != want {
		t.Errorf("LookAt from +Z = %v, want %v", got, want)
	}
}

func TestRadians(t *testing.T) {
	if got := Radians(180); abs(got-float32(gomath.Pi)) > eps {
		t.Errorf("Radians(180) = %v, want π", got)
	}
}

// approxEqual compares element-wise with an absolute tolerance.
func approxEqual(m Mat4, want mgl32.Mat4, tol float32) bool {
	for i := range m {
		if abs(m[i]-want[i]) > tol {
			return false
		}
	}
	return true
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
