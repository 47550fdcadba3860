package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/pkg/math"
)

func TestTriangle(t *testing.T) {
	v := Triangle()
	require.Len(t, v, 3)

	// Counter-clockwise when seen from +Z.
	n := v[1].Position.Sub(v[0].Position).Cross(v[2].Position.Sub(v[0].Position))
	assert.Greater(t, n.Z, float32(0))
	assert.Len(t, mesh.Encode(v), 3*mesh.ColorLayout.Stride)
}

func TestQuad(t *testing.T) {
	v, idx := Quad()
	require.Len(t, v, 4)
	assert.Equal(t, []uint16{0, 1, 2, 2, 3, 0}, idx)
	assert.Len(t, mesh.Encode(v), 4*mesh.TexturedLayout.Stride)
}

func TestCube(t *testing.T) {
	v, idx := Cube()
	require.Len(t, v, 24)
	require.Len(t, idx, 36)

	for _, i := range idx {
		assert.Less(t, int(i), len(v))
	}

	for tri := 0; tri < len(idx); tri += 3 {
		a, b, c := v[idx[tri]], v[idx[tri+1]], v[idx[tri+2]]
		assert.Equal(t, a.Normal, b.Normal)
		assert.Equal(t, a.Normal, c.Normal)

		// Front faces wind counter-clockwise seen from outside.
		face := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, face.Dot(a.Normal), float32(0), "triangle %d winds inward", tri/3)

		// Every vertex lies on the plane its normal points out of.
		for _, p := range []math.Vec3{a.Position, b.Position, c.Position} {
			assert.InDelta(t, 1, p.Dot(a.Normal), 1e-6)
		}
	}
}
