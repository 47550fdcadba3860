package assets

import (
	"github.com/Faultbox/nodering/internal/engine/mesh"
	"github.com/Faultbox/nodering/pkg/math"
)

// Triangle returns a red-green-blue triangle spanning [-1, 1].
func Triangle() []mesh.ColorVertex {
	return []mesh.ColorVertex{
		{Position: math.Vec3{X: 0, Y: 1, Z: 0}, Color: [4]float32{1, 0, 0, 1}},
		{Position: math.Vec3{X: -1, Y: -1, Z: 0}, Color: [4]float32{0, 1, 0, 1}},
		{Position: math.Vec3{X: 1, Y: -1, Z: 0}, Color: [4]float32{0, 0, 1, 1}},
	}
}

// Quad returns a textured square in the XY plane, facing +Z, drawn with
// indices 0,1,2,2,3,0.
func Quad() ([]mesh.TexturedVertex, []uint16) {
	return []mesh.TexturedVertex{
		{Position: math.Vec3{X: -1, Y: -1}, UV: [2]float32{0, 1}},
		{Position: math.Vec3{X: 1, Y: -1}, UV: [2]float32{1, 1}},
		{Position: math.Vec3{X: 1, Y: 1}, UV: [2]float32{1, 0}},
		{Position: math.Vec3{X: -1, Y: 1}, UV: [2]float32{0, 0}},
	}, []uint16{0, 1, 2, 2, 3, 0}
}

// cubeFaces lists, per face, its outward normal and its corners in
// counter-clockwise order seen from outside.
var cubeFaces = [6]struct {
	normal  math.Vec3
	corners [4]math.Vec3
}{
	{math.Vec3{Z: 1}, [4]math.Vec3{{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1}}},
	{math.Vec3{Z: -1}, [4]math.Vec3{{X: 1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}}},
	{math.Vec3{X: 1}, [4]math.Vec3{{X: 1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}}},
	{math.Vec3{X: -1}, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: -1, Y: -1, Z: 1}, {X: -1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: -1}}},
	{math.Vec3{Y: 1}, [4]math.Vec3{{X: -1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1}}},
	{math.Vec3{Y: -1}, [4]math.Vec3{{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1}}},
}

// Cube returns a lit, textured cube spanning [-1, 1] on every axis:
// 24 vertices (4 per face, so each face has its own normal) and 36 indices.
func Cube() ([]mesh.LitVertex, []uint16) {
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]mesh.LitVertex, 0, 24)
	indices := make([]uint16, 0, 36)
	for _, f := range cubeFaces {
		base := uint16(len(vertices))
		for i, c := range f.corners {
			vertices = append(vertices, mesh.LitVertex{Position: c, UV: uv[i], Normal: f.normal})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	return vertices, indices
}
