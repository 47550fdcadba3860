package mesh

import (
	"encoding/binary"
	stdmath "math"

	"github.com/Faultbox/nodering/pkg/math"
)

// Attribute is one vertex attribute inside a layout.
type Attribute struct {
	Name       string
	Location   uint32
	Components int // float32 components
	Offset     int // bytes from the start of the vertex
}

// Layout describes how vertices are laid out in a vertex buffer.
type Layout struct {
	Name       string
	Stride     int
	Attributes []Attribute
}

// Has reports whether the layout carries the named attribute.
func (l *Layout) Has(name string) bool {
	for _, a := range l.Attributes {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Attribute locations shared with the shader programs.
const (
	LocPosition uint32 = 0
	LocColor    uint32 = 1
	LocTexCoord uint32 = 2
	LocNormal   uint32 = 3
)

// Vertex layouts.
var (
	// ColorLayout is position(3) + color(4).
	ColorLayout = &Layout{
		Name:   "color",
		Stride: 28,
		Attributes: []Attribute{
			{Name: "position", Location: LocPosition, Components: 3, Offset: 0},
			{Name: "color", Location: LocColor, Components: 4, Offset: 12},
		},
	}

	// TexturedLayout is position(3) + texcoord(2).
	TexturedLayout = &Layout{
		Name:   "textured",
		Stride: 20,
		Attributes: []Attribute{
			{Name: "position", Location: LocPosition, Components: 3, Offset: 0},
			{Name: "texcoord", Location: LocTexCoord, Components: 2, Offset: 12},
		},
	}

	// LitLayout is position(3) + texcoord(2) + normal(3).
	LitLayout = &Layout{
		Name:   "lit",
		Stride: 32,
		Attributes: []Attribute{
			{Name: "position", Location: LocPosition, Components: 3, Offset: 0},
			{Name: "texcoord", Location: LocTexCoord, Components: 2, Offset: 12},
			{Name: "normal", Location: LocNormal, Components: 3, Offset: 20},
		},
	}
)

// Vertex is implemented by the vertex types of this package.
type Vertex interface {
	// Layout returns the layout shared by all vertices of the type.
	Layout() *Layout

	// AppendBytes appends the little-endian encoding of the vertex.
	AppendBytes(b []byte) []byte
}

// ColorVertex is a vertex-coloured vertex.
type ColorVertex struct {
	Position math.Vec3
	Color    [4]float32
}

// Layout implements Vertex.
func (ColorVertex) Layout() *Layout { return ColorLayout }

// AppendBytes implements Vertex.
func (v ColorVertex) AppendBytes(b []byte) []byte {
	b = appendVec3(b, v.Position)
	return appendFloats(b, v.Color[:]...)
}

// TexturedVertex is a textured vertex.
type TexturedVertex struct {
	Position math.Vec3
	UV       [2]float32
}

// Layout implements Vertex.
func (TexturedVertex) Layout() *Layout { return TexturedLayout }

// AppendBytes implements Vertex.
func (v TexturedVertex) AppendBytes(b []byte) []byte {
	b = appendVec3(b, v.Position)
	return appendFloats(b, v.UV[:]...)
}

// LitVertex is a textured vertex with a normal.
type LitVertex struct {
	Position math.Vec3
	UV       [2]float32
	Normal   math.Vec3
}

// Layout implements Vertex.
func (LitVertex) Layout() *Layout { return LitLayout }

// AppendBytes implements Vertex.
func (v LitVertex) AppendBytes(b []byte) []byte {
	b = appendVec3(b, v.Position)
	b = appendFloats(b, v.UV[:]...)
	return appendVec3(b, v.Normal)
}

// Encode serializes vertices into a tightly packed vertex buffer image.
func Encode[V Vertex](vertices []V) []byte {
	if len(vertices) == 0 {
		return nil
	}
	b := make([]byte, 0, len(vertices)*vertices[0].Layout().Stride)
	for _, v := range vertices {
		b = v.AppendBytes(b)
	}
	return b
}

// EncodeIndices serializes 16-bit indices.
func EncodeIndices(indices []uint16) []byte {
	b := make([]byte, 0, len(indices)*2)
	for _, i := range indices {
		b = binary.LittleEndian.AppendUint16(b, i)
	}
	return b
}

func appendFloats(b []byte, fs ...float32) []byte {
	for _, f := range fs {
		b = binary.LittleEndian.AppendUint32(b, stdmath.Float32bits(f))
	}
	return b
}

func appendVec3(b []byte, v math.Vec3) []byte {
	return appendFloats(b, v.X, v.Y, v.Z)
}
