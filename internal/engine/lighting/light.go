// Package lighting describes the directional light a node is shaded with
// and its fixed GPU byte layout.
package lighting

import (
	"encoding/binary"
	stdmath "math"

	"github.com/Faultbox/nodering/pkg/math"
)

// Byte layout of a Light inside a uniform slot (std140 compatible):
//
//	offset  0  color.rgb
//	offset 12  ambient intensity
//	offset 16  direction.xyz
//	offset 28  diffuse intensity
//	offset 32  shininess
//	offset 36  specular intensity
//	offset 40  zero padding up to Size
const (
	offColor     = 0
	offAmbient   = 12
	offDirection = 16
	offDiffuse   = 28
	offShininess = 32
	offSpecular  = 36

	// PayloadSize is the number of bytes carrying light data.
	PayloadSize = 40

	// Size is the size of the light block, padded to 16-byte alignment.
	Size = 48
)

// Light is a directional light with ambient, diffuse and specular terms.
type Light struct {
	Color             math.Vec3
	AmbientIntensity  float32
	Direction         math.Vec3
	DiffuseIntensity  float32
	Shininess         float32
	SpecularIntensity float32
}

// Default returns a white light shining into the screen.
func Default() Light {
	return Light{
		Color:             math.Vec3{X: 1, Y: 1, Z: 1},
		AmbientIntensity:  0.1,
		Direction:         math.Vec3{X: 0, Y: 0, Z: -1},
		DiffuseIntensity:  0.8,
		Shininess:         10,
		SpecularIntensity: 2,
	}
}

// PutBytes serializes l into b, which must be at least Size bytes long.
// The padding bytes are zeroed.
func (l *Light) PutBytes(b []byte) {
	_ = b[Size-1]
	putVec3(b[offColor:], l.Color)
	putFloat(b[offAmbient:], l.AmbientIntensity)
	putVec3(b[offDirection:], l.Direction)
	putFloat(b[offDiffuse:], l.DiffuseIntensity)
	putFloat(b[offShininess:], l.Shininess)
	putFloat(b[offSpecular:], l.SpecularIntensity)
	clear(b[PayloadSize:Size])
}

// Bytes returns the serialized light block.
func (l Light) Bytes() []byte {
	b := make([]byte, Size)
	l.PutBytes(b)
	return b
}

// FromBytes decodes a light block written by PutBytes.
func FromBytes(b []byte) Light {
	_ = b[PayloadSize-1]
	return Light{
		Color:             getVec3(b[offColor:]),
		AmbientIntensity:  getFloat(b[offAmbient:]),
		Direction:         getVec3(b[offDirection:]),
		DiffuseIntensity:  getFloat(b[offDiffuse:]),
		Shininess:         getFloat(b[offShininess:]),
		SpecularIntensity: getFloat(b[offSpecular:]),
	}
}

func putFloat(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, stdmath.Float32bits(f))
}

func putVec3(b []byte, v math.Vec3) {
	putFloat(b[0:], v.X)
	putFloat(b[4:], v.Y)
	putFloat(b[8:], v.Z)
}

func getFloat(b []byte) float32 {
	return stdmath.Float32frombits(binary.LittleEndian.Uint32(b))
}

func getVec3(b []byte) math.Vec3 {
	return math.Vec3{X: getFloat(b[0:]), Y: getFloat(b[4:]), Z: getFloat(b[8:])}
}
