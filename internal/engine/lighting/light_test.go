package lighting

import (
	"encoding/binary"
	stdmath "math"
	"testing"

	"github.com/Faultbox/nodering/pkg/math"
)

func TestLayout(t *testing.T) {
	if PayloadSize != 40 {
		t.Errorf("expected payload 40 bytes, got %d", PayloadSize)
	}
	if Size%16 != 0 {
		t.Errorf("light block size %d is not 16-byte aligned", Size)
	}
}

func TestPutBytesOffsets(t *testing.T) {
	l := Light{
		Color:             math.Vec3{X: 1, Y: 2, Z: 3},
		AmbientIntensity:  4,
		Direction:         math.Vec3{X: 5, Y: 6, Z: 7},
		DiffuseIntensity:  8,
		Shininess:         9,
		SpecularIntensity: 10,
	}

	b := make([]byte, Size)
	for i := range b {
		b[i] = 0xff
	}
	l.PutBytes(b)

	for i := 0; i < 10; i++ {
		got := stdmath.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
		if got != float32(i+1) {
			t.Errorf("float at offset %d: expected %v, got %v", i*4, float32(i+1), got)
		}
	}
	for i := PayloadSize; i < Size; i++ {
		if b[i] != 0 {
			t.Errorf("padding byte %d not zeroed: %#x", i, b[i])
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	l := Default()
	l.Shininess = 32.5

	got := FromBytes(l.Bytes())
	if got != l {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, l)
	}
}

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name     string
		lon, lat float32
		want     math.Vec3
	}{
		{"zenith", 0, 90, math.Vec3{X: 0, Y: 1, Z: 0}},
		{"south horizon", 0, 0, math.Vec3{X: 0, Y: 0, Z: 1}},
		{"east horizon", 90, 0, math.Vec3{X: 1, Y: 0, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.lon, tt.lat)
			if got.Sub(tt.want).Length() > 1e-5 {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestAimFromSun(t *testing.T) {
	l := Default()
	l.AimFromSun(0, 90)
	if d := l.Direction.Sub(math.Vec3{X: 0, Y: -1, Z: 0}).Length(); d > 1e-5 {
		t.Errorf("expected light to travel straight down, got %+v", l.Direction)
	}
}
