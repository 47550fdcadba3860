package lighting

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/nodering/pkg/math"
)

// SunDirection converts longitude/latitude angles in degrees to a unit
// vector pointing towards the sun. Longitude rotates around the Y axis,
// latitude is the elevation above the horizon.
func SunDirection(longitude, latitude float32) math.Vec3 {
	lonSin, lonCos := math32.Sincos(math.Radians(longitude))
	latSin, latCos := math32.Sincos(math.Radians(latitude))

	return math.Vec3{
		X: latCos * lonSin,
		Y: latSin,
		Z: latCos * lonCos,
	}
}

// AimFromSun points l along the rays of a sun at the given angles.
// Direction is the way the light travels, so it is the opposite of
// SunDirection.
func (l *Light) AimFromSun(longitude, latitude float32) {
	l.Direction = SunDirection(longitude, latitude).Scale(-1)
}
