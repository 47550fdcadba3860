package app

import (
	"github.com/chewxy/math32"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/nodering/internal/engine/camera"
	"github.com/Faultbox/nodering/internal/engine/input"
)

// orbitStep is how far one arrow key press turns the camera.
const orbitStep = math32.Pi / 12

// steer applies the camera keys among events to cam and reports whether
// the camera moved. Arrows orbit, +/- zoom and R resets the view.
func steer(cam *camera.OrbitCamera, events []input.Event) bool {
	moved := false
	for _, e := range events {
		if e.Type != input.EventKeyDown {
			continue
		}
		switch e.Key {
		case sdl.SCANCODE_LEFT:
			cam.Orbit(-orbitStep, 0)
		case sdl.SCANCODE_RIGHT:
			cam.Orbit(orbitStep, 0)
		case sdl.SCANCODE_UP:
			cam.Orbit(0, orbitStep)
		case sdl.SCANCODE_DOWN:
			cam.Orbit(0, -orbitStep)
		case sdl.SCANCODE_EQUALS, sdl.SCANCODE_KP_PLUS:
			cam.Zoom(1)
		case sdl.SCANCODE_MINUS, sdl.SCANCODE_KP_MINUS:
			cam.Zoom(-1)
		case sdl.SCANCODE_R:
			*cam = *camera.NewOrbitCamera(viewDistance)
		default:
			continue
		}
		moved = true
	}
	return moved
}
