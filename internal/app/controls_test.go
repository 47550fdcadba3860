package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/nodering/internal/engine/camera"
	"github.com/Faultbox/nodering/internal/engine/input"
	"github.com/Faultbox/nodering/pkg/math"
)

func keyDown(k sdl.Scancode) input.Event {
	return input.Event{Type: input.EventKeyDown, Key: k}
}

func TestSteer(t *testing.T) {
	cam := camera.NewOrbitCamera(viewDistance)

	assert.False(t, steer(cam, nil))
	assert.False(t, steer(cam, []input.Event{
		{Type: input.EventKeyUp, Key: sdl.SCANCODE_LEFT},
		keyDown(sdl.SCANCODE_A),
		{Type: input.EventResize, Width: 10, Height: 10},
	}))
	assert.Equal(t, math.Translation(0, 0, -viewDistance), cam.ViewMatrix())

	assert.True(t, steer(cam, []input.Event{keyDown(sdl.SCANCODE_RIGHT), keyDown(sdl.SCANCODE_RIGHT)}))
	assert.InDelta(t, 2*orbitStep, cam.Yaw, 1e-6)

	assert.True(t, steer(cam, []input.Event{keyDown(sdl.SCANCODE_UP)}))
	assert.InDelta(t, orbitStep, cam.Pitch, 1e-6)

	assert.True(t, steer(cam, []input.Event{keyDown(sdl.SCANCODE_EQUALS)}))
	assert.Less(t, cam.Distance, float32(viewDistance))

	assert.True(t, steer(cam, []input.Event{keyDown(sdl.SCANCODE_R)}))
	assert.Equal(t, float32(viewDistance), cam.Distance)
	assert.Zero(t, cam.Yaw)
	assert.Zero(t, cam.Pitch)
}
