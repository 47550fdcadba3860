// Package input translates SDL2 events into the few events the demo reacts to.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType identifies an Event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventResize
	EventMinimized
	EventRestored
	EventKeyDown
	EventKeyUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
}

// Source produces raw SDL events. sdl.PollEvent is the default.
type Source func() sdl.Event

// Input handles all input processing.
type Input struct {
	poll   Source
	events []Event
	quit   bool
}

// New creates an input handler polling SDL.
func New() *Input {
	return NewWithSource(sdl.PollEvent)
}

// NewWithSource creates an input handler reading events from poll until
// it returns nil.
func NewWithSource(poll Source) *Input {
	return &Input{
		poll:   poll,
		events: make([]Event, 0, 16),
	}
}

// Update drains pending events.
// Returns true once quitting has been requested.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := i.poll(); event != nil; event = i.poll() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			i.quit = true

		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_SIZE_CHANGED:
				i.events = append(i.events, Event{
					Type:   EventResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			case sdl.WINDOWEVENT_MINIMIZED:
				i.events = append(i.events, Event{Type: EventMinimized})
			case sdl.WINDOWEVENT_RESTORED:
				i.events = append(i.events, Event{Type: EventRestored})
			}

		case *sdl.KeyboardEvent:
			if e.Repeat != 0 {
				continue
			}
			switch e.Type {
			case sdl.KEYDOWN:
				i.events = append(i.events, Event{Type: EventKeyDown, Key: e.Keysym.Scancode})
				if e.Keysym.Scancode == sdl.SCANCODE_ESCAPE {
					i.quit = true
				}
			case sdl.KEYUP:
				i.events = append(i.events, Event{Type: EventKeyUp, Key: e.Keysym.Scancode})
			}
		}
	}

	return i.quit
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && e.Key == scancode {
			return true
		}
	}
	return false
}
