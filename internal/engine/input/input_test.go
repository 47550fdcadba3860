package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

// queue returns a Source that yields events then nil.
func queue(events ...sdl.Event) Source {
	return func() sdl.Event {
		if len(events) == 0 {
			return nil
		}
		e := events[0]
		events = events[1:]
		return e
	}
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		events   []sdl.Event
		wantQuit bool
		want     []EventType
	}{
		{
			name:     "quit",
			events:   []sdl.Event{&sdl.QuitEvent{Type: sdl.QUIT}},
			wantQuit: true,
			want:     []EventType{EventQuit},
		},
		{
			name: "resize and minimize",
			events: []sdl.Event{
				&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 640, Data2: 480},
				&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_MINIMIZED},
				&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESTORED},
			},
			want: []EventType{EventResize, EventMinimized, EventRestored},
		},
		{
			name: "escape quits",
			events: []sdl.Event{
				&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			},
			wantQuit: true,
			want:     []EventType{EventKeyDown},
		},
		{
			name: "key repeat ignored",
			events: []sdl.Event{
				&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
				&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_A}},
			},
			want: []EventType{EventKeyUp},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := NewWithSource(queue(tt.events...))
			if got := in.Update(); got != tt.wantQuit {
				t.Errorf("expected quit=%v, got %v", tt.wantQuit, got)
			}
			events := in.Events()
			if len(events) != len(tt.want) {
				t.Fatalf("expected %d events, got %d", len(tt.want), len(events))
			}
			for i, e := range events {
				if e.Type != tt.want[i] {
					t.Errorf("event %d: expected type %d, got %d", i, tt.want[i], e.Type)
				}
			}
		})
	}
}

func TestResizeCarriesSize(t *testing.T) {
	in := NewWithSource(queue(&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_SIZE_CHANGED, Data1: 1024, Data2: 768}))
	in.Update()

	e := in.Events()[0]
	if e.Width != 1024 || e.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", e.Width, e.Height)
	}
}

func TestIsKeyPressed(t *testing.T) {
	in := NewWithSource(queue(&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_SPACE}}))
	in.Update()

	if !in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("expected space to be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_A) {
		t.Error("did not expect A to be pressed")
	}

	in.Update()
	if in.IsKeyPressed(sdl.SCANCODE_SPACE) {
		t.Error("key presses must not carry over to the next update")
	}
}
