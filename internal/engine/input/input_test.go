package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name   string
		event  sdl.Event
		want   Event
		wantOK bool
	}{
		{"quit", &sdl.QuitEvent{Type: sdl.QUIT}, Event{Type: EventQuit}, true},
		{
			"resize",
			&sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_RESIZED, Data1: 800, Data2: 600},
			Event{Type: EventWindowResize, Width: 800, Height: 600},
			true,
		},
		{"window focus ignored", &sdl.WindowEvent{Type: sdl.WINDOWEVENT, Event: sdl.WINDOWEVENT_FOCUS_GAINED}, Event{}, false},
		{
			"key down",
			&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_R}},
			Event{Type: EventKeyDown, Key: sdl.SCANCODE_R},
			true,
		},
		{
			"key up",
			&sdl.KeyboardEvent{Type: sdl.KEYUP, Keysym: sdl.Keysym{Scancode: sdl.SCANCODE_ESCAPE}},
			Event{Type: EventKeyUp, Key: sdl.SCANCODE_ESCAPE},
			true,
		},
		{
			"mouse move",
			&sdl.MouseMotionEvent{Type: sdl.MOUSEMOTION, X: 10, Y: 20, XRel: -3, YRel: 4},
			Event{Type: EventMouseMove, MouseX: 10, MouseY: 20, DeltaX: -3, DeltaY: 4},
			true,
		},
		{
			"mouse down",
			&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, X: 1, Y: 2, Button: sdl.BUTTON_LEFT},
			Event{Type: EventMouseDown, MouseX: 1, MouseY: 2, Button: sdl.BUTTON_LEFT},
			true,
		},
		{
			"wheel",
			&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2},
			Event{Type: EventMouseWheel, DeltaY: 2},
			true,
		},
		{
			"flipped wheel",
			&sdl.MouseWheelEvent{Type: sdl.MOUSEWHEEL, Y: 2, Direction: sdl.MOUSEWHEEL_FLIPPED},
			Event{Type: EventMouseWheel, DeltaY: -2},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Translate(tt.event)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestButtonTracking(t *testing.T) {
	in := New()

	in.track(Event{Type: EventMouseDown, Button: sdl.BUTTON_LEFT})
	if !in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("left button should be down")
	}
	if in.IsButtonDown(sdl.BUTTON_RIGHT) {
		t.Error("right button should be up")
	}

	in.track(Event{Type: EventMouseUp, Button: sdl.BUTTON_LEFT})
	if in.IsButtonDown(sdl.BUTTON_LEFT) {
		t.Error("left button should be released")
	}
}

func TestIsKeyPressed(t *testing.T) {
	in := New()
	in.events = append(in.events, Event{Type: EventKeyDown, Key: sdl.SCANCODE_F})

	if !in.IsKeyPressed(sdl.SCANCODE_F) {
		t.Error("F should be pressed")
	}
	if in.IsKeyPressed(sdl.SCANCODE_G) {
		t.Error("G should not be pressed")
	}
}
