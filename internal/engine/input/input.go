// Package input turns SDL2 events into viewer events and keyboard state into
// camera movement.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/brushwork/internal/engine/camera"
)

// EventType enumerates the events the viewer reacts to.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Shift  bool
	Width  int
	Height int
	MouseX int
	MouseY int
	DX, DY int // relative mouse motion
	Wheel  int
	Button uint8
}

// Direction is one movement axis end.
type Direction int

const (
	Forward Direction = iota
	Back
	Left
	Right
	Up
	Down
)

// Keybinds maps movement directions to keys.
type Keybinds map[Direction][]sdl.Scancode

// DefaultKeybinds is WASD with Q/E for vertical movement.
func DefaultKeybinds() Keybinds {
	return Keybinds{
		Forward: {sdl.SCANCODE_W, sdl.SCANCODE_UP},
		Back:    {sdl.SCANCODE_S, sdl.SCANCODE_DOWN},
		Left:    {sdl.SCANCODE_A, sdl.SCANCODE_LEFT},
		Right:   {sdl.SCANCODE_D, sdl.SCANCODE_RIGHT},
		Up:      {sdl.SCANCODE_E, sdl.SCANCODE_SPACE},
		Down:    {sdl.SCANCODE_Q, sdl.SCANCODE_LCTRL},
	}
}

// Move converts held keys into a movement intent.
func (k Keybinds) Move(held func(sdl.Scancode) bool) camera.Move {
	pressed := func(d Direction) float32 {
		for _, sc := range k[d] {
			if held(sc) {
				return 1
			}
		}
		return 0
	}
	return camera.Move{
		Forward: pressed(Forward) - pressed(Back),
		Right:   pressed(Right) - pressed(Left),
		Up:      pressed(Up) - pressed(Down),
	}
}

// Input handles all input processing.
type Input struct {
	events []Event
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
	}
}

// Update polls SDL events.
// Returns true if the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0] // Clear previous events

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{
					Type:   EventWindowResize,
					Width:  int(e.Data1),
					Height: int(e.Data2),
				})
			}

		case *sdl.KeyboardEvent:
			ev := Event{
				Key:   e.Keysym.Scancode,
				Shift: e.Keysym.Mod&sdl.KMOD_SHIFT != 0,
			}
			switch {
			case e.Type == sdl.KEYDOWN && e.Repeat == 0:
				ev.Type = EventKeyDown
			case e.Type == sdl.KEYUP:
				ev.Type = EventKeyUp
			default:
				continue
			}
			i.events = append(i.events, ev)

		case *sdl.MouseMotionEvent:
			i.events = append(i.events, Event{
				Type:   EventMouseMove,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				DX:     int(e.XRel),
				DY:     int(e.YRel),
			})

		case *sdl.MouseButtonEvent:
			ev := Event{
				Type:   EventMouseUp,
				MouseX: int(e.X),
				MouseY: int(e.Y),
				Button: e.Button,
			}
			if e.Type == sdl.MOUSEBUTTONDOWN {
				ev.Type = EventMouseDown
			}
			i.events = append(i.events, ev)

		case *sdl.MouseWheelEvent:
			i.events = append(i.events, Event{Type: EventMouseWheel, Wheel: int(e.Y)})
		}
	}

	return false
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

// Held reports whether a key is currently down.
func Held(scancode sdl.Scancode) bool {
	return sdl.GetKeyboardState()[scancode] != 0
}
