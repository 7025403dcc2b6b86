// Package input carries keyboard and mouse events from the window thread to the
// render thread. The window side publishes to a Bus; the render side drains
// it once per frame into a State it owns.
package input

import (
	"sync"
	"sync/atomic"
)

// Key is a physical key scancode. Values match SDL scancodes.
type Key int32

// Keys used by the camera controls.
const (
	KeyA      Key = 4
	KeyD      Key = 7
	KeyE      Key = 8
	KeyQ      Key = 20
	KeyS      Key = 22
	KeyW      Key = 26
	KeyEscape Key = 41
	KeySpace  Key = 44
	KeyF12    Key = 69
	KeyLShift Key = 225
)

// EventType identifies an input event.
type EventType int

const (
	EventNone EventType = iota
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventResize
)

// Event is a single input event. DX/DY carry relative mouse motion;
// Width/Height carry the new drawable size for EventResize.
type Event struct {
	Type   EventType
	Key    Key
	DX, DY float32
	Width  int
	Height int
}

// DefaultBusSize is the event capacity used by the application.
const DefaultBusSize = 256

// Bus carries events from the window thread to the render thread. Publishing
// never blocks and never loses a key release: mouse motion is summed in
// place, and key or resize events that find the queue full are merged into
// a per-key final state that the next Drain applies after the queued events.
type Bus struct {
	events chan Event

	mu         sync.Mutex
	dx, dy     float32
	spilling   bool
	spillKeys  map[Key]spilled
	spillSize  *Event
	overflowed atomic.Uint64
}

// spilled is the merged effect of overflow events for one key.
type spilled struct {
	down bool // state after the last event
	went bool // at least one key-down was merged
}

// NewBus creates a bus queuing up to size pending key and resize events.
func NewBus(size int) *Bus {
	if size < 1 {
		size = 1
	}
	return &Bus{events: make(chan Event, size), spillKeys: make(map[Key]spilled)}
}

// Publish hands e to the render side. It returns false when the queue was
// full and e was merged instead of queued.
func (b *Bus) Publish(e Event) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Type == EventMouseMove {
		b.dx += e.DX
		b.dy += e.DY
		return true
	}
	// Once spilling, later events also spill so they stay behind the merged ones
	if !b.spilling {
		select {
		case b.events <- e:
			return true
		default:
			b.spilling = true
		}
	}
	b.overflowed.Add(1)
	switch e.Type {
	case EventKeyDown:
		b.spillKeys[e.Key] = spilled{down: true, went: true}
	case EventKeyUp:
		sk := b.spillKeys[e.Key]
		sk.down = false
		b.spillKeys[e.Key] = sk
	case EventResize:
		ev := e
		b.spillSize = &ev
	}
	return false
}

// Overflowed returns how many events found the queue full and were merged.
func (b *Bus) Overflowed() uint64 {
	return b.overflowed.Load()
}

// Drain applies every pending event to s and returns how many were consumed.
// It does not wait for new events.
func (b *Bus) Drain(s *State) int {
	n := 0
	for done := false; !done; {
		select {
		case e := <-b.events:
			s.Apply(e)
			n++
		default:
			done = true
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dx != 0 || b.dy != 0 {
		s.Apply(Event{Type: EventMouseMove, DX: b.dx, DY: b.dy})
		b.dx, b.dy = 0, 0
		n++
	}
	if !b.spilling {
		return n
	}
	for k, sk := range b.spillKeys {
		if sk.went {
			s.Apply(Event{Type: EventKeyDown, Key: k})
		}
		if !sk.down {
			s.Apply(Event{Type: EventKeyUp, Key: k})
		}
		n++
	}
	if b.spillSize != nil {
		s.Apply(*b.spillSize)
		b.spillSize = nil
		n++
	}
	clear(b.spillKeys)
	b.spilling = false
	return n
}
