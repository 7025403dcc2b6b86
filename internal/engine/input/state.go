package input

import "sort"

// State accumulates input between frames. It is owned by a single goroutine.
type State struct {
	pressed map[Key]struct{}
	went    map[Key]struct{} // went down since the last snapshot
	dx, dy  float32

	resized       bool
	width, height int
}

// NewState returns an empty state.
func NewState() *State {
	return &State{pressed: make(map[Key]struct{}), went: make(map[Key]struct{})}
}

// Apply folds one event into the state.
func (s *State) Apply(e Event) {
	switch e.Type {
	case EventKeyDown:
		if _, held := s.pressed[e.Key]; !held {
			s.went[e.Key] = struct{}{}
		}
		s.pressed[e.Key] = struct{}{}
	case EventKeyUp:
		delete(s.pressed, e.Key)
	case EventMouseMove:
		s.dx += e.DX
		s.dy += e.DY
	case EventResize:
		s.resized = true
		s.width, s.height = e.Width, e.Height
	}
}

// Pressed reports whether k is currently held.
func (s *State) Pressed(k Key) bool {
	_, ok := s.pressed[k]
	return ok
}

// NumPressed returns how many keys are held.
func (s *State) NumPressed() int {
	return len(s.pressed)
}

// Snapshot is the input view of a single frame.
type Snapshot struct {
	Keys    []Key // sorted
	MouseDX float32
	MouseDY float32
	Resized bool
	Width   int
	Height  int
	held    map[Key]struct{}
	went    map[Key]struct{}
}

// Held reports whether k was held during the frame.
func (s Snapshot) Held(k Key) bool {
	_, ok := s.held[k]
	return ok
}

// JustPressed reports whether k went down during the frame. A tap shorter
// than a frame is still seen.
func (s Snapshot) JustPressed(k Key) bool {
	_, ok := s.went[k]
	return ok
}

// Snapshot returns the frame's input and resets the accumulated mouse motion
// resize flag and key-down edges. Held keys carry over to the next frame.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Keys:    make([]Key, 0, len(s.pressed)),
		MouseDX: s.dx,
		MouseDY: s.dy,
		Resized: s.resized,
		Width:   s.width,
		Height:  s.height,
		held:    make(map[Key]struct{}, len(s.pressed)),
		went:    s.went,
	}
	for k := range s.pressed {
		snap.Keys = append(snap.Keys, k)
		snap.held[k] = struct{}{}
	}
	sort.Slice(snap.Keys, func(i, j int) bool { return snap.Keys[i] < snap.Keys[j] })

	s.went = make(map[Key]struct{})
	s.dx, s.dy = 0, 0
	s.resized = false
	return snap
}
