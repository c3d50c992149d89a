// Package session holds the input capture state of the local viewer.
package session

import "sync"

// State is the capture state of the viewer.
type State int

const (
	// Idle forwards nothing except the focus shortcut.
	Idle State = iota
	// Capturing forwards keyboard and mouse input.
	Capturing
	// PointerLocked captures input and reports only relative motion.
	PointerLocked
)

// String returns a readable state name.
func (s State) String() string {
	switch s {
	case Capturing:
		return "capturing"
	case PointerLocked:
		return "pointer-locked"
	default:
		return "idle"
	}
}

// Snapshot represents a read-only view of the current session state.
type Snapshot struct {
	State          State
	Ctrl           bool
	Alt            bool
	Dialog         string
	ToolbarVisible bool
}

// Session holds the capture state machine. PointerLocked implies capturing and an open
// dialog implies Idle; every transition keeps both invariants.
type Session struct {
	mu             sync.RWMutex
	state          State
	ctrl           bool
	alt            bool
	dialog         string
	toolbarVisible bool
}

// New returns an idle session with the toolbar shown.
func New() *Session {
	return &Session{toolbarVisible: true}
}

// State returns the current capture state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Capturing reports whether input is being forwarded (locked or not).
func (s *Session) Capturing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != Idle
}

// Locked reports whether the pointer is locked.
func (s *Session) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == PointerLocked
}

// Capture enters Capturing from Idle, closing any open dialog first.
// It reports whether the state changed.
func (s *Session) Capture() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = ""
	if s.state != Idle {
		return false
	}
	s.state = Capturing
	return true
}

// Release returns to Idle and shows the toolbar. It reports whether the pointer was
// locked and whether the state changed.
func (s *Session) Release() (wasLocked, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolbarVisible = true
	if s.state == Idle {
		return false, false
	}
	wasLocked = s.state == PointerLocked
	s.state = Idle
	return wasLocked, true
}

// SetLocked applies a pointer-lock notification. A lock is refused while Idle.
// It reports whether the notification was accepted.
func (s *Session) SetLocked(locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if locked {
		if s.state == Idle {
			return false
		}
		s.state = PointerLocked
		return true
	}
	if s.state == PointerLocked {
		s.state = Capturing
	}
	return true
}

// OpenDialog forces Idle and records name as the active dialog. It returns the state
// held before the dialog opened.
func (s *Session) OpenDialog(name string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.state
	s.state = Idle
	s.toolbarVisible = true
	s.dialog = name
	return prev
}

// CloseDialog clears the active dialog.
func (s *Session) CloseDialog() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = ""
}

// Dialog returns the active dialog name, empty when none is open.
func (s *Session) Dialog() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dialog
}

// SetModifier tracks Control and Alt; other keys are ignored.
func (s *Session) SetModifier(key string, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch key {
	case "Control":
		s.ctrl = pressed
	case "Alt":
		s.alt = pressed
	}
}

// LockChord reports whether Control and Alt are both held.
func (s *Session) LockChord() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctrl && s.alt
}

// SetToolbarVisible shows or hides the on-screen toolbar.
func (s *Session) SetToolbarVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.toolbarVisible = visible
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		State:          s.state,
		Ctrl:           s.ctrl,
		Alt:            s.alt,
		Dialog:         s.dialog,
		ToolbarVisible: s.toolbarVisible,
	}
}
