package control

import (
	"errors"
	"sync"
)

// ErrLockDenied is returned when the surface refuses a pointer lock request.
var ErrLockDenied = errors.New("pointer lock denied")

// Surface is the screen element the stream is rendered in.
type Surface interface {
	// Viewport returns the current rendering size.
	Viewport() Viewport
	// Focus asks for keyboard focus; success is reported with an EventFocus.
	Focus()
	// Blur drops keyboard focus; reported with an EventBlur.
	Blur()
	// RequestPointerLock asks for pointer lock; success is reported with an
	// EventPointerLockChange.
	RequestPointerLock() error
	// ExitPointerLock releases the pointer lock.
	ExitPointerLock()
}

// Notifier is implemented by surfaces that report focus and lock changes through a callback.
type Notifier interface {
	SetNotifier(fn func(Event))
}

// Mirror is implemented by surfaces that track focus and lock themselves. The controller
// hands every focus, blur and lock notification to Mirror before acting on it, so a
// notification that did not originate from the surface still updates its state.
type Mirror interface {
	Mirror(ev Event)
}

// HeadlessSurface is an in-memory Surface that reports state changes synchronously.
type HeadlessSurface struct {
	mu       sync.Mutex
	viewport Viewport
	focused  bool
	locked   bool
	denyLock bool
	notify   func(Event)
}

// NewHeadlessSurface returns a headless surface of the given size.
func NewHeadlessSurface(vp Viewport) *HeadlessSurface {
	return &HeadlessSurface{viewport: vp}
}

// SetNotifier installs the callback receiving focus, blur and lock notifications.
func (h *HeadlessSurface) SetNotifier(fn func(Event)) {
	h.mu.Lock()
	h.notify = fn
	h.mu.Unlock()
}

// SetViewport resizes the surface.
func (h *HeadlessSurface) SetViewport(vp Viewport) {
	h.mu.Lock()
	h.viewport = vp
	h.mu.Unlock()
}

// DenyPointerLock makes subsequent lock requests fail.
func (h *HeadlessSurface) DenyPointerLock(deny bool) {
	h.mu.Lock()
	h.denyLock = deny
	h.mu.Unlock()
}

// Mirror adopts the focus and lock state a notification reports, without notifying.
// A blur leaves the lock for the controller to exit.
func (h *HeadlessSurface) Mirror(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch ev.Kind {
	case EventFocus:
		h.focused = true
	case EventBlur:
		h.focused = false
	case EventPointerLockChange:
		h.locked = ev.Locked
	}
}

// State reports whether the surface holds focus and pointer lock.
func (h *HeadlessSurface) State() (focused, locked bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.focused, h.locked
}

// Viewport returns the current size.
func (h *HeadlessSurface) Viewport() Viewport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.viewport
}

// Focus marks the surface focused.
func (h *HeadlessSurface) Focus() {
	h.mu.Lock()
	if h.focused {
		h.mu.Unlock()
		return
	}
	h.focused = true
	fn := h.notify
	h.mu.Unlock()
	emit(fn, Event{Kind: EventFocus})
}

// Blur marks the surface unfocused, releasing any pointer lock first.
func (h *HeadlessSurface) Blur() {
	h.ExitPointerLock()
	h.mu.Lock()
	if !h.focused {
		h.mu.Unlock()
		return
	}
	h.focused = false
	fn := h.notify
	h.mu.Unlock()
	emit(fn, Event{Kind: EventBlur})
}

// RequestPointerLock locks the pointer unless denied or the surface is unfocused.
func (h *HeadlessSurface) RequestPointerLock() error {
	h.mu.Lock()
	if h.denyLock || !h.focused {
		h.mu.Unlock()
		return ErrLockDenied
	}
	if h.locked {
		h.mu.Unlock()
		return nil
	}
	h.locked = true
	fn := h.notify
	h.mu.Unlock()
	emit(fn, Event{Kind: EventPointerLockChange, Locked: true})
	return nil
}

// ExitPointerLock releases the pointer lock.
func (h *HeadlessSurface) ExitPointerLock() {
	h.mu.Lock()
	if !h.locked {
		h.mu.Unlock()
		return
	}
	h.locked = false
	fn := h.notify
	h.mu.Unlock()
	emit(fn, Event{Kind: EventPointerLockChange, Locked: false})
}

func emit(fn func(Event), ev Event) {
	if fn != nil {
		fn(ev)
	}
}
