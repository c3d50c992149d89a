package testutil

import (
	"sync"

	"github.com/frudas24/webkvm/internal/hostinput"
)

// Call records a single injected action.
type Call struct {
	Name string
	X    int
	Y    int
	Text string
}

// FakeInjector implements hostinput.Injector and records calls for tests.
type FakeInjector struct {
	mu    sync.Mutex
	calls []Call
}

// Ensure FakeInjector implements the interface.
var _ hostinput.Injector = (*FakeInjector)(nil)

func (f *FakeInjector) record(c Call) error {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (f *FakeInjector) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// KeyDown records a key press.
func (f *FakeInjector) KeyDown(key string) error { return f.record(Call{Name: "KeyDown", Text: key}) }

// KeyUp records a key release.
func (f *FakeInjector) KeyUp(key string) error { return f.record(Call{Name: "KeyUp", Text: key}) }

// ButtonDown records a button press.
func (f *FakeInjector) ButtonDown(button int) error {
	return f.record(Call{Name: "ButtonDown", X: button})
}

// ButtonUp records a button release.
func (f *FakeInjector) ButtonUp(button int) error {
	return f.record(Call{Name: "ButtonUp", X: button})
}

// Wheel records a mouse wheel delta.
func (f *FakeInjector) Wheel(delta int) error { return f.record(Call{Name: "Wheel", Y: delta}) }

// MoveRel records a relative move.
func (f *FakeInjector) MoveRel(dx, dy int) error {
	return f.record(Call{Name: "MoveRel", X: dx, Y: dy})
}

// MoveAbs records an absolute move.
func (f *FakeInjector) MoveAbs(x, y int) error {
	return f.record(Call{Name: "MoveAbs", X: x, Y: y})
}

// Type records typed text.
func (f *FakeInjector) Type(text string) error { return f.record(Call{Name: "Type", Text: text}) }
