//go:build !windows

package wininput

import (
	"errors"

	"github.com/frudas24/webkvm/internal/hostinput"
	"github.com/frudas24/webkvm/internal/monitor"
)

// ErrUnsupported indicates SendInput injection is not available.
var ErrUnsupported = errors.New("wininput: only supported on Windows")

// Injector is unavailable outside Windows.
type Injector struct{}

// Ensure Injector implements the interface.
var _ hostinput.Injector = (*Injector)(nil)

// NewInjector always fails outside Windows.
func NewInjector(int) (*Injector, error) {
	return nil, ErrUnsupported
}

// Target returns the zero display.
func (*Injector) Target() monitor.Monitor { return monitor.Monitor{} }

func (*Injector) KeyDown(string) error   { return ErrUnsupported }
func (*Injector) KeyUp(string) error     { return ErrUnsupported }
func (*Injector) ButtonDown(int) error   { return ErrUnsupported }
func (*Injector) ButtonUp(int) error     { return ErrUnsupported }
func (*Injector) Wheel(int) error        { return ErrUnsupported }
func (*Injector) MoveRel(int, int) error { return ErrUnsupported }
func (*Injector) MoveAbs(int, int) error { return ErrUnsupported }
func (*Injector) Type(string) error      { return ErrUnsupported }
