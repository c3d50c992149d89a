//go:build windows

package wininput

import (
	"fmt"
	"unicode/utf16"

	"github.com/frudas24/webkvm/internal/control"
	"github.com/frudas24/webkvm/internal/hostinput"
	"github.com/frudas24/webkvm/internal/monitor"
	"github.com/lxn/win"
)

const (
	keyeventfExtendedKey = 0x0001
	mouseeventfRightDown = 0x0008
	mouseeventfRightUp   = 0x0010
	mouseeventfMidDown   = 0x0020
	mouseeventfMidUp     = 0x0040
	wheelStep            = 120
)

// Injector drives the local keyboard and mouse with SendInput.
type Injector struct {
	target monitor.Monitor
	desk   monitor.Monitor
}

// Ensure Injector implements the interface.
var _ hostinput.Injector = (*Injector)(nil)

// NewInjector returns an injector whose absolute moves cover display idx
// (1-based, 0 for the primary display).
func NewInjector(idx int) (*Injector, error) {
	list, err := monitor.ListMonitors()
	if err != nil {
		return nil, err
	}
	target, ok := monitor.Select(list, idx)
	if !ok {
		return nil, fmt.Errorf("wininput: display %d not found (%d available)", idx, len(list))
	}
	return &Injector{target: target, desk: monitor.Union(list)}, nil
}

// Target returns the display absolute moves are mapped to.
func (w *Injector) Target() monitor.Monitor {
	return w.target
}

// KeyDown presses key, typing it as Unicode when it has no virtual-key code.
func (w *Injector) KeyDown(key string) error {
	return w.key(key, 0)
}

// KeyUp releases key.
func (w *Injector) KeyUp(key string) error {
	return w.key(key, win.KEYEVENTF_KEYUP)
}

func (w *Injector) key(key string, flags uint32) error {
	if kc, ok := virtualKey(key); ok {
		if kc.extended {
			flags |= keyeventfExtendedKey
		}
		return sendKeyboardInput(win.KEYBDINPUT{WVk: kc.vk, DwFlags: flags})
	}
	for _, code := range utf16.Encode([]rune(key)) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: flags | win.KEYEVENTF_UNICODE}); err != nil {
			return err
		}
	}
	return nil
}

// ButtonDown presses a mouse button.
func (w *Injector) ButtonDown(button int) error {
	switch button {
	case control.ButtonPrimary:
		return sendMouseInput(win.MOUSEEVENTF_LEFTDOWN, 0, 0, 0)
	case control.ButtonMiddle:
		return sendMouseInput(mouseeventfMidDown, 0, 0, 0)
	case control.ButtonSecondary:
		return sendMouseInput(mouseeventfRightDown, 0, 0, 0)
	}
	return fmt.Errorf("wininput: unsupported button %d", button)
}

// ButtonUp releases a mouse button.
func (w *Injector) ButtonUp(button int) error {
	switch button {
	case control.ButtonPrimary:
		return sendMouseInput(win.MOUSEEVENTF_LEFTUP, 0, 0, 0)
	case control.ButtonMiddle:
		return sendMouseInput(mouseeventfMidUp, 0, 0, 0)
	case control.ButtonSecondary:
		return sendMouseInput(mouseeventfRightUp, 0, 0, 0)
	}
	return fmt.Errorf("wininput: unsupported button %d", button)
}

// Wheel scrolls one notch in the direction of delta; positive scrolls down.
func (w *Injector) Wheel(delta int) error {
	var notch int32
	switch {
	case delta > 0:
		notch = -wheelStep
	case delta < 0:
		notch = wheelStep
	default:
		return nil
	}
	return sendMouseInput(win.MOUSEEVENTF_WHEEL, 0, 0, uint32(notch))
}

// MoveRel moves the cursor by a pixel delta.
func (w *Injector) MoveRel(dx, dy int) error {
	return sendMouseInput(win.MOUSEEVENTF_MOVE, int32(dx), int32(dy), 0)
}

// MoveAbs moves the cursor to a remote absolute position on the target display.
func (w *Injector) MoveAbs(x, y int) error {
	dx, dy := normalize(x, y, w.target, w.desk)
	flags := uint32(win.MOUSEEVENTF_MOVE | win.MOUSEEVENTF_ABSOLUTE | win.MOUSEEVENTF_VIRTUALDESK)
	return sendMouseInput(flags, dx, dy, 0)
}

// Type types text as Unicode key strokes.
func (w *Injector) Type(text string) error {
	for _, code := range utf16.Encode([]rune(text)) {
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE}); err != nil {
			return err
		}
		if err := sendKeyboardInput(win.KEYBDINPUT{WScan: code, DwFlags: win.KEYEVENTF_UNICODE | win.KEYEVENTF_KEYUP}); err != nil {
			return err
		}
	}
	return nil
}

func sendMouseInput(flags uint32, dx, dy int32, data uint32) error {
	input := win.INPUT{
		Type: win.INPUT_MOUSE,
		Mi:   win.MOUSEINPUT{Dx: dx, Dy: dy, MouseData: data, DwFlags: flags},
	}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return win.GetLastError()
	}
	return nil
}

func sendKeyboardInput(key win.KEYBDINPUT) error {
	input := win.INPUT{Type: win.INPUT_KEYBOARD, Ki: key}
	if win.SendInput(1, &input, int32(win.SizeofINPUT)) != 1 {
		return win.GetLastError()
	}
	return nil
}
