// Package hostinput applies control messages to the host's virtual keyboard and mouse.
package hostinput

import "go.uber.org/zap"

// Injector performs input on the host.
type Injector interface {
	KeyDown(key string) error
	KeyUp(key string) error
	ButtonDown(button int) error
	ButtonUp(button int) error
	Wheel(delta int) error
	MoveRel(dx, dy int) error
	MoveAbs(x, y int) error
	Type(text string) error
}

// LogInjector writes every injected action to a logger.
type LogInjector struct {
	Log *zap.Logger
}

// Ensure LogInjector implements the interface.
var _ Injector = LogInjector{}

func (l LogInjector) log(action string, fields ...zap.Field) error {
	if l.Log != nil {
		l.Log.Debug(action, fields...)
	}
	return nil
}

// KeyDown logs a key press.
func (l LogInjector) KeyDown(key string) error { return l.log("key down", zap.String("key", key)) }

// KeyUp logs a key release.
func (l LogInjector) KeyUp(key string) error { return l.log("key up", zap.String("key", key)) }

// ButtonDown logs a button press.
func (l LogInjector) ButtonDown(button int) error {
	return l.log("button down", zap.Int("button", button))
}

// ButtonUp logs a button release.
func (l LogInjector) ButtonUp(button int) error {
	return l.log("button up", zap.Int("button", button))
}

// Wheel logs a wheel step.
func (l LogInjector) Wheel(delta int) error { return l.log("wheel", zap.Int("delta", delta)) }

// MoveRel logs a relative move.
func (l LogInjector) MoveRel(dx, dy int) error {
	return l.log("move", zap.Int("dx", dx), zap.Int("dy", dy))
}

// MoveAbs logs an absolute move.
func (l LogInjector) MoveAbs(x, y int) error {
	return l.log("abs", zap.Int("x", x), zap.Int("y", y))
}

// Type logs typed text by length only.
func (l LogInjector) Type(text string) error {
	return l.log("type", zap.Int("runes", len([]rune(text))))
}
