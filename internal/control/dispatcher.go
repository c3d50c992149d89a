package control

import "go.uber.org/zap"

// Sender delivers control messages to the remote host. Delivery is fire-and-forget:
// an error only reports that this message was not queued.
type Sender interface {
	Send(msg Message) error
}

// Dispatcher serializes forwarding decisions into messages on a Sender.
type Dispatcher struct {
	sender Sender
	log    *zap.Logger
}

// NewDispatcher returns a dispatcher writing to sender.
func NewDispatcher(sender Sender, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{sender: sender, log: log}
}

// KeyDown forwards a key press.
func (d *Dispatcher) KeyDown(key string) { d.send(NewMessage(KindKeyDown, key)) }

// KeyUp forwards a key release.
func (d *Dispatcher) KeyUp(key string) { d.send(NewMessage(KindKeyUp, key)) }

// KeyReset clears held keys on the remote keyboard.
func (d *Dispatcher) KeyReset() { d.send(NewReset(DeviceKeyboard)) }

// MouseDown forwards a button press.
func (d *Dispatcher) MouseDown(button int) { d.send(NewMessage(KindMouseDown, button)) }

// MouseUp forwards a button release.
func (d *Dispatcher) MouseUp(button int) { d.send(NewMessage(KindMouseUp, button)) }

// MouseReset clears held buttons on the remote mouse.
func (d *Dispatcher) MouseReset() { d.send(NewReset(DeviceMouse)) }

// Wheel forwards a signed wheel delta.
func (d *Dispatcher) Wheel(delta int) { d.send(NewMessage(KindWheel, delta)) }

// Move forwards a relative move.
func (d *Dispatcher) Move(dx, dy int) { d.send(NewMessage(KindMove, [2]int{dx, dy})) }

// Abs forwards an absolute position.
func (d *Dispatcher) Abs(pos AbsPos) { d.send(NewMessage(KindAbs, [2]int{pos.X, pos.Y})) }

// MoveFactor announces the relative motion scaling factor.
func (d *Dispatcher) MoveFactor(factor int) { d.send(NewMessage(KindMoveFactor, factor)) }

// Sequence types text on the remote keyboard.
func (d *Dispatcher) Sequence(text string) { d.send(NewMessage(KindSequence, text)) }

// send hands msg to the sender; failures are logged and otherwise ignored.
func (d *Dispatcher) send(msg Message) {
	if d.sender == nil {
		return
	}
	if err := d.sender.Send(msg); err != nil {
		d.log.Debug("send dropped", zap.Stringer("msg", msg), zap.Error(err))
	}
}
