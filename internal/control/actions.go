package control

// Kind identifies a control message sent to the remote host.
type Kind string

const (
	// KindKeyDown presses a key.
	KindKeyDown Kind = "keydown"
	// KindKeyUp releases a key.
	KindKeyUp Kind = "keyup"
	// KindReset clears held keys or buttons on the device named by the message.
	KindReset Kind = "reset"
	// KindMouseDown presses a mouse button.
	KindMouseDown Kind = "mousedown"
	// KindMouseUp releases a mouse button.
	KindMouseUp Kind = "mouseup"
	// KindWheel scrolls by a signed delta.
	KindWheel Kind = "wheel"
	// KindMove moves the pointer by a relative [dx, dy].
	KindMove Kind = "move"
	// KindAbs warps the pointer to an absolute [x, y] in [0, AbsMax].
	KindAbs Kind = "abs"
	// KindMoveFactor configures the relative motion scaling factor.
	KindMoveFactor Kind = "config-move-factor"
	// KindSequence types a text sequence.
	KindSequence Kind = "sequence"
)

// Device names the input device a message targets.
type Device string

const (
	// DeviceKeyboard targets the keyboard.
	DeviceKeyboard Device = "keyboard"
	// DeviceMouse targets the mouse.
	DeviceMouse Device = "mouse"
)

// deviceOf returns the device a message kind belongs to.
func deviceOf(k Kind) Device {
	switch k {
	case KindKeyDown, KindKeyUp, KindSequence:
		return DeviceKeyboard
	default:
		return DeviceMouse
	}
}
