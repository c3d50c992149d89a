package control

// EventKind identifies a local input or UI notification.
type EventKind string

const (
	// EventKeyDown is a key press. Key, Repeat and Shift are set.
	EventKeyDown EventKind = "keydown"
	// EventKeyUp is a key release. Key is set.
	EventKeyUp EventKind = "keyup"
	// EventMouseDown is a button press on the screen element. Button is set.
	EventMouseDown EventKind = "mousedown"
	// EventMouseUp is a button release on the screen element. Button is set.
	EventMouseUp EventKind = "mouseup"
	// EventMouseMove is pointer motion. ClientX/ClientY and MovementX/MovementY are set.
	EventMouseMove EventKind = "mousemove"
	// EventWheel is a wheel step. WheelDeltaY is set.
	EventWheel EventKind = "wheel"
	// EventFocus reports that the screen element gained focus.
	EventFocus EventKind = "focus"
	// EventBlur reports that the screen element lost focus.
	EventBlur EventKind = "blur"
	// EventPointerLockChange reports a pointer lock change. Locked is set.
	EventPointerLockChange EventKind = "pointerlockchange"
	// EventDialog opens the dialog named by Dialog, or closes it when Dialog is empty.
	EventDialog EventKind = "dialog"
	// EventPaste types Text on the remote keyboard.
	EventPaste EventKind = "paste"
)

// Button ids follow the DOM MouseEvent.button numbering.
const (
	ButtonPrimary   = 0
	ButtonMiddle    = 1
	ButtonSecondary = 2
)

// Event is a DOM-style input event or UI action.
type Event struct {
	Kind        EventKind `json:"type" yaml:"type"`
	Key         string    `json:"key,omitempty" yaml:"key,omitempty"`
	Repeat      bool      `json:"repeat,omitempty" yaml:"repeat,omitempty"`
	Shift       bool      `json:"shift,omitempty" yaml:"shift,omitempty"`
	Button      int       `json:"button,omitempty" yaml:"button,omitempty"`
	ClientX     float64   `json:"clientX,omitempty" yaml:"clientX,omitempty"`
	ClientY     float64   `json:"clientY,omitempty" yaml:"clientY,omitempty"`
	MovementX   int       `json:"movementX,omitempty" yaml:"movementX,omitempty"`
	MovementY   int       `json:"movementY,omitempty" yaml:"movementY,omitempty"`
	WheelDeltaY int       `json:"wheelDeltaY,omitempty" yaml:"wheelDeltaY,omitempty"`
	Locked      bool      `json:"locked,omitempty" yaml:"locked,omitempty"`
	Dialog      string    `json:"dialog,omitempty" yaml:"dialog,omitempty"`
	Text        string    `json:"text,omitempty" yaml:"text,omitempty"`
}
