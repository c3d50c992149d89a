package control

import (
	"encoding/json"
	"fmt"
)

// Message is a control websocket payload.
type Message struct {
	Type    Kind            `json:"type"`
	Device  Device          `json:"device"`
	Payload json.RawMessage `json:"payload"`
}

// NewMessage builds a message for kind with the given payload.
// Reset messages must use NewReset since their device is ambiguous.
func NewMessage(kind Kind, payload any) Message {
	return newMessage(kind, deviceOf(kind), payload)
}

// NewReset builds a reset message for a device.
func NewReset(device Device) Message {
	return newMessage(KindReset, device, "")
}

func newMessage(kind Kind, device Device, payload any) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = json.RawMessage(`null`)
	}
	return Message{Type: kind, Device: device, Payload: raw}
}

// Key decodes a key identifier payload.
func (m Message) Key() (string, error) {
	var key string
	if err := json.Unmarshal(m.Payload, &key); err != nil {
		return "", fmt.Errorf("%s payload: %w", m.Type, err)
	}
	return key, nil
}

// Text decodes a text sequence payload.
func (m Message) Text() (string, error) {
	return m.Key()
}

// Int decodes a numeric payload (button, wheel delta, move factor).
func (m Message) Int() (int, error) {
	var v float64
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		return 0, fmt.Errorf("%s payload: %w", m.Type, err)
	}
	return int(v), nil
}

// Pair decodes an [x, y] payload.
func (m Message) Pair() (int, int, error) {
	var v [2]float64
	if err := json.Unmarshal(m.Payload, &v); err != nil {
		return 0, 0, fmt.Errorf("%s payload: %w", m.Type, err)
	}
	return int(v[0]), int(v[1]), nil
}

// String renders the message for logs.
func (m Message) String() string {
	return fmt.Sprintf("%s/%s %s", m.Device, m.Type, string(m.Payload))
}
