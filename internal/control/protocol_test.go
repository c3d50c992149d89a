package control

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestProtocol_KeyDownWire verifies the key message wire format.
func TestProtocol_KeyDownWire(t *testing.T) {
	data, err := json.Marshal(NewMessage(KindKeyDown, "a"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"keydown","device":"keyboard","payload":"a"}`, string(data))
}

// TestProtocol_MoveWire verifies relative and absolute moves encode as pairs.
func TestProtocol_MoveWire(t *testing.T) {
	data, err := json.Marshal(NewMessage(KindMove, [2]int{6, -4}))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"move","device":"mouse","payload":[6,-4]}`, string(data))

	data, err = json.Marshal(NewMessage(KindAbs, [2]int{0, AbsMax}))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"abs","device":"mouse","payload":[0,32767]}`, string(data))
}

// TestProtocol_ResetWire verifies resets carry their device.
func TestProtocol_ResetWire(t *testing.T) {
	data, err := json.Marshal(NewReset(DeviceKeyboard))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"reset","device":"keyboard","payload":""}`, string(data))

	data, err = json.Marshal(NewReset(DeviceMouse))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"reset","device":"mouse","payload":""}`, string(data))
}

// TestProtocol_DecodePayloads verifies payload accessors.
func TestProtocol_DecodePayloads(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"type":"abs","device":"mouse","payload":[120,340]}`), &msg))
	x, y, err := msg.Pair()
	require.NoError(t, err)
	require.Equal(t, 120, x)
	require.Equal(t, 340, y)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"wheel","device":"mouse","payload":-120}`), &msg))
	delta, err := msg.Int()
	require.NoError(t, err)
	require.Equal(t, -120, delta)

	require.NoError(t, json.Unmarshal([]byte(`{"type":"keyup","device":"keyboard","payload":"Enter"}`), &msg))
	key, err := msg.Key()
	require.NoError(t, err)
	require.Equal(t, "Enter", key)
}

// TestProtocol_DecodeMismatch verifies a wrong payload type is an error.
func TestProtocol_DecodeMismatch(t *testing.T) {
	msg := NewMessage(KindKeyDown, "a")
	_, _, err := msg.Pair()
	require.Error(t, err)
	_, err = msg.Int()
	require.Error(t, err)
}
