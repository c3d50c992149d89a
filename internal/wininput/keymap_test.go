package wininput

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVirtualKey(t *testing.T) {
	cases := []struct {
		key  string
		want keyCode
		ok   bool
	}{
		{"a", keyCode{vk: 'A'}, true},
		{"Z", keyCode{vk: 'Z'}, true},
		{"7", keyCode{vk: '7'}, true},
		{"Enter", keyCode{vk: 0x0D}, true},
		{" ", keyCode{vk: 0x20}, true},
		{"ArrowLeft", keyCode{vk: 0x25, extended: true}, true},
		{"F1", keyCode{vk: 0x70}, true},
		{"F12", keyCode{vk: 0x7B}, true},
		{"F24", keyCode{vk: 0x87}, true},
		{"F25", keyCode{}, false},
		{"F", keyCode{}, false},
		{"Fx", keyCode{}, false},
		{".", keyCode{}, false},
		{"é", keyCode{}, false},
		{"Unidentified", keyCode{}, false},
	}
	for _, tc := range cases {
		got, ok := virtualKey(tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		assert.Equal(t, tc.want, got, tc.key)
	}
}
