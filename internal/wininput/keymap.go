// Package wininput injects host input through the Windows SendInput API.
package wininput

import "strings"

// keyCode is a Windows virtual-key code and whether it needs the extended flag.
type keyCode struct {
	vk       uint16
	extended bool
}

var namedKeys = map[string]keyCode{
	"Backspace":   {vk: 0x08},
	"Tab":         {vk: 0x09},
	"Enter":       {vk: 0x0D},
	"Shift":       {vk: 0x10},
	"Control":     {vk: 0x11},
	"Alt":         {vk: 0x12},
	"Pause":       {vk: 0x13},
	"CapsLock":    {vk: 0x14},
	"Escape":      {vk: 0x1B},
	" ":           {vk: 0x20},
	"PageUp":      {vk: 0x21, extended: true},
	"PageDown":    {vk: 0x22, extended: true},
	"End":         {vk: 0x23, extended: true},
	"Home":        {vk: 0x24, extended: true},
	"ArrowLeft":   {vk: 0x25, extended: true},
	"ArrowUp":     {vk: 0x26, extended: true},
	"ArrowRight":  {vk: 0x27, extended: true},
	"ArrowDown":   {vk: 0x28, extended: true},
	"PrintScreen": {vk: 0x2C},
	"Insert":      {vk: 0x2D, extended: true},
	"Delete":      {vk: 0x2E, extended: true},
	"Meta":        {vk: 0x5B, extended: true},
	"ContextMenu": {vk: 0x5D, extended: true},
	"NumLock":     {vk: 0x90},
	"ScrollLock":  {vk: 0x91},
}

// virtualKey resolves a key name to a virtual-key code. Letters and digits map
// to their own codes and F1-F24 to the function keys; other single characters
// are not resolved and must be typed as Unicode.
func virtualKey(key string) (keyCode, bool) {
	if kc, ok := namedKeys[key]; ok {
		return kc, true
	}
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return keyCode{vk: uint16(c - 'a' + 'A')}, true
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return keyCode{vk: uint16(c)}, true
		}
		return keyCode{}, false
	}
	if n, ok := strings.CutPrefix(key, "F"); ok && len(n) > 0 && len(n) <= 2 {
		num := 0
		for _, d := range n {
			if d < '0' || d > '9' {
				return keyCode{}, false
			}
			num = num*10 + int(d-'0')
		}
		if num >= 1 && num <= 24 {
			return keyCode{vk: uint16(0x70 + num - 1)}, true
		}
	}
	return keyCode{}, false
}
