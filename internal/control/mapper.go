// Package control maps local input onto the remote screen and forwards it over the control channel.
package control

import "math"

// AbsMax is the largest absolute coordinate on either axis.
const AbsMax = 0x7fff

// Screen is the remote display resolution, fixed for the session.
type Screen struct {
	W int
	H int
}

// Viewport is the local rendering area the stream is displayed in.
type Viewport struct {
	W int
	H int
}

// AbsPos is a pointer position in the remote absolute space [0, AbsMax] on each axis.
type AbsPos struct {
	X int
	Y int
}

// Scaling selects how the stream is assumed to be laid out inside the viewport.
type Scaling int

const (
	// ScaleFit assumes the stream is scaled to the viewport with its aspect kept,
	// leaving a bar at the bottom or bars on both sides.
	ScaleFit Scaling = iota
	// ScaleNative assumes the stream is never scaled above its native height: once the
	// viewport is taller than the screen, Y is measured against the screen height and the
	// side bars are computed from the native width.
	ScaleNative
)

// String returns the flag spelling of the scaling mode.
func (s Scaling) String() string {
	if s == ScaleNative {
		return "native"
	}
	return "fit"
}

// ParseScaling returns the scaling mode for a flag value; unknown values select ScaleFit.
func ParseScaling(v string) Scaling {
	if v == "native" {
		return ScaleNative
	}
	return ScaleFit
}

// MapAbsolute converts a client position inside the viewport into remote absolute
// coordinates, excluding letterbox bars. It reports false when either geometry is
// empty, in which case the sample must be dropped.
//
// ScaleFit maps a viewport taller than the screen like any other, so its centre lands on
// the screen centre. ScaleNative applies the tall-viewport rule: Y against the screen
// height and side bars from the native width.
func MapAbsolute(clientX, clientY float64, vp Viewport, sc Screen, mode Scaling) (AbsPos, bool) {
	if vp.W <= 0 || vp.H <= 0 || sc.W <= 0 || sc.H <= 0 {
		return AbsPos{}, false
	}
	if !finite(clientX) || !finite(clientY) {
		return AbsPos{}, false
	}

	winW := float64(vp.W)
	winH := float64(vp.H)
	screenRatio := float64(sc.W) / float64(sc.H)
	winRatio := winW / winH
	native := mode == ScaleNative && vp.H > sc.H

	var y float64
	switch {
	case native:
		y = normalize(clientY, float64(sc.H))
	case winRatio < screenRatio:
		blackHeight := winH - winW/screenRatio
		span := winH - blackHeight
		if clientY > span {
			clientY = span
		}
		y = normalize(clientY, span)
	default:
		y = normalize(clientY, winH)
	}

	var x float64
	if winRatio > screenRatio {
		var blackWidth float64
		if native {
			blackWidth = winW - float64(sc.H)*screenRatio
		} else {
			blackWidth = winW - winH*screenRatio
		}
		clientX -= blackWidth / 2
		if clientX < 0 {
			clientX = 0
		}
		x = normalize(clientX, winW-blackWidth)
	} else {
		x = normalize(clientX, winW)
	}

	return AbsPos{X: clampAxis(x), Y: clampAxis(y)}, true
}

// normalize scales v against span into the absolute range, flooring the result.
func normalize(v, span float64) float64 {
	if span <= 0 {
		return 0
	}
	return math.Floor(v / span * AbsMax)
}

// clampAxis bounds a normalized value to [0, AbsMax].
func clampAxis(v float64) int {
	if v < 0 {
		return 0
	}
	if v > AbsMax {
		return AbsMax
	}
	return int(v)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
