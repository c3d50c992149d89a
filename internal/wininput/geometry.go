package wininput

import (
	"github.com/frudas24/webkvm/internal/control"
	"github.com/frudas24/webkvm/internal/monitor"
)

// absRange is the normalized coordinate span SendInput expects.
const absRange = 65535

// normalize maps a remote absolute position onto target and expresses it in
// SendInput's 0..65535 space across desk, the virtual desktop.
func normalize(x, y int, target, desk monitor.Monitor) (int32, int32) {
	px := target.X + scale(x, target.W)
	py := target.Y + scale(y, target.H)
	return toDesk(px, desk.X, desk.W), toDesk(py, desk.Y, desk.H)
}

// scale maps v in [0, AbsMax] to a pixel offset in [0, span-1].
func scale(v, span int) int {
	if span <= 1 {
		return 0
	}
	v = min(max(v, 0), control.AbsMax)
	return int(int64(v) * int64(span-1) / control.AbsMax)
}

func toDesk(p, origin, span int) int32 {
	if span <= 1 {
		return 0
	}
	n := int64(p-origin) * absRange / int64(span-1)
	return int32(min(max(n, 0), absRange))
}
