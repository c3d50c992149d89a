// Package monitor describes display geometry and enumeration.
package monitor

// Monitor describes a display and its bounds in virtual desktop pixels.
type Monitor struct {
	Index   int
	X       int
	Y       int
	W       int
	H       int
	Primary bool
}

// Select returns the display with the 1-based index idx, or the primary
// display when idx is 0.
func Select(list []Monitor, idx int) (Monitor, bool) {
	for _, m := range list {
		if (idx == 0 && m.Primary) || (idx > 0 && m.Index == idx) {
			return m, true
		}
	}
	if idx == 0 && len(list) > 0 {
		return list[0], true
	}
	return Monitor{}, false
}

// Union returns the bounding box of every display, the virtual desktop.
func Union(list []Monitor) Monitor {
	if len(list) == 0 {
		return Monitor{}
	}
	x0, y0 := list[0].X, list[0].Y
	x1, y1 := x0+list[0].W, y0+list[0].H
	for _, m := range list[1:] {
		x0, y0 = min(x0, m.X), min(y0, m.Y)
		x1, y1 = max(x1, m.X+m.W), max(y1, m.Y+m.H)
	}
	return Monitor{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
