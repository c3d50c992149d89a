package wininput

import (
	"testing"

	"github.com/frudas24/webkvm/internal/control"
	"github.com/frudas24/webkvm/internal/monitor"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SingleDisplay(t *testing.T) {
	m := monitor.Monitor{Index: 1, W: 1921, H: 1081, Primary: true}
	x, y := normalize(0, 0, m, m)
	require.Equal(t, int32(0), x)
	require.Equal(t, int32(0), y)

	x, y = normalize(control.AbsMax, control.AbsMax, m, m)
	require.Equal(t, int32(absRange), x)
	require.Equal(t, int32(absRange), y)
}

func TestNormalize_SecondDisplay(t *testing.T) {
	left := monitor.Monitor{Index: 1, W: 1001, H: 1001}
	right := monitor.Monitor{Index: 2, X: 1000, W: 1001, H: 1001}
	desk := monitor.Union([]monitor.Monitor{left, right})

	x, _ := normalize(0, 0, right, desk)
	require.InDelta(t, absRange/2, x, 1)
	x, _ = normalize(control.AbsMax, 0, right, desk)
	require.Equal(t, int32(absRange), x)
}

func TestNormalize_ClampsAndDegenerate(t *testing.T) {
	m := monitor.Monitor{W: 100, H: 100}
	x, y := normalize(-5, control.AbsMax+10, m, m)
	require.Equal(t, int32(0), x)
	require.Equal(t, int32(absRange), y)

	x, y = normalize(100, 100, monitor.Monitor{}, monitor.Monitor{})
	require.Equal(t, int32(0), x)
	require.Equal(t, int32(0), y)
}
