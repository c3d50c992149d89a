package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	list := []Monitor{
		{Index: 1, W: 100, H: 100},
		{Index: 2, X: 100, W: 200, H: 200, Primary: true},
	}
	m, ok := Select(list, 1)
	require.True(t, ok)
	require.Equal(t, 1, m.Index)

	m, ok = Select(list, 0)
	require.True(t, ok)
	require.Equal(t, 2, m.Index, "0 selects the primary display")

	_, ok = Select(list, 3)
	require.False(t, ok)
}

func TestSelect_NoPrimaryFallsBackToFirst(t *testing.T) {
	m, ok := Select([]Monitor{{Index: 1, W: 10, H: 10}}, 0)
	require.True(t, ok)
	require.Equal(t, 1, m.Index)

	_, ok = Select(nil, 0)
	require.False(t, ok)
}

func TestUnion(t *testing.T) {
	list := []Monitor{
		{Index: 1, X: 0, Y: 0, W: 1920, H: 1080},
		{Index: 2, X: -1280, Y: 200, W: 1280, H: 1024},
	}
	require.Equal(t, Monitor{X: -1280, Y: 0, W: 3200, H: 1224}, Union(list))
	require.Equal(t, Monitor{}, Union(nil))
}
