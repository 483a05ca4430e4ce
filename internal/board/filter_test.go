package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterStateSetAndClear(t *testing.T) {
	var f FilterState

	_, ok := f.Get()
	require.False(t, ok)

	require.True(t, f.Set("m1"))
	id, ok := f.Get()
	require.True(t, ok)
	require.Equal(t, "m1", id)
	require.False(t, f.Set("m1"))

	require.True(t, f.Set(""))
	_, ok = f.Get()
	require.False(t, ok)

	f.Set("m2")
	f.Clear()
	require.Equal(t, Filter{}, f.Snapshot())
}

func TestFilterMatches(t *testing.T) {
	require.True(t, Filter{}.Matches("", false))
	require.True(t, Filter{}.Matches("m1", true))
	require.True(t, Filter{ModuleID: "m1"}.Matches("m1", true))
	require.False(t, Filter{ModuleID: "m1"}.Matches("m2", true))
	require.False(t, Filter{ModuleID: "m1"}.Matches("", false))
}
