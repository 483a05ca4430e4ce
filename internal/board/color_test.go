package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDim(t *testing.T) {
	tests := []struct {
		name  string
		hex   string
		alpha float64
		want  string
	}{
		{"with prefix", "#336699", 0.5, "rgba(51, 102, 153, 0.5)"},
		{"without prefix", "336699", 0.2, "rgba(51, 102, 153, 0.2)"},
		{"column background", "#00ff00", 0.08, "rgba(0, 255, 0, 0.08)"},
		{"short input", "xyz", 0.5, "rgba(120,120,120,0.5)"},
		{"three digit shorthand", "#fff", 1, "rgba(120,120,120,1)"},
		{"non hex digits", "#zzzzzz", 0.5, "rgba(120,120,120,0.5)"},
		{"empty", "", 0, "rgba(120,120,120,0)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Dim(tt.hex, tt.alpha))
		})
	}
}

func TestParseHexChannels(t *testing.T) {
	c, ok := ParseHex("#336699")
	require.True(t, ok)
	require.Equal(t, RGB{R: 51, G: 102, B: 153}, c)

	_, ok = ParseHex("#3366990")
	require.False(t, ok)
}

func TestTint(t *testing.T) {
	require.Equal(t, "#ffffff", Tint("#ffffff", 1, "#000000"))
	require.Equal(t, "#000000", Tint("#ffffff", 0, "#000000"))
	require.Equal(t, "#787878", Tint("bogus", 1, "#000000"))
}
