package board

import (
	"fmt"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGB holds the three channel bytes of a state color.
type RGB struct {
	R, G, B uint8
}

// ParseHex decodes a six digit hex color with an optional leading '#'.
func ParseHex(hex string) (RGB, bool) {
	s := strings.TrimPrefix(hex, "#")
	if len(s) != 6 {
		return RGB{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, false
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// Dim returns a translucent CSS color for hex at the given alpha. Input that is not six
// hex digits yields a neutral gray.
func Dim(hex string, alpha float64) string {
	a := strconv.FormatFloat(alpha, 'f', -1, 64)
	c, ok := ParseHex(hex)
	if !ok {
		return "rgba(120,120,120," + a + ")"
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, a)
}

// Tint composites hex at alpha over an opaque background and returns the result as
// "#rrggbb". Terminals have no alpha channel, so this is how Dim is shown there.
func Tint(hex string, alpha float64, background string) string {
	bg, err := colorful.Hex(background)
	if err != nil {
		bg = colorful.Color{}
	}
	c, ok := ParseHex(hex)
	fg := colorful.Color{R: 120.0 / 255, G: 120.0 / 255, B: 120.0 / 255}
	if ok {
		fg = colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	}
	alpha = min(max(alpha, 0), 1)
	return bg.BlendRgb(fg, alpha).Clamped().Hex()
}
