package core

import "fmt"

// Color is a 24-bit foreground color for a screen cell.
// The zero value means "terminal default" so cleared cells carry no styling.
type Color uint32

// colorSet marks a Color as explicitly set; black is a valid color.
const colorSet Color = 1 << 24

// RGB packs 8-bit channels into a Color.
func RGB(r, g, b uint8) Color {
	return colorSet | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// RGBf packs [0,1] float channels into a Color, clamping out-of-range values.
func RGBf(r, g, b float64) Color {
	return RGB(unit8(r), unit8(g), unit8(b))
}

func unit8(v float64) uint8 {
	return uint8(min(max(v, 0), 1)*255 + 0.5)
}

// Predefined colors for HUD and scene elements.
var (
	ColorDefault     Color = 0
	ColorWhite             = RGB(0xe6, 0xe6, 0xe6)
	ColorGray              = RGB(0x8a, 0x8a, 0x8a)
	ColorDim               = RGB(0x4a, 0x4a, 0x55)
	ColorYellow            = RGB(0xfd, 0xb8, 0x13)
	ColorCyan              = RGB(0x5f, 0xd7, 0xff)
	ColorRed               = RGB(0xff, 0x5f, 0x5f)
	ColorGreen             = RGB(0x87, 0xd7, 0x87)
	ColorOrange            = RGB(0xff, 0x87, 0x00)
	ColorBrightWhite       = RGB(0xff, 0xff, 0xff)
)

// IsDefault reports whether the color is the terminal default.
func (c Color) IsDefault() bool {
	return c&colorSet == 0
}

// Components returns the 8-bit channels.
func (c Color) Components() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns the color as "#rrggbb", or "" for the default color.
func (c Color) Hex() string {
	if c.IsDefault() {
		return ""
	}
	r, g, b := c.Components()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
