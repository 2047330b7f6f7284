package scene

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Texture is a decoded RGB image sampled with spherical UVs.
type Texture struct {
	resource

	Name   string
	Width  int
	Height int
	Pixels []colorful.Color // row-major, Width*Height
}

func (t *Texture) resourceKind() ResourceKind { return ResourceTexture }

// NewTexture wraps decoded pixels. It returns nil when the pixel count does
// not match the dimensions.
func NewTexture(name string, width, height int, pixels []colorful.Color) *Texture {
	if width <= 0 || height <= 0 || len(pixels) != width*height {
		return nil
	}
	return &Texture{Name: name, Width: width, Height: height, Pixels: pixels}
}

// Sample returns the nearest texel; u wraps, v clamps.
func (t *Texture) Sample(u, v float64) colorful.Color {
	if t == nil || len(t.Pixels) == 0 {
		return colorful.Color{}
	}
	u -= math.Floor(u)
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	x := int(u * float64(t.Width))
	y := int(v * float64(t.Height))
	if x >= t.Width {
		x = t.Width - 1
	}
	if y >= t.Height {
		y = t.Height - 1
	}
	return t.Pixels[y*t.Width+x]
}

// Average returns the mean texel color.
func (t *Texture) Average() colorful.Color {
	if t == nil || len(t.Pixels) == 0 {
		return colorful.Color{}
	}
	var r, g, b float64
	for _, p := range t.Pixels {
		r += p.R
		g += p.G
		b += p.B
	}
	n := float64(len(t.Pixels))
	return colorful.Color{R: r / n, G: g / n, B: b / n}
}
