package imaging

import (
	"fmt"
	"image/color"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// Swatch describes a color in the formats shown on the diagnostics surface.
type Swatch struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB" (no alpha)
	RGB RGBColor `json:"rgb"`
	HSL HSLColor `json:"hsl"`
}

// SwatchOf converts any color to a Swatch.
//
// Conversion goes through go-colorful, which un-premultiplies alpha. A fully
// transparent color has no meaningful RGB and is reported as black.
func SwatchOf(c color.Color) Swatch {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		cf = colorful.Color{}
	}
	r, g, b := cf.RGB255()
	h, s, l := cf.Hsl()
	if math.IsNaN(h) {
		h = 0
	}
	return Swatch{
		Hex: fmt.Sprintf("#%02X%02X%02X", r, g, b),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: HSLColor{
			H: int(h),
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}
}

// SampleColor returns the swatch of the pixel at (x, y).
//
// Returns an error if the coordinates are outside the frame.
func SampleColor(f *Frame, x, y int) (*Swatch, error) {
	if x < 0 || y < 0 || x >= f.Width() || y >= f.Height() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside frame bounds", x, y)
	}
	r, g, b := f.RGB(x, y)
	s := SwatchOf(color.RGBA{R: r, G: g, B: b, A: 255})
	return &s, nil
}
