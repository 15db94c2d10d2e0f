package imaging

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/clone"
)

// Point represents a 2D pixel coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Frame is a read-only snapshot of one camera frame.
//
// Pixels are stored as 8-bit RGBA in row-major order. The frame always uses a
// zero-origin coordinate system regardless of the bounds of the image it was
// built from:
//   - X: 0 to Width()-1, increasing rightward
//   - Y: 0 to Height()-1, increasing downward
//
// Alpha is carried but ignored by color classification.
type Frame struct {
	img *image.RGBA
}

// NewFrame allocates a black, fully transparent frame of the given size.
func NewFrame(width, height int) *Frame {
	return &Frame{img: image.NewRGBA(image.Rect(0, 0, width, height))}
}

// FromImage copies any image.Image into a new Frame.
//
// The source is converted with bild's clone.AsRGBA, so paletted, YCbCr and
// 16-bit images are all reduced to 8-bit RGBA. The returned frame owns its
// pixels; later writes to src are not observed.
//
// Returns nil if img is nil.
func FromImage(img image.Image) *Frame {
	if img == nil {
		return nil
	}
	rgba := clone.AsRGBA(img)
	if rgba.Rect.Min != (image.Point{}) {
		rebased := image.NewRGBA(image.Rect(0, 0, rgba.Rect.Dx(), rgba.Rect.Dy()))
		for y := 0; y < rgba.Rect.Dy(); y++ {
			src := rgba.PixOffset(rgba.Rect.Min.X, rgba.Rect.Min.Y+y)
			dst := rebased.PixOffset(0, y)
			copy(rebased.Pix[dst:dst+rgba.Rect.Dx()*4], rgba.Pix[src:src+rgba.Rect.Dx()*4])
		}
		rgba = rebased
	}
	return &Frame{img: rgba}
}

// Width returns the frame width in pixels.
func (f *Frame) Width() int { return f.img.Rect.Dx() }

// Height returns the frame height in pixels.
func (f *Frame) Height() int { return f.img.Rect.Dy() }

// RGB returns the 8-bit color channels at (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (f *Frame) RGB(x, y int) (r, g, b uint8) {
	i := y*f.img.Stride + x*4
	p := f.img.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// Set writes a pixel. Intended for building synthetic frames.
func (f *Frame) Set(x, y int, c color.Color) {
	f.img.Set(x, y, c)
}

// Fill paints the rectangle [x1,x2) x [y1,y2) with c, clipped to the frame.
func (f *Frame) Fill(x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(f.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			f.img.Set(x, y, c)
		}
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	cp := image.NewRGBA(f.img.Rect)
	copy(cp.Pix, f.img.Pix)
	return &Frame{img: cp}
}

// Image exposes the underlying pixels as an image.Image.
func (f *Frame) Image() image.Image { return f.img }
