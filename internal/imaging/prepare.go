package imaging

import (
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"
)

// PrepareOptions controls the optional filtering applied to a frame snapshot
// before it is scanned for color regions.
type PrepareOptions struct {
	// Downscale is an integer reduction factor. Values <= 1 leave the frame at
	// full resolution. A factor of 2 halves both dimensions, which cuts the
	// scan cost by four.
	Downscale int

	// BlurRadius is the Gaussian blur radius in pixels. Zero disables blurring.
	BlurRadius float64
}

// Prepare applies the configured downscale and blur to a frame.
//
// Returns the input frame unchanged when no filtering is configured, so the
// common path does not allocate.
//
// # Pipeline
//
//  1. Downscale with a box filter (disintegration/imaging). Box averaging keeps
//     saturated blobs saturated, which matters for the dominance test.
//  2. Gaussian blur (bild/blur) to suppress single-pixel sensor noise.
func Prepare(f *Frame, opts PrepareOptions) *Frame {
	if f == nil {
		return nil
	}
	out := f
	if opts.Downscale > 1 {
		out = Downscale(out, opts.Downscale)
	}
	if opts.BlurRadius > 0 {
		out = &Frame{img: blur.Gaussian(out.img, opts.BlurRadius)}
	}
	return out
}

// Downscale shrinks a frame by an integer factor using box filtering.
//
// The result is never smaller than 1x1.
func Downscale(f *Frame, factor int) *Frame {
	if factor <= 1 {
		return f
	}
	w := f.Width() / factor
	h := f.Height() / factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return FromImage(imaging.Resize(f.img, w, h, imaging.Box))
}
