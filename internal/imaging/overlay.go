package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/spatial/r2"
)

const (
	labelLineHeight = 8
	glyphWidth      = 4
)

var (
	gridColor  = color.RGBA{128, 0, 0, 128}
	labelColor = color.RGBA{255, 255, 255, 255}
	labelBg    = color.RGBA{0, 0, 0, 255}
)

// DebugView is a PNG rendering of the tracker's view of a frame.
type DebugView struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// Marker is the square drawn over the frame at the tracked position.
type Marker struct {
	// Position is normalized to [0,1] by the frame size, Y downward.
	Position r2.Vec
	Size     int
	Color    color.RGBA
}

// DebugViewOptions control RenderDebugView.
type DebugViewOptions struct {
	// Width scales the frame, keeping its aspect ratio. 0 keeps the frame size.
	Width int

	// GridSpacing draws a pixel grid every N output pixels. 0 disables it.
	GridSpacing int

	// Labels are printed one per line in a strip below the frame. Only
	// digits and ",.-" are drawn; other characters leave a gap.
	Labels []string
}

// RenderDebugView draws the marker over a scaled copy of the frame and
// encodes the result as PNG.
func RenderDebugView(f *Frame, m Marker, opts DebugViewOptions) (*DebugView, error) {
	if f == nil {
		return nil, errors.New("no frame to render")
	}
	if opts.Width < 0 || opts.GridSpacing < 0 {
		return nil, fmt.Errorf("invalid debug view options: width %d, grid spacing %d", opts.Width, opts.GridSpacing)
	}

	var scaled image.Image = f.Image()
	if opts.Width > 0 && opts.Width != f.Width() {
		h := int(math.Round(float64(f.Height()) * float64(opts.Width) / float64(f.Width())))
		scaled = imaging.Resize(scaled, opts.Width, max(h, 1), imaging.Box)
	}
	w, h := scaled.Bounds().Dx(), scaled.Bounds().Dy()

	out := image.NewRGBA(image.Rect(0, 0, w, h+len(opts.Labels)*labelLineHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(labelBg), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(0, 0, w, h), scaled, scaled.Bounds().Min, draw.Src)

	if opts.GridSpacing > 0 {
		for x := opts.GridSpacing; x < w; x += opts.GridSpacing {
			for y := 0; y < h; y++ {
				out.Set(x, y, gridColor)
			}
		}
		for y := opts.GridSpacing; y < h; y += opts.GridSpacing {
			for x := 0; x < w; x++ {
				out.Set(x, y, gridColor)
			}
		}
	}

	cx := int(math.Round(m.Position.X * float64(w)))
	cy := int(math.Round(m.Position.Y * float64(h)))
	half := m.Size / 2
	marker := image.Rect(cx-half, cy-half, cx-half+m.Size, cy-half+m.Size).Intersect(image.Rect(0, 0, w, h))
	draw.Draw(out, marker, image.NewUniform(m.Color), image.Point{}, draw.Src)

	for i, text := range opts.Labels {
		drawLabel(out, 1, h+1+i*labelLineHeight, text)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode debug view: %w", err)
	}

	return &DebugView{
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
	}, nil
}

// 3x5 pixel font
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
	'.': {"000", "000", "000", "000", "010"},
	'-': {"000", "000", "111", "000", "000"},
}

// drawLabel prints text with its top-left corner at (x, y), clipped to img.
func drawLabel(img *image.RGBA, x, y int, text string) {
	bounds := img.Bounds()
	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				p := image.Pt(cx+col, y+row)
				if pixel == '1' && p.In(bounds) {
					img.SetRGBA(p.X, p.Y, labelColor)
				}
			}
		}
		cx += glyphWidth
	}
}
