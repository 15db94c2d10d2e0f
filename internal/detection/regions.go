package detection

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Region is a maximal 4-connected set of pixels that all classify as one
// tracking color within a single scan.
type Region struct {
	// Color is the tracking color the region was found for.
	Color TrackingColor `json:"color"`

	// Area is the number of member pixels.
	Area int `json:"area"`

	// Centroid is the mean of the member pixel coordinates, in pixels.
	Centroid r2.Vec `json:"centroid"`

	// Seed is the first pixel of the region in scan order (row-major).
	Seed imaging.Point `json:"seed"`
}

// Normalized returns the centroid divided by the frame size, clamped to [0,1].
func (r Region) Normalized(width, height int) r2.Vec {
	if width <= 0 || height <= 0 {
		return r2.Vec{}
	}
	return r2.Vec{
		X: clamp01(r.Centroid.X / float64(width)),
		Y: clamp01(r.Centroid.Y / float64(height)),
	}
}

// Scanner finds color regions in frames.
//
// The visited bitmap and the flood-fill queue are kept between scans so that a
// steady stream of equally sized frames does not allocate. A Scanner must not
// be used by more than one goroutine at a time.
type Scanner struct {
	Thresholds Thresholds

	visited []bool
	queue   []int
}

// NewScanner creates a scanner using the given classification thresholds.
func NewScanner(t Thresholds) *Scanner {
	return &Scanner{Thresholds: t}
}

// Scan visits every region of every listed color and calls fn for each.
//
// One visited bitmap is shared across the whole pass: a pixel claimed by an
// earlier color is never revisited for a later color, so the first
// classification wins. Each pixel is enqueued at most once per pass, which
// bounds the total work at O(width × height × len(colors)) classifications
// regardless of how many regions are found.
//
// Regions are reported color by color in the order given, and within a color
// in row-major order of their seed pixel.
//
// # Algorithm
//
//  1. For each color, walk pixels in row-major order.
//  2. On an unvisited pixel that classifies, run a breadth-first flood fill
//     over up/down/left/right neighbors, marking pixels visited when they are
//     enqueued and accumulating count and coordinate sums.
//  3. Centroid = sum / count.
func (s *Scanner) Scan(f *imaging.Frame, colors []TrackingColor, fn func(Region)) {
	if f == nil {
		return
	}
	width, height := f.Width(), f.Height()
	n := width * height
	if cap(s.visited) < n {
		s.visited = make([]bool, n)
	} else {
		s.visited = s.visited[:n]
		clear(s.visited)
	}

	for _, c := range colors {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				idx := y*width + x
				if s.visited[idx] || !s.match(f, x, y, c) {
					continue
				}
				fn(s.floodFill(f, x, y, c))
			}
		}
	}
}

func (s *Scanner) match(f *imaging.Frame, x, y int, c TrackingColor) bool {
	r, g, b := f.RGB(x, y)
	return Classify(r, g, b, c, s.Thresholds)
}

// floodFill performs a breadth-first fill from a seed pixel.
//
// Uses a reusable index queue (not recursion) to avoid stack growth on large
// regions. Uses 4-connectivity: diagonal neighbors are separate regions.
func (s *Scanner) floodFill(f *imaging.Frame, startX, startY int, c TrackingColor) Region {
	width, height := f.Width(), f.Height()

	s.queue = append(s.queue[:0], startY*width+startX)
	s.visited[startY*width+startX] = true

	var sumX, sumY, area int
	for head := 0; head < len(s.queue); head++ {
		idx := s.queue[head]
		x, y := idx%width, idx/width

		sumX += x
		sumY += y
		area++

		if y > 0 {
			s.visit(f, x, y-1, c)
		}
		if y < height-1 {
			s.visit(f, x, y+1, c)
		}
		if x > 0 {
			s.visit(f, x-1, y, c)
		}
		if x < width-1 {
			s.visit(f, x+1, y, c)
		}
	}

	return Region{
		Color: c,
		Area:  area,
		Centroid: r2.Vec{
			X: float64(sumX) / float64(area),
			Y: float64(sumY) / float64(area),
		},
		Seed: imaging.Point{X: startX, Y: startY},
	}
}

func (s *Scanner) visit(f *imaging.Frame, x, y int, c TrackingColor) {
	idx := y*f.Width() + x
	if s.visited[idx] || !s.match(f, x, y, c) {
		return
	}
	s.visited[idx] = true
	s.queue = append(s.queue, idx)
}

// FindRegions returns every region of the listed colors in one pass.
//
// This is a convenience wrapper around Scanner.Scan for callers that want the
// full set; the tracker itself only keeps the largest region.
func FindRegions(f *imaging.Frame, colors []TrackingColor, t Thresholds) []Region {
	regions := make([]Region, 0)
	NewScanner(t).Scan(f, colors, func(r Region) {
		regions = append(regions, r)
	})
	return regions
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
