package tracking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// center is the middle of the normalized frame.
var center = r2.Vec{X: 0.5, Y: 0.5}

// SmoothedState is the low-pass filtered view of TrackState that feeds the
// position mapper. It is updated on every tick.
type SmoothedState struct {
	// Position is the smoothed normalized position.
	Position r2.Vec `json:"position"`

	// Area is the smoothed region size in pixels, rounded to an integer.
	Area int `json:"area"`

	// CenterDistance2 is the squared distance of Position from the frame
	// center (0.5, 0.5).
	CenterDistance2 float64 `json:"center_distance2"`
}

// SmoothingConfig holds the two exponential smoothing factors.
//
// Each factor is in [0,1): 0 snaps to the committed value immediately, values
// close to 1 lag heavily.
type SmoothingConfig struct {
	Position float64 `json:"position"`
	Area     float64 `json:"area"`
}

// Apply advances s one step toward the committed state:
//
//	position ← lerp(position, committed.position, 1 − Position)
//	area     ← round(lerp(area, committed.area, 1 − Area))
//
// Area rounding is half-to-even. Because the filter always moves toward the
// committed value by a fraction of the gap, it never overshoots.
func (c SmoothingConfig) Apply(s *SmoothedState, committed TrackState) {
	s.Position = LerpVec2(s.Position, committed.Position, 1-c.Position)
	s.CenterDistance2 = r2.Norm2(r2.Sub(s.Position, center))
	s.Area = int(math.RoundToEven(Lerp(float64(s.Area), float64(committed.Area), 1-c.Area)))
}
