package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// TrackState is the last detection committed through the update gate.
//
// It is mutated only by Gate.Commit. Between commits it keeps driving the
// smoother, so a burst of rejected detections holds the target steady rather
// than dropping it.
type TrackState struct {
	// Position is the committed normalized centroid in [0,1]².
	Position r2.Vec `json:"position"`

	// Area is the committed region size in pixels.
	Area int `json:"area"`

	// CommittedAt is the tracker clock, in seconds, of the last commit.
	CommittedAt float64 `json:"committed_at"`
}

// GateConfig controls the debounce applied to detections.
type GateConfig struct {
	// Interval is the minimum number of seconds between commits.
	Interval float64 `json:"interval"`

	// MinMovement is the minimum Euclidean distance, in normalized units,
	// between a candidate and the last committed position.
	MinMovement float64 `json:"min_movement"`
}

// Allow reports whether a candidate position may be committed at time now.
//
// Both conditions must hold:
//   - now - state.CommittedAt >= Interval
//   - |candidate - state.Position| >= MinMovement
func (g GateConfig) Allow(state TrackState, candidate r2.Vec, now float64) bool {
	elapsed := now - state.CommittedAt
	moved := r2.Norm(r2.Sub(candidate, state.Position))
	return elapsed >= g.Interval && moved >= g.MinMovement
}

// Commit writes the candidate into state if Allow permits it and reports
// whether it did. On rejection state is left untouched.
func (g GateConfig) Commit(state *TrackState, candidate r2.Vec, area int, now float64) bool {
	if !g.Allow(*state, candidate, now) {
		return false
	}
	state.Position = candidate
	state.Area = area
	state.CommittedAt = now
	return true
}

// Debouncing reports whether the interval since the last commit has not yet
// elapsed. Diagnostics only; movement is not considered.
func (g GateConfig) Debouncing(state TrackState, now float64) bool {
	return now-state.CommittedAt < g.Interval
}
