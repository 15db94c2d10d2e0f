package tracking

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

func defaultMapping() MappingConfig {
	return MappingConfig{
		MinY:                 0,
		SurfaceY:             1.5,
		MaxY:                 5,
		MinAreaPixels:        9,
		SurfaceAreaPixels:    40,
		MaxAreaPixels:        100,
		AreaUnit:             1000,
		YOffsetCompensation:  0.1,
		XZOffsetCompensation: 0.4,
		Bounds:               r2.Vec{X: 5, Y: 5},
		MovementSpeed:        5,
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		name    string
		a, b, f float64
		want    float64
	}{
		{"start", 0, 10, 0, 0},
		{"middle", 0, 10, 0.5, 5},
		{"end", 0, 10, 1, 10},
		{"clamped above", 0, 10, 1.5, 10},
		{"clamped below", 0, 10, -1, 0},
		{"reversed", 5, -5, 0.25, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Lerp(tt.a, tt.b, tt.f), 1e-12)
		})
	}
}

func TestInverseLerp(t *testing.T) {
	assert.InDelta(t, 0.5, InverseLerp(0, 10, 5), 1e-12)
	assert.InDelta(t, 1.0, InverseLerp(0, 10, 20), 1e-12)
	assert.InDelta(t, 0.0, InverseLerp(0, 10, -3), 1e-12)
	assert.Equal(t, 0.0, InverseLerp(2, 2, 5), "degenerate range")
	assert.InDelta(t, 0.3, InverseLerp(0, 5, 1.5), 1e-12)
}

func TestGate_Allow(t *testing.T) {
	g := GateConfig{Interval: 0.05, MinMovement: 0.01}
	state := TrackState{Position: r2.Vec{X: 0.5, Y: 0.5}, Area: 9, CommittedAt: 1.0}

	tests := []struct {
		name      string
		candidate r2.Vec
		now       float64
		want      bool
	}{
		{"too soon", r2.Vec{X: 0.7, Y: 0.5}, 1.04, false},
		{"too small a move", r2.Vec{X: 0.505, Y: 0.5}, 2.0, false},
		{"both satisfied", r2.Vec{X: 0.7, Y: 0.5}, 1.05, true},
		{"diagonal move", r2.Vec{X: 0.508, Y: 0.508}, 2.0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Allow(state, tt.candidate, tt.now))
		})
	}
}

func TestGate_CommitRejectionLeavesStateUnchanged(t *testing.T) {
	g := GateConfig{Interval: 0.05, MinMovement: 0.01}
	state := TrackState{Position: r2.Vec{X: 0.25, Y: 0.75}, Area: 120, CommittedAt: 3}
	before := state

	assert.False(t, g.Commit(&state, r2.Vec{X: 0.9, Y: 0.1}, 500, 3.01))
	assert.False(t, g.Commit(&state, r2.Vec{X: 0.251, Y: 0.75}, 500, 10))

	if diff := cmp.Diff(before, state); diff != "" {
		t.Errorf("state changed on rejection (-want +got):\n%s", diff)
	}
}

func TestGate_CommitAccepts(t *testing.T) {
	g := GateConfig{Interval: 0.05, MinMovement: 0.01}
	var state TrackState

	assert.True(t, g.Commit(&state, r2.Vec{X: 0.4, Y: 0.6}, 77, 0.5))
	want := TrackState{Position: r2.Vec{X: 0.4, Y: 0.6}, Area: 77, CommittedAt: 0.5}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Errorf("unexpected state (-want +got):\n%s", diff)
	}

	assert.True(t, g.Debouncing(state, 0.52))
	assert.False(t, g.Debouncing(state, 0.55))
}

func TestSmoother_Converges(t *testing.T) {
	c := SmoothingConfig{Position: 0.5, Area: 0.5}
	s := SmoothedState{Position: center, Area: 9}
	committed := TrackState{Position: r2.Vec{X: 1, Y: 0.5}, Area: 40}

	wantAreas := []int{24, 32, 36, 38, 39}
	for i, want := range wantAreas {
		c.Apply(&s, committed)
		assert.Equal(t, want, s.Area, "tick %d", i+1)
	}
	assert.InDelta(t, 40, s.Area, 40*0.05)
	assert.InDelta(t, 1-math.Pow(0.5, 6), s.Position.X, 1e-12)
	assert.InDelta(t, 0.5, s.Position.Y, 1e-12)
}

func TestSmoother_NeverOvershoots(t *testing.T) {
	c := SmoothingConfig{Position: 0.8, Area: 0.8}
	s := SmoothedState{Position: r2.Vec{X: 0.1, Y: 0.9}, Area: 10}
	committed := TrackState{Position: r2.Vec{X: 0.6, Y: 0.2}, Area: 300}

	prev := s
	for i := 0; i < 100; i++ {
		c.Apply(&s, committed)
		assert.LessOrEqual(t, s.Area, 300)
		assert.GreaterOrEqual(t, s.Area, prev.Area)
		assert.LessOrEqual(t, s.Position.X, 0.6+1e-12)
		assert.GreaterOrEqual(t, s.Position.Y, 0.2-1e-12)

		// Each step covers at most (1 - factor) of the remaining gap.
		gap := math.Abs(committed.Position.X - prev.Position.X)
		assert.LessOrEqual(t, math.Abs(s.Position.X-prev.Position.X), 0.2*gap+1e-12)
		prev = s
	}
}

func TestSmoother_ZeroFactorSnaps(t *testing.T) {
	c := SmoothingConfig{}
	s := SmoothedState{Position: center, Area: 9}
	committed := TrackState{Position: r2.Vec{X: 0.2, Y: 0.1}, Area: 1234}

	c.Apply(&s, committed)

	assert.InDelta(t, 0.2, s.Position.X, 1e-12)
	assert.InDelta(t, 0.1, s.Position.Y, 1e-12)
	assert.Equal(t, 1234, s.Area)
	assert.InDelta(t, 0.09+0.16, s.CenterDistance2, 1e-12)
}

func TestSmoother_RoundsHalfToEven(t *testing.T) {
	c := SmoothingConfig{Area: 0.5}
	s := SmoothedState{Area: 0}
	c.Apply(&s, TrackState{Area: 5})
	assert.Equal(t, 2, s.Area, "2.5 rounds to 2")

	s = SmoothedState{Area: 0}
	c.Apply(&s, TrackState{Area: 7})
	assert.Equal(t, 4, s.Area, "3.5 rounds to 4")
}

func TestMapper_VerticalAxis(t *testing.T) {
	m := defaultMapping()

	tests := []struct {
		name string
		area int
		want float64
	}{
		{"below min breakpoint", 9, 5},
		{"at min breakpoint", 9000, 5},
		{"at surface", 40000, 1.5},
		{"at max breakpoint", 100000, 0},
		{"beyond max breakpoint", 250000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Target(SmoothedState{Position: center, Area: tt.area})
			assert.InDelta(t, tt.want, got.Y, 1e-9)
		})
	}
}

func TestMapper_ContinuousAtSurface(t *testing.T) {
	m := defaultMapping()

	below := m.Target(SmoothedState{Position: center, Area: 40000})
	above := m.Target(SmoothedState{Position: center, Area: 40001})

	assert.InDelta(t, below.Y, above.Y, 1e-3)
	assert.InDelta(t, 0, below.X, 1e-12)
	assert.InDelta(t, 0, below.Z, 1e-12)
}

func TestMapper_MonotonicInArea(t *testing.T) {
	m := defaultMapping()
	prev := math.Inf(1)
	for area := 9000; area <= 100000; area += 500 {
		y := m.Target(SmoothedState{Position: center, Area: area}).Y
		assert.LessOrEqual(t, y, prev+1e-12, "area %d", area)
		prev = y
	}
}

func TestMapper_CenterDistanceCompensation(t *testing.T) {
	m := defaultMapping()

	far := m.Target(SmoothedState{Position: r2.Vec{X: 1, Y: 0.5}, Area: 9, CenterDistance2: 0.25})
	assert.InDelta(t, 5.025, far.Y, 1e-9, "compensation is added below the surface")

	near := m.Target(SmoothedState{Position: r2.Vec{X: 1, Y: 0.5}, Area: 100000, CenterDistance2: 0.25})
	assert.InDelta(t, -0.025, near.Y, 1e-9, "compensation is subtracted above the surface")
}

func TestMapper_LateralSpread(t *testing.T) {
	m := defaultMapping()

	// Far away (area at min): lateral factor is surfaceFrac = 0.3, so the
	// offset from center is widened by 1 + 0.4*0.3.
	got := m.Target(SmoothedState{Position: r2.Vec{X: 0.75, Y: 0.5}, Area: 9})
	assert.InDelta(t, -2.8, got.X, 1e-9)
	assert.InDelta(t, 0, got.Z, 1e-9)
	assert.Greater(t, math.Abs(got.X), 2.5, "wider than a naive linear map")

	// At the surface the lateral factor is zero.
	flat := m.Target(SmoothedState{Position: r2.Vec{X: 0.75, Y: 0.5}, Area: 40000})
	assert.InDelta(t, -2.5, flat.X, 1e-9)

	// Corners clamp to the bounds; X is mirrored.
	corner := m.Target(SmoothedState{Position: r2.Vec{X: 0, Y: 0}, Area: 9})
	assert.InDelta(t, 5, corner.X, 1e-9)
	assert.InDelta(t, -5, corner.Z, 1e-9)
}

func TestMapper_Approach(t *testing.T) {
	m := defaultMapping()
	cur := r3.Vec{}
	target := r3.Vec{X: 10, Y: -4, Z: 2}

	half := m.Approach(cur, target, 0.1)
	assert.Equal(t, r3.Vec{X: 5, Y: -2, Z: 1}, half)

	assert.Equal(t, target, m.Approach(cur, target, 1), "fraction clamps at 1")
	assert.Equal(t, cur, m.Approach(cur, target, 0))
}

func TestBody(t *testing.T) {
	b := NewBody(r3.Vec{X: 1})
	assert.Equal(t, r3.Vec{X: 1}, b.Position())
	b.SetPosition(r3.Vec{Y: 2})
	assert.Equal(t, r3.Vec{Y: 2}, b.Position())
}
