package tracking

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// MappingConfig holds the parameters of the position mapper.
//
// Y bounds and area breakpoints are paired: an area at MinAreaPixels maps to
// MaxY (far away, deep), SurfaceAreaPixels maps to SurfaceY, and
// MaxAreaPixels maps to MinY (close to the camera). Area breakpoints are
// multiplied by AreaUnit before use.
type MappingConfig struct {
	MinY     float64 `json:"min_y"`
	SurfaceY float64 `json:"surface_y"`
	MaxY     float64 `json:"max_y"`

	MinAreaPixels     int `json:"min_area_pixels"`
	SurfaceAreaPixels int `json:"surface_area_pixels"`
	MaxAreaPixels     int `json:"max_area_pixels"`
	AreaUnit          int `json:"area_unit"`

	// YOffsetCompensation scales the squared center distance added to (below
	// the surface) or subtracted from (above) the mapped Y.
	YOffsetCompensation float64 `json:"y_offset_compensation"`

	// XZOffsetCompensation widens the lateral spread toward the frame edges.
	XZOffsetCompensation float64 `json:"xz_offset_compensation"`

	// Bounds are the world-space half extents: X spans [-Bounds.X, Bounds.X]
	// and Z spans [-Bounds.Y, Bounds.Y].
	Bounds r2.Vec `json:"bounds"`

	// MovementSpeed is the rate of the final exponential approach, per second.
	MovementSpeed float64 `json:"movement_speed"`
}

// surfaceArea returns the scaled area breakpoint at which Y equals SurfaceY.
func (m MappingConfig) surfaceArea() float64 {
	return float64(m.SurfaceAreaPixels) * float64(m.AreaUnit)
}

// Target maps a smoothed state to a world-space coordinate.
//
// # Vertical axis
//
// The smoothed area selects one of two branches around the surface
// breakpoint. Interpolation runs on sqrt(area) so that Y follows apparent
// linear size rather than pixel count:
//
//	area <= surface: n = invlerp(√min, √surface, √area)
//	                 Y = lerp(MaxY, SurfaceY, n) + d²·YOffsetCompensation
//	area >  surface: n = invlerp(√surface, √max, √area)
//	                 Y = lerp(SurfaceY, MinY, n) − d²·YOffsetCompensation
//
// where d² is the squared distance of the smoothed position from the frame
// center. At the center, Y is continuous across the breakpoint.
//
// # Lateral axes
//
// The branch fraction also produces a lateral factor f (surfaceFrac→0 below
// the surface, 1→surfaceFrac above). Positions are pushed away from the
// center by (1 + XZOffsetCompensation·f) before mapping into Bounds, which
// approximates perspective foreshortening: an object near the frame edge is
// further out in the world than a naive linear map suggests. X is mirrored so
// the output matches a camera facing the scene.
func (m MappingConfig) Target(s SmoothedState) r3.Vec {
	surfaceFrac := InverseLerp(m.MinY, m.MaxY, m.SurfaceY)
	unit := float64(m.AreaUnit)
	sqrtArea := math.Sqrt(float64(s.Area))
	comp := s.CenterDistance2 * m.YOffsetCompensation

	var y, lateral float64
	if float64(s.Area) <= m.surfaceArea() {
		n := InverseLerp(
			math.Sqrt(float64(m.MinAreaPixels)*unit),
			math.Sqrt(m.surfaceArea()),
			sqrtArea,
		)
		lateral = Lerp(surfaceFrac, 0, n)
		y = Lerp(m.MaxY, m.SurfaceY, n) + comp
	} else {
		n := InverseLerp(
			math.Sqrt(m.surfaceArea()),
			math.Sqrt(float64(m.MaxAreaPixels)*unit),
			sqrtArea,
		)
		lateral = Lerp(1, surfaceFrac, n)
		y = Lerp(m.SurfaceY, m.MinY, n) - comp
	}

	spread := 1 + m.XZOffsetCompensation*lateral
	tx := 0.5 + (s.Position.X-0.5)*spread
	tz := 0.5 + (s.Position.Y-0.5)*spread

	return r3.Vec{
		X: Lerp(m.Bounds.X, -m.Bounds.X, tx),
		Y: y,
		Z: Lerp(-m.Bounds.Y, m.Bounds.Y, tz),
	}
}

// Approach advances current toward target by a frame-rate independent step:
// the fraction MovementSpeed·dt, clamped to [0,1].
func (m MappingConfig) Approach(current, target r3.Vec, dt float64) r3.Vec {
	return LerpVec3(current, target, m.MovementSpeed*dt)
}
