// Package config loads and validates tracker configuration.
//
// A Config is a flat JSON document with snake_case keys. Default returns the
// values the tracker was tuned with; Load overlays a file on top of them, so
// a partial file only needs the keys it changes.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/tracking"
)

// DefaultConfigPath is the checked-in copy of Default().
const DefaultConfigPath = "config/tracker.defaults.json"

// maxFileSize caps config files at 1MB.
const maxFileSize = 1 * 1024 * 1024

// Bounds are world-space half extents on the horizontal plane.
type Bounds struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Config is the complete tracker configuration.
type Config struct {
	// Camera
	CameraWidth  int    `json:"camera_width"`
	CameraHeight int    `json:"camera_height"`
	CameraFPS    int    `json:"camera_fps"`
	CameraDevice string `json:"camera_device,omitempty"` // empty selects the first device

	// Detection
	MinAreaSize             int                     `json:"min_area_size"`
	ColorThreshold          int                     `json:"color_threshold"`
	ColorDominanceThreshold int                     `json:"color_dominance_threshold"`
	BlackThreshold          int                     `json:"black_threshold"`
	TrackingColor           detection.TrackingColor `json:"tracking_color"`
	Downscale               int                     `json:"downscale"`
	BlurRadius              float64                 `json:"blur_radius"`

	// Movement
	MovementSpeed        float64 `json:"movement_speed"`
	ScreenBounds         Bounds  `json:"screen_bounds"`
	MinY                 float64 `json:"min_y"`
	SurfaceY             float64 `json:"surface_y"`
	MaxY                 float64 `json:"max_y"`
	MinAreaPixels        int     `json:"min_area_pixels"`
	SurfaceAreaPixels    int     `json:"surface_area_pixels"`
	MaxAreaPixels        int     `json:"max_area_pixels"`
	AreaUnit             int     `json:"area_unit"`
	YOffsetCompensation  float64 `json:"y_offset_compensation"`
	XZOffsetCompensation float64 `json:"xz_offset_compensation"`

	// Debounce and smoothing
	PositionUpdateInterval float64 `json:"position_update_interval"` // seconds
	MinMovementThreshold   float64 `json:"min_movement_threshold"`
	PositionSmoothing      float64 `json:"position_smoothing"`
	AreaSmoothing          float64 `json:"area_smoothing"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info"`
}

// Default returns the tuned default configuration.
func Default() *Config {
	return &Config{
		CameraWidth:  640,
		CameraHeight: 480,
		CameraFPS:    30,

		MinAreaSize:             9,
		ColorThreshold:          100,
		ColorDominanceThreshold: 50,
		BlackThreshold:          30,
		TrackingColor:           detection.Auto,
		Downscale:               1,
		BlurRadius:              0,

		MovementSpeed:        5,
		ScreenBounds:         Bounds{X: 5, Z: 5},
		MinY:                 0,
		SurfaceY:             1.5,
		MaxY:                 5,
		MinAreaPixels:        9,
		SurfaceAreaPixels:    40,
		MaxAreaPixels:        100,
		AreaUnit:             1000,
		YOffsetCompensation:  0.1,
		XZOffsetCompensation: 0.4,

		PositionUpdateInterval: 0.05,
		MinMovementThreshold:   0.01,
		PositionSmoothing:      0.5,
		AreaSmoothing:          0.5,

		ShowDebugInfo: true,
	}
}

// Load reads a Config from a JSON file.
// The file must have a .json extension and be under 1MB. Keys omitted from
// the file keep their Default values.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable. All problems are
// reported together.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	floats := map[string]float64{
		"blur_radius":              c.BlurRadius,
		"movement_speed":           c.MovementSpeed,
		"screen_bounds.x":          c.ScreenBounds.X,
		"screen_bounds.z":          c.ScreenBounds.Z,
		"min_y":                    c.MinY,
		"surface_y":                c.SurfaceY,
		"max_y":                    c.MaxY,
		"y_offset_compensation":    c.YOffsetCompensation,
		"xz_offset_compensation":   c.XZOffsetCompensation,
		"position_update_interval": c.PositionUpdateInterval,
		"min_movement_threshold":   c.MinMovementThreshold,
		"position_smoothing":       c.PositionSmoothing,
		"area_smoothing":           c.AreaSmoothing,
	}
	for _, name := range slices.Sorted(maps.Keys(floats)) {
		v := floats[name]
		check(!math.IsNaN(v) && !math.IsInf(v, 0), "%s must be finite, got %v", name, v)
	}

	check(c.CameraWidth > 0 && c.CameraHeight > 0,
		"camera size must be positive, got %dx%d", c.CameraWidth, c.CameraHeight)
	check(c.CameraFPS > 0, "camera_fps must be positive, got %d", c.CameraFPS)

	check(c.MinAreaSize >= 1, "min_area_size must be at least 1, got %d", c.MinAreaSize)
	channels := map[string]int{
		"black_threshold":           c.BlackThreshold,
		"color_dominance_threshold": c.ColorDominanceThreshold,
		"color_threshold":           c.ColorThreshold,
	}
	for _, name := range slices.Sorted(maps.Keys(channels)) {
		v := channels[name]
		check(v >= 0 && v <= 255, "%s must be between 0 and 255, got %d", name, v)
	}
	check(c.TrackingColor >= detection.Red && c.TrackingColor <= detection.Auto,
		"invalid tracking_color %d", int(c.TrackingColor))
	check(c.Downscale >= 1, "downscale must be at least 1, got %d", c.Downscale)
	check(c.BlurRadius >= 0, "blur_radius must be non-negative, got %f", c.BlurRadius)

	check(c.MovementSpeed >= 0, "movement_speed must be non-negative, got %f", c.MovementSpeed)
	check(c.ScreenBounds.X > 0 && c.ScreenBounds.Z > 0,
		"screen_bounds must be positive, got (%f, %f)", c.ScreenBounds.X, c.ScreenBounds.Z)
	check(c.MinY <= c.SurfaceY && c.SurfaceY <= c.MaxY && c.MinY < c.MaxY,
		"y bounds must satisfy min_y <= surface_y <= max_y and min_y < max_y, got %f/%f/%f",
		c.MinY, c.SurfaceY, c.MaxY)
	check(c.MinAreaPixels > 0 && c.MinAreaPixels < c.SurfaceAreaPixels && c.SurfaceAreaPixels < c.MaxAreaPixels,
		"area breakpoints must satisfy 0 < min < surface < max, got %d/%d/%d",
		c.MinAreaPixels, c.SurfaceAreaPixels, c.MaxAreaPixels)
	check(c.AreaUnit > 0, "area_unit must be positive, got %d", c.AreaUnit)
	check(c.YOffsetCompensation >= 0, "y_offset_compensation must be non-negative, got %f", c.YOffsetCompensation)
	check(c.XZOffsetCompensation >= 0, "xz_offset_compensation must be non-negative, got %f", c.XZOffsetCompensation)

	check(c.PositionUpdateInterval >= 0,
		"position_update_interval must be non-negative, got %f", c.PositionUpdateInterval)
	check(c.MinMovementThreshold >= 0,
		"min_movement_threshold must be non-negative, got %f", c.MinMovementThreshold)
	check(c.PositionSmoothing >= 0 && c.PositionSmoothing < 1,
		"position_smoothing must be in [0,1), got %f", c.PositionSmoothing)
	check(c.AreaSmoothing >= 0 && c.AreaSmoothing < 1,
		"area_smoothing must be in [0,1), got %f", c.AreaSmoothing)

	return errors.Join(errs...)
}

// Thresholds returns the pixel classifier thresholds.
func (c *Config) Thresholds() detection.Thresholds {
	return detection.Thresholds{
		Brightness: c.ColorThreshold,
		Dominance:  c.ColorDominanceThreshold,
		Black:      c.BlackThreshold,
	}
}

// GateConfig returns the update gate parameters.
func (c *Config) GateConfig() tracking.GateConfig {
	return tracking.GateConfig{
		Interval:    c.PositionUpdateInterval,
		MinMovement: c.MinMovementThreshold,
	}
}

// SmoothingConfig returns the temporal smoother factors.
func (c *Config) SmoothingConfig() tracking.SmoothingConfig {
	return tracking.SmoothingConfig{
		Position: c.PositionSmoothing,
		Area:     c.AreaSmoothing,
	}
}

// MappingConfig returns the position mapper parameters.
func (c *Config) MappingConfig() tracking.MappingConfig {
	return tracking.MappingConfig{
		MinY:                 c.MinY,
		SurfaceY:             c.SurfaceY,
		MaxY:                 c.MaxY,
		MinAreaPixels:        c.MinAreaPixels,
		SurfaceAreaPixels:    c.SurfaceAreaPixels,
		MaxAreaPixels:        c.MaxAreaPixels,
		AreaUnit:             c.AreaUnit,
		YOffsetCompensation:  c.YOffsetCompensation,
		XZOffsetCompensation: c.XZOffsetCompensation,
		Bounds:               r2.Vec{X: c.ScreenBounds.X, Y: c.ScreenBounds.Z},
		MovementSpeed:        c.MovementSpeed,
	}
}

// Tracking assembles the full tracker configuration.
func (c *Config) Tracking() tracking.Config {
	return tracking.Config{
		Mode:        c.TrackingColor,
		Thresholds:  c.Thresholds(),
		MinAreaSize: c.MinAreaSize,
		Prepare: imaging.PrepareOptions{
			Downscale:  c.Downscale,
			BlurRadius: c.BlurRadius,
		},
		Gate:          c.GateConfig(),
		Smoothing:     c.SmoothingConfig(),
		Mapping:       c.MappingConfig(),
		ShowDebugInfo: c.ShowDebugInfo,
	}
}
