package detection

import (
	"fmt"
	"image/color"
	"strings"
)

// TrackingColor selects which color the tracker looks for.
type TrackingColor int

const (
	Red TrackingColor = iota
	Green
	Blue
	// Auto scans Red, Green and Blue in that order and keeps the largest region.
	Auto
)

var trackingColorNames = [...]string{"red", "green", "blue", "auto"}

// String returns the capitalized color name used in logs and diagnostics.
func (c TrackingColor) String() string {
	switch c {
	case Red:
		return "Red"
	case Green:
		return "Green"
	case Blue:
		return "Blue"
	case Auto:
		return "Auto"
	default:
		return fmt.Sprintf("TrackingColor(%d)", int(c))
	}
}

// ParseTrackingColor parses "red", "green", "blue" or "auto" (case-insensitive).
func ParseTrackingColor(s string) (TrackingColor, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range trackingColorNames {
		if n == name {
			return TrackingColor(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tracking color %q (want red, green, blue or auto)", s)
}

// MarshalText encodes the color as its lowercase name.
func (c TrackingColor) MarshalText() ([]byte, error) {
	if c < Red || c > Auto {
		return nil, fmt.Errorf("invalid tracking color %d", int(c))
	}
	return []byte(trackingColorNames[c]), nil
}

// UnmarshalText decodes a lowercase or capitalized color name.
func (c *TrackingColor) UnmarshalText(text []byte) error {
	parsed, err := ParseTrackingColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Display returns the marker color drawn for this tracking color.
// Auto has no single hue and is shown as yellow.
func (c TrackingColor) Display() color.RGBA {
	switch c {
	case Red:
		return color.RGBA{R: 255, A: 255}
	case Green:
		return color.RGBA{G: 255, A: 255}
	case Blue:
		return color.RGBA{B: 255, A: 255}
	default:
		return color.RGBA{R: 255, G: 235, B: 4, A: 255}
	}
}

// ScanOrder expands a tracking mode into the concrete colors to scan.
// Auto always expands to Red, Green, Blue in that order; the order is the
// tie-breaker when two colors produce equally large regions.
func ScanOrder(mode TrackingColor) []TrackingColor {
	if mode == Auto {
		return []TrackingColor{Red, Green, Blue}
	}
	return []TrackingColor{mode}
}

// Thresholds are the channel-value limits used by Classify. All values are in
// the 0-255 channel range.
type Thresholds struct {
	// Brightness is the minimum target channel value for the bright test.
	Brightness int `json:"brightness"`

	// Dominance is how far the target channel must exceed each other channel
	// in the bright test.
	Dominance int `json:"dominance"`

	// Black is the ceiling both non-target channels must stay under for the
	// dark-saturated test.
	Black int `json:"black"`
}

// Classify reports whether a pixel belongs to the given tracking color.
//
// Two tests are combined with OR so that both well-lit and shadowed instances
// of the color are captured:
//
//   - Bright dominant: target > Brightness, and target exceeds each other
//     channel by more than Dominance.
//   - Dark saturated: both other channels are below Black, and target is
//     strictly greater than each of them.
//
// Classify is pure. Auto, or any value other than Red/Green/Blue, never
// matches.
func Classify(r, g, b uint8, c TrackingColor, t Thresholds) bool {
	var target, o1, o2 int
	switch c {
	case Red:
		target, o1, o2 = int(r), int(g), int(b)
	case Green:
		target, o1, o2 = int(g), int(r), int(b)
	case Blue:
		target, o1, o2 = int(b), int(r), int(g)
	default:
		return false
	}

	dark := o1 < t.Black && o2 < t.Black && target > o1 && target > o2
	if dark {
		return true
	}
	return target > t.Brightness && target > o1+t.Dominance && target > o2+t.Dominance
}
