package detection

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Detection is the outcome of selecting a candidate region in one frame.
type Detection struct {
	// Found is true when the largest region reached the minimum area.
	Found bool `json:"found"`

	// Region is the largest region seen in the scan. It is populated even when
	// Found is false, as long as any region existed, so diagnostics can show
	// how close the scan came. Area is zero when nothing classified at all.
	Region Region `json:"region"`

	// Position is the region centroid normalized to [0,1] by the frame size.
	// Only meaningful when Found is true.
	Position r2.Vec `json:"position"`

	// Width and Height are the dimensions of the scanned frame.
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Select scans a frame for the tracking mode and picks the single largest
// region.
//
// Colors are scanned in ScanOrder(mode). The largest region is replaced only
// by a strictly larger one, so on an exact tie the earlier-scanned color wins
// (Red before Green before Blue). The winner is accepted only if its area is
// at least minArea; otherwise the result is a "no target" detection.
func (s *Scanner) Select(f *imaging.Frame, mode TrackingColor, minArea int) Detection {
	if f == nil {
		return Detection{}
	}
	d := Detection{Width: f.Width(), Height: f.Height()}

	s.Scan(f, ScanOrder(mode), func(r Region) {
		if r.Area > d.Region.Area {
			d.Region = r
		}
	})

	if d.Region.Area > 0 && d.Region.Area >= minArea {
		d.Found = true
		d.Position = d.Region.Normalized(d.Width, d.Height)
	}
	return d
}

// SelectCandidate picks the largest region from an already collected set,
// using the same strict tie rule as Scanner.Select. Regions must be in scan
// order for the tie rule to hold.
//
// Returns false if the set is empty or the largest region is below minArea.
func SelectCandidate(regions []Region, minArea int) (Region, bool) {
	var best Region
	for _, r := range regions {
		if r.Area > best.Area {
			best = r
		}
	}
	if best.Area == 0 || best.Area < minArea {
		return best, false
	}
	return best, true
}
