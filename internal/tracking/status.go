package tracking

import (
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Debounce status strings reported in Snapshot.Debounce.
const (
	DebounceActive = "Debouncing"
	DebounceReady  = "Ready for update"
)

// Snapshot is a read-only copy of the tracker's diagnostic surface.
type Snapshot struct {
	SessionID string  `json:"session_id"`
	Time      float64 `json:"time"`
	Active    bool    `json:"active"`

	// HasTarget is true iff the most recent scan found an accepted region.
	// It never gates mapping.
	HasTarget bool `json:"has_target"`

	// Color is the color of the last accepted region.
	Color  detection.TrackingColor `json:"color"`
	Swatch imaging.Swatch          `json:"swatch"`

	// Position and Area are the smoothed values that drive the mapper.
	Position r2.Vec `json:"position"`
	Area     int    `json:"area"`

	Committed TrackState `json:"committed"`
	Debounce  string     `json:"debounce"`

	// Target is the sink position after the last tick, nil without a sink.
	Target *r3.Vec `json:"target,omitempty"`

	LastDetection detection.Detection `json:"last_detection"`

	Ticks   int `json:"ticks"`
	Scans   int `json:"scans"`
	Commits int `json:"commits"`
	Dropped int `json:"dropped"`
}

// Status returns the snapshot published by the last state change.
func (t *Tracker) Status() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) publish() Snapshot {
	debounce := DebounceReady
	if t.cfg.Gate.Debouncing(t.track, t.now) {
		debounce = DebounceActive
	}

	s := Snapshot{
		SessionID:     t.sessionID,
		Time:          t.now,
		Active:        t.Active(),
		HasTarget:     t.hasTarget,
		Color:         t.color,
		Swatch:        imaging.SwatchOf(t.color.Display()),
		Position:      t.smooth.Position,
		Area:          t.smooth.Area,
		Committed:     t.track,
		Debounce:      debounce,
		LastDetection: t.last,
		Ticks:         t.ticks,
		Scans:         t.scans,
		Commits:       t.commits,
		Dropped:       t.dropped,
	}
	if t.sink != nil && !t.stopped {
		p := t.sink.Position()
		s.Target = &p
	}

	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
	return s
}
