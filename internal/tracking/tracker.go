package tracking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/monitoring"
)

var (
	// ErrNoFrameSource is returned by New when no frame source is supplied.
	// The tracker cannot operate without one.
	ErrNoFrameSource = errors.New("tracking: no frame source configured")

	// ErrStopped is returned by Start after Stop has been called.
	ErrStopped = errors.New("tracking: tracker stopped")
)

// FrameSource provides camera frames.
type FrameSource interface {
	// Start acquires the capture device.
	Start(ctx context.Context) error

	// Stop releases the capture device. No frames are produced afterwards.
	Stop() error

	// Active reports whether frames are being produced.
	Active() bool

	// Frame returns the most recent frame, or false if none is available.
	// The frame may be reused by the source after the next call.
	Frame() (*imaging.Frame, bool)

	// Size returns the frame dimensions in pixels.
	Size() (width, height int)

	// FPS returns the target frame rate.
	FPS() int
}

// TargetSink is the external object moved by the tracker.
type TargetSink interface {
	Position() r3.Vec
	SetPosition(r3.Vec)
}

// Commit is a detection accepted by the update gate.
type Commit struct {
	SessionID string                  `json:"session_id"`
	Time      float64                 `json:"time"`
	Position  r2.Vec                  `json:"position"`
	Area      int                     `json:"area"`
	Color     detection.TrackingColor `json:"color"`
}

// CommitRecorder persists gate commits.
type CommitRecorder interface {
	RecordCommit(ctx context.Context, c Commit) error
}

// Config groups the parameters of every tracker stage.
type Config struct {
	Mode        detection.TrackingColor
	Thresholds  detection.Thresholds
	MinAreaSize int
	Prepare     imaging.PrepareOptions
	Gate        GateConfig
	Smoothing   SmoothingConfig
	Mapping     MappingConfig

	// ShowDebugInfo logs every scan outcome.
	ShowDebugInfo bool
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithRecorder persists every gate commit.
func WithRecorder(r CommitRecorder) Option {
	return func(t *Tracker) { t.recorder = r }
}

// WithLogger replaces the diagnostic logger (default monitoring.Logf).
func WithLogger(logf func(format string, v ...interface{})) Option {
	return func(t *Tracker) { t.logf = logf }
}

// WithSessionID overrides the random session ID.
func WithSessionID(id string) Option {
	return func(t *Tracker) { t.sessionID = id }
}

// Tracker turns a stream of frames into target positions.
//
// Each Tick runs the fixed-rate part of the pipeline (smoothing, mapping and
// the approach step) and, when no scan is in flight, starts a background scan
// of a snapshot of the frame. Only one scan runs at a time; frames arriving
// while it runs are dropped. A finished scan is applied through the update
// gate at the start of the next Tick, so TrackState is only ever written on
// the caller's goroutine.
//
// Tick, Scan, Wait, Start and Stop must be called from a single goroutine.
// Status and LastFrame are safe to call from any goroutine.
type Tracker struct {
	src       FrameSource
	sink      TargetSink
	cfg       Config
	recorder  CommitRecorder
	logf      func(format string, v ...interface{})
	sessionID string

	scanner *detection.Scanner
	detect  func(*imaging.Frame) detection.Detection

	ctx       context.Context
	now       float64
	track     TrackState
	smooth    SmoothedState
	color     detection.TrackingColor
	hasTarget bool
	last      detection.Detection

	busy    bool
	results chan detection.Detection
	wg      sync.WaitGroup

	started bool
	stopped bool

	ticks   int
	scans   int
	commits int
	dropped int

	mu        sync.Mutex
	status    Snapshot
	lastFrame *imaging.Frame
}

// New creates a tracker reading from src and driving sink.
//
// sink may be nil, in which case mapping is skipped. The committed and
// smoothed state start at the frame center with the minimum area.
func New(src FrameSource, sink TargetSink, cfg Config, opts ...Option) (*Tracker, error) {
	if src == nil {
		return nil, ErrNoFrameSource
	}

	t := &Tracker{
		src:       src,
		sink:      sink,
		cfg:       cfg,
		logf:      monitoring.Logf,
		sessionID: uuid.NewString(),
		scanner:   detection.NewScanner(cfg.Thresholds),
		ctx:       context.Background(),
		track:     TrackState{Position: center, Area: cfg.MinAreaSize},
		smooth:    SmoothedState{Position: center, Area: cfg.MinAreaSize},
		color:     detection.Red,
		results:   make(chan detection.Detection, 1),
	}
	t.detect = t.detectFrame
	for _, opt := range opts {
		opt(t)
	}
	if t.logf == nil {
		t.logf = func(string, ...interface{}) {}
	}
	t.publish()
	return t, nil
}

// SessionID identifies this tracker run on diagnostics and commit records.
func (t *Tracker) SessionID() string { return t.sessionID }

// Source returns the frame source the tracker was built with.
func (t *Tracker) Source() FrameSource { return t.src }

// Start acquires the frame source.
func (t *Tracker) Start(ctx context.Context) error {
	if t.stopped {
		return ErrStopped
	}
	if t.started {
		return nil
	}
	if err := t.src.Start(ctx); err != nil {
		return fmt.Errorf("failed to start frame source: %w", err)
	}
	t.ctx = ctx
	t.started = true

	w, h := t.src.Size()
	t.logf("Frame source started: %dx%d at %dfps (session %s)", w, h, t.src.FPS(), t.sessionID)
	t.publish()
	return nil
}

// Stop waits for any in-flight scan, discards its result and releases the
// frame source. After Stop returns the tracker never touches the sink or
// recorder again. Stop is idempotent.
func (t *Tracker) Stop() error {
	if t.stopped {
		return nil
	}
	t.stopped = true

	t.wg.Wait()
	select {
	case <-t.results:
	default:
	}
	t.busy = false

	var err error
	if t.started {
		if stopErr := t.src.Stop(); stopErr != nil {
			err = fmt.Errorf("failed to stop frame source: %w", stopErr)
		}
	}
	t.publish()
	return err
}

// Active reports whether the tracker is started, not stopped, and its source
// is producing frames.
func (t *Tracker) Active() bool {
	return t.started && !t.stopped && t.src.Active()
}

// Tick advances the tracker by dt seconds using frame as the newest image.
//
// A nil frame skips the tick entirely: no clock advance, no smoothing, no
// movement. Otherwise the steps are:
//
//  1. Apply a finished background scan, if any, through the update gate.
//  2. Start a scan of a snapshot of frame unless one is still running.
//  3. Smooth toward the committed state.
//  4. Map the smoothed state and move the sink toward it.
//
// Returns the diagnostic snapshot after the tick.
func (t *Tracker) Tick(frame *imaging.Frame, dt float64) Snapshot {
	if t.stopped || frame == nil {
		return t.Status()
	}
	t.now += dt
	t.ticks++

	t.collect(false)
	if t.busy {
		t.dropped++
	} else {
		t.launch(frame)
	}

	t.cfg.Smoothing.Apply(&t.smooth, t.track)
	if t.sink != nil {
		target := t.cfg.Mapping.Target(t.smooth)
		t.sink.SetPosition(t.cfg.Mapping.Approach(t.sink.Position(), target, dt))
	}
	return t.publish()
}

// Scan synchronously scans frame and applies the result through the gate at
// the current tracker time. Any in-flight background scan is applied first.
func (t *Tracker) Scan(frame *imaging.Frame) detection.Detection {
	if t.stopped || frame == nil {
		return detection.Detection{}
	}
	t.collect(true)
	d := t.detect(frame)
	t.setLastFrame(frame)
	t.apply(d)
	t.publish()
	return d
}

// Wait blocks until the in-flight scan, if any, finishes and applies it.
func (t *Tracker) Wait() {
	if t.stopped {
		return
	}
	t.collect(true)
	t.publish()
}

// Track returns the committed state.
func (t *Tracker) Track() TrackState { return t.track }

// Smoothed returns the smoothed state.
func (t *Tracker) Smoothed() SmoothedState { return t.smooth }

// Now returns the tracker clock in seconds (sum of Tick dt values).
func (t *Tracker) Now() float64 { return t.now }

func (t *Tracker) launch(frame *imaging.Frame) {
	snapshot := frame.Clone()
	t.setLastFrame(snapshot)
	t.busy = true
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		t.results <- t.detect(snapshot)
	}()
}

func (t *Tracker) collect(block bool) {
	if !t.busy {
		return
	}
	var d detection.Detection
	if block {
		d = <-t.results
	} else {
		select {
		case d = <-t.results:
		default:
			return
		}
	}
	t.busy = false
	t.apply(d)
}

func (t *Tracker) detectFrame(f *imaging.Frame) detection.Detection {
	prepared := imaging.Prepare(f, t.cfg.Prepare)
	return t.scanner.Select(prepared, t.cfg.Mode, t.cfg.MinAreaSize)
}

func (t *Tracker) apply(d detection.Detection) {
	t.scans++
	t.last = d

	if !d.Found {
		t.hasTarget = false
		if t.cfg.ShowDebugInfo {
			t.logf("No significant color area found")
		}
		return
	}

	if t.cfg.Gate.Commit(&t.track, d.Position, d.Region.Area, t.now) {
		t.commits++
		t.record(d)
	}
	t.color = d.Region.Color
	t.hasTarget = true

	if t.cfg.ShowDebugInfo {
		t.logf("%s area found at: (%.1f, %.1f) with %d pixels",
			d.Region.Color, d.Region.Centroid.X, d.Region.Centroid.Y, d.Region.Area)
	}
}

func (t *Tracker) record(d detection.Detection) {
	if t.recorder == nil {
		return
	}
	c := Commit{
		SessionID: t.sessionID,
		Time:      t.now,
		Position:  d.Position,
		Area:      d.Region.Area,
		Color:     d.Region.Color,
	}
	if err := t.recorder.RecordCommit(t.ctx, c); err != nil {
		t.logf("failed to record commit: %v", err)
	}
}

func (t *Tracker) setLastFrame(f *imaging.Frame) {
	t.mu.Lock()
	t.lastFrame = f
	t.mu.Unlock()
}

// LastFrame returns the most recently scanned frame snapshot, or nil.
// The frame must be treated as read-only.
func (t *Tracker) LastFrame() *imaging.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastFrame
}
