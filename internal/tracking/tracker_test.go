package tracking

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/color-tracker/internal/detection"
	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/timeutil"
)

var green = color.RGBA{0, 255, 0, 255}

// fakeSource serves a fixed frame and counts lifecycle calls.
type fakeSource struct {
	mu       sync.Mutex
	frame    *imaging.Frame
	startErr error

	active atomic.Bool
	starts atomic.Int32
	stops  atomic.Int32
}

func newFakeSource(f *imaging.Frame) *fakeSource {
	return &fakeSource{frame: f}
}

func (s *fakeSource) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	s.starts.Add(1)
	s.active.Store(true)
	return nil
}

func (s *fakeSource) Stop() error {
	s.stops.Add(1)
	s.active.Store(false)
	return nil
}

func (s *fakeSource) Active() bool { return s.active.Load() }

func (s *fakeSource) Frame() (*imaging.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame, s.frame != nil
}

func (s *fakeSource) Size() (int, int) { return 320, 240 }
func (s *fakeSource) FPS() int         { return 30 }

// countingSink records how often the tracker moves it.
type countingSink struct {
	mu   sync.Mutex
	pos  r3.Vec
	sets int
}

func (s *countingSink) Position() r3.Vec {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *countingSink) SetPosition(p r3.Vec) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = p
	s.sets++
}

func (s *countingSink) Sets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets
}

type memRecorder struct {
	commits []Commit
	err     error
}

func (r *memRecorder) RecordCommit(ctx context.Context, c Commit) error {
	r.commits = append(r.commits, c)
	return r.err
}

func testConfig() Config {
	return Config{
		Mode:        detection.Auto,
		Thresholds:  detection.Thresholds{Brightness: 100, Dominance: 50, Black: 30},
		MinAreaSize: 9,
		Gate:        GateConfig{Interval: 0.05, MinMovement: 0.01},
		Smoothing:   SmoothingConfig{Position: 0.5, Area: 0.5},
		Mapping:     defaultMapping(),
	}
}

// blobFrame returns a black 320x240 frame with a 20x20 green square whose
// top-left corner is at (x, y).
func blobFrame(x, y int) *imaging.Frame {
	f := imaging.NewFrame(320, 240)
	f.Fill(x, y, x+20, y+20, green)
	return f
}

func newTestTracker(t *testing.T, src FrameSource, sink TargetSink, opts ...Option) *Tracker {
	t.Helper()
	opts = append([]Option{WithLogger(t.Logf)}, opts...)
	tr, err := New(src, sink, testConfig(), opts...)
	require.NoError(t, err)
	return tr
}

func TestNew_NoFrameSource(t *testing.T) {
	tr, err := New(nil, nil, testConfig())
	assert.Nil(t, tr)
	assert.ErrorIs(t, err, ErrNoFrameSource)
}

func TestNew_InitialState(t *testing.T) {
	tr := newTestTracker(t, newFakeSource(nil), nil, WithSessionID("session-1"))

	want := TrackState{Position: center, Area: 9}
	if diff := cmp.Diff(want, tr.Track()); diff != "" {
		t.Errorf("initial track state (-want +got):\n%s", diff)
	}
	assert.Equal(t, center, tr.Smoothed().Position)
	assert.Equal(t, 9, tr.Smoothed().Area)

	st := tr.Status()
	assert.Equal(t, "session-1", st.SessionID)
	assert.False(t, st.HasTarget)
	assert.False(t, st.Active)
	assert.Equal(t, detection.Red, st.Color)
	assert.Nil(t, st.Target)
}

func TestTracker_NilFrameSkipsTick(t *testing.T) {
	sink := &countingSink{}
	tr := newTestTracker(t, newFakeSource(nil), sink)
	before := tr.Status()

	tr.Tick(nil, 0.1)

	assert.Equal(t, 0.0, tr.Now())
	assert.Equal(t, 0, sink.Sets())
	if diff := cmp.Diff(before, tr.Status()); diff != "" {
		t.Errorf("status changed on nil frame (-want +got):\n%s", diff)
	}
}

func TestTracker_ScanCommits(t *testing.T) {
	rec := &memRecorder{}
	tr := newTestTracker(t, newFakeSource(nil), nil, WithRecorder(rec), WithSessionID("s1"))

	// Advance the clock past the debounce interval with an empty frame.
	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()
	require.False(t, tr.Status().HasTarget)

	d := tr.Scan(blobFrame(100, 50))
	require.True(t, d.Found)

	track := tr.Track()
	assert.Equal(t, 400, track.Area)
	assert.InDelta(t, 109.5/320, track.Position.X, 1e-9)
	assert.InDelta(t, 59.5/240, track.Position.Y, 1e-9)
	assert.InDelta(t, 0.1, track.CommittedAt, 1e-12)

	st := tr.Status()
	assert.True(t, st.HasTarget)
	assert.Equal(t, detection.Green, st.Color)
	assert.Equal(t, "#00FF00", st.Swatch.Hex)
	assert.Equal(t, 1, st.Commits)
	assert.Equal(t, 2, st.Scans)

	require.Len(t, rec.commits, 1)
	assert.Equal(t, "s1", rec.commits[0].SessionID)
	assert.Equal(t, 400, rec.commits[0].Area)
	assert.Equal(t, detection.Green, rec.commits[0].Color)
}

func TestTracker_NoTargetKeepsState(t *testing.T) {
	sink := &countingSink{}
	tr := newTestTracker(t, newFakeSource(nil), sink)
	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()
	tr.Scan(blobFrame(100, 50))
	committed := tr.Track()

	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()

	if diff := cmp.Diff(committed, tr.Track()); diff != "" {
		t.Errorf("track state changed without a target (-want +got):\n%s", diff)
	}
	st := tr.Status()
	assert.False(t, st.HasTarget)
	assert.Equal(t, detection.Green, st.Color, "color of the last accepted region is kept")

	// Mapping keeps running on the stale committed state.
	setsBefore := sink.Sets()
	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()
	assert.Equal(t, setsBefore+1, sink.Sets())
	assert.Greater(t, tr.Smoothed().Area, 9)
}

func TestTracker_GateRejectsJitter(t *testing.T) {
	tr := newTestTracker(t, newFakeSource(nil), nil)
	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()
	tr.Scan(blobFrame(100, 50))
	committed := tr.Track()

	// Same clock time: the debounce interval has not elapsed.
	d := tr.Scan(blobFrame(200, 150))
	require.True(t, d.Found)

	if diff := cmp.Diff(committed, tr.Track()); diff != "" {
		t.Errorf("track state changed on gate rejection (-want +got):\n%s", diff)
	}
	assert.True(t, tr.Status().HasTarget)
	assert.Equal(t, DebounceActive, tr.Status().Debounce)
	assert.Equal(t, 1, tr.Status().Commits)
}

func TestTracker_TickAppliesScanOnCompletion(t *testing.T) {
	sink := &countingSink{}
	tr := newTestTracker(t, newFakeSource(nil), sink)
	frame := blobFrame(100, 50)

	tr.Tick(frame, 0.1)
	assert.Equal(t, 9, tr.Track().Area, "scan result is applied later")

	tr.Wait()
	assert.Equal(t, 400, tr.Track().Area)

	tr.Tick(frame, 0.1)
	assert.Equal(t, 204, tr.Smoothed().Area, "round(lerp(9, 400, 0.5))")
	tr.Wait()

	assert.Equal(t, 2, sink.Sets())
	require.NotNil(t, tr.LastFrame())
	assert.NotSame(t, frame, tr.LastFrame(), "scan works on a snapshot")
}

func TestTracker_DropsFramesWhileBusy(t *testing.T) {
	sink := &countingSink{}
	tr := newTestTracker(t, newFakeSource(nil), sink)

	release := make(chan struct{})
	var calls atomic.Int32
	tr.detect = func(f *imaging.Frame) detection.Detection {
		calls.Add(1)
		<-release
		return detection.Detection{}
	}

	frame := blobFrame(10, 10)
	for i := 0; i < 3; i++ {
		tr.Tick(frame, 0.02)
	}

	st := tr.Status()
	assert.Equal(t, 3, st.Ticks)
	assert.Equal(t, 2, st.Dropped)
	assert.Equal(t, 0, st.Scans)
	assert.Equal(t, 3, sink.Sets(), "mapping runs every tick while a scan is in flight")

	close(release)
	tr.Wait()
	assert.Equal(t, 1, tr.Status().Scans)
	assert.Equal(t, int32(1), calls.Load())

	tr.Tick(frame, 0.02)
	tr.Wait()
	assert.Equal(t, int32(2), calls.Load(), "next snapshot is taken after completion")
}

func TestTracker_StopReleasesSource(t *testing.T) {
	src := newFakeSource(blobFrame(100, 50))
	sink := &countingSink{}
	tr := newTestTracker(t, src, sink)

	require.NoError(t, tr.Start(context.Background()))
	assert.True(t, tr.Active())
	assert.True(t, tr.Status().Active)

	frame, _ := src.Frame()
	tr.Tick(frame, 0.1)

	require.NoError(t, tr.Stop())
	assert.Equal(t, int32(1), src.stops.Load())
	assert.False(t, tr.Active())
	assert.Nil(t, tr.Status().Target)

	sets := sink.Sets()
	tr.Tick(frame, 0.1)
	tr.Scan(frame)
	tr.Wait()
	assert.Equal(t, sets, sink.Sets(), "no sink calls after Stop")

	require.NoError(t, tr.Stop())
	assert.Equal(t, int32(1), src.stops.Load(), "Stop is idempotent")
	assert.ErrorIs(t, tr.Start(context.Background()), ErrStopped)
}

func TestTracker_StopWithoutStart(t *testing.T) {
	src := newFakeSource(nil)
	tr := newTestTracker(t, src, nil)

	require.NoError(t, tr.Stop())
	assert.Equal(t, int32(0), src.stops.Load())
}

func TestTracker_StartError(t *testing.T) {
	src := newFakeSource(nil)
	src.startErr = errors.New("device busy")
	tr := newTestTracker(t, src, nil)

	err := tr.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device busy")
	assert.False(t, tr.Active())
}

func TestTracker_RecorderErrorIsLogged(t *testing.T) {
	rec := &memRecorder{err: errors.New("disk full")}
	var logged []string
	logf := func(format string, v ...interface{}) { logged = append(logged, format) }

	tr, err := New(newFakeSource(nil), nil, testConfig(), WithRecorder(rec), WithLogger(logf))
	require.NoError(t, err)
	tr.Tick(imaging.NewFrame(320, 240), 0.1)
	tr.Wait()
	tr.Scan(blobFrame(0, 0))

	assert.Equal(t, 1, tr.Status().Commits, "a failed write does not undo the commit")
	assert.Contains(t, logged, "failed to record commit: %v")
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	src := newFakeSource(blobFrame(150, 100))
	sink := &countingSink{}
	tr := newTestTracker(t, src, sink)
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, clock, tr) }()

	require.Eventually(t, func() bool {
		clock.Advance(time.Second / 30)
		return tr.Status().Ticks >= 5
	}, 2*time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	assert.Equal(t, int32(1), src.starts.Load())
	assert.Equal(t, int32(1), src.stops.Load())
	assert.Greater(t, tr.Now(), 0.0)
	assert.NotEqual(t, r3.Vec{}, sink.Position())
}

func TestRun_StopsWhenSourceInactive(t *testing.T) {
	src := newFakeSource(blobFrame(150, 100))
	tr := newTestTracker(t, src, nil)
	clock := timeutil.NewMockClock(time.Unix(0, 0))

	done := make(chan error, 1)
	go func() { done <- Run(context.Background(), clock, tr) }()

	require.Eventually(t, func() bool {
		clock.Advance(time.Second / 30)
		return tr.Status().Ticks >= 1
	}, 2*time.Second, time.Millisecond)

	src.active.Store(false)
	require.Eventually(t, func() bool {
		clock.Advance(time.Second / 30)
		select {
		case err := <-done:
			return err == nil
		default:
			return false
		}
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, int32(1), src.stops.Load())
}
