package tracking

import (
	"context"
	"sync"
	"time"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ironsheep/color-tracker/internal/timeutil"
)

// defaultFPS is used when a source reports no frame rate.
const defaultFPS = 30

// Run starts the tracker and ticks it at the source's frame rate until ctx is
// cancelled or the source stops producing frames. The tracker is stopped
// before Run returns, which releases the source.
//
// dt for each tick is measured from the clock, so a late tick moves the
// target further rather than falling behind.
func Run(ctx context.Context, clock timeutil.Clock, t *Tracker) error {
	if err := t.Start(ctx); err != nil {
		return err
	}
	defer t.Stop()

	fps := t.src.FPS()
	if fps <= 0 {
		fps = defaultFPS
	}
	ticker := clock.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	last := clock.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C():
			if !t.src.Active() {
				t.logf("Frame source inactive, stopping tracker")
				return nil
			}
			dt := now.Sub(last).Seconds()
			last = now

			frame, ok := t.src.Frame()
			if !ok {
				continue
			}
			t.Tick(frame, dt)
		}
	}
}

// Body is a minimal goroutine-safe TargetSink that simply holds a position.
type Body struct {
	mu  sync.Mutex
	pos r3.Vec
}

// NewBody creates a body at the given position.
func NewBody(start r3.Vec) *Body {
	return &Body{pos: start}
}

// Position returns the current position.
func (b *Body) Position() r3.Vec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pos
}

// SetPosition moves the body.
func (b *Body) SetPosition(p r3.Vec) {
	b.mu.Lock()
	b.pos = p
	b.mu.Unlock()
}
