//go:build !gocv

package source

import (
	"context"

	"github.com/ironsheep/color-tracker/internal/imaging"
)

// Camera is a placeholder that always fails to start. Build with -tags gocv
// for webcam capture.
type Camera struct {
	opts CameraOptions
}

// NewCamera creates a camera source.
func NewCamera(opts CameraOptions) *Camera {
	return &Camera{opts: opts}
}

// Start always returns ErrCameraUnavailable.
func (c *Camera) Start(ctx context.Context) error { return ErrCameraUnavailable }

// Stop is a no-op.
func (c *Camera) Stop() error { return nil }

// Active is always false.
func (c *Camera) Active() bool { return false }

// Frame never returns a frame.
func (c *Camera) Frame() (*imaging.Frame, bool) { return nil, false }

// Size returns the requested capture size.
func (c *Camera) Size() (width, height int) { return c.opts.Width, c.opts.Height }

// FPS returns the requested frame rate.
func (c *Camera) FPS() int { return c.opts.FPS }
