//go:build gocv

package source

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/monitoring"
)

// Camera captures frames from a webcam or video stream through OpenCV.
//
// A background goroutine reads frames as fast as the device delivers them and
// keeps only the newest one; Frame hands out that frame. Stop ends the reader
// and releases the device before returning.
type Camera struct {
	opts CameraOptions

	capture *gocv.VideoCapture
	active  atomic.Bool
	stop    chan struct{}
	wg      sync.WaitGroup

	mu     sync.Mutex
	latest *imaging.Frame
	width  int
	height int
}

// NewCamera creates a camera source. The device is not opened until Start.
func NewCamera(opts CameraOptions) *Camera {
	return &Camera{opts: opts, width: opts.Width, height: opts.Height}
}

// Start opens the device, applies the requested size and rate and starts the
// reader goroutine.
func (c *Camera) Start(ctx context.Context) error {
	if c.active.Load() {
		return nil
	}

	capture, name, err := openCapture(c.opts.Device)
	if err != nil {
		return err
	}
	if c.opts.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(c.opts.Width))
	}
	if c.opts.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(c.opts.Height))
	}
	if c.opts.FPS > 0 {
		capture.Set(gocv.VideoCaptureFPS, float64(c.opts.FPS))
	}
	// Keep latency low: only the newest frame matters.
	capture.Set(gocv.VideoCaptureBufferSize, 1)

	// Read the first frame to learn the actual size.
	img := gocv.NewMat()
	defer img.Close()
	if ok := capture.Read(&img); !ok || img.Empty() {
		capture.Close()
		return fmt.Errorf("could not read first frame from camera %s", name)
	}

	c.mu.Lock()
	c.width, c.height = img.Cols(), img.Rows()
	c.mu.Unlock()
	monitoring.Logf("Using camera %s at %dx%d", name, img.Cols(), img.Rows())

	c.capture = capture
	c.stop = make(chan struct{})
	c.active.Store(true)
	c.wg.Add(1)
	go c.readFrames(ctx)
	return nil
}

// openCapture opens the configured device. An empty device probes camera
// indices in order and uses the first one that opens.
func openCapture(device string) (*gocv.VideoCapture, string, error) {
	if device != "" {
		var (
			capture *gocv.VideoCapture
			err     error
		)
		if id, convErr := strconv.Atoi(device); convErr == nil {
			capture, err = gocv.VideoCaptureDevice(id)
		} else {
			capture, err = gocv.VideoCaptureFile(device)
		}
		if err != nil {
			return nil, "", fmt.Errorf("failed to open camera %s: %w", device, err)
		}
		return capture, device, nil
	}

	var available []int
	var first *gocv.VideoCapture
	for id := 0; id < maxProbeDevices; id++ {
		capture, err := gocv.VideoCaptureDevice(id)
		if err != nil || !capture.IsOpened() {
			if capture != nil {
				capture.Close()
			}
			continue
		}
		available = append(available, id)
		if first == nil {
			first = capture
		} else {
			capture.Close()
		}
	}
	monitoring.Logf("Available cameras: %v", available)
	if first == nil {
		return nil, "", fmt.Errorf("no camera devices found")
	}
	return first, strconv.Itoa(available[0]), nil
}

func (c *Camera) readFrames(ctx context.Context) {
	defer c.wg.Done()
	defer c.active.Store(false)

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		default:
		}

		if ok := c.capture.Read(&img); !ok {
			monitoring.Logf("Camera read failed, stopping capture")
			return
		}
		if img.Empty() {
			continue
		}

		raw, err := img.ToImage()
		if err != nil {
			continue
		}
		f := imaging.FromImage(raw)

		c.mu.Lock()
		c.latest = f
		c.mu.Unlock()
	}
}

// Stop ends the reader goroutine and releases the device.
func (c *Camera) Stop() error {
	if c.capture == nil {
		return nil
	}
	close(c.stop)
	c.wg.Wait()

	err := c.capture.Close()
	c.capture = nil
	c.active.Store(false)
	if err != nil {
		return fmt.Errorf("failed to release camera: %w", err)
	}
	return nil
}

// Active reports whether the reader goroutine is running.
func (c *Camera) Active() bool { return c.active.Load() }

// Frame returns the newest captured frame.
func (c *Camera) Frame() (*imaging.Frame, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latest, c.latest != nil
}

// Size returns the capture size reported by the device.
func (c *Camera) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// FPS returns the requested frame rate.
func (c *Camera) FPS() int { return c.opts.FPS }
