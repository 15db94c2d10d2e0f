// Package source provides frame sources for the tracker.
//
// Replay serves image files from a directory in name order and works
// everywhere. Camera captures from a webcam through OpenCV and is only
// functional when built with the gocv tag.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ironsheep/color-tracker/internal/imaging"
	"github.com/ironsheep/color-tracker/internal/monitoring"
)

// frameExtensions are the file types Replay picks up.
var frameExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Replay serves the image files of a directory as a frame stream.
//
// Each call to Frame advances to the next file. At the end of the sequence
// Replay either wraps around (Loop) or deactivates, which ends a run loop.
// Decoded frames are kept in a FrameCache so looping does not decode again.
type Replay struct {
	// Loop restarts the sequence after the last frame.
	Loop bool

	paths []string
	fps   int
	cache *imaging.FrameCache

	mu     sync.Mutex
	active bool
	next   int
	width  int
	height int
}

// NewReplay lists the image files in dir.
//
// Returns an error if the directory cannot be read or contains no images.
func NewReplay(dir string, fps int) (*Replay, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read frame directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if frameExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image frames found in %s", dir)
	}

	return &Replay{
		paths: paths,
		fps:   fps,
		cache: imaging.NewFrameCache(),
	}, nil
}

// Len returns the number of frames in the sequence.
func (r *Replay) Len() int { return len(r.paths) }

// Start decodes the first frame to learn the frame size and rewinds.
func (r *Replay) Start(ctx context.Context) error {
	first, err := r.cache.Load(r.paths[0])
	if err != nil {
		return fmt.Errorf("failed to load first frame %s: %w", r.paths[0], err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = first.Width(), first.Height()
	r.next = 0
	r.active = true
	monitoring.Logf("Replaying %d frames from %s", len(r.paths), filepath.Dir(r.paths[0]))
	return nil
}

// Stop deactivates the source and drops cached frames.
func (r *Replay) Stop() error {
	r.mu.Lock()
	r.active = false
	r.mu.Unlock()
	r.cache.Clear()
	return nil
}

// Active reports whether frames are still being served.
func (r *Replay) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Frame returns the next frame of the sequence.
//
// Returns false when the source is inactive, when the sequence has ended
// without Loop, or when a file fails to decode (the file is skipped).
func (r *Replay) Frame() (*imaging.Frame, bool) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return nil, false
	}
	if r.next >= len(r.paths) {
		if !r.Loop {
			r.active = false
			r.mu.Unlock()
			return nil, false
		}
		r.next = 0
	}
	path := r.paths[r.next]
	r.next++
	r.mu.Unlock()

	f, err := r.cache.Load(path)
	if err != nil {
		monitoring.Logf("Skipping frame %s: %v", path, err)
		return nil, false
	}
	return f, true
}

// Size returns the dimensions of the first frame. Zero before Start.
func (r *Replay) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

// FPS returns the replay rate.
func (r *Replay) FPS() int { return r.fps }
