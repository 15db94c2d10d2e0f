package source

import "errors"

// ErrCameraUnavailable is returned by Camera.Start when the binary was built
// without OpenCV support.
var ErrCameraUnavailable = errors.New("camera capture not available: rebuild with -tags gocv")

// CameraOptions configure a capture device.
type CameraOptions struct {
	// Device is a camera index ("0", "1", ...) or a video file/stream URL.
	// Empty selects the first camera that opens.
	Device string

	Width  int
	Height int
	FPS    int
}

// maxProbeDevices bounds the search for a camera when no device is given.
const maxProbeDevices = 4
