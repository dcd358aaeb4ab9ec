package camera

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Camera wraps a single webcam device. Reads are serialized so concurrent
// stream loops never re-enter the capture handle; interleaving of frames
// between viewers is accepted.
type Camera struct {
	capture *gocv.VideoCapture
	mu      sync.Mutex
	closed  bool
}

// Open opens the given capture device. An unopenable device is a startup
// failure the caller should treat as fatal.
func Open(deviceID int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to open camera device %d: %w", deviceID, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("camera device %d is not opened", deviceID)
	}

	return &Camera{capture: capture}, nil
}

// Read grabs the next frame into dst. It reports false when no frame could
// be acquired, which callers treat as end of stream.
func (c *Camera) Read(dst *gocv.Mat) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if ok := c.capture.Read(dst); !ok || dst.Empty() {
		return false
	}
	return true
}

// Close releases the capture device.
func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.capture.Close()
}
