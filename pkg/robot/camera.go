package robot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// CameraSensor turns webcam frames into a raw reading: the mean hue of a
// square at the center of the frame, in OpenCV's 0..180 hue scale.
type CameraSensor struct {
	mu      sync.Mutex
	webcam  *gocv.VideoCapture
	frame   gocv.Mat
	blurred gocv.Mat
	hsv     gocv.Mat
	// ROIFraction is the side of the sampled square relative to the shorter frame side.
	ROIFraction float64
}

// OpenCameraSensor opens the webcam with the given device id.
func OpenCameraSensor(device int) (*CameraSensor, error) {
	webcam, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", device, err)
	}
	return &CameraSensor{
		webcam:      webcam,
		frame:       gocv.NewMat(),
		blurred:     gocv.NewMat(),
		hsv:         gocv.NewMat(),
		ROIFraction: 0.2,
	}, nil
}

// Read grabs a frame and returns its center hue.
func (c *CameraSensor) Read(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ok := c.webcam.Read(&c.frame); !ok {
		return 0, errors.New("cannot read from camera")
	}
	if c.frame.Empty() {
		return 0, ErrNoReading
	}

	roi := centerSquare(c.frame.Cols(), c.frame.Rows(), c.ROIFraction)
	region := c.frame.Region(roi)
	defer region.Close()

	// Smooth sensor noise before converting to HSV
	gocv.GaussianBlur(region, &c.blurred, image.Pt(5, 5), 0, 0, gocv.BorderDefault)
	gocv.CvtColor(c.blurred, &c.hsv, gocv.ColorBGRToHSV)

	return c.hsv.Mean().Val1, nil
}

// Close releases the camera and its buffers.
func (c *CameraSensor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.hsv.Close()
	c.blurred.Close()
	c.frame.Close()
	return c.webcam.Close()
}

// centerSquare returns a square of side fraction*min(width, height)
// centered in a width x height frame.
func centerSquare(width, height int, fraction float64) image.Rectangle {
	side := int(float64(min(width, height)) * fraction)
	if side < 1 {
		side = 1
	}
	x := (width - side) / 2
	y := (height - side) / 2
	return image.Rect(x, y, x+side, y+side)
}
