package hazard

import (
	"image"
	"sync"

	"gocv.io/x/gocv"

	"github.com/benz16107/BlindSpot/internal/log"
)

// HOGDetector is the lightweight single-class fallback: OpenCV's
// built-in HOG people detector. It needs no external model file and
// reports "person" only.
type HOGDetector struct {
	mu  sync.Mutex // protects inference
	hog gocv.HOGDescriptor
}

// NewHOG creates the HOG person detector.
func NewHOG() *HOGDetector {
	hog := gocv.NewHOGDescriptor()
	if err := hog.SetSVMDetector(gocv.HOGDefaultPeopleDetector()); err != nil {
		log.Warn("failed to set HOG people detector coefficients", "error", err)
	}
	return &HOGDetector{hog: hog}
}

// Name identifies the strategy.
func (d *HOGDetector) Name() string { return "hog-person" }

// Detect returns "person" when a pedestrian stands in the path-ahead
// region.
func (d *HOGDetector) Detect(img gocv.Mat) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rects := d.hog.DetectMultiScaleWithParams(img,
		0,                 // hit threshold (default SVM margin)
		image.Pt(4, 4),    // window stride
		image.Pt(8, 8),    // padding
		1.05,              // pyramid scale
		2.0,               // group threshold
		false,             // no meanshift grouping
	)

	for _, r := range rects {
		if inPathRegion(img.Cols(), img.Rows(), r) {
			return "person", true, nil
		}
	}
	return "", false, nil
}

// Close releases the descriptor.
func (d *HOGDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.hog.Close()
}
