// Package hazard detects obstacles in the walking path from a live
// camera-frame stream. A bounded drop-oldest queue feeds a background
// worker that runs a pluggable detector and emits debounced
// present/cleared events.
package hazard

import (
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/benz16107/BlindSpot/internal/log"
)

// Path-ahead region: only detections whose box center falls in the
// middle 60% of the width and the lower 75% of the height count, which
// excludes sky and periphery.
const (
	regionXLo = 0.2
	regionXHi = 0.8
	regionYLo = 0.25
	regionYHi = 1.0
)

// Detector finds one obstacle in a decoded frame. Implementations must
// restrict themselves to the path-ahead region.
type Detector interface {
	// Detect returns the label of an obstacle in the path-ahead region,
	// or found=false when the path is clear.
	Detect(img gocv.Mat) (label string, found bool, err error)

	// Name identifies the detection strategy for logging.
	Name() string

	// Close releases detector resources.
	Close() error
}

// SelectDetector picks the detection strategy once, based on artifact
// availability: the multi-class YOLO detector when the ONNX model file
// is present and loads, otherwise the built-in HOG person detector.
func SelectDetector(modelPath string) Detector {
	if modelPath != "" {
		if _, err := os.Stat(modelPath); err == nil {
			det, err := NewYOLO(DefaultYOLOConfig().WithModelPath(modelPath))
			if err == nil {
				log.Info("obstacle detection using YOLOv8n ONNX", "model", modelPath)
				return det
			}
			log.Warn("failed to load YOLOv8n ONNX, falling back to HOG person detector",
				"model", modelPath, "error", err)
		} else {
			log.Info("no ONNX model found, using HOG person detector", "model", modelPath)
		}
	} else {
		log.Info("no obstacle model configured, using HOG person detector")
	}
	return NewHOG()
}

// inPathRegion reports whether the box center falls in the path-ahead
// region of a frame with the given pixel dimensions.
func inPathRegion(imgW, imgH int, box image.Rectangle) bool {
	cx := float64(box.Min.X+box.Max.X) / 2
	cy := float64(box.Min.Y+box.Max.Y) / 2
	w := float64(imgW)
	h := float64(imgH)
	return cx >= w*regionXLo && cx <= w*regionXHi &&
		cy >= h*regionYLo && cy <= h*regionYHi
}
