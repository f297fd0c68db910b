package hazard

import (
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// YOLOConfig holds the multi-class detector configuration.
type YOLOConfig struct {
	ModelPath        string
	ConfidenceThresh float32
	NMSThresh        float32
	InputWidth       int
	InputHeight      int
}

// DefaultYOLOConfig returns production defaults for YOLOv8n.
func DefaultYOLOConfig() YOLOConfig {
	return YOLOConfig{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.35,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}

// WithModelPath returns a copy with the model path set.
func (c YOLOConfig) WithModelPath(path string) YOLOConfig {
	c.ModelPath = path
	return c
}

// YOLODetector is the multi-class strategy, loaded from a YOLOv8n ONNX
// artifact and restricted to obstacle-relevant COCO classes.
type YOLODetector struct {
	mu        sync.Mutex // protects inference
	net       gocv.Net
	config    YOLOConfig
	inputSize image.Point
}

// NewYOLO loads the ONNX model and prepares the network.
func NewYOLO(cfg YOLOConfig) (*YOLODetector, error) {
	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("hazard: failed to load YOLO model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &YOLODetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputWidth, cfg.InputHeight),
	}, nil
}

// Name identifies the strategy.
func (d *YOLODetector) Name() string { return "yolov8n" }

// Detect returns the first obstacle-class detection whose box center
// falls in the path-ahead region.
func (d *YOLODetector) Detect(img gocv.Mat) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if img.Empty() {
		return "", false, fmt.Errorf("hazard: empty image")
	}

	imgW := img.Cols()
	imgH := img.Rows()

	blob := gocv.BlobFromImage(img, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward("")
	defer output.Close()

	for _, det := range d.parseOutput(output, float32(imgW), float32(imgH)) {
		if obstacleClasses[det.classID] && inPathRegion(imgW, imgH, det.box) {
			return cocoClasses[det.classID], true, nil
		}
	}
	return "", false, nil
}

type yoloDetection struct {
	box     image.Rectangle
	score   float32
	classID int
}

// parseOutput parses the YOLOv8 output tensor.
// Shape is [1, 84, 8400]: 4 bbox values plus 80 class scores per anchor.
func (d *YOLODetector) parseOutput(output gocv.Mat, imgW, imgH float32) []yoloDetection {
	rows := output.Cols() // 8400 anchors
	cols := output.Rows() // 84 = 4 bbox + 80 classes

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil
	}

	var boxes []image.Rectangle
	var confidences []float32
	var classIDs []int

	for i := 0; i < rows; i++ {
		maxScore := float32(0)
		maxClassID := 0
		for c := 4; c < cols; c++ {
			if score := data[c*rows+i]; score > maxScore {
				maxScore = score
				maxClassID = c - 4
			}
		}

		if maxScore < d.config.ConfidenceThresh {
			continue
		}

		cx := data[0*rows+i]
		cy := data[1*rows+i]
		w := data[2*rows+i]
		h := data[3*rows+i]

		x1 := int((cx - w/2) * imgW / float32(d.config.InputWidth))
		y1 := int((cy - h/2) * imgH / float32(d.config.InputHeight))
		x2 := int((cx + w/2) * imgW / float32(d.config.InputWidth))
		y2 := int((cy + h/2) * imgH / float32(d.config.InputHeight))

		boxes = append(boxes, image.Rect(x1, y1, x2, y2))
		confidences = append(confidences, maxScore)
		classIDs = append(classIDs, maxClassID)
	}

	if len(boxes) == 0 {
		return nil
	}

	indices := gocv.NMSBoxes(boxes, confidences, d.config.ConfidenceThresh, d.config.NMSThresh)

	detections := make([]yoloDetection, 0, len(indices))
	for _, idx := range indices {
		detections = append(detections, yoloDetection{
			box:     boxes[idx],
			score:   confidences[idx],
			classID: classIDs[idx],
		})
	}
	return detections
}

// Close releases the network.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}

// cocoClasses contains the 80 COCO class names.
var cocoClasses = []string{
	"person", "bicycle", "car", "motorcycle", "airplane", "bus", "train", "truck", "boat",
	"traffic light", "fire hydrant", "stop sign", "parking meter", "bench", "bird", "cat",
	"dog", "horse", "sheep", "cow", "elephant", "bear", "zebra", "giraffe", "backpack",
	"umbrella", "handbag", "tie", "suitcase", "frisbee", "skis", "snowboard", "sports ball",
	"kite", "baseball bat", "baseball glove", "skateboard", "surfboard", "tennis racket",
	"bottle", "wine glass", "cup", "fork", "knife", "spoon", "bowl", "banana", "apple",
	"sandwich", "orange", "broccoli", "carrot", "hot dog", "pizza", "donut", "cake", "chair",
	"couch", "potted plant", "bed", "dining table", "toilet", "tv", "laptop", "mouse",
	"remote", "keyboard", "cell phone", "microwave", "oven", "toaster", "sink", "refrigerator",
	"book", "clock", "vase", "scissors", "teddy bear", "hair drier", "toothbrush",
}

// obstacleClasses is the allow-list of COCO classes that count as
// obstacles in a pedestrian's path: people, vehicles, street furniture,
// animals, and loose items. Ground and scenery classes are excluded.
var obstacleClasses = buildClassSet(
	0, 1, 2, 3, 4, 5, 6, 7, 8, // person, vehicles
	9, 10, 11, 12, 13, // traffic light, fire hydrant, stop sign, parking meter, bench
	14, 15, 16, 17, // bird, cat, dog, horse
	24, 25, 26, 28, // backpack, umbrella, handbag, suitcase
	36, 39, 41, 45, // skateboard, bottle, cup, bowl
	56, 57, 58, 59, 60, 61, // chair, couch, potted plant, bed, dining table, toilet
	62, 63, 64, 65, 66, 67, // tv, laptop, mouse, remote, keyboard, cell phone
	68, 70, 71, 72, 73, 74, 75, 76, 77, // microwave, toaster, sink, refrigerator, book, clock, vase, scissors, teddy bear
)

func buildClassSet(ids ...int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
