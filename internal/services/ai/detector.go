package ai

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"ppemonitor/internal/config"
	"ppemonitor/internal/logger"
	"ppemonitor/internal/model"
)

// ppeClasses maps network class ids to the PPE class names the model was
// trained on.
var ppeClasses = map[int]string{
	1: "helmet",
	2: "mask",
	3: "vest",
}

// Detector runs the pretrained PPE detection network on single frames.
type Detector struct {
	net           gocv.Net
	modelPath     string
	configPath    string
	confThreshold float32
	inputSize     int
	logger        *logger.Logger
}

// NewDetector loads the detection network from the configured model files.
func NewDetector(cfg *config.Config, logger *logger.Logger) (*Detector, error) {
	detector := &Detector{
		modelPath:     cfg.ModelPath,
		configPath:    cfg.ConfigPath,
		confThreshold: float32(cfg.ConfThreshold),
		inputSize:     cfg.InputSize,
		logger:        logger,
	}

	if err := detector.initializeNet(); err != nil {
		return nil, err
	}

	return detector, nil
}

// initializeNet initializes the detection network from model and config files.
func (d *Detector) initializeNet() error {
	if _, err := os.Stat(d.modelPath); os.IsNotExist(err) {
		return fmt.Errorf("model file not found: %s", d.modelPath)
	}

	if _, err := os.Stat(d.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s", d.configPath)
	}

	net := gocv.ReadNet(d.modelPath, d.configPath)
	if net.Empty() {
		return fmt.Errorf("failed to load network")
	}

	errBackend := net.SetPreferableBackend(gocv.NetBackendDefault)
	errTarget := net.SetPreferableTarget(gocv.NetTargetCPU)
	if errBackend != nil || errTarget != nil {
		return fmt.Errorf("failed to set preferable backend or target")
	}

	d.net = net
	d.logger.Info("PPE detection network initialized successfully")
	return nil
}

// Detect runs inference on one frame and returns detections above the
// confidence threshold, with boxes in pixel coordinates.
func (d *Detector) Detect(frame gocv.Mat) ([]model.Detection, error) {
	if d.net.Empty() {
		return nil, fmt.Errorf("detection network not initialized")
	}
	if frame.Empty() {
		return nil, fmt.Errorf("input frame is empty")
	}

	inputSize := image.Pt(d.inputSize, d.inputSize)
	blob := gocv.BlobFromImage(frame, 1.0/127.5, inputSize, gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	cols := float32(frame.Cols())
	rows := float32(frame.Rows())

	var detections []model.Detection

	// Each output row is [batch, class id, confidence, left, top, right, bottom]
	// with normalized coordinates.
	outputReshaped := output.Reshape(1, output.Total()/7)
	defer outputReshaped.Close()
	for i := 0; i < outputReshaped.Rows(); i++ {
		confidence := outputReshaped.GetFloatAt(i, 2)
		if confidence <= d.confThreshold {
			continue
		}

		classID := int(outputReshaped.GetFloatAt(i, 1))
		class, known := ppeClasses[classID]
		if !known {
			continue
		}

		detections = append(detections, model.Detection{
			Class:      class,
			Confidence: float64(confidence),
			X1:         int(outputReshaped.GetFloatAt(i, 3) * cols),
			Y1:         int(outputReshaped.GetFloatAt(i, 4) * rows),
			X2:         int(outputReshaped.GetFloatAt(i, 5) * cols),
			Y2:         int(outputReshaped.GetFloatAt(i, 6) * rows),
		})
	}

	return detections, nil
}

// Close releases the network.
func (d *Detector) Close() {
	d.net.Close()
}
