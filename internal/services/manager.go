package services

import (
	"errors"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"ppemonitor/internal/logger"
	"ppemonitor/internal/model"
	"ppemonitor/internal/services/ai"
	"ppemonitor/internal/services/camera"
	"ppemonitor/internal/services/websocket"
)

// ErrNoFrame signals that the capture source produced no frame; stream
// loops treat it as end of stream.
var ErrNoFrame = errors.New("no frame from capture source")

// Manager drives the per-frame pipeline: capture, detect, annotate, publish
// live counts, maybe record an event, encode to JPEG. One Manager is shared
// by all stream clients; frame processing is serialized because neither the
// capture handle nor the detection network is safe for concurrent use.
type Manager struct {
	camera   *camera.Camera
	detector *ai.Detector
	live     *LiveState
	hub      *websocket.HubService
	recorder *Recorder
	logger   *logger.Logger

	mu sync.Mutex
}

func NewManager(cam *camera.Camera, detector *ai.Detector, live *LiveState, hub *websocket.HubService, recorder *Recorder, logger *logger.Logger) *Manager {
	return &Manager{
		camera:   cam,
		detector: detector,
		live:     live,
		hub:      hub,
		recorder: recorder,
		logger:   logger,
	}
}

// NextFrame processes one frame end to end and returns it JPEG-encoded for
// the multipart stream. Returns ErrNoFrame when the capture source fails.
func (m *Manager) NextFrame() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := m.camera.Read(&frame); !ok {
		m.logger.Warning("Camera read failed, ending stream")
		return nil, ErrNoFrame
	}

	detections, err := m.detector.Detect(frame)
	if err != nil {
		return nil, err
	}

	annotated := frame.Clone()
	defer annotated.Close()
	ai.DrawDetections(&annotated, detections)

	counts := model.CountClasses(detections)
	m.live.Set(counts)
	m.hub.BroadcastCounts(counts)

	m.recorder.MaybeSave(annotated, counts)

	// The live stamp goes on after the recorder has taken its copy; saved
	// snapshots carry their own timestamp in a different corner.
	ai.StampStream(&annotated, time.Now())

	buf, err := gocv.IMEncode(".jpg", annotated)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	jpeg := make([]byte, buf.Len())
	copy(jpeg, buf.GetBytes())
	return jpeg, nil
}

// GetLiveState returns the live counts container.
func (m *Manager) GetLiveState() *LiveState {
	return m.live
}

// GetHub returns the websocket hub.
func (m *Manager) GetHub() *websocket.HubService {
	return m.hub
}
