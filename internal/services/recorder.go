package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"ppemonitor/internal/logger"
	"ppemonitor/internal/model"
	"ppemonitor/internal/repository"
	"ppemonitor/internal/services/ai"
)

// Recorder persists detection events: it gates saves on a cooldown, writes
// an annotated snapshot to disk and inserts a summary row. Persistence
// failures are logged and never interrupt the live stream.
type Recorder struct {
	repo        repository.EventRepository
	logger      *logger.Logger
	staticDir   string
	snapshotDir string // relative to staticDir
	cooldown    time.Duration

	mu       sync.Mutex
	lastSave time.Time
	now      func() time.Time
}

// NewRecorder creates a Recorder and ensures the snapshot directory exists.
func NewRecorder(repo repository.EventRepository, logger *logger.Logger, staticDir, snapshotDir string, cooldown time.Duration) (*Recorder, error) {
	fullDir := filepath.Join(staticDir, snapshotDir)
	if err := os.MkdirAll(fullDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	return &Recorder{
		repo:        repo,
		logger:      logger,
		staticDir:   staticDir,
		snapshotDir: snapshotDir,
		cooldown:    cooldown,
		now:         time.Now,
	}, nil
}

// MaybeSave records a detection event when there are detections and the
// cooldown since the previous save has elapsed. The frame is the annotated
// stream frame before the live timestamp is burned in; the recorder stamps
// its own save-variant copy.
func (r *Recorder) MaybeSave(frame gocv.Mat, counts map[string]int) {
	now := r.now()
	if !r.shouldSave(counts, now) {
		return
	}

	status := model.DeriveStatus(counts)
	filename := snapshotFilename(status, now)
	relativePath := r.snapshotDir + "/" + filename
	fullPath := filepath.Join(r.staticDir, r.snapshotDir, filename)

	snapshot := frame.Clone()
	defer snapshot.Close()
	ai.StampSnapshot(&snapshot, now)

	if ok := gocv.IMWrite(fullPath, snapshot); !ok {
		r.logger.Error("Failed to write snapshot %s", fullPath)
		return
	}

	// The cooldown clock advances even if the insert below fails, so a
	// broken database does not cause rapid re-saving.
	r.markSaved(now)

	ev := &model.DetectionEvent{
		Timestamp:       now,
		DetectedObjects: model.FormatSummary(counts),
		ImagePath:       relativePath,
		Status:          status,
	}
	if _, err := r.repo.Insert(ev); err != nil {
		r.logger.Error("Failed to insert detection event: %v", err)
		return
	}

	r.logger.Info("Saved '%s' detection event: %s", status, relativePath)
}

// shouldSave reports whether a save is due: at least one detection and more
// than the cooldown since the previous save.
func (r *Recorder) shouldSave(counts map[string]int, now time.Time) bool {
	if len(counts) == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return now.Sub(r.lastSave) > r.cooldown
}

func (r *Recorder) markSaved(now time.Time) {
	r.mu.Lock()
	r.lastSave = now
	r.mu.Unlock()
}

// snapshotFilename derives the snapshot name from the status and a compact
// timestamp, e.g. "Incomplete_20250131-154205.jpg".
func snapshotFilename(status string, at time.Time) string {
	return fmt.Sprintf("%s_%s.jpg", strings.ReplaceAll(status, " ", "_"), at.Format("20060102-150405"))
}
