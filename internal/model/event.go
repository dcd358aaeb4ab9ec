package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Detection event statuses stored in the deteksi table.
const (
	StatusComplete   = "Complete"
	StatusIncomplete = "Incomplete"
)

// RequiredClasses are the PPE classes that must all be present for a
// detection event to be considered Complete.
var RequiredClasses = []string{"helmet", "mask", "vest"}

// Detection is a single detected object on one frame. Coordinates are
// pixel corners of the bounding box.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	X1         int     `json:"x1"`
	Y1         int     `json:"y1"`
	X2         int     `json:"x2"`
	Y2         int     `json:"y2"`
}

// DetectionEvent is a persisted row in the deteksi table.
type DetectionEvent struct {
	ID              int64     `json:"id"`
	Timestamp       time.Time `json:"timestamp"`
	DetectedObjects string    `json:"detected_objects"`
	ImagePath       string    `json:"image_path"`
	Status          string    `json:"status"`
}

// ClassCount is one "class: count" element of an event summary.
type ClassCount struct {
	Class string
	Count int
}

// CountClasses tallies detections per class name.
func CountClasses(detections []Detection) map[string]int {
	counts := make(map[string]int)
	for _, det := range detections {
		counts[det.Class]++
	}
	return counts
}

// DeriveStatus returns StatusComplete when every required PPE class has a
// positive count, StatusIncomplete otherwise.
func DeriveStatus(counts map[string]int) string {
	for _, class := range RequiredClasses {
		if counts[class] <= 0 {
			return StatusIncomplete
		}
	}
	return StatusComplete
}

// FormatSummary serializes per-class counts as "helmet: 1, vest: 2".
// Classes are sorted so the summary is deterministic.
func FormatSummary(counts map[string]int) string {
	classes := make([]string, 0, len(counts))
	for class := range counts {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	parts := make([]string, 0, len(classes))
	for _, class := range classes {
		parts = append(parts, fmt.Sprintf("%s: %d", class, counts[class]))
	}
	return strings.Join(parts, ", ")
}

// ParseSummary parses a "class: count, class: count" summary back into
// class/count pairs. Malformed counts parse as zero; empty input yields nil.
func ParseSummary(summary string) []ClassCount {
	if strings.TrimSpace(summary) == "" {
		return nil
	}

	var pairs []ClassCount
	for _, part := range strings.Split(summary, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		class, countStr, _ := strings.Cut(part, ":")
		count, _ := strconv.Atoi(strings.TrimSpace(countStr))
		pairs = append(pairs, ClassCount{
			Class: strings.TrimSpace(class),
			Count: count,
		})
	}
	return pairs
}
