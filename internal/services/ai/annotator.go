package ai

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"ppemonitor/internal/model"
)

var (
	classColors = map[string]color.RGBA{
		"helmet": {R: 0, G: 255, B: 0},
		"mask":   {R: 0, G: 0, B: 255},
		"vest":   {R: 255, G: 165, B: 0},
	}
	defaultColor = color.RGBA{R: 255, G: 255, B: 255}

	labelColor  = color.RGBA{R: 0, G: 0, B: 0}
	streamColor = color.RGBA{R: 255, G: 0, B: 0}
	stampColor  = color.RGBA{R: 255, G: 255, B: 255}
)

// DrawDetections draws a labeled box per detection onto frame: a 1px
// rectangle in the class color, a filled background sized to the label text
// directly above the box, and the "{class} {confidence}" label on top of it.
func DrawDetections(frame *gocv.Mat, detections []model.Detection) {
	for _, det := range detections {
		boxColor, ok := classColors[det.Class]
		if !ok {
			boxColor = defaultColor
		}

		rect := image.Rect(det.X1, det.Y1, det.X2, det.Y2)
		gocv.Rectangle(frame, rect, boxColor, 1)

		label := fmt.Sprintf("%s %.2f", det.Class, det.Confidence)
		textSize := gocv.GetTextSize(label, gocv.FontHersheySimplex, 0.4, 1)

		background := image.Rect(det.X1, det.Y1-textSize.Y-5, det.X1+textSize.X, det.Y1)
		gocv.Rectangle(frame, background, boxColor, -1)
		gocv.PutText(frame, label, image.Pt(det.X1, det.Y1-3), gocv.FontHersheySimplex, 0.4, labelColor, 1)
	}
}

// StampStream burns the live-stream wall clock into the top-left corner.
func StampStream(frame *gocv.Mat, at time.Time) {
	text := at.Format("02-01-2006 15:04:05")
	gocv.PutText(frame, text, image.Pt(10, 30), gocv.FontHersheySimplex, 0.6, streamColor, 2)
}

// StampSnapshot burns the save timestamp into the bottom-left corner of a
// frame about to be persisted. The position and format differ from the
// live-stream stamp on purpose.
func StampSnapshot(frame *gocv.Mat, at time.Time) {
	text := at.Format("2006-01-02 15:04:05")
	gocv.PutText(frame, text, image.Pt(10, frame.Rows()-10), gocv.FontHersheySimplex, 0.6, stampColor, 1)
}
