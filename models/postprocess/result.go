// Package postprocess - Postprocessing utilities for models.
package postprocess

import "github.com/nvr-ai/go-yolo/images"

// Candidate is a decoded anchor slot before filtering and suppression.
//
// Coordinates are normalized to [0,1] relative to the detector input.
type Candidate struct {
	// X, Y is the box center.
	X, Y float32
	// W, H is the box size.
	W, H float32
	// The predicted class index.
	ClassID int
	// objectness * class probability, always within [0,1].
	Confidence float32
	// Order is the scan index (row, then col, then anchor) used to break ties.
	Order int
}

// Rect returns the candidate in corner form.
func (c Candidate) Rect() images.Rect {
	return images.RectFromCenter(c.X, c.Y, c.W, c.H)
}

// DetectionBox is a final detection in original-image pixel coordinates.
type DetectionBox struct {
	// The predicted class index.
	ClassID int `json:"class_id"`
	// The confidence score of the detection.
	Confidence float32 `json:"confidence"`
	// The bounding box. Not clamped to the image bounds.
	Box images.Rect `json:"box"`
}

// Clip returns a copy of the detection with its box clamped to the image.
func (d DetectionBox) Clip(width, height int) DetectionBox {
	d.Box = d.Box.Clip(float32(width), float32(height))
	return d
}
