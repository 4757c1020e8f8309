package postprocess

import "github.com/nvr-ai/go-yolo/images"

// MapToImage rescales a normalized candidate onto the original image.
//
// The normalized center and size are first scaled to the detector's square
// input resolution, then each axis is rescaled by originalDim / inputSize.
// Arithmetic runs in float64 so integral results stay exact. The box is not
// clamped to the image bounds.
//
// Arguments:
//   - c: The candidate, normalized to the detector input.
//   - inputSize: The detector's square input resolution (e.g. 416).
//   - originalWidth, originalHeight: The original image dimensions in pixels.
//
// Returns:
//   - The detection in original-image pixel coordinates.
func MapToImage(c Candidate, inputSize, originalWidth, originalHeight int) DetectionBox {
	size := float64(inputSize)
	ow := float64(originalWidth)
	oh := float64(originalHeight)

	// Detector-space pixels.
	cx := float64(c.X) * size
	cy := float64(c.Y) * size
	w := float64(c.W) * size
	h := float64(c.H) * size

	// Original-image pixels.
	cx = cx * ow / size
	cy = cy * oh / size
	w = w * ow / size
	h = h * oh / size

	return DetectionBox{
		ClassID:    c.ClassID,
		Confidence: c.Confidence,
		Box: images.Rect{
			X1: float32(cx - w/2),
			Y1: float32(cy - h/2),
			X2: float32(cx + w/2),
			Y2: float32(cy + h/2),
		},
	}
}
