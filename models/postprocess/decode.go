package postprocess

import "github.com/pkg/errors"

// Anchor is a reference box size in grid-cell units.
type Anchor struct {
	Width  float32 `json:"width" yaml:"width" koanf:"width"`
	Height float32 `json:"height" yaml:"height" koanf:"height"`
}

// Anchors is the per-slot anchor template of a model. It is never mutated
// after construction and may be shared between decoders.
type Anchors []Anchor

// ParseAnchors builds an anchor template from flat width,height pairs, the
// way darknet configs list them.
//
// Arguments:
//   - flat: Alternating widths and heights.
//
// Returns:
//   - Anchors: One anchor per pair.
//   - error: ErrInvalidConfig (wrapped) for an odd count or a non-positive size.
func ParseAnchors(flat []float32) (Anchors, error) {
	if len(flat) == 0 || len(flat)%2 != 0 {
		return nil, errors.Wrapf(ErrInvalidConfig, "anchors need width,height pairs, got %d values", len(flat))
	}

	anchors := make(Anchors, 0, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		a := Anchor{Width: flat[i], Height: flat[i+1]}
		if !(a.Width > 0 && a.Height > 0) {
			return nil, errors.Wrapf(ErrInvalidConfig, "anchor %d has non-positive size %vx%v", i/2, a.Width, a.Height)
		}
		anchors = append(anchors, a)
	}

	return anchors, nil
}

// DecodeGrid converts every (row, col, anchor) slot of the tensor into a
// Candidate, in scan order, regardless of its confidence.
//
//	x = (col + sigmoid(tx)) / gridWidth
//	y = (row + sigmoid(ty)) / gridHeight
//	w = anchorWidth * exp(tw) / gridWidth
//	h = anchorHeight * exp(th) / gridHeight
//	confidence = sigmoid(to) * max(softmax(classes))
//
// A NaN anywhere in a slot yields confidence 0 for that slot.
//
// Arguments:
//   - reader: The tensor view.
//   - anchors: The anchor template; its length must equal the shape's anchor count.
//
// Returns:
//   - []Candidate: One candidate per slot.
//   - error: ErrInvalidConfig (wrapped) if the anchor template does not fit the shape.
func DecodeGrid(reader *TensorReader, anchors Anchors) ([]Candidate, error) {
	shape := reader.Shape()
	if len(anchors) != shape.Anchors {
		return nil, errors.Wrapf(ErrInvalidConfig, "%d anchors for a grid with %d anchors per cell",
			len(anchors), shape.Anchors)
	}

	gridW := float32(shape.Width)
	gridH := float32(shape.Height)

	candidates := make([]Candidate, 0, shape.Slots())
	logits := make([]float32, shape.Classes)

	for row := 0; row < shape.Height; row++ {
		for col := 0; col < shape.Width; col++ {
			for a := 0; a < shape.Anchors; a++ {
				sx, okX := sigmoid(reader.Value(row, col, a, 0))
				sy, okY := sigmoid(reader.Value(row, col, a, 1))
				ew, okW := expScale(reader.Value(row, col, a, 2))
				eh, okH := expScale(reader.Value(row, col, a, 3))
				objectness, okO := sigmoid(reader.Value(row, col, a, 4))

				for c := range logits {
					logits[c] = reader.Value(row, col, a, boxChannels+c)
				}
				classID, prob, okC := softmaxArgmax(logits)

				confidence := sanitizeConfidence(objectness * prob)
				if !(okX && okY && okW && okH && okO && okC) {
					confidence = 0
				}

				candidates = append(candidates, Candidate{
					X:          (float32(col) + sx) / gridW,
					Y:          (float32(row) + sy) / gridH,
					W:          anchors[a].Width * ew / gridW,
					H:          anchors[a].Height * eh / gridH,
					ClassID:    classID,
					Confidence: confidence,
					Order:      len(candidates),
				})
			}
		}
	}

	return candidates, nil
}
