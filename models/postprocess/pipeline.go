package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

// Config is the decoder configuration surface.
type Config struct {
	// ConfidenceThreshold filters detections below this confidence level.
	ConfidenceThreshold float32 `json:"confidence_threshold" yaml:"confidence_threshold" koanf:"confidencethreshold"`
	// MaxBoxes caps the number of detections per image.
	MaxBoxes int `json:"max_boxes" yaml:"max_boxes" koanf:"maxboxes"`
	// OverlapThreshold is the Non-Maximum Suppression IoU threshold.
	OverlapThreshold float32 `json:"overlap_threshold" yaml:"overlap_threshold" koanf:"overlapthreshold"`
	// InputSize is the detector's square input resolution in pixels.
	InputSize int `json:"input_size" yaml:"input_size" koanf:"inputsize"`
	// Shape is the logical shape of the detector output.
	Shape GridShape `json:"shape" yaml:"shape" koanf:"shape"`
	// Anchors is the model's anchor template, one per anchor slot.
	Anchors Anchors `json:"anchors" yaml:"anchors" koanf:"anchors"`
	// Layout is the memory order of the detector output.
	Layout Layout `json:"layout" yaml:"layout" koanf:"layout"`
	// NumWorkers > 1 suppresses class buckets concurrently.
	NumWorkers int `json:"num_workers" yaml:"num_workers" koanf:"numworkers"`
	// ClassAgnostic lets boxes of different classes suppress each other.
	ClassAgnostic bool `json:"class_agnostic" yaml:"class_agnostic" koanf:"classagnostic"`
}

// DefaultConfig returns the thresholds the web front end uses: 5 boxes at 0.5
// confidence, 0.45 overlap, 416x416 input. Shape and Anchors are model
// specific and left empty.
//
// @example
// config := DefaultConfig()
// config.Shape = tinyyolov2.Shape
// config.Anchors = tinyyolov2.VOCAnchors
// decoder, err := NewDecoder(config)
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: 0.5,
		MaxBoxes:            5,
		OverlapThreshold:    0.45,
		InputSize:           416,
		Layout:              LayoutGridMajor,
		NumWorkers:          1,
	}
}

func inUnitRange(v float32) bool {
	return !math32.IsNaN(v) && v >= 0 && v <= 1
}

// Validate checks the configuration for values the pipeline cannot honor.
func (c Config) Validate() error {
	if !inUnitRange(c.ConfidenceThreshold) {
		return errors.Wrapf(ErrInvalidConfig, "confidence threshold %v outside [0,1]", c.ConfidenceThreshold)
	}
	if !inUnitRange(c.OverlapThreshold) {
		return errors.Wrapf(ErrInvalidConfig, "overlap threshold %v outside [0,1]", c.OverlapThreshold)
	}
	if c.MaxBoxes <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "max boxes must be positive, got %d", c.MaxBoxes)
	}
	if c.InputSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "input size must be positive, got %d", c.InputSize)
	}
	if err := c.Shape.Validate(); err != nil {
		return err
	}
	if len(c.Anchors) != c.Shape.Anchors {
		return errors.Wrapf(ErrInvalidConfig, "%d anchors for a grid with %d anchors per cell",
			len(c.Anchors), c.Shape.Anchors)
	}
	for i, a := range c.Anchors {
		if !(a.Width > 0 && a.Height > 0) {
			return errors.Wrapf(ErrInvalidConfig, "anchor %d has non-positive size %vx%v", i, a.Width, a.Height)
		}
	}
	switch c.Layout {
	case LayoutGridMajor, LayoutChannelMajor, "":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown tensor layout %q", c.Layout)
	}
	return nil
}

// Decoder turns raw detector output into detections. It holds only
// read-only configuration and is safe for concurrent use.
type Decoder struct {
	config Config
}

// NewDecoder validates config and builds a decoder.
func NewDecoder(config Config) (*Decoder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// The caller's slice may change after this returns.
	config.Anchors = append(Anchors(nil), config.Anchors...)

	return &Decoder{config: config}, nil
}

// Config returns the decoder configuration.
func (d *Decoder) Config() Config {
	c := d.config
	c.Anchors = append(Anchors(nil), c.Anchors...)
	return c
}

// Decode runs the full pipeline: read, decode, filter, suppress, map.
//
// Arguments:
//   - raw: The flat detector output tensor. Not modified.
//   - originalWidth, originalHeight: The original image dimensions in pixels.
//
// Returns:
//   - []DetectionBox: At most MaxBoxes detections with confidence >=
//     ConfidenceThreshold, by descending confidence. Empty when nothing is detected.
//   - error: ErrShapeMismatch (wrapped) when raw does not match the configured shape.
func (d *Decoder) Decode(raw []float32, originalWidth, originalHeight int) ([]DetectionBox, error) {
	if originalWidth <= 0 || originalHeight <= 0 {
		return nil, errors.Errorf("invalid original image size %dx%d", originalWidth, originalHeight)
	}

	reader, err := NewTensorReader(raw, d.config.Shape, d.config.Layout)
	if err != nil {
		return nil, err
	}

	candidates, err := DecodeGrid(reader, d.config.Anchors)
	if err != nil {
		return nil, err
	}

	candidates = FilterCandidates(candidates, d.config.ConfidenceThreshold, d.config.MaxBoxes)

	candidates = ApplyNMS(candidates, &NMSConfig{
		IoUThreshold:  d.config.OverlapThreshold,
		ClassAgnostic: d.config.ClassAgnostic,
		NumWorkers:    d.config.NumWorkers,
	})

	boxes := make([]DetectionBox, 0, len(candidates))
	for _, c := range candidates {
		boxes = append(boxes, MapToImage(c, d.config.InputSize, originalWidth, originalHeight))
	}

	return boxes, nil
}
