// Package detector runs images through a detection model and labels the
// decoded boxes.
package detector

import (
	"context"
	"image"
	"strconv"
	"sync"
	"time"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/nvr-ai/go-yolo/inference"
	"github.com/nvr-ai/go-yolo/models"
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Detection is a labeled detection in original-image pixels.
type Detection struct {
	postprocess.DetectionBox
	Label string `json:"label"`
}

// Config holds the thresholds and input format for a Detector.
type Config struct {
	// Decoder carries the thresholds. Geometry comes from the model.
	Decoder postprocess.Config `json:"decoder" yaml:"decoder" koanf:"decoder"`
	// Input is the tensor format. Size is forced to the model's input size.
	Input inference.InputOptions `json:"input" yaml:"input" koanf:"input"`
	// RelevantClasses keeps only these labels when non-empty.
	RelevantClasses []string `json:"relevant_classes" yaml:"relevant_classes" koanf:"relevantclasses"`
	// ClipBoxes clamps boxes to the image bounds.
	ClipBoxes bool `json:"clip_boxes" yaml:"clip_boxes" koanf:"clipboxes"`
}

// DefaultConfig returns the default thresholds and Tiny-YOLOv2 input format.
func DefaultConfig() Config {
	return Config{
		Decoder: postprocess.DefaultConfig(),
		Input:   inference.DefaultInputOptions(),
	}
}

// Detector is safe for concurrent use when its Runner is.
type Detector struct {
	runner   inference.Runner
	model    model.Options
	decoder  *postprocess.Decoder
	classes  *models.ClassManager
	input    inference.InputOptions
	relevant map[string]bool
	clip     bool
	logger   *zap.Logger
	buffers  sync.Pool
}

// New wires a runner and a model into a Detector.
//
// Arguments:
//   - runner: Executes the model graph.
//   - m: The model; supplies geometry and the label family.
//   - cfg: Thresholds, input format and class filter.
//   - logger: Debug logging of counts and timings. Nil disables logging.
//
// Returns:
//   - *Detector: The detector.
//   - error: ErrInvalidConfig (wrapped) for bad thresholds.
func New(runner inference.Runner, m model.Model, cfg Config, logger *zap.Logger) (*Detector, error) {
	if runner == nil {
		return nil, errors.New("runner is nil")
	}

	decoder, err := m.NewDecoder(cfg.Decoder)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	opts := m.Options()
	input := cfg.Input
	input.Size = opts.InputSize

	var relevant map[string]bool
	if len(cfg.RelevantClasses) > 0 {
		relevant = make(map[string]bool, len(cfg.RelevantClasses))
		for _, c := range cfg.RelevantClasses {
			relevant[c] = true
		}
	}

	d := &Detector{
		runner:   runner,
		model:    opts,
		decoder:  decoder,
		classes:  models.DefaultClassManager(),
		input:    input,
		relevant: relevant,
		clip:     cfg.ClipBoxes,
		logger:   logger.With(zap.String("model", string(opts.Name))),
	}
	d.buffers.New = func() any {
		buf := make([]float32, input.TensorLen())
		return &buf
	}

	return d, nil
}

// Detect decodes an encoded image (jpeg, png, webp, bmp, tiff) and runs detection on it.
//
// Arguments:
//   - ctx: Cancels the request between stages.
//   - imageBytes: The encoded image.
//
// Returns:
//   - []Detection: At most MaxBoxes labeled detections by descending confidence.
//   - error: Decode, inference or output shape errors.
func (d *Detector) Detect(ctx context.Context, imageBytes []byte) ([]Detection, error) {
	img, format, err := images.Decode(imageBytes)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("decoded image",
		zap.String("format", string(format)),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return d.DetectImage(ctx, img)
}

// DetectImage runs detection on an already decoded image.
func (d *Detector) DetectImage(ctx context.Context, img image.Image) ([]Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil, errors.Errorf("empty image %dx%d", size.X, size.Y)
	}

	buf := d.buffers.Get().(*[]float32)
	defer d.buffers.Put(buf)

	start := time.Now()
	if err := inference.PrepareInput(img, d.input, *buf); err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}
	prepared := time.Now()

	output, err := d.runner.Run(ctx, *buf)
	if err != nil {
		return nil, errors.Wrap(err, "inference failed")
	}
	inferred := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	boxes, err := d.decoder.Decode(output, size.X, size.Y)
	if err != nil {
		return nil, err
	}

	detections := make([]Detection, 0, len(boxes))
	for _, box := range boxes {
		label := d.label(box.ClassID)
		if d.relevant != nil && !d.relevant[label] {
			continue
		}
		if d.clip {
			box = box.Clip(size.X, size.Y)
		}
		detections = append(detections, Detection{DetectionBox: box, Label: label})
	}

	d.logger.Debug("detected",
		zap.Int("boxes", len(boxes)),
		zap.Int("kept", len(detections)),
		zap.Duration("prepare", prepared.Sub(start)),
		zap.Duration("inference", inferred.Sub(prepared)),
		zap.Duration("decode", time.Since(inferred)))

	return detections, nil
}

func (d *Detector) label(classID int) string {
	name, err := d.classes.GetName(d.model.Family, classID)
	if err != nil {
		return "class-" + strconv.Itoa(classID)
	}
	return name
}
