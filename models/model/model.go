// Package model - Definitions shared by every detection model.
package model

import (
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/pkg/errors"
)

// Family is the label set a model's class indices refer to.
type Family string

const (
	// ModelFamilyYOLO is the YOLO model family (80 COCO classes, zero-based).
	ModelFamilyYOLO Family = "yolo"
	// ModelFamilyYOLOVOC is the Pascal VOC label set indexed the YOLO way (zero-based).
	ModelFamilyYOLOVOC Family = "yolo-voc"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameTinyYOLOv2VOC is Tiny-YOLOv2 trained on Pascal VOC.
	ModelNameTinyYOLOv2VOC Name = "tinyyolov2-voc"
	// ModelNameTinyYOLOv2COCO is Tiny-YOLOv2 trained on COCO.
	ModelNameTinyYOLOv2COCO Name = "tinyyolov2-coco"
)

// ErrUnsupportedModel is returned for an unknown model name.
var ErrUnsupportedModel = errors.New("unsupported model")

// Options describes a model: where it lives, how to feed it and how to read
// its output.
type Options struct {
	Name   Name   `json:"name" yaml:"name"`
	Family Family `json:"family" yaml:"family"`
	Path   string `json:"path" yaml:"path"`
	// Input and Output are the graph tensor names.
	Input  string `json:"input" yaml:"input"`
	Output string `json:"output" yaml:"output"`
	// InputSize is the square input resolution in pixels.
	InputSize int                   `json:"input_size" yaml:"input_size"`
	Shape     postprocess.GridShape `json:"shape" yaml:"shape"`
	Layout    postprocess.Layout    `json:"layout" yaml:"layout"`
	Anchors   postprocess.Anchors   `json:"anchors" yaml:"anchors"`
}

// Model is a detection model with a fixed output geometry.
type Model interface {
	// Options returns a copy of the model description.
	Options() Options
	// NewDecoder builds a decoder from the caller's thresholds and the
	// model's own geometry (input size, shape, layout, anchors).
	NewDecoder(base postprocess.Config) (*postprocess.Decoder, error)
}

// NewModelArgs is the arguments for creating a new model. Empty fields keep
// the model's defaults.
type NewModelArgs struct {
	Name   Name   `json:"name" yaml:"name" koanf:"name"`
	Path   string `json:"path" yaml:"path" koanf:"path"`
	Input  string `json:"input" yaml:"input" koanf:"input"`
	Output string `json:"output" yaml:"output" koanf:"output"`
}

// Apply overlays the non-empty arguments onto defaults.
//
// Arguments:
//   - defaults: The model's built-in options.
//
// Returns:
//   - The merged options.
func (a NewModelArgs) Apply(defaults Options) Options {
	if a.Path != "" {
		defaults.Path = a.Path
	}
	if a.Input != "" {
		defaults.Input = a.Input
	}
	if a.Output != "" {
		defaults.Output = a.Output
	}
	return defaults
}
