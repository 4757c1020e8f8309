// Package tinyyolov2 - Tiny-YOLOv2 models.
//
// Both variants emit a single "grid" tensor of shape
// [1, anchors*(5+classes), 13, 13] for a 1x3x416x416 "image" input.
package tinyyolov2

import (
	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
)

const (
	// InputSize is the square input resolution.
	InputSize = 416
	// GridSize is the number of cells along each axis.
	GridSize = 13
	// NumAnchors is the number of anchor boxes per cell.
	NumAnchors = 5
	// InputName is the graph input tensor name.
	InputName = "image"
	// OutputName is the graph output tensor name.
	OutputName = "grid"
)

// VOCAnchors are the Tiny-YOLOv2 VOC anchor sizes in grid-cell units.
var VOCAnchors = postprocess.Anchors{
	{Width: 1.08, Height: 1.19},
	{Width: 3.42, Height: 4.41},
	{Width: 6.63, Height: 11.38},
	{Width: 9.42, Height: 5.11},
	{Width: 16.62, Height: 10.52},
}

// COCOAnchors are the Tiny-YOLOv2 COCO anchor sizes in grid-cell units.
var COCOAnchors = postprocess.Anchors{
	{Width: 0.57273, Height: 0.677385},
	{Width: 1.87446, Height: 2.06253},
	{Width: 3.33843, Height: 5.47434},
	{Width: 7.88282, Height: 3.52778},
	{Width: 9.77052, Height: 9.16828},
}

// VOCShape is the output shape of the VOC model.
var VOCShape = postprocess.GridShape{Height: GridSize, Width: GridSize, Anchors: NumAnchors, Classes: 20}

// COCOShape is the output shape of the COCO model.
var COCOShape = postprocess.GridShape{Height: GridSize, Width: GridSize, Anchors: NumAnchors, Classes: 80}

// TinyYOLOv2 is an instance of a Tiny-YOLOv2 model.
type TinyYOLOv2 struct {
	options model.Options
}

func newModel(defaults model.Options, args model.NewModelArgs) *TinyYOLOv2 {
	return &TinyYOLOv2{options: args.Apply(defaults)}
}

// NewVOC creates the Pascal VOC variant.
//
// Arguments:
//   - args: Path and optional tensor name overrides.
//
// Returns:
//   - The model.
func NewVOC(args model.NewModelArgs) *TinyYOLOv2 {
	return newModel(model.Options{
		Name:      model.ModelNameTinyYOLOv2VOC,
		Family:    model.ModelFamilyYOLOVOC,
		Path:      "TinyYolo2_model.onnx",
		Input:     InputName,
		Output:    OutputName,
		InputSize: InputSize,
		Shape:     VOCShape,
		Layout:    postprocess.LayoutChannelMajor,
		Anchors:   VOCAnchors,
	}, args)
}

// NewCOCO creates the COCO variant.
//
// Arguments:
//   - args: Path and optional tensor name overrides.
//
// Returns:
//   - The model.
func NewCOCO(args model.NewModelArgs) *TinyYOLOv2 {
	return newModel(model.Options{
		Name:      model.ModelNameTinyYOLOv2COCO,
		Family:    model.ModelFamilyYOLO,
		Path:      "tinyyolov2-coco.onnx",
		Input:     InputName,
		Output:    OutputName,
		InputSize: InputSize,
		Shape:     COCOShape,
		Layout:    postprocess.LayoutChannelMajor,
		Anchors:   COCOAnchors,
	}, args)
}

// Options returns a copy of the model options.
func (m *TinyYOLOv2) Options() model.Options {
	o := m.options
	o.Anchors = append(postprocess.Anchors(nil), o.Anchors...)
	return o
}

// NewDecoder builds a decoder for this model's output.
//
// Arguments:
//   - base: Thresholds and worker count. Its geometry fields are replaced.
//
// Returns:
//   - The decoder.
//   - ErrInvalidConfig (wrapped) when the thresholds are invalid.
func (m *TinyYOLOv2) NewDecoder(base postprocess.Config) (*postprocess.Decoder, error) {
	base.InputSize = m.options.InputSize
	base.Shape = m.options.Shape
	base.Layout = m.options.Layout
	base.Anchors = m.options.Anchors
	return postprocess.NewDecoder(base)
}
