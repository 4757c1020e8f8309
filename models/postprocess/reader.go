package postprocess

import (
	"fmt"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// boxChannels is tx, ty, tw, th and the objectness logit.
const boxChannels = 5

// GridShape is the logical shape of a detector output:
// [Height, Width, Anchors, 5+Classes].
type GridShape struct {
	Height  int `json:"height" yaml:"height" koanf:"height"`
	Width   int `json:"width" yaml:"width" koanf:"width"`
	Anchors int `json:"anchors" yaml:"anchors" koanf:"anchors"`
	Classes int `json:"classes" yaml:"classes" koanf:"classes"`
}

// Channels returns the number of values per anchor slot.
func (s GridShape) Channels() int {
	return boxChannels + s.Classes
}

// Len returns the number of values a tensor of this shape holds.
func (s GridShape) Len() int {
	return s.Height * s.Width * s.Anchors * s.Channels()
}

// Slots returns the number of (row, col, anchor) triples.
func (s GridShape) Slots() int {
	return s.Height * s.Width * s.Anchors
}

func (s GridShape) String() string {
	return fmt.Sprintf("[%d, %d, %d, %d]", s.Height, s.Width, s.Anchors, s.Channels())
}

// Validate checks that every dimension is positive.
func (s GridShape) Validate() error {
	if s.Height <= 0 || s.Width <= 0 || s.Anchors <= 0 || s.Classes <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "grid shape %+v must be positive in every dimension", s)
	}
	return nil
}

// Layout describes how the flat tensor is ordered in memory.
type Layout string

const (
	// LayoutGridMajor is [Height, Width, Anchors, Channels].
	LayoutGridMajor Layout = "grid-major"
	// LayoutChannelMajor is [Anchors*Channels, Height, Width], the order the
	// Tiny-YOLOv2 ONNX "grid" output uses.
	LayoutChannelMajor Layout = "channel-major"
)

// TensorReader is a read-only indexed view over a detector output tensor.
type TensorReader struct {
	shape  GridShape
	layout Layout
	dense  *tensor.Dense
}

// NewTensorReader wraps data without copying it.
//
// Arguments:
//   - data: The flat detector output. It must not be mutated while the reader is in use.
//   - shape: The declared logical shape.
//   - layout: The memory order of data. Empty selects LayoutGridMajor.
//
// Returns:
//   - *TensorReader: The view.
//   - error: ErrShapeMismatch (wrapped) when len(data) does not match shape.
func NewTensorReader(data []float32, shape GridShape, layout Layout) (*TensorReader, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.Len() {
		return nil, errors.Wrapf(ErrShapeMismatch, "tensor has %d values, shape %s needs %d",
			len(data), shape, shape.Len())
	}

	var dims []int
	switch layout {
	case LayoutGridMajor, "":
		layout = LayoutGridMajor
		dims = []int{shape.Height, shape.Width, shape.Anchors, shape.Channels()}
	case LayoutChannelMajor:
		dims = []int{shape.Anchors, shape.Channels(), shape.Height, shape.Width}
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown tensor layout %q", layout)
	}

	return &TensorReader{
		shape:  shape,
		layout: layout,
		dense:  tensor.New(tensor.WithShape(dims...), tensor.WithBacking(data)),
	}, nil
}

// Shape returns the declared logical shape.
func (r *TensorReader) Shape() GridShape {
	return r.shape
}

// Layout returns the memory order of the backing data.
func (r *TensorReader) Layout() Layout {
	return r.layout
}

// Value returns the value at (row, col, anchor, channel).
//
// It panics with ErrOutOfRange when any index is outside the declared shape.
func (r *TensorReader) Value(row, col, anchor, channel int) float32 {
	s := r.shape
	if row < 0 || row >= s.Height || col < 0 || col >= s.Width ||
		anchor < 0 || anchor >= s.Anchors || channel < 0 || channel >= s.Channels() {
		panic(errors.Wrapf(ErrOutOfRange, "index (%d, %d, %d, %d) outside shape %s",
			row, col, anchor, channel, s))
	}

	var (
		v   any
		err error
	)
	switch r.layout {
	case LayoutChannelMajor:
		v, err = r.dense.At(anchor, channel, row, col)
	default:
		v, err = r.dense.At(row, col, anchor, channel)
	}
	if err != nil {
		panic(errors.Wrap(ErrOutOfRange, err.Error()))
	}

	return v.(float32)
}
