package tinyyolov2

import (
	"testing"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVOC(t *testing.T) {
	m := NewVOC(model.NewModelArgs{})
	opts := m.Options()

	assert.Equal(t, model.ModelNameTinyYOLOv2VOC, opts.Name)
	assert.Equal(t, "TinyYolo2_model.onnx", opts.Path)
	assert.Equal(t, "image", opts.Input)
	assert.Equal(t, "grid", opts.Output)
	assert.Equal(t, 416, opts.InputSize)
	assert.Equal(t, postprocess.LayoutChannelMajor, opts.Layout)
	assert.Equal(t, 25, opts.Shape.Channels())
	assert.Equal(t, 125*13*13, opts.Shape.Len())
	assert.Equal(t, VOCAnchors, opts.Anchors)
}

func TestNewCOCO(t *testing.T) {
	m := NewCOCO(model.NewModelArgs{Path: "coco.onnx", Output: "out"})
	opts := m.Options()

	assert.Equal(t, model.ModelFamilyYOLO, opts.Family)
	assert.Equal(t, "coco.onnx", opts.Path)
	assert.Equal(t, "image", opts.Input)
	assert.Equal(t, "out", opts.Output)
	assert.Equal(t, 85, opts.Shape.Channels())
	assert.Equal(t, COCOAnchors, opts.Anchors)
}

func TestOptionsReturnsCopy(t *testing.T) {
	m := NewVOC(model.NewModelArgs{})
	opts := m.Options()
	opts.Anchors[0].Width = 99

	assert.Equal(t, float32(1.08), m.Options().Anchors[0].Width)
	assert.Equal(t, float32(1.08), VOCAnchors[0].Width)
}

func TestNewDecoder(t *testing.T) {
	m := NewVOC(model.NewModelArgs{})

	base := postprocess.DefaultConfig()
	base.InputSize = 1
	base.Layout = postprocess.LayoutGridMajor

	decoder, err := m.NewDecoder(base)
	require.NoError(t, err)

	cfg := decoder.Config()
	assert.Equal(t, 416, cfg.InputSize)
	assert.Equal(t, VOCShape, cfg.Shape)
	assert.Equal(t, postprocess.LayoutChannelMajor, cfg.Layout)
	assert.Equal(t, VOCAnchors, cfg.Anchors)
	assert.Equal(t, base.ConfidenceThreshold, cfg.ConfidenceThreshold)
	assert.Equal(t, base.MaxBoxes, cfg.MaxBoxes)

	boxes, err := decoder.Decode(make([]float32, VOCShape.Len()), 640, 480)
	require.NoError(t, err)
	assert.Empty(t, boxes, "all-zero logits give confidence 0.5*0.05")
}

func TestNewDecoderRejectsBadThresholds(t *testing.T) {
	m := NewCOCO(model.NewModelArgs{})

	base := postprocess.DefaultConfig()
	base.ConfidenceThreshold = 2

	_, err := m.NewDecoder(base)
	assert.ErrorIs(t, err, postprocess.ErrInvalidConfig)
}
