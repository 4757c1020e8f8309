package models

import (
	"testing"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModel(t *testing.T) {
	tests := []struct {
		name    model.Name
		family  model.Family
		classes int
	}{
		{model.ModelNameTinyYOLOv2VOC, model.ModelFamilyYOLOVOC, 20},
		{model.ModelNameTinyYOLOv2COCO, model.ModelFamilyYOLO, 80},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			m, err := NewModel(model.NewModelArgs{Name: tt.name, Path: "/models/x.onnx"})
			require.NoError(t, err)

			opts := m.Options()
			assert.Equal(t, tt.name, opts.Name)
			assert.Equal(t, tt.family, opts.Family)
			assert.Equal(t, "/models/x.onnx", opts.Path)
			assert.Equal(t, tt.classes, opts.Shape.Classes)

			// Every class index the model can emit has a label.
			mgr := DefaultClassManager()
			for i := 0; i < opts.Shape.Classes; i++ {
				_, err := mgr.GetName(opts.Family, i)
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewModelUnsupported(t *testing.T) {
	_, err := NewModel(model.NewModelArgs{Name: "yolov9000"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnsupportedModel))
}

func TestNames(t *testing.T) {
	for _, name := range Names() {
		_, err := NewModel(model.NewModelArgs{Name: name})
		assert.NoError(t, err, name)
	}
}
