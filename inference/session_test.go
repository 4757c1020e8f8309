package inference

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nvr-ai/go-yolo/models/model"
	"github.com/nvr-ai/go-yolo/models/postprocess"
	"github.com/nvr-ai/go-yolo/models/tinyyolov2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ort "github.com/yalue/onnxruntime_go"
)

func TestOutputShape(t *testing.T) {
	shape := tinyyolov2.VOCShape

	assert.Equal(t, ort.NewShape(1, 125, 13, 13), OutputShape(shape, postprocess.LayoutChannelMajor))
	assert.Equal(t, ort.NewShape(1, 13, 13, 125), OutputShape(shape, postprocess.LayoutGridMajor))
	assert.Equal(t, int64(shape.Len()), OutputShape(shape, postprocess.LayoutChannelMajor).FlattenedSize())
}

func TestInputShape(t *testing.T) {
	assert.Equal(t, ort.NewShape(1, 3, 416, 416), InputShape(416))
	assert.Equal(t, int64(DefaultInputOptions().TensorLen()), InputShape(416).FlattenedSize())
}

func TestNewSessionValidation(t *testing.T) {
	valid := tinyyolov2.NewVOC(model.NewModelArgs{}).Options()

	tests := []struct {
		name   string
		mutate func(*model.Options)
	}{
		{"missing path", func(o *model.Options) { o.Path = "" }},
		{"missing input", func(o *model.Options) { o.Input = "" }},
		{"missing output", func(o *model.Options) { o.Output = "" }},
		{"bad input size", func(o *model.Options) { o.InputSize = 0 }},
		{"bad shape", func(o *model.Options) { o.Shape.Classes = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := valid
			tt.mutate(&opts)
			_, err := NewSession(SessionConfig{Model: opts})
			assert.Error(t, err)
		})
	}
}

func TestNewSessionMissingLibrary(t *testing.T) {
	if ort.IsInitialized() {
		t.Skip("runtime already initialized")
	}

	_, err := NewSession(SessionConfig{
		SharedLibPath: filepath.Join(t.TempDir(), "missing.so"),
		Model:         tinyyolov2.NewVOC(model.NewModelArgs{}).Options(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "onnxruntime library not found")
}

func TestRunAfterClose(t *testing.T) {
	s := &Session{}
	s.Close()
	s.Close()

	_, err := s.Run(context.Background(), make([]float32, 3))
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Session{}).Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
