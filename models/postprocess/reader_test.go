package postprocess

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialData(n int) []float32 {
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(i)
	}
	return data
}

func TestNewTensorReader_ShapeMismatch(t *testing.T) {
	shape := GridShape{Height: 13, Width: 13, Anchors: 5, Classes: 20}

	tests := []struct {
		name string
		len  int
	}{
		{"Empty", 0},
		{"One short", shape.Len() - 1},
		{"One long", shape.Len() + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTensorReader(make([]float32, tt.len), shape, LayoutGridMajor)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrShapeMismatch), "got %v", err)
		})
	}
}

func TestNewTensorReader_InvalidShapeOrLayout(t *testing.T) {
	_, err := NewTensorReader(nil, GridShape{}, LayoutGridMajor)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	shape := GridShape{Height: 1, Width: 1, Anchors: 1, Classes: 1}
	_, err = NewTensorReader(make([]float32, shape.Len()), shape, "row-major")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestTensorReader_Value(t *testing.T) {
	shape := GridShape{Height: 3, Width: 4, Anchors: 2, Classes: 3}

	tests := []struct {
		name   string
		layout Layout
		index  func(GridShape, int, int, int, int) int
	}{
		{"Grid major", LayoutGridMajor, gridIndex},
		{"Default layout", "", gridIndex},
		{"Channel major", LayoutChannelMajor, channelIndex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := NewTensorReader(sequentialData(shape.Len()), shape, tt.layout)
			require.NoError(t, err)
			assert.Equal(t, shape, reader.Shape())

			for r := 0; r < shape.Height; r++ {
				for c := 0; c < shape.Width; c++ {
					for a := 0; a < shape.Anchors; a++ {
						for ch := 0; ch < shape.Channels(); ch++ {
							expected := float32(tt.index(shape, r, c, a, ch))
							assert.Equal(t, expected, reader.Value(r, c, a, ch))
						}
					}
				}
			}
		})
	}
}

func TestTensorReader_IsAView(t *testing.T) {
	shape := GridShape{Height: 2, Width: 2, Anchors: 1, Classes: 1}
	data := make([]float32, shape.Len())

	reader, err := NewTensorReader(data, shape, LayoutGridMajor)
	require.NoError(t, err)

	data[gridIndex(shape, 1, 1, 0, 5)] = 42
	assert.Equal(t, float32(42), reader.Value(1, 1, 0, 5))

	cm := make([]float32, shape.Len())
	reader, err = NewTensorReader(cm, shape, LayoutChannelMajor)
	require.NoError(t, err)

	cm[channelIndex(shape, 0, 1, 0, 4)] = -7
	assert.Equal(t, float32(-7), reader.Value(0, 1, 0, 4))
	assert.Equal(t, float32(0), reader.Value(1, 0, 0, 4))
}

func TestTensorReader_OutOfRange(t *testing.T) {
	shape := GridShape{Height: 2, Width: 3, Anchors: 2, Classes: 2}
	reader, err := NewTensorReader(make([]float32, shape.Len()), shape, LayoutGridMajor)
	require.NoError(t, err)

	tests := []struct {
		name                      string
		row, col, anchor, channel int
	}{
		{"Row negative", -1, 0, 0, 0},
		{"Row too large", 2, 0, 0, 0},
		{"Col too large", 0, 3, 0, 0},
		{"Anchor too large", 0, 0, 2, 0},
		{"Channel too large", 0, 0, 0, 7},
		{"Channel negative", 0, 0, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected a panic")
				err, ok := r.(error)
				require.True(t, ok, "panic value should be an error, got %T", r)
				assert.True(t, errors.Is(err, ErrOutOfRange))
			}()
			reader.Value(tt.row, tt.col, tt.anchor, tt.channel)
		})
	}
}
