package inference

import (
	"image"

	"github.com/nvr-ai/go-yolo/images"
	"github.com/pkg/errors"
)

// PixelScale defines how 8-bit channel values are written to the tensor.
type PixelScale string

const (
	// PixelScaleRaw keeps pixel values as 0-255, what Tiny-YOLOv2 is trained on.
	PixelScaleRaw PixelScale = "raw"
	// PixelScaleUnit scales pixel values to [0, 1].
	PixelScaleUnit PixelScale = "unit"
)

// ColorMode defines the channel order of the planes.
type ColorMode string

const (
	// ColorModeRGB is standard RGB color mode.
	ColorModeRGB ColorMode = "rgb"
	// ColorModeBGR is BGR color mode (common for OpenCV-trained models).
	ColorModeBGR ColorMode = "bgr"
)

// InputOptions describes the model input tensor.
type InputOptions struct {
	// Size is the square input resolution.
	Size int `json:"size" yaml:"size" koanf:"size"`
	// Filter is the resampling filter used to reach Size.
	Filter images.ResampleFilter `json:"filter" yaml:"filter" koanf:"filter"`
	// Scale selects 0-255 or 0-1 pixel values.
	Scale PixelScale `json:"scale" yaml:"scale" koanf:"scale"`
	// ColorMode selects RGB or BGR plane order.
	ColorMode ColorMode `json:"color_mode" yaml:"color_mode" koanf:"colormode"`
}

// DefaultInputOptions returns the Tiny-YOLOv2 input format: 416x416 planar RGB
// in 0-255, Lanczos3 resampling.
func DefaultInputOptions() InputOptions {
	return InputOptions{
		Size:      416,
		Filter:    images.FilterLanczos3,
		Scale:     PixelScaleRaw,
		ColorMode: ColorModeRGB,
	}
}

// TensorLen is the number of floats PrepareInput writes.
func (o InputOptions) TensorLen() int {
	return 3 * o.Size * o.Size
}

// PrepareInput resizes img and writes it to dst as a planar (CHW) tensor,
// typically right before the session runs.
//
// Arguments:
//   - img: The image to prepare.
//   - opts: The input format.
//   - dst: The destination tensor data, at least opts.TensorLen() long.
//
// Returns:
//   - error: An error if the input preparation fails.
func PrepareInput(img image.Image, opts InputOptions, dst []float32) error {
	if opts.Size <= 0 {
		return errors.Errorf("invalid input size %d", opts.Size)
	}

	channelSize := opts.Size * opts.Size
	if len(dst) < channelSize*3 {
		return errors.Errorf("destination tensor only holds %d floats, needs "+
			"%d (make sure it's the right shape!)", len(dst), channelSize*3)
	}

	var scale float32
	switch opts.Scale {
	case PixelScaleRaw, "":
		scale = 1
	case PixelScaleUnit:
		scale = 1.0 / 255.0
	default:
		return errors.Errorf("unsupported pixel scale %q", opts.Scale)
	}

	first := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	last := dst[channelSize*2 : channelSize*3]
	switch opts.ColorMode {
	case ColorModeRGB, "":
	case ColorModeBGR:
		first, last = last, first
	default:
		return errors.Errorf("unsupported color mode %q", opts.ColorMode)
	}

	resized, err := images.Resize(img, opts.Size, opts.Size, opts.Filter)
	if err != nil {
		return err
	}

	b := resized.Bounds()
	i := 0
	for y := b.Min.Y; y < b.Min.Y+opts.Size; y++ {
		for x := b.Min.X; x < b.Min.X+opts.Size; x++ {
			r, g, bl, _ := resized.At(x, y).RGBA()
			first[i] = float32(r>>8) * scale
			green[i] = float32(g>>8) * scale
			last[i] = float32(bl>>8) * scale
			i++
		}
	}
	return nil
}
