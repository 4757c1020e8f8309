package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

// ResampleFilter selects the interpolation used when resizing.
type ResampleFilter string

const (
	// FilterLanczos3 is the highest quality filter, used by default.
	FilterLanczos3 ResampleFilter = "lanczos3"
	// FilterBilinear is a cheaper filter close to what most training pipelines use.
	FilterBilinear ResampleFilter = "bilinear"
	// FilterNearest is the fastest filter, backed by golang.org/x/image/draw.
	FilterNearest ResampleFilter = "nearest"
)

// Decode decodes an encoded image of any supported format.
//
// Arguments:
//   - b: The encoded image bytes.
//
// Returns:
//   - image.Image: The decoded image.
//   - ImageFormat: The format the payload was detected as.
//   - error: An error if the format is unsupported or decoding fails.
func Decode(b []byte) (image.Image, ImageFormat, error) {
	format, err := DetectFormat(b)
	if err != nil {
		return nil, "", err
	}

	r := bytes.NewReader(b)

	var img image.Image
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	}
	if err != nil {
		return nil, format, errors.Wrapf(err, "failed to decode %s image", format)
	}

	return img, format, nil
}

// Resize scales img to exactly width x height, ignoring the aspect ratio.
//
// The detector was trained on square inputs stretched this way, which is why
// the coordinate mapper rescales each axis independently.
//
// Arguments:
//   - img: The source image.
//   - width, height: The target dimensions.
//   - filter: The resampling filter. Empty selects FilterLanczos3.
//
// Returns:
//   - image.Image: The resized image.
//   - error: An error if the dimensions or filter are invalid.
func Resize(img image.Image, width, height int, filter ResampleFilter) (image.Image, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid dimensions: width=%d, height=%d", width, height)
	}

	switch filter {
	case FilterLanczos3, "":
		return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
	case FilterBilinear:
		return resize.Resize(uint(width), uint(height), img, resize.Bilinear), nil
	case FilterNearest:
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.NearestNeighbor.Scale(dst, dst.Rect, img, img.Bounds(), draw.Src, nil)
		return dst, nil
	default:
		return nil, errors.Errorf("unsupported resample filter: %q", filter)
	}
}

// ResizeImageToImage decodes an encoded image and resizes it in one step,
// returning the resized image together with the original dimensions.
func ResizeImageToImage(imageBytes []byte, width, height int, filter ResampleFilter) (image.Image, image.Point, error) {
	img, _, err := Decode(imageBytes)
	if err != nil {
		return nil, image.Point{}, err
	}

	resized, err := Resize(img, width, height, filter)
	if err != nil {
		return nil, image.Point{}, err
	}

	return resized, img.Bounds().Size(), nil
}
