package images

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// ImageFormat represents supported image formats
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatWebP ImageFormat = "webp"
	FormatPNG  ImageFormat = "png"
	FormatBMP  ImageFormat = "bmp"
	FormatTIFF ImageFormat = "tiff"
)

// ErrUnsupportedFormat is returned when the payload is not an image format we decode.
var ErrUnsupportedFormat = errors.New("unsupported image format")

var mimeFormats = map[string]ImageFormat{
	"image/jpeg": FormatJPEG,
	"image/png":  FormatPNG,
	"image/webp": FormatWebP,
	"image/bmp":  FormatBMP,
	"image/tiff": FormatTIFF,
}

// DetectFormat sniffs the image format from the leading bytes of the payload.
//
// Arguments:
//   - b: The encoded image bytes.
//
// Returns:
//   - ImageFormat: The detected format.
//   - error: ErrUnsupportedFormat (wrapped) when the MIME type is not an image we decode.
func DetectFormat(b []byte) (ImageFormat, error) {
	if len(b) == 0 {
		return "", errors.New("empty image data")
	}

	mimeType := strings.Split(mimetype.Detect(b).String(), ";")[0]
	format, ok := mimeFormats[mimeType]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedFormat, "mime type %q", mimeType)
	}

	return format, nil
}
