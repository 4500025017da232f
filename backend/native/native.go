// Package native implements the image backend in pure Go, on top of
// disintegration/imaging. It supports mirroring and arbitrary rotation
// angles, the rough equivalent of compliance level 2.
package native

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"net/http"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"

	// webp sources are decoded through the registered format; bmp and
	// tiff come with imaging itself.
	_ "golang.org/x/image/webp"

	"github.com/iiif-go/iiif/iiif"
)

// error messages
var (
	readError      = "cannot decode this image: %#v"
	qualityMissing = "`quality` argument is not recognized: %#v"
	formatMissing  = "cannot encode this format: %#v"
)

const (
	bitonalCutoff   = 128
	preferredFormat = "jpg"
)

type format struct {
	format   imaging.Format
	mimeType string
}

var formats = map[string]format{
	"jpg":  {imaging.JPEG, "image/jpeg"},
	"jpeg": {imaging.JPEG, "image/jpeg"},
	"png":  {imaging.PNG, "image/png"},
	"gif":  {imaging.GIF, "image/gif"},
	"tif":  {imaging.TIFF, "image/tiff"},
	"tiff": {imaging.TIFF, "image/tiff"},
	"bmp":  {imaging.BMP, "image/bmp"},
}

// Backend holds the working image decoded in memory.
type Backend struct {
	img image.Image
}

// New creates an empty backend, ready for Load.
func New() *Backend {
	return &Backend{}
}

// Load decodes the source image, honouring any EXIF orientation. A
// source that cannot be decoded is a broken source, not a missing
// capability.
func (b *Backend) Load(buf []byte) (iiif.Dims, error) {
	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusInternalServerError,
			Parameter:  "identifier",
			Message:    fmt.Sprintf(readError, err.Error()),
		}
	}
	b.img = img
	return b.dims(), nil
}

// Crop extracts the box from the working image.
func (b *Backend) Crop(box iiif.Box) (iiif.Dims, error) {
	b.img = imaging.Crop(b.img, image.Rect(box.X, box.Y, box.X+box.W, box.Y+box.H))
	return b.dims(), nil
}

// Resize scales the working image to exactly width by height.
func (b *Backend) Resize(width, height int) (iiif.Dims, error) {
	b.img = imaging.Resize(b.img, width, height, imaging.Lanczos)
	return b.dims(), nil
}

// Rotate mirrors then rotates clockwise. Quadrant angles stay lossless,
// anything else expands the canvas over a black background.
func (b *Backend) Rotate(mirror bool, degrees float64) error {
	if mirror {
		b.img = imaging.FlipH(b.img)
	}
	switch degrees {
	case 0:
	case 90:
		// imaging rotates counter-clockwise.
		b.img = imaging.Rotate270(b.img)
	case 180:
		b.img = imaging.Rotate180(b.img)
	case 270:
		b.img = imaging.Rotate90(b.img)
	default:
		b.img = imaging.Rotate(b.img, -degrees, color.Black)
	}
	return nil
}

// ApplyQuality converts the working image to the requested quality.
func (b *Backend) ApplyQuality(quality string) error {
	switch quality {
	case "default", "native", "color":
		// nothing to do.
	case "gray", "grey":
		b.img = imaging.Grayscale(b.img)
	case "bitonal":
		b.img = segment.Threshold(b.img, bitonalCutoff)
	default:
		return iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "quality",
			Message:    fmt.Sprintf(qualityMissing, quality),
		}
	}
	return nil
}

// Encode writes the working image out, defaulting to jpg.
func (b *Backend) Encode(name string) (*iiif.Blob, error) {
	if name == "" {
		name = preferredFormat
	}
	f, ok := formats[name]
	if !ok {
		return nil, iiif.Error{
			StatusCode: http.StatusUnsupportedMediaType,
			Parameter:  "format",
			Message:    fmt.Sprintf(formatMissing, name),
		}
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, b.img, f.format); err != nil {
		return nil, iiif.Error{
			StatusCode: http.StatusInternalServerError,
			Parameter:  "format",
			Message:    err.Error(),
		}
	}
	return &iiif.Blob{Bytes: out.Bytes(), MimeType: f.mimeType}, nil
}

// Cleanup drops the working image.
func (b *Backend) Cleanup() {
	b.img = nil
}

func (b *Backend) dims() iiif.Dims {
	size := b.img.Bounds().Size()
	return iiif.Dims{Width: size.X, Height: size.Y}
}
