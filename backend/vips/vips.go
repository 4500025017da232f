// Package vips implements the image backend on top of libvips through
// bimg. libvips only rotates by multiples of 90 degrees, so configure
// the manipulator with Only90s.
package vips

import (
	"fmt"
	"net/http"

	"gopkg.in/h2non/bimg.v1"

	"github.com/iiif-go/iiif/iiif"
)

// error messages
var (
	openError       = "libvips cannot open this file: %#v"
	readMissing     = "libvips cannot read this format %#v as of yet"
	formatMissing   = "libvips cannot output this format %#v as of yet"
	qualityMissing  = "`quality` argument is not recognized: %#v"
	rotationMissing = "libvips cannot rotate angles that aren't a multiple of 90: %#v"
	processError    = "bimg couldn't process the image: %#v"
)

var mimeTypes = map[bimg.ImageType]string{
	bimg.JPEG: "image/jpeg",
	bimg.PNG:  "image/png",
	bimg.WEBP: "image/webp",
	bimg.TIFF: "image/tiff",
}

// Backend holds the working image as a libvips buffer.
type Backend struct {
	image *bimg.Image
}

// New creates an empty backend, ready for Load.
func New() *Backend {
	return &Backend{}
}

// SourceDims reads the size of an image without keeping it around.
func SourceDims(buf []byte) (iiif.Dims, error) {
	size, err := bimg.NewImage(buf).Size()
	if err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "identifier",
			Message:    fmt.Sprintf(openError, err.Error()),
		}
	}
	return iiif.Dims{Width: size.Width, Height: size.Height}, nil
}

// Load hands the source bytes over to libvips and reads back the
// dimensions.
func (b *Backend) Load(buf []byte) (iiif.Dims, error) {
	imageType := bimg.DetermineImageType(buf)
	if !bimg.IsTypeSupported(imageType) {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusNotImplemented,
			Parameter:  "identifier",
			Message:    fmt.Sprintf(readMissing, bimg.ImageTypes[imageType]),
		}
	}

	b.image = bimg.NewImage(buf)
	size, err := b.image.Size()
	if err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "identifier",
			Message:    fmt.Sprintf(openError, err.Error()),
		}
	}
	return iiif.Dims{Width: size.Width, Height: size.Height}, nil
}

// Crop extracts the box from the working image.
func (b *Backend) Crop(box iiif.Box) (iiif.Dims, error) {
	options := bimg.Options{
		AreaWidth:  box.W,
		AreaHeight: box.H,
		Left:       box.X,
		Top:        box.Y,
	}

	// libvips does strange things with a zero offset.
	// * https://github.com/h2non/bimg/issues/60
	// * https://github.com/h2non/bimg/commit/b7eaa00f104a8eab49eedf49d75b11308df95f7a
	if options.Top <= 0 && options.Left == 0 {
		options.Top = -1
	}

	return b.process(options)
}

// Resize scales the working image to exactly width by height.
func (b *Backend) Resize(width, height int) (iiif.Dims, error) {
	return b.process(bimg.Options{
		Width:  width,
		Height: height,
		Force:  true,
	})
}

// Rotate flips then rotates by a quadrant angle.
func (b *Backend) Rotate(mirror bool, degrees float64) error {
	angle := int(degrees)
	if float64(angle) != degrees || angle%90 != 0 {
		return iiif.Error{
			StatusCode: http.StatusNotImplemented,
			Parameter:  "rotation",
			Message:    fmt.Sprintf(rotationMissing, degrees),
		}
	}

	_, err := b.process(bimg.Options{
		Flip:   mirror,
		Rotate: bimg.Angle(angle % 360),
	})
	return err
}

// ApplyQuality converts the working image to the requested quality.
func (b *Backend) ApplyQuality(quality string) error {
	var err error
	switch quality {
	case "default", "native", "color":
		// nothing to do.
	case "gray", "grey":
		_, err = b.process(bimg.Options{Interpretation: bimg.InterpretationGREY16})
	case "bitonal":
		_, err = b.process(bimg.Options{Interpretation: bimg.InterpretationBW})
	default:
		err = iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "quality",
			Message:    fmt.Sprintf(qualityMissing, quality),
		}
	}
	return err
}

// Encode converts the working image to the requested format. Without
// one, libvips keeps its preference: JPEG.
func (b *Backend) Encode(format string) (*iiif.Blob, error) {
	switch format {
	case "":
		format = "jpeg"
	case "jpg":
		format = "jpeg"
	case "tif":
		format = "tiff"
	}

	var imageType bimg.ImageType
	for k, v := range bimg.ImageTypes {
		if v == format {
			imageType = k
			break
		}
	}
	if !bimg.IsTypeSupportedSave(imageType) {
		return nil, iiif.Error{
			StatusCode: http.StatusUnsupportedMediaType,
			Parameter:  "format",
			Message:    fmt.Sprintf(formatMissing, format),
		}
	}

	if _, err := b.process(bimg.Options{Type: imageType}); err != nil {
		return nil, err
	}
	return &iiif.Blob{Bytes: b.image.Image(), MimeType: mimeTypes[imageType]}, nil
}

// Cleanup drops the working image.
func (b *Backend) Cleanup() {
	b.image = nil
}

func (b *Backend) process(options bimg.Options) (iiif.Dims, error) {
	if _, err := b.image.Process(options); err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf(processError, err.Error()),
		}
	}

	size, err := b.image.Size()
	if err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusInternalServerError,
			Message:    fmt.Sprintf(openError, err.Error()),
		}
	}
	return iiif.Dims{Width: size.Width, Height: size.Height}, nil
}
