package iiif

import (
	"fmt"
	"math"
	"net/http"
)

// error messages
var (
	dimsUnknownError  = "`%s` parameters require knowledge of the image size which is not available"
	zeroRegionError   = "region parameters would result in a zero size image"
	zeroSizeError     = "size parameters would result in a zero size image (%d,%d)"
	mirrorUnsupported = "mirroring is not supported"
	angleUnsupported  = "only 0, 90, 180 and 270 degree rotations are supported"
)

// Box is a region of the source image, in pixels.
type Box struct {
	X, Y, W, H int
}

// Dims is an image width and height, in pixels.
type Dims struct {
	Width, Height int
}

// ResolveRegion computes the crop box for the request given the
// current image dimensions. A nil box means no crop is needed. The
// box is clipped to the image bounds and never empty.
func ResolveRegion(r *Request, width, height int) (*Box, error) {
	if r.Region == RegionFull ||
		(r.Region == RegionPercent &&
			r.RegionX == 0 && r.RegionY == 0 && r.RegionW == 100 && r.RegionH == 100) {
		return nil, nil
	}
	if width <= 0 || height <= 0 {
		return nil, Error{http.StatusNotImplemented, "region", fmt.Sprintf(dimsUnknownError, "region")}
	}

	if r.Region == RegionSquare {
		if width <= height {
			return &Box{0, (height - width) / 2, width, width}, nil
		}
		return &Box{(width - height) / 2, 0, height, height}, nil
	}

	x, y := int(r.RegionX), int(r.RegionY)
	w, h := int(r.RegionW), int(r.RegionH)
	if r.Region == RegionPercent {
		x = roundHalfUp(r.RegionX / 100 * float64(width))
		y = roundHalfUp(r.RegionY / 100 * float64(height))
		w = roundHalfUp(r.RegionW / 100 * float64(width))
		h = roundHalfUp(r.RegionH / 100 * float64(height))
	}

	// Truncate boxes extending beyond the image, never expand.
	if x+w > width {
		w = width - x
	}
	if y+h > height {
		h = height - y
	}
	if w <= 0 || h <= 0 {
		return nil, ZeroSizeError{Error{http.StatusBadRequest, "region", zeroRegionError}}
	}
	if x == 0 && y == 0 && w == width && h == height {
		return nil, nil
	}
	return &Box{x, y, w, h}, nil
}

// ResolveSize computes the target dimensions for the request given the
// current image dimensions. A nil result means no scaling is needed.
func ResolveSize(r *Request, width, height int) (*Dims, error) {
	if r.Size == SizeFull || (r.Size == SizePercent && r.SizePercent == 100) {
		return nil, nil
	}

	var w, h int
	switch r.Size {
	case SizePercent:
		if width <= 0 || height <= 0 {
			return nil, Error{http.StatusNotImplemented, "size", fmt.Sprintf(dimsUnknownError, "size")}
		}
		w = roundHalfUp(float64(width) * r.SizePercent / 100)
		h = roundHalfUp(float64(height) * r.SizePercent / 100)
	case SizeBestFit:
		if width <= 0 || height <= 0 {
			return nil, Error{http.StatusNotImplemented, "size", fmt.Sprintf(dimsUnknownError, "size")}
		}
		// The largest image fitting within the requested box, keeping
		// the aspect ratio.
		frac := math.Min(
			float64(r.SizeW)/float64(width),
			float64(r.SizeH)/float64(height))
		w = roundHalfUp(float64(width) * frac)
		h = roundHalfUp(float64(height) * frac)
	default: // SizeExact
		w, h = r.SizeW, r.SizeH
		if w == 0 || h == 0 {
			if width <= 0 || height <= 0 {
				return nil, Error{http.StatusNotImplemented, "size", fmt.Sprintf(dimsUnknownError, "size")}
			}
			if w == 0 {
				w = roundHalfUp(float64(width) * float64(h) / float64(height))
			} else {
				h = roundHalfUp(float64(height) * float64(w) / float64(width))
			}
		}
	}

	if w == 0 || h == 0 {
		return nil, ZeroSizeError{Error{http.StatusBadRequest, "size", fmt.Sprintf(zeroSizeError, w, h)}}
	}
	if w == width && h == height {
		return nil, nil
	}
	return &Dims{w, h}, nil
}

// ResolveRotation checks the requested rotation against the abilities
// of the backend the caller selected: only90s restricts angles to
// quadrants, noMirror rejects mirrored requests.
func ResolveRotation(r *Request, only90s, noMirror bool) (bool, float64, error) {
	if noMirror && r.Mirror {
		return false, 0, Error{http.StatusNotImplemented, "rotation", mirrorUnsupported}
	}
	if only90s && r.Degrees != 0 && r.Degrees != 90 && r.Degrees != 180 && r.Degrees != 270 {
		return false, 0, Error{http.StatusNotImplemented, "rotation", angleUnsupported}
	}
	return r.Mirror, r.Degrees, nil
}

// ResolveQuality substitutes the version default when the request
// leaves the quality out. Vocabulary validation is the backend's
// business, supported qualities vary with the compliance level.
func ResolveQuality(r *Request) string {
	if r.Quality == "" {
		return r.APIVersion.DefaultQuality()
	}
	return r.Quality
}

func roundHalfUp(f float64) int {
	return int(f + 0.5)
}
