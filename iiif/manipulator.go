package iiif

import (
	"fmt"
	"net/http"
)

var maxSizeError = "the wanted `size` %vx%v is out of the limits (%vx%v or area %v)"

// Blob is an encoded result image.
type Blob struct {
	Bytes    []byte
	MimeType string
}

// Backend performs the pixel work for a single request. Implementations
// own one working image which every method mutates in place. Operations
// a backend does not support fail with an Error carrying the matching
// status code: 501 for region, size and rotation, 501 for quality and
// 415 for format.
type Backend interface {
	// Load decodes the source and reports its dimensions. Backends
	// that cannot determine dimensions report {-1, -1}, which limits
	// them to identity region and size requests.
	Load(buf []byte) (Dims, error)
	// Crop extracts the box from the working image.
	Crop(box Box) (Dims, error)
	// Resize scales the working image to exactly width by height.
	Resize(width, height int) (Dims, error)
	// Rotate flips the working image horizontally when mirror is set,
	// then rotates it clockwise.
	Rotate(mirror bool, degrees float64) error
	// ApplyQuality converts the working image to the given quality
	// token, e.g. gray or bitonal.
	ApplyQuality(quality string) error
	// Encode produces the final image. The empty format lets the
	// backend pick its preferred output.
	Encode(format string) (*Blob, error)
	// Cleanup releases any temporary artifact. Idempotent.
	Cleanup()
}

// Manipulator drives the operation order the Image API mandates,
// region then size then rotation then quality then format, against a
// Backend. Create one per request; it is not safe for reuse or
// concurrent use.
type Manipulator struct {
	Backend Backend

	// Only90s restricts rotations to quadrants and NoMirror rejects
	// mirrored requests. Set them to match the backend.
	Only90s  bool
	NoMirror bool

	// MaxWidth, MaxHeight and MaxArea bound the size of the result,
	// zero meaning unbounded. A request beyond them is refused before
	// any pixel work on the size happens.
	MaxWidth  int
	MaxHeight int
	MaxArea   int

	width, height int
	derived       bool
}

// Derive runs the whole pipeline for req against the source image
// bytes. The working dimensions follow the backend's reports after
// each stage, so the resolvers always see the current image. Any
// failure aborts the remaining stages. The caller must Cleanup once
// the result has been consumed, also when Derive fails.
func (m *Manipulator) Derive(buf []byte, req *Request) (*Blob, error) {
	if m.derived {
		return nil, Error{http.StatusInternalServerError, "", "manipulator cannot be reused"}
	}
	m.derived = true

	dims, err := m.Backend.Load(buf)
	if err != nil {
		return nil, err
	}
	m.width, m.height = dims.Width, dims.Height

	box, err := ResolveRegion(req, m.width, m.height)
	if err != nil {
		return nil, err
	}
	if box != nil {
		if dims, err = m.Backend.Crop(*box); err != nil {
			return nil, err
		}
		m.width, m.height = dims.Width, dims.Height
	}

	size, err := ResolveSize(req, m.width, m.height)
	if err != nil {
		return nil, err
	}
	target := Dims{m.width, m.height}
	if size != nil {
		target = *size
	}
	if err = m.checkMaxSize(target); err != nil {
		return nil, err
	}
	if size != nil {
		if dims, err = m.Backend.Resize(size.Width, size.Height); err != nil {
			return nil, err
		}
		m.width, m.height = dims.Width, dims.Height
	}

	mirror, degrees, err := ResolveRotation(req, m.Only90s, m.NoMirror)
	if err != nil {
		return nil, err
	}
	if mirror || degrees != 0 {
		if err = m.Backend.Rotate(mirror, degrees); err != nil {
			return nil, err
		}
		if degrees == 90 || degrees == 270 {
			m.width, m.height = m.height, m.width
		}
	}

	if err = m.Backend.ApplyQuality(ResolveQuality(req)); err != nil {
		return nil, err
	}

	return m.Backend.Encode(req.Format)
}

func (m *Manipulator) checkMaxSize(target Dims) error {
	if target.Width <= 0 || target.Height <= 0 {
		// unknown dimensions cannot violate the limits.
		return nil
	}

	if (m.MaxWidth > 0 && target.Width > m.MaxWidth) ||
		(m.MaxHeight > 0 && target.Height > m.MaxHeight) ||
		(m.MaxArea > 0 && target.Width*target.Height > m.MaxArea) {
		return Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "size",
			Message: fmt.Sprintf(maxSizeError,
				target.Width, target.Height, m.MaxWidth, m.MaxHeight, m.MaxArea),
		}
	}
	return nil
}

// Dimensions reports the current working size. After a quadrant
// rotation the values are swapped accordingly; arbitrary angles leave
// them untouched since no later stage depends on them.
func (m *Manipulator) Dimensions() (int, int) {
	return m.width, m.height
}

// Cleanup releases the backend's temporary artifacts. Safe to call
// more than once.
func (m *Manipulator) Cleanup() {
	if m.Backend != nil {
		m.Backend.Cleanup()
	}
}
