package iiif

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// error messages
var (
	pathError     = "expected region/size/rotation/quality.format, got: %#v"
	regionError   = "`region` argument is not recognized: %#v"
	sizeError     = "`size` argument is not recognized: %#v"
	rotationError = "`rotation` argument is not recognized: %#v"
	formatError   = "`format` argument is empty: %#v"
)

// RegionKind enumerates the region variants of the Image API.
type RegionKind int

// The region variants.
const (
	RegionFull RegionKind = iota
	RegionSquare
	RegionPixel
	RegionPercent
)

// SizeKind enumerates the size variants of the Image API.
type SizeKind int

// The size variants.
const (
	SizeFull SizeKind = iota
	SizePercent
	SizeExact
	SizeBestFit
)

// Request is a parsed IIIF image request. Parsing checks syntax only;
// semantic checks need the source dimensions and happen in the
// resolvers.
type Request struct {
	Identifier string
	APIVersion APIVersion

	Region RegionKind
	// Region box, pixels for RegionPixel and percents for RegionPercent.
	RegionX, RegionY, RegionW, RegionH float64

	Size        SizeKind
	SizePercent float64
	// Requested dimensions, zero meaning "derive from the aspect
	// ratio". For SizeBestFit both are upper bounds.
	SizeW, SizeH int

	Mirror  bool
	Degrees float64

	Quality string // empty means the version default
	Format  string // empty means content negotiation or backend preference
}

// Parse reads the region/size/rotation/quality.format part of an IIIF
// URL. The identifier is the routing layer's business and is left
// empty.
func Parse(path string, version APIVersion) (*Request, error) {
	parts := strings.Split(path, "/")
	if len(parts) != 4 {
		return nil, Error{http.StatusBadRequest, "path", fmt.Sprintf(pathError, path)}
	}

	r := &Request{APIVersion: version}
	if err := r.parseRegion(parts[0]); err != nil {
		return nil, err
	}
	if err := r.parseSize(parts[1]); err != nil {
		return nil, err
	}
	if err := r.parseRotation(parts[2]); err != nil {
		return nil, err
	}
	if err := r.parseQualityFormat(parts[3]); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) parseRegion(region string) error {
	fail := Error{http.StatusBadRequest, "region", fmt.Sprintf(regionError, region)}

	switch {
	case region == "full":
		r.Region = RegionFull
	case region == "square":
		// square arrived with the 2.0 API.
		if r.APIVersion < Version20 {
			return fail
		}
		r.Region = RegionSquare
	case strings.HasPrefix(region, "pct:"):
		sizes := strings.Split(region[4:], ",")
		if len(sizes) != 4 {
			return fail
		}
		vals := make([]float64, 4)
		for i, s := range sizes {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil || v < 0 {
				return fail
			}
			vals[i] = v
		}
		if vals[2] == 0 || vals[3] == 0 {
			return ZeroSizeError{Error{http.StatusBadRequest, "region", zeroRegionError}}
		}
		r.Region = RegionPercent
		r.RegionX, r.RegionY, r.RegionW, r.RegionH = vals[0], vals[1], vals[2], vals[3]
	default:
		sizes := strings.Split(region, ",")
		if len(sizes) != 4 {
			return fail
		}
		vals := make([]int, 4)
		for i, s := range sizes {
			v, err := strconv.Atoi(s)
			if err != nil || v < 0 {
				return fail
			}
			vals[i] = v
		}
		if vals[2] == 0 || vals[3] == 0 {
			return ZeroSizeError{Error{http.StatusBadRequest, "region", zeroRegionError}}
		}
		r.Region = RegionPixel
		r.RegionX, r.RegionY = float64(vals[0]), float64(vals[1])
		r.RegionW, r.RegionH = float64(vals[2]), float64(vals[3])
	}
	return nil
}

func (r *Request) parseSize(size string) error {
	fail := Error{http.StatusBadRequest, "size", fmt.Sprintf(sizeError, size)}
	// an explicit zero is well formed but yields nothing.
	zero := ZeroSizeError{Error{http.StatusBadRequest, "size", fmt.Sprintf(zeroSizeError, 0, 0)}}

	switch {
	case size == "full" || size == "max":
		r.Size = SizeFull
	case strings.HasPrefix(size, "pct:"):
		pct, err := strconv.ParseFloat(size[4:], 64)
		if err != nil || pct < 0 {
			return fail
		}
		if pct == 0 {
			return zero
		}
		r.Size = SizePercent
		r.SizePercent = pct
	case strings.HasPrefix(size, "!"):
		sizes := strings.Split(size[1:], ",")
		if len(sizes) != 2 {
			return fail
		}
		w, errW := strconv.Atoi(sizes[0])
		h, errH := strconv.Atoi(sizes[1])
		if errW != nil || errH != nil || w < 0 || h < 0 {
			return fail
		}
		if w == 0 || h == 0 {
			return zero
		}
		r.Size = SizeBestFit
		r.SizeW, r.SizeH = w, h
	default:
		sizes := strings.Split(size, ",")
		if len(sizes) != 2 {
			return fail
		}
		var w, h int
		var explicitZero bool
		if sizes[0] != "" {
			var err error
			if w, err = strconv.Atoi(sizes[0]); err != nil || w < 0 {
				return fail
			}
			explicitZero = explicitZero || w == 0
		}
		if sizes[1] != "" {
			var err error
			if h, err = strconv.Atoi(sizes[1]); err != nil || h < 0 {
				return fail
			}
			explicitZero = explicitZero || h == 0
		}
		if explicitZero {
			return zero
		}
		if w == 0 && h == 0 {
			return fail
		}
		r.Size = SizeExact
		r.SizeW, r.SizeH = w, h
	}
	return nil
}

func (r *Request) parseRotation(rotation string) error {
	r.Mirror = strings.HasPrefix(rotation, "!")
	deg, err := strconv.ParseFloat(strings.TrimPrefix(rotation, "!"), 64)
	if err != nil || deg < 0 || deg > 360 {
		return Error{http.StatusBadRequest, "rotation", fmt.Sprintf(rotationError, rotation)}
	}
	if deg == 360 {
		deg = 0
	}
	r.Degrees = deg
	return nil
}

// parseQualityFormat splits the final segment on its last dot. Unknown
// quality tokens are not rejected here, the vocabulary depends on the
// backend's compliance level.
func (r *Request) parseQualityFormat(last string) error {
	if i := strings.LastIndex(last, "."); i >= 0 {
		r.Quality, r.Format = last[:i], last[i+1:]
		if r.Format == "" {
			return Error{http.StatusBadRequest, "format", fmt.Sprintf(formatError, last)}
		}
	} else {
		r.Quality = last
	}
	return nil
}

// Path regenerates the canonical IIIF path for the request, in the form
// {region}/{size}/{rotation}/{quality}.{format}. An unset quality takes
// the version default and an unset format becomes jpg.
func (r *Request) Path() string {
	quality := r.Quality
	if quality == "" {
		quality = r.APIVersion.DefaultQuality()
	}
	format := r.Format
	if format == "" {
		format = "jpg"
	}
	return fmt.Sprintf("%s/%s/%s/%s.%s",
		r.regionPath(), r.sizePath(), r.rotationPath(), quality, format)
}

func (r *Request) regionPath() string {
	switch r.Region {
	case RegionSquare:
		return "square"
	case RegionPixel:
		return fmt.Sprintf("%d,%d,%d,%d",
			int(r.RegionX), int(r.RegionY), int(r.RegionW), int(r.RegionH))
	case RegionPercent:
		return fmt.Sprintf("pct:%s,%s,%s,%s",
			formatFloat(r.RegionX), formatFloat(r.RegionY),
			formatFloat(r.RegionW), formatFloat(r.RegionH))
	}
	return "full"
}

func (r *Request) sizePath() string {
	switch r.Size {
	case SizePercent:
		return "pct:" + formatFloat(r.SizePercent)
	case SizeBestFit:
		return fmt.Sprintf("!%d,%d", r.SizeW, r.SizeH)
	case SizeExact:
		switch {
		case r.SizeH == 0:
			return fmt.Sprintf("%d,", r.SizeW)
		case r.SizeW == 0:
			return fmt.Sprintf(",%d", r.SizeH)
		}
		return fmt.Sprintf("%d,%d", r.SizeW, r.SizeH)
	}
	return "full"
}

func (r *Request) rotationPath() string {
	if r.Mirror {
		return "!" + formatFloat(r.Degrees)
	}
	return formatFloat(r.Degrees)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
