package server

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/golang/groupcache"
	"github.com/gorilla/mux"
	_ "golang.org/x/image/webp"

	"github.com/iiif-go/iiif/backend/native"
	"github.com/iiif-go/iiif/backend/vips"
	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/source"
)

// the longest URL we accept, anything above is a 414.
const maxURLLength = 1024

// error messages
var (
	uriTooLongError = "the request URI is longer than %v characters"
	openError       = "cannot read the dimensions of this file: %#v"
)

// conneg order when the URL carries no format.
var acceptFormats = []struct {
	mimeType string
	format   string
}{
	{"image/webp", "webp"},
	{"image/png", "png"},
	{"image/tiff", "tif"},
	{"image/gif", "gif"},
	{"image/jpeg", "jpg"},
}

func handleError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), iiif.StatusOf(err))
}

func getETag(str string) string {
	return fmt.Sprintf("\"%x\"", sha1.Sum([]byte(str)))
}

// NewManipulator builds the manipulator the configured backend calls
// for. libvips only rotates by quadrants.
func NewManipulator(config *iiif.Config) *iiif.Manipulator {
	m := &iiif.Manipulator{
		MaxWidth:  config.MaxWidth,
		MaxHeight: config.MaxHeight,
		MaxArea:   config.MaxArea,
	}
	switch config.Backend {
	case "vips":
		m.Backend = vips.New()
		m.Only90s = true
	case "null":
		m.Backend = &iiif.NullBackend{}
	default:
		m.Backend = native.New()
	}
	return m
}

// ComplianceLevel reports the level the configured backend can honor.
func ComplianceLevel(config *iiif.Config) int {
	if config.Backend == "null" {
		return 0
	}
	return 2
}

func deriveBlob(config *iiif.Config, src source.Source, req *iiif.Request) (*iiif.Blob, time.Time, error) {
	body, modTime, err := src.Read(req.Identifier)
	if err != nil {
		return nil, modTime, err
	}

	m := NewManipulator(config)
	defer m.Cleanup()

	blob, err := m.Derive(body, req)
	if err != nil {
		return nil, modTime, err
	}
	if modTime.IsZero() {
		modTime = time.Now()
	}
	return blob, modTime, nil
}

// negotiateFormat picks the output format from the Accept header when
// the URL carries none. jpg barring a preference.
func negotiateFormat(accept string) string {
	for _, af := range acceptFormats {
		if strings.Contains(accept, af.mimeType) {
			return af.format
		}
	}
	return "jpg"
}

// ImageHandler responds to the IIIF Image API.
func ImageHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx := r.Context()
	config, _ := ctx.Value(ContextKey("config")).(*iiif.Config)
	src, _ := ctx.Value(ContextKey("source")).(source.Source)
	thumbnails, _ := ctx.Value(ContextKey("thumbnails")).(*groupcache.Group)

	version, err := iiif.ParseAPIVersion(config.Version)
	if err != nil {
		handleError(w, err)
		return
	}

	path := strings.Join([]string{
		vars["region"],
		vars["size"],
		vars["rotation"],
		vars["filename"],
	}, "/")

	req, err := iiif.Parse(path, version)
	if err != nil {
		handleError(w, err)
		return
	}

	req.Identifier, err = source.ScrubIdentifier(vars["identifier"])
	if err != nil {
		handleError(w, err)
		return
	}

	// Before 2.0 a missing format is negotiated from the Accept
	// header. Later versions, and a level 0 backend, let the backend
	// pick its default.
	if req.Format == "" && version < iiif.Version20 && ComplianceLevel(config) > 0 {
		req.Format = negotiateFormat(r.Header.Get("Accept"))
		debug("negotiated format %s for %s", req.Format, req.Identifier)
	}

	var buffer []byte
	var mimeType string
	modTime := time.Now()

	if thumbnails != nil {
		key := fmt.Sprintf("%s/%s/%s", version, req.Identifier, req.Path())
		err = thumbnails.Get(thumbnailContext{config, src, req}, key,
			groupcache.AllocatingByteSliceSink(&buffer))
		mimeType = http.DetectContentType(buffer)
	} else {
		var blob *iiif.Blob
		blob, modTime, err = deriveBlob(config, src, req)
		if err == nil {
			buffer = blob.Bytes
			mimeType = blob.MimeType
		}
	}

	if err != nil {
		handleError(w, err)
		return
	}

	filename := fmt.Sprintf("%s-%s", req.Identifier, req.Path())
	filename = strings.Replace(
		strings.Replace(
			strings.Replace(filename, "/", "_", -1),
			":", "_", -1),
		",", "", -1)

	disposition := "inline"
	if _, present := r.URL.Query()["dl"]; present {
		disposition = "attachment"
	}

	header := w.Header()
	header.Set("Content-Disposition", fmt.Sprintf("%s; filename=%s", disposition, filename))
	header.Set("Content-Type", mimeType)
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", config.Cache.HTTP))
	if uri := iiif.ComplianceURI(version, ComplianceLevel(config)); uri != "" {
		header.Set("Link", fmt.Sprintf("<%s>;rel=\"profile\"", uri))
	}

	http.ServeContent(w, r, filename, modTime, bytes.NewReader(buffer))
}

// imageDims reads the size of the source without deriving anything.
func imageDims(config *iiif.Config, body []byte) (iiif.Dims, error) {
	if config.Backend == "vips" {
		return vips.SourceDims(body)
	}

	c, _, err := image.DecodeConfig(bytes.NewReader(body))
	if err != nil {
		return iiif.Dims{}, iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "identifier",
			Message:    fmt.Sprintf(openError, err.Error()),
		}
	}
	return iiif.Dims{Width: c.Width, Height: c.Height}, nil
}

// InfoHandler responds with the image technical properties.
func InfoHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	ctx := r.Context()
	config, _ := ctx.Value(ContextKey("config")).(*iiif.Config)
	src, _ := ctx.Value(ContextKey("source")).(source.Source)

	version, err := iiif.ParseAPIVersion(config.Version)
	if err != nil {
		handleError(w, err)
		return
	}

	identifier, err := source.ScrubIdentifier(vars["identifier"])
	if err != nil {
		handleError(w, err)
		return
	}

	body, modTime, err := src.Read(identifier)
	if err != nil {
		handleError(w, err)
		return
	}

	dims, err := imageDims(config, body)
	if err != nil {
		handleError(w, err)
		return
	}

	level := ComplianceLevel(config)
	id := fmt.Sprintf("%s/%s", baseURL(r), identifier)
	info := iiif.NewInfo(version, id, dims.Width, dims.Height, level)

	if version >= iiif.Version20 && level > 0 {
		info.Profile = append(info.Profile, &iiif.ImageProfile{
			Formats:   []string{"jpg", "png", "gif", "tif", "webp"},
			Qualities: []string{"default", "color", "gray", "bitonal"},
			MaxWidth:  config.MaxWidth,
			MaxHeight: config.MaxHeight,
			MaxArea:   config.MaxArea,
			Supports: []string{
				"baseUriRedirect",
				"cors",
				"jsonldMediaType",
				"mirroring",
				"profileLinkHeader",
				"regionByPct",
				"regionByPx",
				"regionSquare",
				"rotationArbitrary",
				"rotationBy90s",
				"sizeByConfinedWh",
				"sizeByDistortedWh",
				"sizeByH",
				"sizeByPct",
				"sizeByW",
				"sizeByWh",
			},
		})
	}

	buffer, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		http.Error(w, "cannot create the profile", http.StatusInternalServerError)
		return
	}

	header := w.Header()

	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/ld+json") {
		header.Set("Content-Type", "application/ld+json")
	} else {
		header.Set("Content-Type", "application/json")
	}
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
	header.Set("ETag", getETag(r.URL.String()))
	header.Set("Cache-Control", fmt.Sprintf("max-age=%v, public", config.Cache.HTTP))
	if uri := iiif.ComplianceURI(version, level); uri != "" {
		header.Set("Link", fmt.Sprintf("<%s>;rel=\"profile\"", uri))
	}

	http.ServeContent(w, r, "info.json", modTime, bytes.NewReader(buffer))
}

func baseURL(r *http.Request) string {
	scheme := "https"
	if r.TLS == nil {
		scheme = "http"
	}
	if r.Header.Get("X-Forwarded-Proto") != "" {
		scheme = r.Header.Get("X-Forwarded-Proto")
	}

	host := r.Host
	if r.Header.Get("X-Forwarded-Host") != "" {
		host = r.Header.Get("X-Forwarded-Host")
	}

	return fmt.Sprintf("%s://%s", scheme, host)
}

// RedirectHandler points to the info document of the image.
func RedirectHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	identifier, err := source.ScrubIdentifier(vars["identifier"])
	if err != nil {
		http.NotFound(w, r)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/%s/info.json", baseURL(r), identifier), http.StatusSeeOther)
}
