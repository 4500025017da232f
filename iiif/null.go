package iiif

import (
	"net/http"
)

// NullBackend is the minimal backend, the compliance level 0 baseline.
// It accepts identity operations only and serves the source bytes
// untouched; everything else fails with the status the stage mandates.
type NullBackend struct {
	buf []byte
}

// Load keeps the source bytes around for Encode. The null backend
// cannot decode images, so the dimensions stay unknown.
func (b *NullBackend) Load(buf []byte) (Dims, error) {
	b.buf = buf
	return Dims{-1, -1}, nil
}

// Crop fails, the null backend supports region=full only.
func (b *NullBackend) Crop(Box) (Dims, error) {
	return Dims{}, Error{http.StatusNotImplemented, "region", "null backend supports region=full only"}
}

// Resize fails, the null backend supports size=full and size=pct:100 only.
func (b *NullBackend) Resize(int, int) (Dims, error) {
	return Dims{}, Error{http.StatusNotImplemented, "size", "null backend supports size=full and size=pct:100 only"}
}

// Rotate fails, the null backend supports rotation=0 only.
func (b *NullBackend) Rotate(mirror bool, degrees float64) error {
	if mirror {
		return Error{http.StatusNotImplemented, "rotation", "null backend does not support mirroring"}
	}
	return Error{http.StatusNotImplemented, "rotation", "null backend supports rotation=0 only"}
}

// ApplyQuality accepts the default qualities of every API version.
func (b *NullBackend) ApplyQuality(quality string) error {
	if quality == "default" || quality == "native" {
		return nil
	}
	return Error{http.StatusNotImplemented, "quality", "null backend supports the default quality only"}
}

// Encode passes the source bytes through. An explicit format cannot be
// honoured since nothing is transcoded.
func (b *NullBackend) Encode(format string) (*Blob, error) {
	if format != "" {
		return nil, Error{http.StatusUnsupportedMediaType, "format", "null backend cannot encode to an explicit format"}
	}
	return &Blob{Bytes: b.buf, MimeType: http.DetectContentType(b.buf)}, nil
}

// Cleanup drops the source bytes.
func (b *NullBackend) Cleanup() {
	b.buf = nil
}
