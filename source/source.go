// Package source reads the original images by identifier.
package source

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	d "github.com/tj/go-debug"

	"github.com/iiif-go/iiif/cache"
	"github.com/iiif-go/iiif/iiif"
)

var debug = d.Debug("iiif:source")

// Source resolves an identifier into the original image bytes and
// their last modification time.
type Source interface {
	Read(identifier string) ([]byte, time.Time, error)
}

// ScrubIdentifier unescapes the identifier and removes any path
// traversal from it.
func ScrubIdentifier(identifier string) (string, error) {
	clean, err := url.QueryUnescape(identifier)
	if err != nil {
		return "", iiif.Error{
			StatusCode: http.StatusBadRequest,
			Parameter:  "identifier",
			Message:    identifierError,
		}
	}

	clean = strings.Replace(clean, "../", "", -1)
	return clean, nil
}

// NewFromConfig builds a source reading from the configured images
// directory, falling back to remote URLs.
func NewFromConfig(config *iiif.Config, ch cache.Cache) (Source, error) {
	disk := NewDisk(config.Images)
	remote := NewHTTP(ch)

	return &Multi{sources: []Source{disk, remote}}, nil
}

// Multi tries each source in turn and keeps the first hit.
type Multi struct {
	sources []Source
}

func (m *Multi) Read(identifier string) ([]byte, time.Time, error) {
	var err error
	for _, s := range m.sources {
		var body []byte
		var modTime time.Time
		body, modTime, err = s.Read(identifier)
		if err == nil {
			return body, modTime, nil
		}
	}
	return nil, time.Time{}, err
}
