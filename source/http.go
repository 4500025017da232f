package source

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iiif-go/iiif/cache"
	"github.com/iiif-go/iiif/iiif"
)

// HTTP downloads remote images. The identifier is either a base64
// encoded URL or a bare URL whose double slash got collapsed by the
// routing.
type HTTP struct {
	cache  cache.Cache
	client *http.Client
}

// NewHTTP builds a remote source backed by the given cache.
func NewHTTP(ch cache.Cache) *HTTP {
	if ch == nil {
		ch = cache.NewNull()
	}
	return &HTTP{
		cache:  ch,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// resolveURL turns the identifier into the remote URL, or "".
func resolveURL(identifier string) string {
	if strings.HasPrefix(identifier, "http:/") || strings.HasPrefix(identifier, "https:/") {
		return strings.Replace(identifier, ":/", "://", 1)
	}

	url, err := base64.StdEncoding.DecodeString(identifier)
	if err != nil {
		return ""
	}
	u := string(url)
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ""
	}
	return u
}

func (hs *HTTP) Read(identifier string) ([]byte, time.Time, error) {
	notFound := iiif.Error{
		StatusCode: http.StatusNotFound,
		Parameter:  "identifier",
		Message:    identifierError,
	}

	url := resolveURL(identifier)
	if url == "" {
		debug("%s is not a remote identifier", identifier)
		return nil, time.Time{}, notFound
	}

	if body, err := hs.cache.Get(url); err == nil {
		debug("from cache %s", url)
		return body, time.Time{}, nil
	}

	resp, err := hs.client.Get(url)
	if err != nil {
		debug("download error %s: %s", url, err)
		return nil, time.Time{}, notFound
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		debug("download error %s: %s", url, resp.Status)
		return nil, time.Time{}, notFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, time.Time{}, notFound
	}

	go hs.cache.Set(url, body)

	modTime := time.Time{}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(http.TimeFormat, lm); err == nil {
			modTime = t
		}
	}

	return body, modTime, nil
}
