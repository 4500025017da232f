// Package server exposes the Image API over HTTP.
package server

import (
	"fmt"
	"net/http"

	"github.com/golang/groupcache"
	"github.com/gorilla/mux"
	d "github.com/tj/go-debug"

	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/source"
)

var debug = d.Debug("iiif")

// MakeRouter constructs the basic router (no middlewares).
func MakeRouter() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/{identifier:.*}/info.json", InfoHandler)
	router.HandleFunc("/{identifier:.*}/{region}/{size}/{rotation}/{filename}", ImageHandler)
	router.HandleFunc("/{identifier:.*}", RedirectHandler)

	return limitURLLength(router)
}

// limitURLLength refuses overlong request URIs before any route runs.
func limitURLLength(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.RequestURI()) > maxURLLength {
			http.Error(w, fmt.Sprintf(uriTooLongError, maxURLLength), http.StatusRequestURITooLong)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// thumbnailContext carries what the thumbnails getter needs to derive
// an image outside of any HTTP request.
type thumbnailContext struct {
	config *iiif.Config
	src    source.Source
	req    *iiif.Request
}

// SetThumbnails puts a groupcache of derived images in front of the
// pixel work. The first peer is ourselves.
func SetThumbnails(router http.Handler, config *iiif.Config, src source.Source, size int64, peers ...string) http.Handler {
	pool := groupcache.NewHTTPPool(peers[0])
	pool.Set(peers...)

	var thumbnails = groupcache.NewGroup("thumbnails", size, groupcache.GetterFunc(
		func(ctx groupcache.Context, key string, dest groupcache.Sink) error {
			c := ctx.(thumbnailContext)
			blob, _, err := deriveBlob(c.config, c.src, c.req)
			if err != nil {
				return err
			}
			debug("caching %s", key)
			return dest.SetBytes(blob.Bytes)
		},
	))

	return WithGroupCaches(router, map[string]*groupcache.Group{
		"thumbnails": thumbnails,
	})
}
