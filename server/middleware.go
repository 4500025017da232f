package server

import (
	"context"
	"net/http"

	"github.com/golang/groupcache"

	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/source"
)

// ContextKey is the key of a value carried by the request context.
type ContextKey string

// WithConfig sets the server configuration.
func WithConfig(h http.Handler, config *iiif.Config) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, ContextKey("config"), config)
		r = r.WithContext(ctx)
		h.ServeHTTP(w, r)
	})
}

// WithSource sets the image source.
func WithSource(h http.Handler, src source.Source) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = context.WithValue(ctx, ContextKey("source"), src)
		r = r.WithContext(ctx)
		h.ServeHTTP(w, r)
	})
}

// WithGroupCaches sets the various caches.
func WithGroupCaches(h http.Handler, groups map[string]*groupcache.Group) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		for k, v := range groups {
			ctx = context.WithValue(ctx, ContextKey(k), v)
		}
		r = r.WithContext(ctx)
		h.ServeHTTP(w, r)
	})
}
