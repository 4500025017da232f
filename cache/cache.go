// Package cache stores derived images and downloaded sources.
package cache

import (
	"errors"
	"fmt"

	"github.com/iiif-go/iiif/iiif"
)

// ErrNotFound reports a key without any value.
var ErrNotFound = errors.New("cache: key not found")

// Cache is a simple key value store for blobs.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, body []byte) error
	Unset(key string) error
}

// NewFromConfig builds the cache the configuration asks for.
func NewFromConfig(config iiif.CacheConfig) (Cache, error) {
	switch config.Name {
	case "memory":
		return NewMemory(), nil
	case "bolt":
		return NewBolt(config.Path)
	case "none", "":
		return NewNull(), nil
	}
	return nil, fmt.Errorf("unknown cache %q", config.Name)
}

// Null stores nothing.
type Null struct{}

// NewNull builds a cache that always misses.
func NewNull() *Null {
	return &Null{}
}

func (n *Null) Get(key string) ([]byte, error) {
	return nil, ErrNotFound
}

func (n *Null) Set(key string, body []byte) error {
	return nil
}

func (n *Null) Unset(key string) error {
	return nil
}
