package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory keeps blobs in the process memory, with an expiration.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory builds an in-memory cache.
func NewMemory() *Memory {
	ttl := 5 * time.Minute
	flush := 30 * time.Second

	return &Memory{
		cache: gocache.New(ttl, flush),
	}
}

func (mc *Memory) Get(key string) ([]byte, error) {
	rsp, found := mc.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return rsp.([]byte), nil
}

func (mc *Memory) Set(key string, body []byte) error {
	mc.cache.Set(key, body, gocache.DefaultExpiration)
	return nil
}

func (mc *Memory) Unset(key string) error {
	mc.cache.Delete(key)
	return nil
}
