package iiif

// Context URIs for the info document, one per API generation that has
// one. API 1.0 predates JSON-LD and carries none.
const (
	contextURI11 = "http://library.stanford.edu/iiif/image-api/1.1/context.json"
	contextURI20 = "http://iiif.io/api/image/2/context.json"

	protocolURI = "http://iiif.io/api/image"
)

// ImageProfile contains the technical properties about the service.
type ImageProfile struct {
	Context   string   `json:"@context,omitempty"`
	ID        string   `json:"@id,omitempty"`
	Type      string   `json:"@type,omitempty"` // empty or iiif:ImageProfile
	Formats   []string `json:"formats"`
	MaxArea   int      `json:"maxArea,omitempty"`
	MaxHeight int      `json:"maxHeight,omitempty"`
	MaxWidth  int      `json:"maxWidth,omitempty"`
	Qualities []string `json:"qualities"`
	Supports  []string `json:"supports,omitempty"`
}

// Size contains the information for the available sizes.
type Size struct {
	Type   string `json:"@type,omitempty"` // empty or iiif:Size
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Tile contains the information to deal with tiles.
type Tile struct {
	Type         string `json:"@type,omitempty"` // empty or iiif:Tile
	ScaleFactors []int  `json:"scaleFactors"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}

// Image is the info.json document for one image.
type Image struct {
	Context  string        `json:"@context,omitempty"`
	ID       string        `json:"@id"`
	Type     string        `json:"@type,omitempty"` // empty or iiif:Image
	Protocol string        `json:"protocol,omitempty"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Profile  []interface{} `json:"profile"`
	Sizes    []Size        `json:"sizes,omitempty"`
	Tiles    []Tile        `json:"tiles,omitempty"`
}

// NewInfo builds the info document skeleton for an image at the given
// compliance level. Callers append an ImageProfile to Profile when they
// have more to say about formats and qualities.
func NewInfo(v APIVersion, id string, width, height, level int) *Image {
	info := &Image{
		ID:      id,
		Width:   width,
		Height:  height,
		Profile: []interface{}{ComplianceURI(v, level)},
	}
	switch {
	case v >= Version20:
		info.Context = contextURI20
		info.Type = "iiif:Image"
		info.Protocol = protocolURI
	case v == Version11:
		info.Context = contextURI11
	}
	return info
}

// Config stores the IIIF server configuration.
type Config struct {
	Host      string      `toml:"host"`
	Port      int         `toml:"port"`
	Images    string      `toml:"images"`
	Backend   string      `toml:"backend"` // native (default), vips or null
	Version   string      `toml:"version"` // API version served, default 2.1
	MaxWidth  int         `toml:"maxWidth"`
	MaxHeight int         `toml:"maxHeight"`
	MaxArea   int         `toml:"maxArea"`
	Cache     CacheConfig `toml:"cache"`
}

// CacheConfig represents the configuration information regarding the
// caches.
type CacheConfig struct {
	HTTP       int64  `toml:"http"`       // max-age for HTTP caching headers
	Name       string `toml:"name"`       // source byte cache: memory, bolt or none
	Path       string `toml:"path"`       // bolt database location
	Thumbnails string `toml:"thumbnails"` // groupcache size, e.g. "64M"

	ThumbnailsSize int64
}
