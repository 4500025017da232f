// Package static precomputes the tiles a level 0 server needs, so a
// plain file server can answer Image API URLs.
package static

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	d "github.com/tj/go-debug"

	"github.com/iiif-go/iiif/backend/native"
	"github.com/iiif-go/iiif/iiif"
)

var debug = d.Debug("iiif:static")

// DefaultTileSize splits well across zoom levels for most viewers.
const DefaultTileSize = 512

// Generator derives the full tile pyramid of an image into a directory.
type Generator struct {
	// Dst is the output directory. The tiles go into a subdirectory
	// named after the image.
	Dst      string
	TileSize int
	Version  iiif.APIVersion

	// NewManipulator overrides how each tile gets derived, the native
	// backend barring one.
	NewManipulator func() *iiif.Manipulator
}

func (g *Generator) newManipulator() *iiif.Manipulator {
	if g.NewManipulator != nil {
		return g.NewManipulator()
	}
	return &iiif.Manipulator{Backend: native.New()}
}

// scaleFactors doubles from one until a single tile covers the image.
func scaleFactors(width, height, tilesize int) []int {
	xtiles := width / tilesize
	ytiles := height / tilesize
	maxTiles := xtiles
	if ytiles > xtiles {
		maxTiles = ytiles
	}

	factors := []int{1}
	factor := 1
	for i := 0; i < 10; i++ {
		if factor >= maxTiles {
			break
		}
		factor += factor
		factors = append(factors, factor)
	}
	return factors
}

// Generate derives every tile of src, plus the info document.
func (g *Generator) Generate(src string) error {
	tilesize := g.TileSize
	if tilesize <= 0 {
		tilesize = DefaultTileSize
	}
	if g.Version == "" {
		g.Version = iiif.Version11
	}

	body, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	backend := native.New()
	dims, err := backend.Load(body)
	backend.Cleanup()
	if err != nil {
		return err
	}
	width, height := dims.Width, dims.Height

	identifier := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	root := filepath.Join(g.Dst, identifier)
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}

	factors := scaleFactors(width, height, tilesize)
	if err := g.writeInfo(root, identifier, width, height, tilesize, factors); err != nil {
		return err
	}

	for _, sf := range factors {
		rts := tilesize * sf // tile size in the source image
		xt := (width-1)/rts + 1
		yt := (height-1)/rts + 1
		for nx := 0; nx < xt; nx++ {
			rx := nx * rts
			rxe := rx + rts
			if rxe > width {
				rxe = width
			}
			rw := rxe - rx
			sw := rw / sf
			for ny := 0; ny < yt; ny++ {
				ry := ny * rts
				rye := ry + rts
				if rye > height {
					rye = height
				}
				rh := rye - ry
				sh := rh / sf
				if sw == 0 || sh == 0 {
					// a sliver thinner than the scale factor.
					continue
				}
				if err := g.generateTile(root, body, rx, ry, rw, rh, sw, sh); err != nil {
					return fmt.Errorf("tile %d,%d,%d,%d: %w", rx, ry, rw, rh, err)
				}
			}
		}
	}

	return nil
}

func (g *Generator) writeInfo(root, identifier string, width, height, tilesize int, factors []int) error {
	info := iiif.NewInfo(g.Version, identifier, width, height, 0)
	info.Tiles = []iiif.Tile{
		{ScaleFactors: factors, Width: tilesize, Height: tilesize},
	}

	buffer, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}

	filename := filepath.Join(root, "info.json")
	debug("writing %s", filename)
	return os.WriteFile(filename, buffer, 0644)
}

func (g *Generator) generateTile(root string, body []byte, rx, ry, rw, rh, sw, sh int) error {
	req := &iiif.Request{
		APIVersion: g.Version,
		Region:     iiif.RegionPixel,
		RegionX:    float64(rx),
		RegionY:    float64(ry),
		RegionW:    float64(rw),
		RegionH:    float64(rh),
		Size:       iiif.SizeExact,
		SizeW:      sw,
		SizeH:      sh,
		Format:     "jpg",
	}

	m := g.newManipulator()
	defer m.Cleanup()

	blob, err := m.Derive(body, req)
	if err != nil {
		return err
	}

	filename := filepath.Join(root, filepath.FromSlash(req.Path()))
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	debug("writing %s", filename)
	return os.WriteFile(filename, blob.Bytes, 0644)
}
