package main

import (
	"flag"
	"log"

	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/server"
	"github.com/iiif-go/iiif/static"
)

func main() {
	var dst = flag.String("dst", ".", "Define the output directory.")
	var tilesize = flag.Int("tilesize", static.DefaultTileSize, "Define the size of the tiles.")
	var version = flag.String("api-version", "1.1", "Define the API version of the generated URLs.")
	var backend = flag.String("backend", "native", "Define the image backend, native or vips.")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("no image to tile, give at least one filename")
	}

	v, err := iiif.ParseAPIVersion(*version)
	if err != nil {
		log.Fatal(err)
	}

	config := &iiif.Config{Backend: *backend}

	g := &static.Generator{
		Dst:      *dst,
		TileSize: *tilesize,
		Version:  v,
		NewManipulator: func() *iiif.Manipulator {
			return server.NewManipulator(config)
		},
	}

	for _, src := range flag.Args() {
		log.Printf("Tiling %s", src)
		if err := g.Generate(src); err != nil {
			log.Fatal(err)
		}
	}
}
