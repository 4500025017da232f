package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"code.cloudfoundry.org/bytefmt"
	"github.com/BurntSushi/toml"
	"github.com/facebookgo/grace/gracehttp"

	"github.com/iiif-go/iiif/cache"
	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/server"
	"github.com/iiif-go/iiif/source"
)

func main() {
	var configFile = flag.String("config", "config.toml", "Define the configuration file to use.")
	flag.Parse()

	if flag.NArg() > 0 {
		*configFile = flag.Arg(0)
	}

	var config iiif.Config
	log.Printf("Reading configuration from %s", *configFile)
	if _, err := toml.DecodeFile(*configFile, &config); err != nil {
		log.Fatal(err)
	}

	if config.Cache.Thumbnails != "" {
		tS, err := bytefmt.ToBytes(config.Cache.Thumbnails)
		if err != nil {
			log.Fatal(err)
		}
		config.Cache.ThumbnailsSize = int64(tS)
	}

	ch, err := cache.NewFromConfig(config.Cache)
	if err != nil {
		log.Fatal(err)
	}

	src, err := source.NewFromConfig(&config, ch)
	if err != nil {
		log.Fatal(err)
	}

	handler := server.MakeRouter()
	if config.Cache.ThumbnailsSize > 0 {
		handler = server.SetThumbnails(handler, &config, src, config.Cache.ThumbnailsSize,
			fmt.Sprintf("http://%s/", config.Host)) // TODO add any other peers here...
	}
	handler = server.WithSource(handler, src)
	handler = server.WithConfig(handler, &config)

	listen := fmt.Sprintf("%v:%v", config.Host, config.Port)
	log.Printf("Server running on %v", listen)

	if err := gracehttp.Serve(&http.Server{Addr: listen, Handler: handler}); err != nil {
		log.Fatal(err)
	}
}
