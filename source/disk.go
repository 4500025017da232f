package source

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/iiif-go/iiif/iiif"
)

// error messages
var (
	identifierError = "the identifier cannot be read"
)

// Disk reads the images from a directory on disk.
type Disk struct {
	root string
}

// NewDisk builds a source rooted at the given directory.
func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

func (ds *Disk) Read(identifier string) ([]byte, time.Time, error) {
	filename := filepath.Join(ds.root, identifier)

	stat, err := os.Stat(filename)
	if err != nil {
		debug("cannot stat %s: %s", filename, err)
		return nil, time.Time{}, iiif.Error{
			StatusCode: http.StatusNotFound,
			Parameter:  "identifier",
			Message:    identifierError,
		}
	}

	body, err := os.ReadFile(filename)
	if err != nil {
		debug("cannot read %s: %s", filename, err)
		return nil, time.Time{}, iiif.Error{
			StatusCode: http.StatusNotFound,
			Parameter:  "identifier",
			Message:    identifierError,
		}
	}

	return body, stat.ModTime(), nil
}
