package iiif

import (
	"fmt"
	"net/http"
)

// APIVersion identifies an IIIF Image API generation. Versions compare
// lexically, e.g. Version11 < Version20.
type APIVersion string

// The supported Image API versions.
const (
	Version10 APIVersion = "1.0"
	Version11 APIVersion = "1.1"
	Version20 APIVersion = "2.0"
	Version21 APIVersion = "2.1"
)

// ParseAPIVersion validates s against the closed set of supported
// versions. The empty string selects the most recent one.
func ParseAPIVersion(s string) (APIVersion, error) {
	switch APIVersion(s) {
	case "":
		return Version21, nil
	case Version10, Version11, Version20, Version21:
		return APIVersion(s), nil
	}
	return "", Error{http.StatusBadRequest, "version", fmt.Sprintf("unknown API version: %#v", s)}
}

// DefaultQuality returns the quality token implied when a request
// leaves it out: "native" before 2.0, "default" from 2.0 on.
func (v APIVersion) DefaultQuality() string {
	if v >= Version20 {
		return "default"
	}
	return "native"
}
