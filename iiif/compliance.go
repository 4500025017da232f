package iiif

import (
	"fmt"
)

// Compliance URI templates, one per API generation.
const (
	complianceURI10 = "http://library.stanford.edu/iiif/image-api/compliance.html#level%d"
	complianceURI11 = "http://library.stanford.edu/iiif/image-api/1.1/compliance.html#level%d"
	complianceURI20 = "http://iiif.io/api/image/2/level%d.json"
)

// ComplianceURI returns the profile URI advertising the compliance
// level for the given API version, for use in info documents and Link
// headers. The empty string is returned when either the version or the
// level is out of range.
func ComplianceURI(v APIVersion, level int) string {
	if level < 0 || level > 2 {
		return ""
	}
	switch v {
	case Version10:
		return fmt.Sprintf(complianceURI10, level)
	case Version11:
		return fmt.Sprintf(complianceURI11, level)
	case Version20, Version21:
		return fmt.Sprintf(complianceURI20, level)
	}
	return ""
}
