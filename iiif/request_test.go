package iiif

import (
	"errors"
	"net/http"
	"testing"
)

func TestParse(t *testing.T) {
	var tests = []struct {
		path string
		want Request
	}{
		{
			"full/full/0/default.jpg",
			Request{Region: RegionFull, Size: SizeFull, Quality: "default", Format: "jpg"},
		},
		{
			"full/max/0/default.png",
			Request{Region: RegionFull, Size: SizeFull, Quality: "default", Format: "png"},
		},
		{
			"square/full/0/default.jpg",
			Request{Region: RegionSquare, Size: SizeFull, Quality: "default", Format: "jpg"},
		},
		{
			"0,0,100,200/full/0/default.jpg",
			Request{Region: RegionPixel, RegionW: 100, RegionH: 200,
				Size: SizeFull, Quality: "default", Format: "jpg"},
		},
		{
			"pct:10,10,80,80/full/0/default.jpg",
			Request{Region: RegionPercent, RegionX: 10, RegionY: 10, RegionW: 80, RegionH: 80,
				Size: SizeFull, Quality: "default", Format: "jpg"},
		},
		{
			"full/400,300/0/default.jpg",
			Request{Region: RegionFull, Size: SizeExact, SizeW: 400, SizeH: 300,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/400,/0/default.jpg",
			Request{Region: RegionFull, Size: SizeExact, SizeW: 400,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/,300/0/default.jpg",
			Request{Region: RegionFull, Size: SizeExact, SizeH: 300,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/!400,300/0/default.jpg",
			Request{Region: RegionFull, Size: SizeBestFit, SizeW: 400, SizeH: 300,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/pct:50/0/default.jpg",
			Request{Region: RegionFull, Size: SizePercent, SizePercent: 50,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/full/90/default.jpg",
			Request{Region: RegionFull, Size: SizeFull, Degrees: 90,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/full/!22.5/default.jpg",
			Request{Region: RegionFull, Size: SizeFull, Mirror: true, Degrees: 22.5,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/full/360/default.jpg",
			Request{Region: RegionFull, Size: SizeFull, Degrees: 0,
				Quality: "default", Format: "jpg"},
		},
		{
			"full/full/0/gray.png",
			Request{Region: RegionFull, Size: SizeFull, Quality: "gray", Format: "png"},
		},
		{
			"full/full/0/default",
			Request{Region: RegionFull, Size: SizeFull, Quality: "default"},
		},
	}

	for _, test := range tests {
		got, err := Parse(test.path, Version21)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", test.path, err)
			continue
		}
		test.want.APIVersion = Version21
		if *got != test.want {
			t.Errorf("Parse(%q): got %+v want %+v", test.path, *got, test.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []struct {
		path      string
		version   APIVersion
		parameter string
	}{
		{"full/full/0", Version21, "path"},
		{"full/full/0/default.jpg/extra", Version21, "path"},
		{"square/full/0/native.jpg", Version11, "region"},
		{"square/full/0/native.jpg", Version10, "region"},
		{"10/full/0/default.jpg", Version21, "region"},
		{"10,10/full/0/default.jpg", Version21, "region"},
		{"10,10,10/full/0/default.jpg", Version21, "region"},
		{"10,10,10,10,10/full/0/default.jpg", Version21, "region"},
		{"-10,10,10,10/full/0/default.jpg", Version21, "region"},
		{"a,b,c,d/full/0/default.jpg", Version21, "region"},
		{"pct:10,10,80/full/0/default.jpg", Version21, "region"},
		{"pct:10,10,80,x/full/0/default.jpg", Version21, "region"},
		{"pct:-1,0,100,100/full/0/default.jpg", Version21, "region"},
		{"full/10/0/default.jpg", Version21, "size"},
		{"full/10,10,10/0/default.jpg", Version21, "size"},
		{"full/,/0/default.jpg", Version21, "size"},
		{"full/-400,300/0/default.jpg", Version21, "size"},
		{"full/pct:-1/0/default.jpg", Version21, "size"},
		{"full/pct:x/0/default.jpg", Version21, "size"},
		{"full/!400/0/default.jpg", Version21, "size"},
		{"full/!400,/0/default.jpg", Version21, "size"},
		{"full/full/flip/default.jpg", Version21, "rotation"},
		{"full/full/-90/default.jpg", Version21, "rotation"},
		{"full/full/361/default.jpg", Version21, "rotation"},
		{"full/full/!/default.jpg", Version21, "rotation"},
		{"full/full/0/default.", Version21, "format"},
	}

	for _, test := range tests {
		_, err := Parse(test.path, test.version)
		if err == nil {
			t.Errorf("Parse(%q, %s) should have failed", test.path, test.version)
			continue
		}
		var e Error
		if !errors.As(err, &e) {
			t.Errorf("Parse(%q): got %T want Error", test.path, err)
			continue
		}
		if e.StatusCode != http.StatusBadRequest {
			t.Errorf("Parse(%q): got status %d want %d", test.path, e.StatusCode, http.StatusBadRequest)
		}
		if e.Parameter != test.parameter {
			t.Errorf("Parse(%q): got parameter %q want %q", test.path, e.Parameter, test.parameter)
		}
	}
}

func TestParseZeroSize(t *testing.T) {
	// well formed but degenerate dimensions, a class of their own.
	var tests = []struct {
		path      string
		parameter string
	}{
		{"0,0,0,50/full/0/default.jpg", "region"},
		{"10,10,10,0/full/0/default.jpg", "region"},
		{"pct:0,0,0,50/full/0/default.jpg", "region"},
		{"full/0,/0/default.jpg", "size"},
		{"full/,0/0/default.jpg", "size"},
		{"full/0,300/0/default.jpg", "size"},
		{"full/pct:0/0/default.jpg", "size"},
		{"full/!0,50/0/default.jpg", "size"},
	}

	for _, test := range tests {
		_, err := Parse(test.path, Version21)

		var z ZeroSizeError
		if !errors.As(err, &z) {
			t.Errorf("Parse(%q): got %v want ZeroSizeError", test.path, err)
			continue
		}
		if z.Err.StatusCode != http.StatusBadRequest || z.Err.Parameter != test.parameter {
			t.Errorf("Parse(%q): got %d %q want 400 %q",
				test.path, z.Err.StatusCode, z.Err.Parameter, test.parameter)
		}
	}
}

func TestParseSquareByVersion(t *testing.T) {
	if _, err := Parse("square/full/0/default.jpg", Version20); err != nil {
		t.Errorf("square should parse under 2.0: %v", err)
	}
	if _, err := Parse("square/full/0/native.jpg", Version11); err == nil {
		t.Errorf("square should not parse under 1.1")
	}
}

func TestPath(t *testing.T) {
	var tests = []struct {
		request Request
		want    string
	}{
		{
			Request{APIVersion: Version21, Region: RegionFull, Size: SizeFull, Quality: "default", Format: "jpg"},
			"full/full/0/default.jpg",
		},
		{
			Request{APIVersion: Version21, Region: RegionPixel,
				RegionX: 10, RegionY: 20, RegionW: 30, RegionH: 40,
				Size: SizeExact, SizeW: 15, SizeH: 20, Quality: "default", Format: "png"},
			"10,20,30,40/15,20/0/default.png",
		},
		{
			Request{APIVersion: Version21, Region: RegionSquare,
				Size: SizeExact, SizeW: 15, Degrees: 90, Quality: "default", Format: "jpg"},
			"square/15,/90/default.jpg",
		},
		{
			Request{APIVersion: Version21, Region: RegionPercent,
				RegionX: 10, RegionY: 10, RegionW: 80.5, RegionH: 80,
				Size: SizePercent, SizePercent: 50, Mirror: true, Degrees: 180,
				Quality: "gray", Format: "jpg"},
			"pct:10,10,80.5,80/pct:50/!180/gray.jpg",
		},
		{
			Request{APIVersion: Version21, Region: RegionFull,
				Size: SizeBestFit, SizeW: 400, SizeH: 300, Quality: "default", Format: "jpg"},
			"full/!400,300/0/default.jpg",
		},
		// unset quality and format take the version defaults
		{
			Request{APIVersion: Version11, Region: RegionFull, Size: SizeFull},
			"full/full/0/native.jpg",
		},
		{
			Request{APIVersion: Version21, Region: RegionFull, Size: SizeFull},
			"full/full/0/default.jpg",
		},
	}

	for _, test := range tests {
		if got := test.request.Path(); got != test.want {
			t.Errorf("Path(): got %q want %q", got, test.want)
		}
	}
}

// Canonical paths survive a parse and re-generate cycle untouched.
func TestPathRoundTrip(t *testing.T) {
	var tests = []string{
		"full/full/0/default.jpg",
		"square/full/0/default.jpg",
		"10,20,30,40/full/0/default.jpg",
		"0,0,512,512/256,256/0/default.png",
		"10,20,30,40/15,/90/default.jpg",
		"10,20,30,40/,20/180/default.jpg",
		"full/full/270/gray.png",
	}

	for _, path := range tests {
		r, err := Parse(path, Version21)
		if err != nil {
			t.Errorf("Parse(%q) failed: %v", path, err)
			continue
		}
		if got := r.Path(); got != path {
			t.Errorf("round trip: got %q want %q", got, path)
		}
	}
}
