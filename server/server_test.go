package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"

	"github.com/iiif-go/iiif/cache"
	"github.com/iiif-go/iiif/iiif"
	"github.com/iiif-go/iiif/source"
)

var fixtures string

func TestMain(m *testing.M) {
	var err error
	fixtures, err = os.MkdirTemp("", "iiif-fixtures")
	if err != nil {
		log.Fatal(err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 100, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}

	f, err := os.Create(filepath.Join(fixtures, "lena.png"))
	if err != nil {
		log.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		log.Fatal(err)
	}
	f.Close()

	code := m.Run()
	os.RemoveAll(fixtures)
	os.Exit(code)
}

func newServerWithConfig(config *iiif.Config) *httptest.Server {
	config.Images = fixtures

	src, err := source.NewFromConfig(config, cache.NewNull())
	if err != nil {
		log.Fatal(err)
	}

	r := MakeRouter()
	r = WithSource(r, src)
	r = WithConfig(r, config)
	return httptest.NewServer(r)
}

func newServer() *httptest.Server {
	return newServerWithConfig(&iiif.Config{})
}

func TestImageStatuses(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	var tests = []struct {
		url    string
		status int
	}{
		{"/lena.png/full/full/0/default.jpg", http.StatusOK},
		{"/lena.png/square/full/0/default.png", http.StatusOK},
		{"/lena.png/pct:10,10,50,50/!50,50/90/gray.png", http.StatusOK},
		{"/lena.png/full/full/0/default", http.StatusOK},
		{"/lena.png/whatever/full/0/default.jpg", http.StatusBadRequest},
		{"/lena.png/full/pct:0/0/default.jpg", http.StatusBadRequest},
		{"/lena.png/full/full/361/default.jpg", http.StatusBadRequest},
		{"/lena.png/full/full/0/acme.jpg", http.StatusBadRequest},
		{"/lena.png/full/full/0/default.svg", http.StatusUnsupportedMediaType},
		{"/lena.png/0,0,1,1/pct:1/0/default.jpg", http.StatusBadRequest},
		{"/missing.png/full/full/0/default.jpg", http.StatusNotFound},
		{"/" + strings.Repeat("a", 1100) + "/full/full/0/default.jpg", http.StatusRequestURITooLong},
	}

	for _, test := range tests {
		resp, err := http.Get(ts.URL + test.url)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != test.status {
			t.Errorf("%v returned wrong status code: got %v want %v",
				test.url, resp.StatusCode, test.status)
		}
	}
}

func TestImageOutput(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lena.png/square/pct:50/90/default.png")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: got %v", resp.StatusCode)
	}
	if contentType := resp.Header.Get("Content-Type"); contentType != "image/png" {
		t.Errorf("wrong content type: got %v want image/png", contentType)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	size := img.Bounds().Size()
	if size.X != 40 || size.Y != 40 {
		t.Errorf("wrong output size: got %vx%v want 40x40", size.X, size.Y)
	}
}

func TestURLTooLong(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	// any route refuses overlong URLs, info.json and redirects too.
	long := "/" + strings.Repeat("a", 1100)
	var tests = []string{
		long + "/full/full/0/default.jpg",
		long + "/info.json",
		long,
	}

	for _, url := range tests {
		resp, err := http.Get(ts.URL + url)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusRequestURITooLong {
			t.Errorf("%v returned wrong status code: got %v want %v",
				url[:40], resp.StatusCode, http.StatusRequestURITooLong)
		}
	}
}

func TestImageMaxSize(t *testing.T) {
	ts := newServerWithConfig(&iiif.Config{MaxWidth: 50})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lena.png/full/full/0/default.png")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("an oversized request should be refused: got %v", resp.StatusCode)
	}
}

func TestImageHeaders(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lena.png/full/full/0/default.png?dl")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	disposition := resp.Header.Get("Content-Disposition")
	if !strings.HasPrefix(disposition, "attachment") {
		t.Errorf("dl should trigger a download: got %v", disposition)
	}
	if !strings.Contains(disposition, "lena.png-full_full_0_default.png") {
		t.Errorf("unexpected filename: got %v", disposition)
	}

	link := resp.Header.Get("Link")
	if !strings.Contains(link, "http://iiif.io/api/image/2/level2.json") {
		t.Errorf("the compliance level should be advertised: got %v", link)
	}
}

func TestConneg(t *testing.T) {
	// the Accept header only picks the format before 2.0, later
	// versions fall back to the backend default.
	var tests = []struct {
		version  string
		path     string
		mimeType string
	}{
		{"1.0", "/lena.png/full/full/0/native", "image/png"},
		{"1.1", "/lena.png/full/full/0/native", "image/png"},
		{"2.1", "/lena.png/full/full/0/default", "image/jpeg"},
	}

	for _, test := range tests {
		ts := newServerWithConfig(&iiif.Config{Version: test.version})

		req, err := http.NewRequest("GET", ts.URL+test.path, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Accept", "image/png")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		ts.Close()

		if contentType := resp.Header.Get("Content-Type"); contentType != test.mimeType {
			t.Errorf("version %v: got %v want %v", test.version, contentType, test.mimeType)
		}
	}
}

func TestRedirectToInfo(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	req, err := http.NewRequest("GET", ts.URL+"/lena.png", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("X-Forwarded-Host", "example.org")
	req.Header.Add("X-Forwarded-Proto", "https")

	client := &http.Client{
		CheckRedirect: func(r *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("wrong status code: got %v want %v", resp.StatusCode, http.StatusSeeOther)
	}
	if location := resp.Header.Get("Location"); location != "https://example.org/lena.png/info.json" {
		t.Errorf("Location returned bad value: got %#v", location)
	}
}

func TestInfo(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	req, err := http.NewRequest("GET", ts.URL+"/lena.png/info.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Add("X-Forwarded-Host", "example.org")
	req.Header.Add("X-Forwarded-Proto", "https")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if contentType := resp.Header.Get("Content-Type"); contentType != "application/json" {
		t.Errorf("info should be JSON by default: got %v", contentType)
	}
	if etag := resp.Header.Get("ETag"); etag == "" {
		t.Errorf("info should have an ETag header")
	}

	var m iiif.Image
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}

	if m.ID != "https://example.org/lena.png" {
		t.Errorf("wrong image ID: got %v", m.ID)
	}
	if m.Width != 100 || m.Height != 80 {
		t.Errorf("wrong dimensions: got %vx%v want 100x80", m.Width, m.Height)
	}
	if m.Context != "http://iiif.io/api/image/2/context.json" {
		t.Errorf("wrong context: got %v", m.Context)
	}

	if len(m.Profile) != 2 {
		t.Fatalf("the profile should have the level and the details, got %v", m.Profile)
	}
	if m.Profile[0] != "http://iiif.io/api/image/2/level2.json" {
		t.Errorf("wrong compliance level: got %v", m.Profile[0])
	}

	var p iiif.ImageProfile
	_ = mapstructure.Decode(m.Profile[1], &p)

	if p.MaxWidth != 0 {
		t.Errorf("MaxWidth should be missing, got %v", p.MaxWidth)
	}
	if len(p.Formats) == 0 || len(p.Qualities) == 0 {
		t.Errorf("the profile should list formats and qualities, got %v", p)
	}
}

func TestInfoAsJsonLD(t *testing.T) {
	ts := newServer()
	defer ts.Close()

	req, err := http.NewRequest("GET", ts.URL+"/lena.png/info.json", nil)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Accept", "application/ld+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if contentType := resp.Header.Get("Content-Type"); contentType != "application/ld+json" {
		t.Errorf("wrong content type: got %v", contentType)
	}
}

func TestInfoByVersion(t *testing.T) {
	var tests = []struct {
		version string
		context string
		level   string
	}{
		{"1.0", "", "http://library.stanford.edu/iiif/image-api/compliance.html#level2"},
		{"1.1", "http://library.stanford.edu/iiif/image-api/1.1/context.json",
			"http://library.stanford.edu/iiif/image-api/1.1/compliance.html#level2"},
		{"2.1", "http://iiif.io/api/image/2/context.json",
			"http://iiif.io/api/image/2/level2.json"},
	}

	for _, test := range tests {
		ts := newServerWithConfig(&iiif.Config{Version: test.version})

		resp, err := http.Get(ts.URL + "/lena.png/info.json")
		if err != nil {
			t.Fatal(err)
		}

		var m iiif.Image
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		ts.Close()

		if m.Context != test.context {
			t.Errorf("version %v: wrong context, got %v want %v", test.version, m.Context, test.context)
		}
		if m.Profile[0] != test.level {
			t.Errorf("version %v: wrong level, got %v want %v", test.version, m.Profile[0], test.level)
		}
	}
}

func TestSquareByVersion(t *testing.T) {
	ts := newServerWithConfig(&iiif.Config{Version: "1.1"})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lena.png/square/full/0/native.jpg")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("square predates 2.0: got %v want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestNullBackend(t *testing.T) {
	ts := newServerWithConfig(&iiif.Config{Backend: "null"})
	defer ts.Close()

	// identity requests pass the source through untouched.
	resp, err := http.Get(ts.URL + "/lena.png/full/full/0/default")
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("wrong status code: got %v", resp.StatusCode)
	}

	expected, err := os.ReadFile(filepath.Join(fixtures, "lena.png"))
	if err != nil {
		t.Fatal(err)
	}
	if len(body) != len(expected) {
		t.Errorf("the source should be served as is: got %v bytes want %v", len(body), len(expected))
	}

	// anything else is beyond level 0.
	var tests = []struct {
		url    string
		status int
	}{
		{"/lena.png/square/full/0/default", http.StatusNotImplemented},
		{"/lena.png/full/50,/0/default", http.StatusNotImplemented},
		{"/lena.png/full/full/90/default", http.StatusNotImplemented},
		{"/lena.png/full/full/0/default.png", http.StatusUnsupportedMediaType},
	}

	for _, test := range tests {
		resp, err := http.Get(ts.URL + test.url)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if resp.StatusCode != test.status {
			t.Errorf("%v returned wrong status code: got %v want %v",
				test.url, resp.StatusCode, test.status)
		}
	}
}
