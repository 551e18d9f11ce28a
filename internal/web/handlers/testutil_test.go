package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/logging"
	"github.com/kozaktomas/facegate/internal/mock"
	"github.com/kozaktomas/facegate/internal/recognition"
	"github.com/kozaktomas/facegate/internal/uploads"
	"github.com/kozaktomas/facegate/internal/web/static"
)

// testConfig creates a minimal config for testing
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.Upload.Dir = t.TempDir()
	return cfg
}

// newTestHandler builds a RecognizeHandler backed by the given mocks
func newTestHandler(t *testing.T, cfg *config.Config, searcher *mock.MockSearcher, resolver *mock.MockResolver) *RecognizeHandler {
	t.Helper()

	store, err := uploads.NewStore(cfg.Upload.Dir)
	if err != nil {
		t.Fatalf("failed to create upload store: %v", err)
	}
	tmpl, err := static.Templates()
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	rec := recognition.New(searcher, resolver, cfg.Messages, logging.Discard())
	return NewRecognizeHandler(cfg, rec, store, tmpl, logging.Discard())
}

// testPNG returns a small encoded PNG image
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// oversizedPNG returns a PNG header declaring 20000x20000 pixels with no data behind it
func oversizedPNG() []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 20000)
	binary.BigEndian.PutUint32(ihdr[4:8], 20000)
	ihdr[8], ihdr[9] = 8, 6
	chunk := append([]byte("IHDR"), ihdr...)
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// dataURI wraps image bytes in a base64 data URI
func dataURI(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

// multipartFileRequest creates a POST with a single file part
func multipartFileRequest(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(data)
	writer.Close()

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// formRequest creates an urlencoded POST
func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// resultItems extracts the rendered <li> result lines
func resultItems(body string) []string {
	var items []string
	for {
		start := strings.Index(body, "<li>")
		if start < 0 {
			return items
		}
		body = body[start+len("<li>"):]
		end := strings.Index(body, "</li>")
		if end < 0 {
			return items
		}
		items = append(items, body[:end])
		body = body[end:]
	}
}
