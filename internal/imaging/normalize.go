// Package imaging turns uploaded or base64 submitted images into the JPEG
// bytes sent to face search.
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/facegate/internal/constants"
)

var (
	ErrEmptyImage       = errors.New("empty image")
	ErrMalformedDataURI = errors.New("malformed data URI: missing comma")
	ErrInvalidBase64    = errors.New("invalid base64 payload")
	ErrUnsupportedImage = errors.New("unsupported image data")
	ErrImageTooLarge    = errors.New("image dimensions too large")
)

// Options controls re-encoding. Zero values fall back to package defaults.
type Options struct {
	MaxDimension int // 0 uses constants.MaxImageDimension, negative disables resizing
	Quality      int // JPEG quality 1-100
}

func (o Options) withDefaults() Options {
	if o.MaxDimension == 0 {
		o.MaxDimension = constants.MaxImageDimension
	}
	if o.Quality <= 0 || o.Quality > 100 {
		o.Quality = constants.DefaultJPEGQuality
	}
	return o
}

// FromReader reads an uploaded image and returns it normalized to JPEG.
func FromReader(r io.Reader, opts Options) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	return Normalize(data, opts)
}

// FromDataURI decodes a "data:image/...;base64,<payload>" string. Everything
// up to the first comma is discarded, so the media type is not trusted.
func FromDataURI(uri string, opts Options) ([]byte, error) {
	_, payload, ok := strings.Cut(uri, ",")
	if !ok {
		return nil, ErrMalformedDataURI
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return nil, err
	}
	return Normalize(data, opts)
}

func decodeBase64(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Browsers and some clients drop the padding.
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
	}
	return data, nil
}

// Normalize decodes any registered image format and re-encodes it as JPEG,
// downscaling so neither side exceeds opts.MaxDimension.
func Normalize(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	opts = opts.withDefaults()

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrUnsupportedImage, cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height > constants.MaxImagePixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	img = fit(img, opts.MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: opts.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// fit returns img unchanged when it already fits within maxSize.
func fit(img image.Image, maxSize int) image.Image {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if maxSize <= 0 || (width <= maxSize && height <= maxSize) {
		return img
	}

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized
}
