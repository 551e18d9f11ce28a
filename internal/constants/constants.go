// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Image normalization constants
const (
	// DefaultJPEGQuality is the quality used when re-encoding images before face search
	DefaultJPEGQuality = 90

	// MaxImageDimension is the maximum width or height sent to face search.
	// Larger images are downscaled keeping aspect ratio.
	MaxImageDimension = 1920

	// MaxImagePixels caps width*height of an image before its pixels are decoded.
	MaxImagePixels = 50_000_000
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (10MB)
	MaxUploadSize = 10 << 20

	// MultipartMemory is the part of a multipart form kept in memory, the rest spills to disk
	MultipartMemory = 8 << 20

	// DefaultUploadDir is the directory uploaded files are kept in
	DefaultUploadDir = "uploads"
)
