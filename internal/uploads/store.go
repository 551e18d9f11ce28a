// Package uploads persists uploaded images under server-generated names.
package uploads

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions maps accepted client extensions to the stored extension.
var allowedExtensions = map[string]string{
	".jpg":  ".jpg",
	".jpeg": ".jpg",
	".png":  ".png",
	".gif":  ".gif",
	".bmp":  ".bmp",
	".tif":  ".tif",
	".tiff": ".tif",
	".webp": ".webp",
}

// fallbackExtension is used when the client name has no recognized extension.
const fallbackExtension = ".img"

// Store saves files into a single directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("upload directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the upload directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes r to a new file and returns its path. The client file name only
// contributes its extension; the base name is a random UUID.
func (s *Store) Save(clientName string, r io.Reader) (string, error) {
	path := filepath.Join(s.dir, uuid.NewString()+Extension(clientName))

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640) //nolint:gosec // name generated server-side
	if err != nil {
		return "", fmt.Errorf("creating upload file: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing upload file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing upload file: %w", err)
	}
	return path, nil
}

// Extension returns the normalized image extension of a client supplied
// file name, or ".img" when it is missing or not an image type.
func Extension(clientName string) string {
	// Windows browsers may send full paths.
	base := filepath.Base(strings.ReplaceAll(clientName, `\`, "/"))
	ext, ok := allowedExtensions[strings.ToLower(filepath.Ext(base))]
	if !ok {
		return fallbackExtension
	}
	return ext
}

// IsImage reports whether name carries one of the accepted image extensions.
func IsImage(name string) bool {
	return Extension(name) != fallbackExtension
}
