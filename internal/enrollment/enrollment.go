// Package enrollment indexes face images into the collection and records
// the matching identity for each indexed face.
package enrollment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kozaktomas/facegate/internal/facesearch"
	"github.com/kozaktomas/facegate/internal/identity"
	"github.com/kozaktomas/facegate/internal/imaging"
	"github.com/kozaktomas/facegate/internal/uploads"
)

// ErrNoName is returned when neither a name nor a usable file name is available.
var ErrNoName = errors.New("no display name for image")

// Indexer adds a face image to the collection and returns its face id.
type Indexer interface {
	Enroll(ctx context.Context, image []byte, externalID string) (string, error)
}

// Writer stores identity records.
type Writer interface {
	Put(ctx context.Context, rec identity.Record) error
}

// Enroller runs the index-then-record pipeline for single images.
type Enroller struct {
	indexer   Indexer
	writer    Writer
	imageOpts imaging.Options
	now       func() time.Time
}

// New creates an Enroller.
func New(indexer Indexer, writer Writer, opts imaging.Options) *Enroller {
	return &Enroller{
		indexer:   indexer,
		writer:    writer,
		imageOpts: opts,
		now:       time.Now,
	}
}

// EnrollFile indexes the face in path under name. An empty name is derived
// from the file name. The face stays in the collection when the record
// write fails; the returned record still carries its face id.
func (e *Enroller) EnrollFile(ctx context.Context, path, name string) (identity.Record, error) {
	if name == "" {
		name = NameFromFile(path)
	}
	name = identity.DisplayName(name)
	if name == "" {
		return identity.Record{}, fmt.Errorf("%s: %w", path, ErrNoName)
	}

	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return identity.Record{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	image, err := imaging.FromReader(f, e.imageOpts)
	if err != nil {
		return identity.Record{}, fmt.Errorf("%s: %w", path, err)
	}

	externalID := facesearch.ExternalImageID(filepath.Base(path))
	faceID, err := e.indexer.Enroll(ctx, image, externalID)
	if err != nil {
		return identity.Record{}, fmt.Errorf("%s: %w", path, err)
	}

	rec := identity.Record{
		RekognitionID:   faceID,
		FullName:        name,
		ExternalImageID: externalID,
		EnrolledAt:      e.now().UTC().Format(time.RFC3339),
	}
	if err := e.writer.Put(ctx, rec); err != nil {
		return rec, fmt.Errorf("recording face %s: %w", faceID, err)
	}
	return rec, nil
}

// NameFromFile turns "jane_doe.jpg" into "jane doe".
func NameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Join(strings.FieldsFunc(base, func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	}), " ")
}

// ImageFiles lists the image files directly inside dir, sorted by name.
func ImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || !uploads.IsImage(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
