// Package recognition runs face search and identity resolution for one image
// and turns the outcome into result lines for display.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/kozaktomas/facegate/internal/config"
	"github.com/kozaktomas/facegate/internal/facesearch"
	"github.com/kozaktomas/facegate/internal/identity"
	"github.com/kozaktomas/facegate/internal/logging"
)

// Options tweaks how result lines are formatted.
type Options struct {
	// AccessNote, when set, is appended inside the confidence parentheses
	// of every recognized line.
	AccessNote string
}

// Identified is a match that resolved to a person.
type Identified struct {
	Match facesearch.Match
	Name  string
}

// Result is the outcome of identifying one image.
type Result struct {
	Lines      []string
	Matches    []facesearch.Match
	Identified []Identified
	// SearchErr is the face search failure, if any. The lines are the same
	// as for an image with no match; callers that need to tell the two apart
	// check this field.
	SearchErr error
}

// Recognized reports whether at least one match resolved to a person.
func (r Result) Recognized() bool {
	return len(r.Identified) > 0
}

// Recognizer combines a face searcher with an identity resolver.
type Recognizer struct {
	searcher facesearch.Searcher
	resolver identity.Resolver
	messages config.MessagesConfig
	log      *logging.Logger
}

// New creates a Recognizer. A nil logger discards output.
func New(searcher facesearch.Searcher, resolver identity.Resolver, messages config.MessagesConfig, log *logging.Logger) *Recognizer {
	if log == nil {
		log = logging.Discard()
	}
	return &Recognizer{
		searcher: searcher,
		resolver: resolver,
		messages: messages,
		log:      log,
	}
}

// Identify searches for faces in a normalized JPEG image and resolves each
// match. Failures are logged and never returned: a failed search yields no
// matches, a failed lookup drops that match.
func (r *Recognizer) Identify(ctx context.Context, image []byte, opts Options) Result {
	var res Result

	matches, err := r.searcher.SearchFaces(ctx, image)
	switch {
	case errors.Is(err, facesearch.ErrNoFace):
		r.log.Info("Face search: %v", err)
		res.SearchErr = err
	case err != nil:
		r.log.Error("Error searching faces: %v", err)
		res.SearchErr = err
	default:
		res.Matches = matches
	}

	for _, m := range res.Matches {
		rec, err := r.resolver.Resolve(ctx, m.FaceID)
		if errors.Is(err, identity.ErrNotFound) {
			r.log.Warning("No identity record for face %s", m.FaceID)
			continue
		}
		if err != nil {
			r.log.Error("Error fetching person name for face %s: %v", m.FaceID, err)
			continue
		}
		res.Identified = append(res.Identified, Identified{Match: m, Name: rec.FullName})
		res.Lines = append(res.Lines, r.FormatLine(rec.FullName, m.Confidence, opts))
	}

	if len(res.Lines) == 0 {
		res.Lines = []string{r.messages.NotRecognized}
	}
	return res
}

// FormatLine renders one recognized person, with the confidence rounded
// half-up to two decimals.
func (r *Recognizer) FormatLine(name string, confidence float64, opts Options) string {
	confidence = RoundConfidence(confidence)
	if opts.AccessNote != "" {
		return fmt.Sprintf(r.messages.FoundWithAccess, name, confidence, opts.AccessNote)
	}
	return fmt.Sprintf(r.messages.Found, name, confidence)
}

// RoundConfidence rounds half away from zero to two decimals (97.345 -> 97.35).
func RoundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}
