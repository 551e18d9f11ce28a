// Package facesearch searches and enrolls faces in an AWS Rekognition collection.
package facesearch

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"

	"github.com/kozaktomas/facegate/internal/config"
)

var (
	// ErrNoFace means the submitted image contained no detectable face.
	ErrNoFace = errors.New("no face detected in image")
	// ErrCollectionNotFound means the configured collection does not exist.
	ErrCollectionNotFound = errors.New("face collection not found")
	// ErrCollectionExists is returned by CreateCollection for an existing collection.
	ErrCollectionExists = errors.New("face collection already exists")
	// ErrUnavailable covers transport, throttling and any other service failure.
	ErrUnavailable = errors.New("face search unavailable")
)

// Match is a single candidate returned by a face search.
type Match struct {
	FaceID          string
	ExternalImageID string
	Confidence      float64 // face detection confidence, 0-100
	Similarity      float64 // similarity to the search face, 0-100
}

// Searcher finds enrolled faces similar to the face in a JPEG image.
type Searcher interface {
	SearchFaces(ctx context.Context, image []byte) ([]Match, error)
}

// RekognitionAPI is the subset of the Rekognition client used here.
type RekognitionAPI interface {
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
}

// Client searches a single named collection.
type Client struct {
	api        RekognitionAPI
	collection string
	threshold  float64
	maxFaces   int
}

// NewClient wraps an existing Rekognition API implementation.
func NewClient(api RekognitionAPI, cfg config.FaceSearchConfig) *Client {
	return &Client{
		api:        api,
		collection: cfg.CollectionID,
		threshold:  cfg.MatchThreshold,
		maxFaces:   cfg.MaxMatches,
	}
}

// NewFromConfig builds a Client from an AWS SDK configuration.
// endpoint overrides the service endpoint when non-empty.
func NewFromConfig(awsCfg aws.Config, endpoint string, cfg config.FaceSearchConfig) *Client {
	api := rekognition.NewFromConfig(awsCfg, func(o *rekognition.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewClient(api, cfg)
}

// Collection returns the collection id this client searches.
func (c *Client) Collection() string {
	return c.collection
}

// SearchFaces searches the collection with the largest face in image.
func (c *Client) SearchFaces(ctx context.Context, image []byte) ([]Match, error) {
	input := &rekognition.SearchFacesByImageInput{
		CollectionId: aws.String(c.collection),
		Image:        &types.Image{Bytes: image},
	}
	if c.threshold > 0 {
		input.FaceMatchThreshold = aws.Float32(float32(c.threshold))
	}
	if c.maxFaces > 0 {
		input.MaxFaces = aws.Int32(int32(c.maxFaces))
	}

	out, err := c.api.SearchFacesByImage(ctx, input)
	if err != nil {
		return nil, classify("searching faces", err)
	}

	matches := make([]Match, 0, len(out.FaceMatches))
	for _, fm := range out.FaceMatches {
		if fm.Face == nil || aws.ToString(fm.Face.FaceId) == "" {
			continue
		}
		matches = append(matches, Match{
			FaceID:          aws.ToString(fm.Face.FaceId),
			ExternalImageID: aws.ToString(fm.Face.ExternalImageId),
			Confidence:      float64(aws.ToFloat32(fm.Face.Confidence)),
			Similarity:      float64(aws.ToFloat32(fm.Similarity)),
		})
	}
	return matches, nil
}

// Enroll indexes the largest face of image into the collection and returns
// the face id Rekognition assigned to it.
func (c *Client) Enroll(ctx context.Context, image []byte, externalID string) (string, error) {
	input := &rekognition.IndexFacesInput{
		CollectionId:  aws.String(c.collection),
		Image:         &types.Image{Bytes: image},
		MaxFaces:      aws.Int32(1),
		QualityFilter: types.QualityFilterAuto,
	}
	if id := ExternalImageID(externalID); id != "" {
		input.ExternalImageId = aws.String(id)
	}

	out, err := c.api.IndexFaces(ctx, input)
	if err != nil {
		return "", classify("indexing face", err)
	}
	for _, rec := range out.FaceRecords {
		if rec.Face != nil && aws.ToString(rec.Face.FaceId) != "" {
			return aws.ToString(rec.Face.FaceId), nil
		}
	}
	return "", ErrNoFace
}

// CreateCollection creates the configured collection.
func (c *Client) CreateCollection(ctx context.Context) error {
	_, err := c.api.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(c.collection),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			return fmt.Errorf("creating collection %s: %w", c.collection, ErrCollectionExists)
		}
		return classify("creating collection", err)
	}
	return nil
}

// classify maps SDK errors onto the package sentinels, keeping the SDK
// error in the chain.
func classify(op string, err error) error {
	var invalid *types.InvalidParameterException
	var notFound *types.ResourceNotFoundException
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	case errors.As(err, &invalid):
		// Rekognition reports "no faces in the image" as an invalid parameter.
		return fmt.Errorf("%s: %w: %w", op, ErrNoFace, err)
	case errors.As(err, &notFound):
		return fmt.Errorf("%s: %w: %w", op, ErrCollectionNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w: %s: %s", op, ErrUnavailable, apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

var externalIDInvalid = regexp.MustCompile(`[^a-zA-Z0-9_.\-:]+`)

// ExternalImageID converts a file name or label into the character set
// Rekognition accepts for ExternalImageId (max 255 chars).
func ExternalImageID(s string) string {
	s = externalIDInvalid.ReplaceAllString(strings.TrimSpace(s), "_")
	s = strings.Trim(s, "_")
	if len(s) > 255 {
		s = s[:255]
	}
	return s
}
