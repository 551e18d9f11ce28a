// Package identity resolves Rekognition face ids to people stored in DynamoDB.
package identity

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Record is a single item in the identity table.
type Record struct {
	RekognitionID   string `dynamodbav:"RekognitionId"`
	FullName        string `dynamodbav:"FullName"`
	ExternalImageID string `dynamodbav:"ExternalImageId,omitempty"`
	EnrolledAt      string `dynamodbav:"EnrolledAt,omitempty"` // RFC 3339
}

// recordKey is the primary key of the identity table.
type recordKey struct {
	RekognitionID string `dynamodbav:"RekognitionId"`
}

// DisplayName returns the name in NFC form with surrounding and repeated
// whitespace removed.
func DisplayName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}
