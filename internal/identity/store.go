package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// ErrNotFound is returned when no identity record exists for a face id.
var ErrNotFound = errors.New("identity not found")

// Resolver looks up the person enrolled under a face id.
type Resolver interface {
	Resolve(ctx context.Context, faceID string) (Record, error)
}

// DynamoDBAPI is the subset of the DynamoDB client used here.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Store reads and writes identity records in a single table.
type Store struct {
	api   DynamoDBAPI
	table string
}

// NewStore wraps an existing DynamoDB API implementation.
func NewStore(api DynamoDBAPI, table string) *Store {
	return &Store{api: api, table: table}
}

// NewFromConfig builds a Store from an AWS SDK configuration.
// endpoint overrides the service endpoint when non-empty.
func NewFromConfig(awsCfg aws.Config, endpoint, table string) *Store {
	api := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewStore(api, table)
}

// Resolve fetches the record for faceID. A missing item, or one without a
// usable name, yields ErrNotFound.
func (s *Store) Resolve(ctx context.Context, faceID string) (Record, error) {
	if faceID == "" {
		return Record{}, ErrNotFound
	}

	key, err := attributevalue.MarshalMap(recordKey{RekognitionID: faceID})
	if err != nil {
		return Record{}, fmt.Errorf("marshal key: %w", err)
	}

	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return Record{}, fmt.Errorf("get item %s from %s: %w", faceID, s.table, err)
	}
	if len(out.Item) == 0 {
		return Record{}, ErrNotFound
	}

	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return Record{}, fmt.Errorf("unmarshal item %s: %w", faceID, err)
	}
	rec.FullName = DisplayName(rec.FullName)
	if rec.FullName == "" {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Put writes rec, replacing any existing record with the same face id.
func (s *Store) Put(ctx context.Context, rec Record) error {
	if rec.RekognitionID == "" {
		return errors.New("record has no face id")
	}
	rec.FullName = DisplayName(rec.FullName)

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item %s into %s: %w", rec.RekognitionID, s.table, err)
	}
	return nil
}
