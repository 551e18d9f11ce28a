package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory table keyed by RekognitionId.
type fakeDynamoDB struct {
	items    map[string]map[string]types.AttributeValue
	getErr   error
	putErr   error
	lastGet  *dynamodb.GetItemInput
	lastPut  *dynamodb.PutItemInput
	getCalls int
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue)}
}

func (f *fakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getCalls++
	f.lastGet = params
	if f.getErr != nil {
		return nil, f.getErr
	}
	key, ok := params.Key["RekognitionId"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("key is not a string attribute")
	}
	return &dynamodb.GetItemOutput{Item: f.items[key.Value]}, nil
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.lastPut = params
	if f.putErr != nil {
		return nil, f.putErr
	}
	key, ok := params.Item["RekognitionId"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("item has no string key")
	}
	f.items[key.Value] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) add(id, name string) {
	f.items[id] = map[string]types.AttributeValue{
		"RekognitionId": &types.AttributeValueMemberS{Value: id},
		"FullName":      &types.AttributeValueMemberS{Value: name},
	}
}

func TestResolve_Found(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.add("face-1", "Jane Doe")
	store := NewStore(fake, "facerecognition")

	rec, err := store.Resolve(context.Background(), "face-1")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if rec.FullName != "Jane Doe" || rec.RekognitionID != "face-1" {
		t.Errorf("unexpected record: %+v", rec)
	}
	if aws.ToString(fake.lastGet.TableName) != "facerecognition" {
		t.Errorf("expected table 'facerecognition', got '%s'", aws.ToString(fake.lastGet.TableName))
	}
}

func TestResolve_NotFound(t *testing.T) {
	store := NewStore(newFakeDynamoDB(), "facerecognition")

	_, err := store.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_EmptyFaceIDSkipsLookup(t *testing.T) {
	fake := newFakeDynamoDB()
	store := NewStore(fake, "facerecognition")

	_, err := store.Resolve(context.Background(), "")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if fake.getCalls != 0 {
		t.Errorf("expected no GetItem call, got %d", fake.getCalls)
	}
}

func TestResolve_BlankNameIsNotFound(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.add("face-1", "   ")
	store := NewStore(fake, "facerecognition")

	_, err := store.Resolve(context.Background(), "face-1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_ServiceError(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.getErr = errors.New("ProvisionedThroughputExceededException")
	store := NewStore(fake, "facerecognition")

	_, err := store.Resolve(context.Background(), "face-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("service error must not be reported as ErrNotFound")
	}
	if !errors.Is(err, fake.getErr) {
		t.Errorf("expected wrapped service error, got %v", err)
	}
}

func TestResolve_WrongAttributeType(t *testing.T) {
	fake := newFakeDynamoDB()
	fake.items["face-1"] = map[string]types.AttributeValue{
		"RekognitionId": &types.AttributeValueMemberS{Value: "face-1"},
		"FullName":      &types.AttributeValueMemberBOOL{Value: true},
	}
	store := NewStore(fake, "facerecognition")

	_, err := store.Resolve(context.Background(), "face-1")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected unmarshal error, got %v", err)
	}
}

func TestPut_ThenResolve(t *testing.T) {
	fake := newFakeDynamoDB()
	store := NewStore(fake, "facerecognition")

	err := store.Put(context.Background(), Record{
		RekognitionID:   "face-9",
		FullName:        "  John   Smith ",
		ExternalImageID: "john.jpg",
		EnrolledAt:      "2026-10-14T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	for _, key := range []string{"RekognitionId", "FullName", "ExternalImageId", "EnrolledAt"} {
		if _, ok := fake.lastPut.Item[key]; !ok {
			t.Errorf("expected DynamoDB attribute %q in item", key)
		}
	}

	rec, err := store.Resolve(context.Background(), "face-9")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if rec.FullName != "John Smith" {
		t.Errorf("expected normalized name 'John Smith', got '%s'", rec.FullName)
	}
}

func TestPut_OmitsEmptyOptionalAttributes(t *testing.T) {
	fake := newFakeDynamoDB()
	store := NewStore(fake, "facerecognition")

	if err := store.Put(context.Background(), Record{RekognitionID: "f", FullName: "A"}); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if _, ok := fake.lastPut.Item["EnrolledAt"]; ok {
		t.Error("expected EnrolledAt to be omitted")
	}
}

func TestPut_RequiresFaceID(t *testing.T) {
	store := NewStore(newFakeDynamoDB(), "facerecognition")

	if err := store.Put(context.Background(), Record{FullName: "A"}); err == nil {
		t.Error("expected error for record without face id")
	}
}

func TestRecordAttributeNames(t *testing.T) {
	av, err := attributevalue.MarshalMap(Record{RekognitionID: "f1", FullName: "Jane"})
	if err != nil {
		t.Fatalf("MarshalMap: %v", err)
	}
	for _, key := range []string{"RekognitionId", "FullName"} {
		if _, ok := av[key]; !ok {
			t.Errorf("expected DynamoDB attribute %q not found", key)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Jane Doe", "Jane Doe"},
		{"trimmed", "  Jane Doe\n", "Jane Doe"},
		{"inner whitespace", "Jane \t Doe", "Jane Doe"},
		{"decomposed to composed", "Jir\u030ci\u0301", "Ji\u0159\u00ed"},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayName(tc.in); got != tc.want {
				t.Errorf("DisplayName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
