// Package mock provides in-memory implementations of the face search and
// identity interfaces for testing.
package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/kozaktomas/facegate/internal/facesearch"
	"github.com/kozaktomas/facegate/internal/identity"
)

// MockSearcher is a mock implementation of facesearch.Searcher
type MockSearcher struct {
	mu      sync.Mutex
	matches []facesearch.Match
	images  [][]byte

	// Error injection
	SearchError error
}

// NewMockSearcher creates a searcher returning the given matches
func NewMockSearcher(matches ...facesearch.Match) *MockSearcher {
	return &MockSearcher{matches: matches}
}

// SearchFaces records the image and returns the configured matches
func (m *MockSearcher) SearchFaces(ctx context.Context, image []byte) ([]facesearch.Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images = append(m.images, image)
	if m.SearchError != nil {
		return nil, m.SearchError
	}
	out := make([]facesearch.Match, len(m.matches))
	copy(out, m.matches)
	return out, nil
}

// Calls returns the number of searches performed
func (m *MockSearcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.images)
}

// LastImage returns the bytes of the most recent search, or nil
func (m *MockSearcher) LastImage() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.images) == 0 {
		return nil
	}
	return m.images[len(m.images)-1]
}

// MockResolver is a mock implementation of identity.Resolver
type MockResolver struct {
	mu      sync.RWMutex
	records map[string]identity.Record
	lookups []string

	// Error injection, by face id; ResolveError applies to every lookup
	Errors       map[string]error
	ResolveError error
	PutError     error
}

// NewMockResolver creates an empty resolver
func NewMockResolver() *MockResolver {
	return &MockResolver{
		records: make(map[string]identity.Record),
		Errors:  make(map[string]error),
	}
}

// AddPerson registers a name for a face id
func (m *MockResolver) AddPerson(faceID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[faceID] = identity.Record{RekognitionID: faceID, FullName: name}
}

// Resolve returns the registered record or identity.ErrNotFound
func (m *MockResolver) Resolve(ctx context.Context, faceID string) (identity.Record, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, faceID)
	m.mu.Unlock()

	if m.ResolveError != nil {
		return identity.Record{}, m.ResolveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if err, ok := m.Errors[faceID]; ok {
		return identity.Record{}, err
	}
	rec, ok := m.records[faceID]
	if !ok {
		return identity.Record{}, identity.ErrNotFound
	}
	return rec, nil
}

// Lookups returns the face ids resolved so far, in order
func (m *MockResolver) Lookups() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.lookups))
	copy(out, m.lookups)
	return out
}

// Put stores a record so later lookups resolve it
func (m *MockResolver) Put(ctx context.Context, rec identity.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutError != nil {
		return m.PutError
	}
	m.records[rec.RekognitionID] = rec
	return nil
}

// Record returns the stored record for a face id
func (m *MockResolver) Record(faceID string) (identity.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[faceID]
	return rec, ok
}

// MockIndexer is a mock face enroller that assigns sequential face ids
type MockIndexer struct {
	mu          sync.Mutex
	next        int
	externalIDs []string

	// Error injection, by external image id; IndexError applies to every call
	Errors     map[string]error
	IndexError error
}

// NewMockIndexer creates an indexer with no enrolled faces
func NewMockIndexer() *MockIndexer {
	return &MockIndexer{Errors: make(map[string]error)}
}

// Enroll records the external id and returns a new face id
func (m *MockIndexer) Enroll(ctx context.Context, image []byte, externalID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.externalIDs = append(m.externalIDs, externalID)
	if m.IndexError != nil {
		return "", m.IndexError
	}
	if err, ok := m.Errors[externalID]; ok {
		return "", err
	}
	m.next++
	return fmt.Sprintf("face-%d", m.next), nil
}

// ExternalIDs returns the external ids enrolled so far, in call order
func (m *MockIndexer) ExternalIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.externalIDs))
	copy(out, m.externalIDs)
	return out
}
