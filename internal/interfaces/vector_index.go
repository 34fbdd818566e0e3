package interfaces

import (
	"context"
	"time"
)

// Vector index namespaces. Resume chunks and cached answers live in separate
// namespaces of the same index so cache lookups never collide with retrieval.
const (
	NamespaceResumeChunks = "resume-chunks"
	NamespaceAnswerCache  = "answer-cache"
)

// VectorMetadata is the payload stored alongside an indexed vector.
// Cache entries use Query/PointerKey; resume chunks use Content/DocumentID/
// ChunkIndex. Payloads are kept small on purpose: cached answer bundles live
// in the blob store, reachable through PointerKey.
type VectorMetadata struct {
	Query      string    `json:"query,omitempty"`
	PointerKey string    `json:"pointer_key,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	ResumeID   string    `json:"resume_id,omitempty"`
	DocumentID string    `json:"document_id,omitempty"`
	Content    string    `json:"content,omitempty"`
	ChunkIndex int       `json:"chunk_index,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// VectorFilter restricts a query to records owned by a user and,
// optionally, a single resume. Empty fields match everything.
type VectorFilter struct {
	UserID   string
	ResumeID string
}

// VectorMatch is one ranked result of a similarity query
type VectorMatch struct {
	ID       string
	Score    float64
	Metadata VectorMetadata
}

// VectorIndex stores embedding vectors in namespaces and answers
// nearest-neighbor queries by cosine similarity.
type VectorIndex interface {
	// Upsert stores a vector with metadata under namespace/id
	Upsert(ctx context.Context, namespace, id string, vector []float32, metadata VectorMetadata) error

	// Query returns up to topK matches ranked by similarity descending
	Query(ctx context.Context, namespace string, vector []float32, topK int, filter *VectorFilter) ([]VectorMatch, error)

	// DeleteOlderThan removes records in a namespace created before cutoff,
	// returning the metadata of the deleted records so callers can release
	// resources they point at. Used by the cache expiry janitor.
	DeleteOlderThan(ctx context.Context, namespace string, cutoff time.Time) ([]VectorMetadata, error)
}
