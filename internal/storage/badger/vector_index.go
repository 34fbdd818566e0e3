package badger

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// VectorRecord is the stored form of an indexed vector. Vectors are
// normalized to unit length on write so similarity reduces to a dot product.
type VectorRecord struct {
	Key       string `badgerhold:"key"`
	Namespace string `badgerholdIndex:"Namespace"`
	ID        string
	Vector    []float32
	Metadata  interfaces.VectorMetadata
}

// VectorIndexStorage implements the VectorIndex interface for Badger
type VectorIndexStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorIndexStorage creates a new VectorIndexStorage instance
func NewVectorIndexStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VectorIndex {
	return &VectorIndexStorage{
		db:     db,
		logger: logger,
	}
}

func recordKey(namespace, id string) string {
	return namespace + "/" + id
}

// normalize scales v to unit length. Zero vectors are returned unchanged so
// they never match anything.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// dot computes the dot product of two normalized vectors, which equals their
// cosine similarity. Mismatched dimensions score zero.
func dot(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// Upsert stores a vector with metadata under namespace/id
func (s *VectorIndexStorage) Upsert(ctx context.Context, namespace, id string, vector []float32, metadata interfaces.VectorMetadata) error {
	if namespace == "" || id == "" {
		return fmt.Errorf("namespace and id are required")
	}
	if len(vector) == 0 {
		return fmt.Errorf("vector is empty")
	}
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = time.Now()
	}

	record := VectorRecord{
		Key:       recordKey(namespace, id),
		Namespace: namespace,
		ID:        id,
		Vector:    normalize(vector),
		Metadata:  metadata,
	}

	if err := s.db.Store().Upsert(record.Key, &record); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return nil
}

// Query returns up to topK matches ranked by cosine similarity descending.
// The scan is linear over the namespace, which is acceptable at the scale of
// per-user resume chunks and cached answers.
func (s *VectorIndexStorage) Query(ctx context.Context, namespace string, vector []float32, topK int, filter *interfaces.VectorFilter) ([]interfaces.VectorMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	var records []VectorRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Namespace").Eq(namespace).Index("Namespace")); err != nil {
		return nil, fmt.Errorf("failed to scan vector namespace: %w", err)
	}

	query := normalize(vector)
	matches := make([]interfaces.VectorMatch, 0, len(records))
	for _, record := range records {
		if filter != nil {
			if filter.UserID != "" && record.Metadata.UserID != filter.UserID {
				continue
			}
			if filter.ResumeID != "" && record.Metadata.ResumeID != filter.ResumeID {
				continue
			}
		}
		matches = append(matches, interfaces.VectorMatch{
			ID:       record.ID,
			Score:    dot(query, record.Vector),
			Metadata: record.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// DeleteOlderThan removes records in a namespace created before cutoff and
// returns the metadata of the deleted records
func (s *VectorIndexStorage) DeleteOlderThan(ctx context.Context, namespace string, cutoff time.Time) ([]interfaces.VectorMetadata, error) {
	var records []VectorRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("Namespace").Eq(namespace).Index("Namespace")); err != nil {
		return nil, fmt.Errorf("failed to scan vector namespace: %w", err)
	}

	var deleted []interfaces.VectorMetadata
	for _, record := range records {
		if !record.Metadata.CreatedAt.Before(cutoff) {
			continue
		}
		if err := s.db.Store().Delete(record.Key, &VectorRecord{}); err != nil {
			s.logger.Warn().Str("key", record.Key).Err(err).Msg("Failed to delete expired vector record")
			continue
		}
		deleted = append(deleted, record.Metadata)
	}

	if len(deleted) > 0 {
		s.logger.Debug().Str("namespace", namespace).Int("deleted", len(deleted)).Msg("Removed expired vector records")
	}
	return deleted, nil
}
