package semcache

import (
	"context"
	"testing"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	badgerstorage "github.com/PrahladMehta/CareerMatch-AI/internal/storage/badger"
	"github.com/ternarybob/arbor"
)

// fakeEmbedder maps known phrases onto fixed unit vectors so similarity
// between test queries is deterministic.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	return f.GenerateQueryEmbedding(ctx, text)
}

func (f *fakeEmbedder) GenerateQueryEmbedding(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := f.vectors[query]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

func (f *fakeEmbedder) ModelName() string                    { return "fake-embedder" }
func (f *fakeEmbedder) Dimension() int                       { return 3 }
func (f *fakeEmbedder) IsAvailable(ctx context.Context) bool { return true }

func newTestCache(t *testing.T, threshold float64) (*Service, interfaces.StorageManager) {
	t.Helper()

	config := &common.BadgerConfig{Path: t.TempDir()}
	manager, err := badgerstorage.NewManager(arbor.NewLogger(), config)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { manager.Close() })

	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"what skills do I have?":    {1, 0, 0},
		"which skills are on file?": {0.98, 0.2, 0},
		"find me Go jobs":           {0, 1, 0},
	}}

	cache := NewService(embedder, manager.VectorIndex(), manager.BlobStore(), threshold, arbor.NewLogger())
	return cache, manager
}

func TestCacheStoreAndLookup(t *testing.T) {
	cache, _ := newTestCache(t, 0.9)
	ctx := context.Background()

	bundle := &models.AnswerBundle{
		Answer: "You have Go, Python, and SQL.",
		Source: models.SourceRAG,
	}
	cache.Store(ctx, "what skills do I have?", bundle, "alice")

	// Exact query hits
	hit, ok := cache.Lookup(ctx, "what skills do I have?", "alice")
	if !ok {
		t.Fatal("Expected cache hit for identical query")
	}
	if hit.Answer != bundle.Answer {
		t.Errorf("Expected cached answer, got %q", hit.Answer)
	}
	if hit.Source != models.SourceRAG {
		t.Errorf("Expected cached source tag, got %s", hit.Source)
	}

	// Paraphrase above threshold hits too
	if _, ok := cache.Lookup(ctx, "which skills are on file?", "alice"); !ok {
		t.Error("Expected cache hit for near-identical paraphrase")
	}

	// Unrelated query misses
	if _, ok := cache.Lookup(ctx, "find me Go jobs", "alice"); ok {
		t.Error("Expected cache miss for unrelated query")
	}
}

func TestCacheUserScoping(t *testing.T) {
	cache, _ := newTestCache(t, 0.9)
	ctx := context.Background()

	cache.Store(ctx, "what skills do I have?", &models.AnswerBundle{Answer: "alice's answer"}, "alice")

	if _, ok := cache.Lookup(ctx, "what skills do I have?", "bob"); ok {
		t.Error("Cache entry leaked across users")
	}
	if _, ok := cache.Lookup(ctx, "what skills do I have?", "alice"); !ok {
		t.Error("Owner should still get the cached answer")
	}
}

func TestCacheDanglingPointerIsMiss(t *testing.T) {
	cache, manager := newTestCache(t, 0.9)
	ctx := context.Background()

	cache.Store(ctx, "what skills do I have?", &models.AnswerBundle{Answer: "cached"}, "alice")

	// Simulate a janitor race: the vector entry survives but the blob is gone
	matches, err := manager.VectorIndex().Query(ctx, interfaces.NamespaceAnswerCache, []float32{1, 0, 0}, 1, nil)
	if err != nil || len(matches) != 1 {
		t.Fatalf("Expected one cached vector, got %d (err=%v)", len(matches), err)
	}
	if err := manager.BlobStore().Delete(ctx, matches[0].Metadata.PointerKey); err != nil {
		t.Fatal(err)
	}

	if _, ok := cache.Lookup(ctx, "what skills do I have?", "alice"); ok {
		t.Error("Dangling pointer should be reported as a miss")
	}
}

func TestCacheStoreNilBundle(t *testing.T) {
	cache, manager := newTestCache(t, 0.9)
	ctx := context.Background()

	cache.Store(ctx, "what skills do I have?", nil, "alice")

	matches, err := manager.VectorIndex().Query(ctx, interfaces.NamespaceAnswerCache, []float32{1, 0, 0}, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Error("Nil bundle should not be written")
	}
}
