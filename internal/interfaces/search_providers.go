package interfaces

import (
	"context"

	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
)

// WebSearchProvider returns ranked organic web results for a query.
// Providers give rank order only; relevance scores are synthesized by the
// retrieval layer.
type WebSearchProvider interface {
	Search(ctx context.Context, query string) ([]models.WebResult, error)
}

// JobSearchProvider returns job postings for a structured query
type JobSearchProvider interface {
	Search(ctx context.Context, query *models.JobQuery) ([]models.JobPosting, error)
}
