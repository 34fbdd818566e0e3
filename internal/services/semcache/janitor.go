package semcache

import (
	"context"
	"fmt"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// Janitor periodically removes cache entries older than the configured TTL.
// Expiry is lazy rather than checked on lookup: a stale-but-unswept entry is
// still a valid answer, it just costs a little freshness.
type Janitor struct {
	vectors interfaces.VectorIndex
	blobs   interfaces.BlobStore
	ttl     time.Duration
	cron    *cron.Cron
	logger  arbor.ILogger
}

// NewJanitor creates a new cache janitor
func NewJanitor(vectors interfaces.VectorIndex, blobs interfaces.BlobStore, ttl time.Duration, logger arbor.ILogger) *Janitor {
	return &Janitor{
		vectors: vectors,
		blobs:   blobs,
		ttl:     ttl,
		cron:    cron.New(),
		logger:  logger,
	}
}

// Start schedules the sweep with the given cron expression
func (j *Janitor) Start(cronExpr string) error {
	if cronExpr == "" {
		cronExpr = "0 * * * *" // Default: hourly
	}

	if _, err := j.cron.AddFunc(cronExpr, j.sweep); err != nil {
		return fmt.Errorf("failed to add cache sweep job: %w", err)
	}

	j.cron.Start()

	j.logger.Info().
		Str("cron_expr", cronExpr).
		Dur("ttl", j.ttl).
		Msg("Cache janitor started")

	return nil
}

// Stop halts the sweep schedule. A sweep in flight runs to completion.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info().Msg("Cache janitor stopped")
}

// sweep removes expired cache entries and their blobs
func (j *Janitor) sweep() {
	ctx := context.Background()
	cutoff := time.Now().Add(-j.ttl)

	deleted, err := j.vectors.DeleteOlderThan(ctx, interfaces.NamespaceAnswerCache, cutoff)
	if err != nil {
		j.logger.Warn().Err(err).Msg("Cache sweep failed")
		return
	}

	for _, metadata := range deleted {
		if metadata.PointerKey == "" {
			continue
		}
		if err := j.blobs.Delete(ctx, metadata.PointerKey); err != nil {
			j.logger.Warn().Err(err).Str("pointer_key", metadata.PointerKey).Msg("Failed to delete expired cache blob")
		}
	}

	if len(deleted) > 0 {
		j.logger.Info().Int("deleted", len(deleted)).Msg("Cache sweep removed expired entries")
	}
}
