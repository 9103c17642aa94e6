package product

import (
	"context"

	"go.uber.org/zap"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/logger"
)

// sweepPatterns are the derived-view namespaces any product mutation can
// stale: every listing page, every search result and the analytics
// aggregate. Low-stock snapshots are refreshed by their short TTL instead.
var sweepPatterns = []string{"list:*", "search:*", "analytics:*"}

// InvalidationPolicy removes cache entries that may reflect pre-mutation
// state. It runs after the relational write committed and is best effort:
// a failed sweep leaves entries to expire by TTL, it never fails the write.
type InvalidationPolicy struct {
	cache *cache.Adapter
	log   *logger.CtxZapLogger
}

func NewInvalidationPolicy(adapter *cache.Adapter, log *logger.CtxZapLogger) *InvalidationPolicy {
	return &InvalidationPolicy{cache: adapter, log: log}
}

// OnMutation sweeps the shared projections plus the per-record entries of
// the mutated ids.
func (p *InvalidationPolicy) OnMutation(ctx context.Context, ids ...int64) {
	var removed int64
	for _, pattern := range sweepPatterns {
		removed += p.cache.DeleteByPattern(ctx, pattern)
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	if len(keys) > 0 {
		removed += p.cache.Delete(ctx, keys...)
	}
	p.log.DebugCtx(ctx, "cache invalidated",
		zap.Int("mutated_ids", len(ids)),
		zap.Int64("removed_entries", removed))
}
