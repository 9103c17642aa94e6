package product

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invgo/inventory-service/logger"
)

func TestWarmerPopulatesHotEntries(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "Nut", "N-1", "tools", 3, 1, "active")

	w, err := NewWarmer(f.repo, time.Hour, 0, logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { _ = w.Stop() })

	// the first run fires immediately and populates the hot entries
	assert.Eventually(t, func() bool {
		return f.redis.Exists("test:"+analyticsCacheKey) &&
			f.redis.Exists("test:"+lowStockKey(DefaultLowStockThreshold))
	}, 2*time.Second, 20*time.Millisecond)
}
