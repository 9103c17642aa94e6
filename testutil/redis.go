package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/invgo/inventory-service/cache"
	"github.com/invgo/inventory-service/logger"
	redisconn "github.com/invgo/inventory-service/redis"
)

// NewCache starts an embedded redis server and returns an adapter bound to
// it plus the server for direct inspection. Cleanup is registered on t.
func NewCache(t *testing.T) (*cache.Adapter, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)

	mgr, err := redisconn.NewManager(redisconn.Config{Addr: srv.Addr()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = mgr.Close() })

	return cache.NewAdapter(mgr, cache.Config{KeyPrefix: "test:"}, logger.NewNop()), srv
}
