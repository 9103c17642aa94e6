package cache

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/invgo/inventory-service/logger"
	redisconn "github.com/invgo/inventory-service/redis"
)

// Lookup is the explicit outcome of a cache read. The branches are
// distinguished in the type so callers choose what to ignore:
//
//	Hit              value decoded into dest
//	Fallback         payload stored but not decodable into dest; Raw holds it
//	Err != nil       store-level failure; callers treat it as a miss
//	none of the above: plain miss
type Lookup struct {
	Hit      bool
	Fallback bool
	Raw      string
	Err      error
}

// Adapter is the typed cache store surface. It acquires the shared client
// lazily through the connection manager, so a cache node that comes up late
// is picked up without restarting the service.
type Adapter struct {
	mgr *redisconn.Manager
	cfg Config
	log *logger.CtxZapLogger
}

// NewAdapter creates an adapter over the cache connection manager.
func NewAdapter(mgr *redisconn.Manager, cfg Config, log *logger.CtxZapLogger) *Adapter {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	return &Adapter{mgr: mgr, cfg: cfg, log: log}
}

// Get reads and decodes the value under key into dest. A missing key, a
// store failure and an undecodable payload are all non-fatal; see Lookup.
func (a *Adapter) Get(ctx context.Context, key string, dest interface{}) Lookup {
	client, err := a.mgr.Acquire(ctx)
	if err != nil {
		return Lookup{Err: ErrStoreGet.Wrap(err)}
	}

	payload, err := client.Get(ctx, a.fullKey(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return Lookup{}
		}
		a.log.WarnCtx(ctx, "cache get failed, degrading to miss",
			zap.String("key", key), zap.Error(err))
		return Lookup{Err: ErrStoreGet.Wrap(err)}
	}

	raw, ok := decode(payload, dest)
	if !ok {
		return Lookup{Hit: true, Fallback: true, Raw: raw}
	}
	return Lookup{Hit: true}
}

// Set serializes and stores the value with the given TTL. Returns false
// instead of an error when the write cannot be performed, so callers
// log-and-continue rather than fail a successful relational read.
func (a *Adapter) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) bool {
	payload, err := encode(value)
	if err != nil {
		a.log.WarnCtx(ctx, "cache set skipped: unserializable value",
			zap.String("key", key), zap.Error(err))
		return false
	}

	client, err := a.mgr.Acquire(ctx)
	if err == nil {
		err = client.Set(ctx, a.fullKey(key), payload, ttl).Err()
	}
	if err != nil {
		a.log.WarnCtx(ctx, "cache set failed, skipping",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Delete removes the given keys and returns how many existed. Best-effort:
// a store failure removes nothing and reports zero.
func (a *Adapter) Delete(ctx context.Context, keys ...string) int64 {
	if len(keys) == 0 {
		return 0
	}
	client, err := a.mgr.Acquire(ctx)
	if err != nil {
		return 0
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = a.fullKey(k)
	}
	removed, err := client.Del(ctx, full...).Result()
	if err != nil {
		a.log.WarnCtx(ctx, "cache delete failed",
			zap.Strings("keys", keys), zap.Error(err))
		return 0
	}
	return removed
}

// Keys enumerates currently-stored keys matching the glob pattern, without
// the configured prefix. SCAN is used so the sweep never blocks the node.
func (a *Adapter) Keys(ctx context.Context, pattern string) []string {
	client, err := a.mgr.Acquire(ctx)
	if err != nil {
		return nil
	}

	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := client.Scan(ctx, cursor, a.fullKey(pattern), a.cfg.ScanCount).Result()
		if err != nil {
			a.log.WarnCtx(ctx, "cache scan failed",
				zap.String("pattern", pattern), zap.Error(err))
			return nil
		}
		for _, k := range batch {
			keys = append(keys, k[len(a.cfg.KeyPrefix):])
		}
		cursor = next
		if cursor == 0 {
			return keys
		}
	}
}

// DeleteByPattern sweeps every key matching the glob pattern and returns the
// number removed. A pattern matching nothing is a no-op.
func (a *Adapter) DeleteByPattern(ctx context.Context, pattern string) int64 {
	keys := a.Keys(ctx, pattern)
	if len(keys) == 0 {
		return 0
	}
	return a.Delete(ctx, keys...)
}

// Incr adds by to the integer under key and returns the new value. Unlike
// the read/write paths this surfaces the error: rate limiting built on it
// must know the difference between zero and unavailable.
func (a *Adapter) Incr(ctx context.Context, key string, by int64) (int64, error) {
	client, err := a.mgr.Acquire(ctx)
	if err != nil {
		return 0, ErrStoreSet.Wrap(err)
	}
	n, err := client.IncrBy(ctx, a.fullKey(key), by).Result()
	if err != nil {
		return 0, ErrStoreSet.Wrap(err)
	}
	return n, nil
}

// Expire sets a TTL on an existing key. Returns false when the key does not
// exist or the store call failed.
func (a *Adapter) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	client, err := a.mgr.Acquire(ctx)
	if err != nil {
		return false
	}
	ok, err := client.Expire(ctx, a.fullKey(key), ttl).Result()
	if err != nil {
		a.log.WarnCtx(ctx, "cache expire failed",
			zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (a *Adapter) fullKey(key string) string {
	return a.cfg.KeyPrefix + key
}
