// api/authz/cache.go
package authz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/prismworks/prism/api/logging"
)

// CacheConfig carries the decision cache switches and the TTL strata.
// Denied decisions always use DeniedTTL (negative caching); granted
// decisions pick a TTL by permission sensitivity.
type CacheConfig struct {
	Enabled   bool
	ReadTTL   time.Duration
	WriteTTL  time.Duration
	AdminTTL  time.Duration
	DeniedTTL time.Duration
}

// DecisionCache stores prior allow/deny outcomes in the shared Redis store.
// It is an optimization, never a correctness dependency: every store failure
// degrades to a cache miss on reads and is swallowed on writes.
type DecisionCache struct {
	rdb *redis.Client
	cfg CacheConfig
}

func NewDecisionCache(rdb *redis.Client, cfg CacheConfig) *DecisionCache {
	return &DecisionCache{rdb: rdb, cfg: cfg}
}

// cacheKey is deterministic and total over its three components, which gives
// per-org and per-user isolation structurally.
func cacheKey(orgID, userID, permission string) string {
	return fmt.Sprintf("auth:permission:%s:%s:%s", orgID, userID, permission)
}

// ttlFor selects the TTL for a decision. Over-caching a destructive
// permission is far more dangerous than over-caching a read, so the trailing
// segment of the permission string picks the stratum.
func (c *DecisionCache) ttlFor(permission string, allowed bool) time.Duration {
	if !allowed {
		return c.cfg.DeniedTTL
	}
	idx := strings.LastIndex(permission, ":")
	if idx < 0 {
		return c.cfg.WriteTTL
	}
	switch strings.ToLower(permission[idx+1:]) {
	case "read", "list", "view", "get":
		return c.cfg.ReadTTL
	case "admin", "delete", "purge":
		return c.cfg.AdminTTL
	default:
		return c.cfg.WriteTTL
	}
}

// Get returns a cached decision for the triple. ok is false when the entry
// is absent, expired, the cache is disabled, or the store is unreachable —
// callers cannot tell those apart and must not try.
func (c *DecisionCache) Get(ctx context.Context, orgID, userID, permission string) (allowed bool, ok bool) {
	if !c.cfg.Enabled {
		return false, false
	}

	key := cacheKey(orgID, userID, permission)
	value, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, false
	}
	if err != nil {
		logger.Warn("Decision cache read failed, treating as miss",
			zap.Error(err),
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission))
		return false, false
	}

	allowed = value == "1"
	logger.Debug("Decision cache hit",
		zap.String("key", key),
		zap.Bool("allowed", allowed))
	return allowed, true
}

// Set caches a decision. A non-positive ttlOverride means "use the
// stratified default". A failed write must never fail the request, so store
// errors are logged and dropped.
func (c *DecisionCache) Set(ctx context.Context, orgID, userID, permission string, allowed bool, ttlOverride time.Duration) {
	if !c.cfg.Enabled {
		return
	}

	ttl := ttlOverride
	if ttl <= 0 {
		ttl = c.ttlFor(permission, allowed)
	}

	value := "0"
	if allowed {
		value = "1"
	}

	key := cacheKey(orgID, userID, permission)
	if err := c.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Warn("Decision cache write failed",
			zap.Error(err),
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission))
		return
	}

	logger.Debug("Decision cache stored",
		zap.String("key", key),
		zap.Bool("allowed", allowed),
		zap.Duration("ttl", ttl))
}

// InvalidateUser removes every cached decision for the user within the org,
// across all permissions. Used when group membership changes externally;
// everything else relies on TTL expiry.
func (c *DecisionCache) InvalidateUser(ctx context.Context, orgID, userID string) (int, error) {
	pattern := cacheKey(orgID, userID, "*")

	var removed int
	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	batch := make([]string, 0, 100)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			n, err := c.rdb.Del(ctx, batch...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete cached decisions: %w", err)
			}
			removed += int(n)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		logger.Error("Decision cache invalidation scan failed",
			zap.Error(err),
			zap.String("orgID", orgID),
			zap.String("userID", userID))
		return removed, fmt.Errorf("failed to scan cached decisions: %w", err)
	}
	if len(batch) > 0 {
		n, err := c.rdb.Del(ctx, batch...).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to delete cached decisions: %w", err)
		}
		removed += int(n)
	}

	if removed > 0 {
		logger.Info("Decision cache invalidated",
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.Int("removed", removed))
	}
	return removed, nil
}
