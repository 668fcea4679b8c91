// api/service/services.go
package service

import (
	"github.com/redis/go-redis/v9"

	"github.com/prismworks/prism/api/audit"
	"github.com/prismworks/prism/api/authz"
	"github.com/prismworks/prism/api/config"
	"github.com/prismworks/prism/api/util"
)

type Services struct {
	Access IAccessService
}

// InitializeServices builds the authz components from configuration and
// wires them into the access service. The Redis client is shared by the
// decision cache and the circuit breaker; it is the only cross-instance
// coordination point.
func InitializeServices(
	rdb *redis.Client,
	auditService audit.Service,
	eventBus *util.EventBus,
) (*Services, error) {
	resolver := authz.NewBucketResolver(config.GetBool("auth.bucket.strict"))

	cache := authz.NewDecisionCache(rdb, authz.CacheConfig{
		Enabled:   config.GetBool("auth.cache.enabled"),
		ReadTTL:   config.GetDuration("auth.cache.ttl.read"),
		WriteTTL:  config.GetDuration("auth.cache.ttl.write"),
		AdminTTL:  config.GetDuration("auth.cache.ttl.admin"),
		DeniedTTL: config.GetDuration("auth.cache.ttl.denied"),
	})

	breaker := authz.NewCircuitBreaker(rdb,
		config.GetInt("auth.breaker.threshold"),
		config.GetDuration("auth.breaker.timeout"))

	client := authz.NewAuthorityClient(
		config.GetString("auth.api.url"),
		config.GetDuration("auth.api.timeout"))

	services := &Services{
		Access: NewAccessService(resolver, cache, breaker, client,
			auditService, eventBus, config.GetBool("auth.failOpen")),
	}

	return services, nil
}
