// api/controller/health_controller.go
package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/prismworks/prism/api/authz"
	"github.com/prismworks/prism/api/config"
	logger "github.com/prismworks/prism/api/logging"
	"github.com/prismworks/prism/api/service"
)

type HealthController struct {
	accessService service.IAccessService
	rdb           *redis.Client
}

func NewHealthController(accessService service.IAccessService, rdb *redis.Client) *HealthController {
	return &HealthController{
		accessService: accessService,
		rdb:           rdb,
	}
}

// RegisterRoutes registers the API routes
func (hc *HealthController) RegisterRoutes(r *gin.RouterGroup) {
	health := r.Group("/health")
	{
		health.GET("", hc.Health)
		health.GET("/auth", hc.AuthHealth)
	}
}

// Health endpoint for load balancer checks.
func (hc *HealthController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   config.GetString("service.name"),
		"version":   config.GetString("service.version"),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// AuthHealth reports the authorization subsystem: Redis connectivity, the
// circuit breaker snapshot, and the cache configuration. Degraded when Redis
// is down or the breaker is open.
func (hc *HealthController) AuthHealth(c *gin.Context) {
	status, err := hc.accessService.BreakerStatus(c)
	if err != nil {
		// The store read failed; the breaker behaves as closed in that
		// case, so report the default.
		status = authz.BreakerStatus{State: authz.StateClosed}
	}

	redisConnection := "healthy"
	var redisError string
	pingCtx, cancel := context.WithTimeout(c, 2*time.Second)
	defer cancel()
	if err := hc.rdb.Ping(pingCtx).Err(); err != nil {
		redisConnection = "down"
		redisError = err.Error()
		logger.Warn("Health check Redis ping failed", zap.Error(err))
	}

	overall := "healthy"
	if redisConnection != "healthy" || status.State == authz.StateOpen {
		overall = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status": overall,
		"auth_api": gin.H{
			"url":             config.GetString("auth.api.url"),
			"timeout_seconds": config.GetDuration("auth.api.timeout").Seconds(),
			"circuit_breaker": gin.H{
				"state":           status.State,
				"failures":        status.Failures,
				"threshold":       config.GetInt("auth.breaker.threshold"),
				"timeout_seconds": config.GetDuration("auth.breaker.timeout").Seconds(),
				"opened_at":       status.OpenedAt,
			},
		},
		"cache": gin.H{
			"enabled":          config.GetBool("auth.cache.enabled"),
			"redis_connection": redisConnection,
			"redis_error":      redisError,
			"ttl_config": gin.H{
				"read_seconds":   config.GetDuration("auth.cache.ttl.read").Seconds(),
				"write_seconds":  config.GetDuration("auth.cache.ttl.write").Seconds(),
				"admin_seconds":  config.GetDuration("auth.cache.ttl.admin").Seconds(),
				"denied_seconds": config.GetDuration("auth.cache.ttl.denied").Seconds(),
			},
		},
		"config": gin.H{
			"fail_open": config.GetBool("auth.failOpen"),
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
