// api/controller/controllers.go
package controller

import (
	"github.com/redis/go-redis/v9"

	"github.com/prismworks/prism/api/audit"
	"github.com/prismworks/prism/api/service"
)

type Controllers struct {
	Access *AccessController
	Health *HealthController
}

func InitializeControllers(services *service.Services, auditService audit.Service, rdb *redis.Client) *Controllers {
	return &Controllers{
		Access: NewAccessController(services.Access, auditService),
		Health: NewHealthController(services.Access, rdb),
	}
}
