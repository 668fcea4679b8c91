// api/router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prismworks/prism/api/controller"
	"github.com/prismworks/prism/api/db"
	"github.com/prismworks/prism/api/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	limiter *db.RateLimiter,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(limiter, rateLimitRequests, rateLimitDuration))

	api := router.Group("/api/v1")

	// Health endpoints serve load balancers and dashboards without identity.
	controllers.Health.RegisterRoutes(api)

	authed := api.Group("", middleware.Identity())
	controllers.Access.RegisterRoutes(authed)

	return router
}
