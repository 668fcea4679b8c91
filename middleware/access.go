// api/middleware/access.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prismworks/prism/api/authz"
	prism_errors "github.com/prismworks/prism/api/errors"
	logger "github.com/prismworks/prism/api/logging"
	"github.com/prismworks/prism/api/service"
	"github.com/prismworks/prism/api/util"
)

// RequireBucketAccess guards a bucket-scoped endpoint with one CheckAccess
// call. The bucket comes from the "bucket" query or form parameter. A denial
// and an outage are never presented alike: denial is 403 with a reason,
// outage is 503 with a try-again signal.
func RequireBucketAccess(accessService service.IAccessService, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := util.GetIdentityFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
			c.Abort()
			return
		}

		bucket := c.Query("bucket")
		if bucket == "" {
			bucket = c.PostForm("bucket")
		}
		if bucket == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bucket is required"})
			c.Abort()
			return
		}

		decision, err := accessService.CheckAccess(c, identity, permission, bucket)
		if err != nil {
			if errors.Is(err, prism_errors.ErrInvalidBucketFormat) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			} else {
				logger.Error("Access check failed",
					zap.Error(err),
					zap.String("bucket", bucket),
					zap.String("userID", identity.UserID))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			c.Abort()
			return
		}

		switch decision.Outcome {
		case authz.OutcomeGranted:
			c.Set("bucket", bucket)
			c.Next()
		case authz.OutcomeDenied:
			c.JSON(http.StatusForbidden, gin.H{
				"error":  "forbidden",
				"reason": decision.Reason,
			})
			c.Abort()
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "authorization service temporarily unavailable",
			})
			c.Abort()
		}
	}
}
