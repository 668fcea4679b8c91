// api/util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	prism_errors "github.com/prismworks/prism/api/errors"
	logger "github.com/prismworks/prism/api/logging"
	"github.com/prismworks/prism/api/model"
)

const identityContextKey = "identity"

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// SetIdentityInContext stores the caller identity for downstream handlers.
func SetIdentityInContext(c *gin.Context, identity model.CallerIdentity) {
	c.Set(identityContextKey, identity)
}

// GetIdentityFromContext returns the caller identity placed by the identity
// middleware, or ErrMissingIdentity if the request never went through it.
func GetIdentityFromContext(c *gin.Context) (model.CallerIdentity, error) {
	value, exists := c.Get(identityContextKey)
	if !exists {
		return model.CallerIdentity{}, prism_errors.ErrMissingIdentity
	}
	identity, ok := value.(model.CallerIdentity)
	if !ok {
		return model.CallerIdentity{}, prism_errors.ErrMissingIdentity
	}
	return identity, nil
}
