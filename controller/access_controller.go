// api/controller/access_controller.go
package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prismworks/prism/api/audit"
	"github.com/prismworks/prism/api/authz"
	prism_errors "github.com/prismworks/prism/api/errors"
	"github.com/prismworks/prism/api/model"
	"github.com/prismworks/prism/api/service"
	"github.com/prismworks/prism/api/util"
)

type AccessController struct {
	accessService service.IAccessService
	auditService  audit.Service
}

func NewAccessController(accessService service.IAccessService, auditService audit.Service) *AccessController {
	return &AccessController{
		accessService: accessService,
		auditService:  auditService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/check", ac.CheckAccess)
		access.POST("/invalidate", ac.InvalidateUsers)
		access.GET("/breaker", ac.BreakerStatus)
		access.GET("/decisions", ac.QueryDecisions)
	}
}

// CheckAccess endpoint. The HTTP status follows the decision: granted 200,
// denied 403, unavailable 503 — a policy fact and an infrastructure fact are
// never presented alike.
func (ac *AccessController) CheckAccess(c *gin.Context) {
	var req model.AccessCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid access check request", prism_errors.ErrInvalidRequest)
		return
	}

	identity, err := util.GetIdentityFromContext(c)
	if err != nil {
		util.RespondWithError(c, http.StatusUnauthorized, "Missing caller identity", err)
		return
	}

	decision, err := ac.accessService.CheckAccess(c, identity, req.Permission, req.Bucket)
	if err != nil {
		if errors.Is(err, prism_errors.ErrInvalidBucketFormat) {
			util.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to check access", prism_errors.ErrInternalServer)
		}
		return
	}

	resp := model.AccessCheckResponse{
		Outcome: decision.Outcome.String(),
		Reason:  decision.Reason,
		Source:  decision.Source,
		Bucket:  req.Bucket,
	}

	switch decision.Outcome {
	case authz.OutcomeGranted:
		c.JSON(http.StatusOK, resp)
	case authz.OutcomeDenied:
		c.JSON(http.StatusForbidden, resp)
	default:
		c.JSON(http.StatusServiceUnavailable, resp)
	}
}

// InvalidateUsers endpoint: removes cached decisions for the listed users.
// The group-membership change hook for external systems.
func (ac *AccessController) InvalidateUsers(c *gin.Context) {
	var req model.InvalidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid invalidation request", prism_errors.ErrInvalidRequest)
		return
	}

	invalidated, err := ac.accessService.InvalidateUsers(c, req.OrgID, req.UserIDs)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to invalidate cached decisions", err)
		return
	}

	c.JSON(http.StatusOK, model.InvalidateResponse{Invalidated: invalidated})
}

// BreakerStatus endpoint: a read-only snapshot for dashboards. It never
// transitions the breaker.
func (ac *AccessController) BreakerStatus(c *gin.Context) {
	status, err := ac.accessService.BreakerStatus(c)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to read circuit breaker state", err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// QueryDecisions endpoint: searches the audit trail. Defaults to the last
// 24 hours when no window is given.
func (ac *AccessController) QueryDecisions(c *gin.Context) {
	to := time.Now().UTC()
	from := to.Add(-24 * time.Hour)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'from' timestamp", prism_errors.ErrInvalidRequest)
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid 'to' timestamp", prism_errors.ErrInvalidRequest)
			return
		}
		to = t
	}

	decisions, err := ac.auditService.QueryDecisions(c, from, to, c.Query("org_id"), c.Query("user_id"))
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to query decisions", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decisions": decisions,
		"total":     len(decisions),
	})
}
