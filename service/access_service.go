// api/service/access_service.go
package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prismworks/prism/api/audit"
	"github.com/prismworks/prism/api/authz"
	logger "github.com/prismworks/prism/api/logging"
	"github.com/prismworks/prism/api/model"
	"github.com/prismworks/prism/api/util"
)

const accessDecisionEvent = "access.decision"

// invalidateConcurrency bounds the fan-out of bulk cache invalidation.
const invalidateConcurrency = 10

// IAccessService is the single authorization entry point for controllers and
// middleware. Callers translate the decision into their own error surface
// but make no further authorization choices themselves.
type IAccessService interface {
	CheckAccess(ctx context.Context, identity model.CallerIdentity, permission, bucket string) (authz.Decision, error)
	InvalidateUser(ctx context.Context, orgID, userID string) (int, error)
	InvalidateUsers(ctx context.Context, orgID string, userIDs []string) (int, error)
	BreakerStatus(ctx context.Context) (authz.BreakerStatus, error)
}

// Narrow consumer-side views of the authz components. The concrete types in
// the authz package satisfy them; tests substitute mocks.
type bucketResolver interface {
	Parse(bucket string) (authz.BucketDescriptor, error)
}

type decisionCache interface {
	Get(ctx context.Context, orgID, userID, permission string) (allowed bool, ok bool)
	Set(ctx context.Context, orgID, userID, permission string, allowed bool, ttlOverride time.Duration)
	InvalidateUser(ctx context.Context, orgID, userID string) (int, error)
}

type circuitBreaker interface {
	ShouldAttempt(ctx context.Context) bool
	RecordSuccess(ctx context.Context)
	RecordFailure(ctx context.Context)
	Status(ctx context.Context) (authz.BreakerStatus, error)
}

type authorityClient interface {
	Check(ctx context.Context, orgID, userID, permission string) authz.CheckResult
}

// AccessService combines bucket classification, org isolation, the decision
// cache, the circuit breaker, and the authority client into one CheckAccess
// operation. It holds no state of its own; all cross-request coordination
// lives in the shared store behind the cache and breaker.
type AccessService struct {
	resolver bucketResolver
	cache    decisionCache
	breaker  circuitBreaker
	client   authorityClient
	auditSvc audit.Service
	eventBus *util.EventBus
	failOpen bool
}

var _ IAccessService = &AccessService{}

// NewAccessService creates the orchestrator and subscribes the audit trail
// to decision events.
func NewAccessService(
	resolver bucketResolver,
	cache decisionCache,
	breaker circuitBreaker,
	client authorityClient,
	auditSvc audit.Service,
	eventBus *util.EventBus,
	failOpen bool,
) *AccessService {
	service := &AccessService{
		resolver: resolver,
		cache:    cache,
		breaker:  breaker,
		client:   client,
		auditSvc: auditSvc,
		eventBus: eventBus,
		failOpen: failOpen,
	}

	eventBus.Subscribe(accessDecisionEvent, service.handleDecisionRecorded)

	return service
}

func (s *AccessService) handleDecisionRecorded(ctx context.Context, event util.Event) error {
	record, ok := event.Payload.(audit.DecisionRecord)
	if !ok {
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}
	return s.auditSvc.LogDecision(ctx, record)
}

// CheckAccess decides whether identity may perform permission against
// bucket. A malformed bucket string propagates as an error; everything else
// is a Decision. Only the group-bucket path can produce an unavailable
// decision — ownership and org checks are local facts and never touch the
// network.
func (s *AccessService) CheckAccess(ctx context.Context, identity model.CallerIdentity, permission, bucket string) (authz.Decision, error) {
	start := time.Now()

	descriptor, err := s.resolver.Parse(bucket)
	if err != nil {
		logger.Warn("Bucket parse failed",
			zap.Error(err),
			zap.String("bucket", bucket),
			zap.String("userID", identity.UserID))
		return authz.Decision{}, err
	}

	// Org isolation runs before any kind dispatch and before any cache or
	// remote consultation: a caller never acts on a bucket outside their
	// own organization, whatever else would qualify them.
	if identity.OrgID != "" && descriptor.OrgID != "" && identity.OrgID != descriptor.OrgID {
		decision := authz.Denied(authz.ReasonOrgMismatch, authz.SourceOrg)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil
	}

	switch descriptor.Kind {
	case authz.BucketSystem:
		// Any authenticated caller may use system buckets.
		decision := authz.Granted(authz.SourceSystem)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil

	case authz.BucketUser:
		// Ownership is a local, always-correct fact.
		var decision authz.Decision
		if descriptor.ResourceID == identity.UserID {
			decision = authz.Granted(authz.SourceOwner)
		} else {
			decision = authz.Denied(authz.ReasonNotBucketOwner, authz.SourceOwner)
		}
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil

	case authz.BucketGroup:
		return s.checkGroupAccess(ctx, identity, permission, descriptor, start)

	default:
		return authz.Decision{}, fmt.Errorf("unhandled bucket kind %q for bucket %q", descriptor.Kind, descriptor.Raw)
	}
}

// checkGroupAccess is the distributed path: cache, breaker, then the remote
// authority. The permission is scoped per group so a grant in one group says
// nothing about another.
func (s *AccessService) checkGroupAccess(ctx context.Context, identity model.CallerIdentity, permission string, descriptor authz.BucketDescriptor, start time.Time) (authz.Decision, error) {
	scoped := fmt.Sprintf("%s:group:%s", permission, descriptor.ResourceID)

	if allowed, ok := s.cache.Get(ctx, identity.OrgID, identity.UserID, scoped); ok {
		var decision authz.Decision
		if allowed {
			decision = authz.Granted(authz.SourceCache)
		} else {
			decision = authz.Denied(authz.ReasonPermissionDenied, authz.SourceCache)
		}
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil
	}

	if !s.breaker.ShouldAttempt(ctx) {
		logger.Warn("Circuit breaker open, skipping permission authority call",
			zap.String("orgID", identity.OrgID),
			zap.String("userID", identity.UserID),
			zap.String("permission", scoped))
		decision := s.unavailableDecision(identity, scoped)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil
	}

	result := s.client.Check(ctx, identity.OrgID, identity.UserID, scoped)
	switch result.Outcome {
	case authz.OutcomeGranted:
		s.breaker.RecordSuccess(ctx)
		s.cache.Set(ctx, identity.OrgID, identity.UserID, scoped, true, 0)
		decision := authz.Granted(authz.SourceAuthority)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil

	case authz.OutcomeDenied:
		// A denial is a healthy answer from the authority, so it counts
		// as a breaker success and is cached (negative caching).
		s.breaker.RecordSuccess(ctx)
		s.cache.Set(ctx, identity.OrgID, identity.UserID, scoped, false, 0)
		reason := result.Reason
		if reason == "" {
			reason = authz.ReasonPermissionDenied
		}
		decision := authz.Denied(reason, authz.SourceAuthority)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil

	default:
		// An outage is not a fact worth caching.
		s.breaker.RecordFailure(ctx)
		decision := s.unavailableDecision(identity, scoped)
		s.recordDecision(ctx, identity, permission, descriptor, decision, start)
		return decision, nil
	}
}

// unavailableDecision is the single point where the fail-open switch is
// evaluated. Fail-open is a deliberate security relaxation and is never
// silent.
func (s *AccessService) unavailableDecision(identity model.CallerIdentity, permission string) authz.Decision {
	if s.failOpen {
		logger.Warn("Authorization fail-open engaged, granting without authority confirmation",
			zap.String("orgID", identity.OrgID),
			zap.String("userID", identity.UserID),
			zap.String("permission", permission))
		return authz.Granted(authz.SourceFailOpen)
	}
	return authz.Unavailable(authz.ReasonAuthorityUnavailable)
}

func (s *AccessService) recordDecision(ctx context.Context, identity model.CallerIdentity, permission string, descriptor authz.BucketDescriptor, decision authz.Decision, start time.Time) {
	duration := time.Since(start)

	logger.Info("Authorization decision",
		zap.String("orgID", identity.OrgID),
		zap.String("userID", identity.UserID),
		zap.String("permission", permission),
		zap.String("bucket", descriptor.Raw),
		zap.String("bucketKind", descriptor.Kind.String()),
		zap.String("outcome", decision.Outcome.String()),
		zap.String("source", decision.Source),
		zap.Duration("duration", duration))

	// The audit handler runs after the response is written; a request-scoped
	// context would already be canceled by then.
	s.eventBus.Publish(context.WithoutCancel(ctx), accessDecisionEvent, audit.DecisionRecord{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		OrgID:      identity.OrgID,
		UserID:     identity.UserID,
		Permission: permission,
		Bucket:     descriptor.Raw,
		Outcome:    decision.Outcome.String(),
		Reason:     decision.Reason,
		Source:     decision.Source,
		DurationMs: float64(duration.Microseconds()) / 1000,
	})
}

// InvalidateUser removes every cached decision for one user in the org.
func (s *AccessService) InvalidateUser(ctx context.Context, orgID, userID string) (int, error) {
	return s.cache.InvalidateUser(ctx, orgID, userID)
}

// InvalidateUsers fans out InvalidateUser over the listed users with bounded
// concurrency and returns the total number of entries removed.
func (s *AccessService) InvalidateUsers(ctx context.Context, orgID string, userIDs []string) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(invalidateConcurrency)

	var total int64
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			removed, err := s.cache.InvalidateUser(ctx, orgID, userID)
			if err != nil {
				return fmt.Errorf("failed to invalidate cache for user %s: %w", userID, err)
			}
			atomic.AddInt64(&total, int64(removed))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(atomic.LoadInt64(&total)), err
	}
	return int(total), nil
}

// BreakerStatus exposes the circuit breaker snapshot for the health surface.
func (s *AccessService) BreakerStatus(ctx context.Context) (authz.BreakerStatus, error) {
	return s.breaker.Status(ctx)
}
