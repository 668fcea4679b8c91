// api/authz/breaker.go
package authz

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	logger "github.com/prismworks/prism/api/logging"
)

// Circuit breaker phases.
const (
	StateClosed   = "closed"
	StateOpen     = "open"
	StateHalfOpen = "half_open"
)

// breakerKey is the single Redis hash holding the breaker state. Every
// running instance of the service reads and writes the same hash, so the
// breaker protects the permission authority from the whole fleet, not from
// one process.
const breakerKey = "auth:circuit_breaker"

// BreakerStatus is a read-only snapshot of the breaker for monitoring.
type BreakerStatus struct {
	State    string     `json:"state"`
	Failures int        `json:"failures"`
	OpenedAt *time.Time `json:"opened_at,omitempty"`
}

// CircuitBreaker guards calls to the remote permission authority. After
// threshold consecutive failures it opens and short-circuits all calls;
// once timeout has elapsed it lets one trial call through (half-open) and
// closes again on success. State lives in Redis under breakerKey with hash
// fields state/failures/opened_at; the failure counter only ever moves via
// HINCRBY so concurrent instances cannot lose increments.
type CircuitBreaker struct {
	rdb       *redis.Client
	threshold int
	timeout   time.Duration
}

func NewCircuitBreaker(rdb *redis.Client, threshold int, timeout time.Duration) *CircuitBreaker {
	return &CircuitBreaker{rdb: rdb, threshold: threshold, timeout: timeout}
}

// stateTTL keeps the hash from outliving a dead deployment. The state is
// re-derivable (defaults to closed), so expiry is safe.
func (b *CircuitBreaker) stateTTL() time.Duration {
	return 2 * b.timeout
}

// ShouldAttempt reports whether a call to the authority may proceed. Reading
// an expired open state performs the open → half_open transition as a side
// effect. A store failure assumes closed: the breaker must not become a
// point of failure itself.
func (b *CircuitBreaker) ShouldAttempt(ctx context.Context) bool {
	fields, err := b.rdb.HGetAll(ctx, breakerKey).Result()
	if err != nil {
		logger.Warn("Circuit breaker state read failed, assuming closed", zap.Error(err))
		return true
	}

	switch fields["state"] {
	case StateOpen:
		openedAt, parseErr := time.Parse(time.RFC3339, fields["opened_at"])
		if parseErr == nil && time.Since(openedAt) <= b.timeout {
			return false
		}
		// Cooldown elapsed (or the timestamp is gone): let one trial
		// call through.
		pipe := b.rdb.TxPipeline()
		pipe.HSet(ctx, breakerKey, "state", StateHalfOpen)
		pipe.Expire(ctx, breakerKey, b.stateTTL())
		if _, err := pipe.Exec(ctx); err != nil {
			logger.Warn("Circuit breaker half-open transition write failed", zap.Error(err))
		}
		logger.Info("Circuit breaker half-open, allowing trial call",
			zap.Duration("timeout", b.timeout))
		return true
	case StateHalfOpen:
		return true
	default:
		// Closed, or no state yet.
		return true
	}
}

// RecordSuccess marks a healthy answer from the authority. It closes the
// breaker and resets the failure counter unconditionally; a success from
// half-open is the trial call that confirms recovery.
func (b *CircuitBreaker) RecordSuccess(ctx context.Context) {
	previous, err := b.rdb.HGet(ctx, breakerKey, "state").Result()
	if err == nil && previous != "" && previous != StateClosed {
		logger.Info("Circuit breaker closed after successful call",
			zap.String("previousState", previous))
	}

	pipe := b.rdb.TxPipeline()
	pipe.HSet(ctx, breakerKey, "state", StateClosed, "failures", 0)
	pipe.HDel(ctx, breakerKey, "opened_at")
	pipe.Expire(ctx, breakerKey, b.stateTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Circuit breaker success write failed", zap.Error(err))
	}
}

// RecordFailure counts a transport or protocol fault against the breaker and
// opens it once the count reaches the threshold. The increment is atomic in
// the store; a read-modify-write here would drop concurrent failures and the
// breaker could fail to trip.
func (b *CircuitBreaker) RecordFailure(ctx context.Context) {
	failures, err := b.rdb.HIncrBy(ctx, breakerKey, "failures", 1).Result()
	if err != nil {
		logger.Warn("Circuit breaker failure count update failed", zap.Error(err))
		return
	}

	if failures < int64(b.threshold) {
		if err := b.rdb.Expire(ctx, breakerKey, b.stateTTL()).Err(); err != nil {
			logger.Warn("Circuit breaker state expiry update failed", zap.Error(err))
		}
		return
	}

	state, _ := b.rdb.HGet(ctx, breakerKey, "state").Result()
	if state != StateOpen {
		logger.Warn("Circuit breaker opened",
			zap.Int64("failures", failures),
			zap.Int("threshold", b.threshold))
	}

	pipe := b.rdb.TxPipeline()
	pipe.HSet(ctx, breakerKey, "state", StateOpen, "opened_at", time.Now().UTC().Format(time.RFC3339))
	pipe.Expire(ctx, breakerKey, b.stateTTL())
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Circuit breaker open transition write failed", zap.Error(err))
	}
}

// Status returns the breaker snapshot for health and monitoring surfaces.
// Unlike ShouldAttempt it never transitions state.
func (b *CircuitBreaker) Status(ctx context.Context) (BreakerStatus, error) {
	fields, err := b.rdb.HGetAll(ctx, breakerKey).Result()
	if err != nil {
		return BreakerStatus{}, err
	}

	status := BreakerStatus{State: StateClosed}
	if s := fields["state"]; s != "" {
		status.State = s
	}
	if f := fields["failures"]; f != "" {
		if n, err := strconv.Atoi(f); err == nil {
			status.Failures = n
		}
	}
	if o := fields["opened_at"]; o != "" {
		if t, err := time.Parse(time.RFC3339, o); err == nil {
			status.OpenedAt = &t
		}
	}
	return status, nil
}
