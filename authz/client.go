// api/authz/client.go
package authz

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	logger "github.com/prismworks/prism/api/logging"
)

// CheckResult is the three-way outcome of one remote permission check.
type CheckResult struct {
	Outcome Outcome
	Reason  string
}

// AuthorityClient performs the outbound call to the remote permission
// authority. It only maps transport and protocol outcomes; the orchestrator
// owns the circuit breaker gating and recording.
type AuthorityClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAuthorityClient(baseURL string, timeout time.Duration) *AuthorityClient {
	return &AuthorityClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type authorityCheckRequest struct {
	OrgID      string `json:"org_id"`
	UserID     string `json:"user_id"`
	Permission string `json:"permission"`
}

type authorityCheckResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason"`
}

// Check asks the authority whether the user holds the permission in the org.
// Outcome mapping: 200 → Granted, 403 → Denied, any other status or a
// transport failure → Unavailable. Only the Unavailable outcomes count as
// circuit-breaker failures — a denial is a healthy answer, and conflating it
// with an outage would trip the breaker on ordinary access-control activity.
func (c *AuthorityClient) Check(ctx context.Context, orgID, userID, permission string) CheckResult {
	payload, err := json.Marshal(authorityCheckRequest{
		OrgID:      orgID,
		UserID:     userID,
		Permission: permission,
	})
	if err != nil {
		return CheckResult{Outcome: OutcomeUnavailable, Reason: "failed to encode check request"}
	}

	url := c.baseURL + "/api/v1/authorization/check"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return CheckResult{Outcome: OutcomeUnavailable, Reason: "failed to build check request"}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Error("Permission authority call failed",
			zap.Error(err),
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission))
		return CheckResult{Outcome: OutcomeUnavailable, Reason: "permission authority unreachable"}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var body authorityCheckResponse
		// Best-effort decode: a 200 is a grant even if the body is not
		// what we expect.
		_ = json.NewDecoder(resp.Body).Decode(&body)
		logger.Debug("Permission authority granted",
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission))
		return CheckResult{Outcome: OutcomeGranted, Reason: body.Reason}

	case http.StatusForbidden:
		var body authorityCheckResponse
		_ = json.NewDecoder(resp.Body).Decode(&body)
		reason := body.Reason
		if reason == "" {
			reason = ReasonPermissionDenied
		}
		logger.Debug("Permission authority denied",
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission),
			zap.String("reason", reason))
		return CheckResult{Outcome: OutcomeDenied, Reason: reason}

	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		logger.Error("Permission authority returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("orgID", orgID),
			zap.String("userID", userID),
			zap.String("permission", permission),
			zap.ByteString("body", snippet))
		return CheckResult{
			Outcome: OutcomeUnavailable,
			Reason:  fmt.Sprintf("permission authority returned status %d", resp.StatusCode),
		}
	}
}
