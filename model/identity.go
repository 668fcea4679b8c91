// api/model/identity.go
package model

// CallerIdentity is the authenticated caller as established by the gateway
// in front of this service. The gateway validates the bearer credential and
// forwards the claims; this service trusts them and never re-verifies.
type CallerIdentity struct {
	UserID string `json:"user_id"`
	// OrgID may be empty in single-tenant deployments.
	OrgID string `json:"org_id,omitempty"`
	// Permissions is a pre-granted set used by simpler call sites that do
	// not go through the distributed check.
	Permissions []string `json:"permissions,omitempty"`
}
