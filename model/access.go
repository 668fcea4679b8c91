// api/model/access.go
package model

// AccessCheckRequest is the body of POST /access/check.
type AccessCheckRequest struct {
	Permission string `json:"permission" binding:"required"`
	Bucket     string `json:"bucket" binding:"required"`
}

// AccessCheckResponse reports a single authorization decision. Outcome is
// one of "granted", "denied", or "unavailable"; Source names where the
// decision came from (owner, system, cache, authority, fail-open).
type AccessCheckResponse struct {
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Source  string `json:"source,omitempty"`
	Bucket  string `json:"bucket"`
}

// InvalidateRequest removes cached decisions for the listed users, used when
// group membership changes outside this service.
type InvalidateRequest struct {
	OrgID   string   `json:"org_id" binding:"required"`
	UserIDs []string `json:"user_ids" binding:"required"`
}

type InvalidateResponse struct {
	Invalidated int `json:"invalidated"`
}
