// api/audit/model.go
package audit

import (
	"time"
)

// DecisionRecord is one authorization decision as written to the audit
// trail. Outcome and Source use the string forms from the authz package.
type DecisionRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	OrgID      string    `json:"org_id"`
	UserID     string    `json:"user_id"`
	Permission string    `json:"permission"`
	Bucket     string    `json:"bucket"`
	Outcome    string    `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	Source     string    `json:"source,omitempty"`
	DurationMs float64   `json:"duration_ms"`
}
