// api/authz/decision.go
package authz

// Outcome is the three-way result of an authorization check. Callers must be
// able to tell "no" apart from "couldn't find out", so a bare boolean is
// never used.
type Outcome int

const (
	OutcomeGranted Outcome = iota
	OutcomeDenied
	OutcomeUnavailable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGranted:
		return "granted"
	case OutcomeDenied:
		return "denied"
	case OutcomeUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Decision sources, recorded on every decision for logs and the audit trail.
const (
	SourceOwner     = "owner"
	SourceOrg       = "org"
	SourceSystem    = "system"
	SourceCache     = "cache"
	SourceAuthority = "authority"
	SourceFailOpen  = "fail-open"
)

// Canonical reason strings for denials and outages.
const (
	ReasonOrgMismatch          = "org mismatch"
	ReasonNotBucketOwner       = "not bucket owner"
	ReasonPermissionDenied     = "permission denied"
	ReasonAuthorityUnavailable = "authorization service unavailable"
)

// Decision is the outcome of a single CheckAccess call.
type Decision struct {
	Outcome Outcome
	Reason  string
	Source  string
}

func Granted(source string) Decision {
	return Decision{Outcome: OutcomeGranted, Source: source}
}

func Denied(reason, source string) Decision {
	return Decision{Outcome: OutcomeDenied, Reason: reason, Source: source}
}

func Unavailable(reason string) Decision {
	return Decision{Outcome: OutcomeUnavailable, Reason: reason}
}

// Allowed reports whether the decision permits the operation to proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeGranted
}
