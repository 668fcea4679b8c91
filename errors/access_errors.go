package errors

import "errors"

var (
	ErrInvalidBucketFormat = errors.New("invalid bucket format")
	ErrOrgMismatch         = errors.New("org mismatch")
	ErrNotBucketOwner      = errors.New("not bucket owner")
	ErrPermissionDenied    = errors.New("permission denied")

	// ErrAuthorityUnavailable covers both an open circuit breaker and a
	// failed call to the permission authority. It is a transient condition,
	// unlike the denials above.
	ErrAuthorityUnavailable = errors.New("authorization service unavailable")

	ErrMissingIdentity = errors.New("missing caller identity")
	ErrInvalidRequest  = errors.New("invalid request data")
	ErrInternalServer  = errors.New("internal server error")
)
