// api/authz/bucket.go
package authz

import (
	"fmt"
	"regexp"

	prism_errors "github.com/prismworks/prism/api/errors"
)

// BucketKind classifies a bucket identifier. The set is closed; the
// orchestrator switches exhaustively over it.
type BucketKind int

const (
	BucketGroup BucketKind = iota
	BucketUser
	BucketSystem
)

func (k BucketKind) String() string {
	switch k {
	case BucketGroup:
		return "group"
	case BucketUser:
		return "user"
	case BucketSystem:
		return "system"
	default:
		return "unknown"
	}
}

// DefaultOrgID is the organization assigned to unrecognized bucket strings
// when strict validation is disabled. Compatibility shim for pre-org bucket
// names; scheduled for removal once legacy callers are migrated.
const DefaultOrgID = "default-org"

// BucketDescriptor is the parsed, validated form of a bucket string.
// ResourceID holds the group ID for group buckets and the owner user ID for
// user buckets; it is empty exactly when Kind is BucketSystem.
type BucketDescriptor struct {
	Kind       BucketKind
	OrgID      string
	ResourceID string
	// Raw keeps the original input for logging and error messages.
	Raw string
}

// Recognized bucket shapes, most specific first. IDs are limited to
// [a-zA-Z0-9_-]+ so an empty segment never matches.
var (
	reOrgGroup  = regexp.MustCompile(`^org-([a-zA-Z0-9_-]+)/groups/([a-zA-Z0-9_-]+)/?$`)
	reOrgUser   = regexp.MustCompile(`^org-([a-zA-Z0-9_-]+)/users/([a-zA-Z0-9_-]+)/?$`)
	reOrgSystem = regexp.MustCompile(`^org-([a-zA-Z0-9_-]+)/system/?$`)
	reGroup     = regexp.MustCompile(`^groups/([a-zA-Z0-9_-]+)/?$`)
	reUser      = regexp.MustCompile(`^users/([a-zA-Z0-9_-]+)/?$`)
	reSystem    = regexp.MustCompile(`^system/?$`)
)

// BucketResolver parses bucket strings. It is stateless and performs no I/O.
type BucketResolver struct {
	strict bool
}

func NewBucketResolver(strict bool) *BucketResolver {
	return &BucketResolver{strict: strict}
}

// Parse classifies a bucket string into a BucketDescriptor. The six shapes
// are checked in priority order and the first match wins. An unrecognized
// string fails with ErrInvalidBucketFormat in strict mode and degrades to a
// system bucket under DefaultOrgID otherwise.
func (r *BucketResolver) Parse(bucket string) (BucketDescriptor, error) {
	if m := reOrgGroup.FindStringSubmatch(bucket); m != nil {
		return BucketDescriptor{Kind: BucketGroup, OrgID: m[1], ResourceID: m[2], Raw: bucket}, nil
	}
	if m := reOrgUser.FindStringSubmatch(bucket); m != nil {
		return BucketDescriptor{Kind: BucketUser, OrgID: m[1], ResourceID: m[2], Raw: bucket}, nil
	}
	if m := reOrgSystem.FindStringSubmatch(bucket); m != nil {
		return BucketDescriptor{Kind: BucketSystem, OrgID: m[1], Raw: bucket}, nil
	}
	if m := reGroup.FindStringSubmatch(bucket); m != nil {
		return BucketDescriptor{Kind: BucketGroup, ResourceID: m[1], Raw: bucket}, nil
	}
	if m := reUser.FindStringSubmatch(bucket); m != nil {
		return BucketDescriptor{Kind: BucketUser, ResourceID: m[1], Raw: bucket}, nil
	}
	if reSystem.MatchString(bucket) {
		return BucketDescriptor{Kind: BucketSystem, Raw: bucket}, nil
	}

	if r.strict {
		return BucketDescriptor{}, fmt.Errorf(
			"%w: %q does not match org-{org}/groups/{group}, org-{org}/users/{user}, org-{org}/system, groups/{group}, users/{user}, or system",
			prism_errors.ErrInvalidBucketFormat, bucket)
	}
	return BucketDescriptor{Kind: BucketSystem, OrgID: DefaultOrgID, Raw: bucket}, nil
}
