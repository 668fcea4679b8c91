// api/authz/bucket_test.go
package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	prism_errors "github.com/prismworks/prism/api/errors"
)

func TestBucketResolverParse(t *testing.T) {
	resolver := NewBucketResolver(true)

	tests := []struct {
		name       string
		bucket     string
		kind       BucketKind
		orgID      string
		resourceID string
	}{
		{"org group", "org-abc/groups/xyz/", BucketGroup, "abc", "xyz"},
		{"org group no trailing slash", "org-abc/groups/xyz", BucketGroup, "abc", "xyz"},
		{"org user", "org-abc/users/u1/", BucketUser, "abc", "u1"},
		{"org system", "org-abc/system/", BucketSystem, "abc", ""},
		{"bare group", "groups/team-42/", BucketGroup, "", "team-42"},
		{"bare user", "users/u_7/", BucketUser, "", "u_7"},
		{"bare system with slash", "system/", BucketSystem, "", ""},
		{"bare system", "system", BucketSystem, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			descriptor, err := resolver.Parse(tt.bucket)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, descriptor.Kind)
			assert.Equal(t, tt.orgID, descriptor.OrgID)
			assert.Equal(t, tt.resourceID, descriptor.ResourceID)
			assert.Equal(t, tt.bucket, descriptor.Raw)
		})
	}
}

func TestBucketResolverParse_InvalidStrict(t *testing.T) {
	resolver := NewBucketResolver(true)

	invalid := []string{
		"",
		"org-/groups/xyz/",
		"org-abc/groups//",
		"org-abc/groups/x y/",
		"org-abc/things/xyz/",
		"buckets/abc/",
		"org-abc",
		"groups/",
		"users/",
		"system/extra/",
		"org-abc/groups/xyz/deeper/",
	}

	for _, bucket := range invalid {
		t.Run("invalid "+bucket, func(t *testing.T) {
			_, err := resolver.Parse(bucket)
			require.Error(t, err)
			assert.ErrorIs(t, err, prism_errors.ErrInvalidBucketFormat)
		})
	}
}

func TestBucketResolverParse_LenientFallback(t *testing.T) {
	resolver := NewBucketResolver(false)

	descriptor, err := resolver.Parse("legacy-bucket-name")
	require.NoError(t, err)
	assert.Equal(t, BucketSystem, descriptor.Kind)
	assert.Equal(t, DefaultOrgID, descriptor.OrgID)
	assert.Empty(t, descriptor.ResourceID)
	assert.Equal(t, "legacy-bucket-name", descriptor.Raw)

	// Recognized shapes still parse normally in lenient mode.
	descriptor, err = resolver.Parse("org-abc/groups/xyz/")
	require.NoError(t, err)
	assert.Equal(t, BucketGroup, descriptor.Kind)
	assert.Equal(t, "abc", descriptor.OrgID)
}

func TestBucketKindString(t *testing.T) {
	assert.Equal(t, "group", BucketGroup.String())
	assert.Equal(t, "user", BucketUser.String())
	assert.Equal(t, "system", BucketSystem.String())
}
