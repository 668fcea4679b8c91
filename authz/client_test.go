// api/authz/client_test.go
package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger "github.com/prismworks/prism/api/logging"
)

func TestAuthorityClientCheck(t *testing.T) {
	logger.InitLogger(t.TempDir())

	var gotPath string
	var gotBody authorityCheckRequest
	var status int
	var respBody string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(respBody))
	}))
	defer server.Close()

	client := NewAuthorityClient(server.URL, 2*time.Second)
	ctx := context.Background()

	t.Run("granted on 200", func(t *testing.T) {
		status, respBody = http.StatusOK, `{"allowed": true}`

		result := client.Check(ctx, "abc", "u1", "image:upload:group:xyz")

		assert.Equal(t, OutcomeGranted, result.Outcome)
		assert.Equal(t, "/api/v1/authorization/check", gotPath)
		assert.Equal(t, authorityCheckRequest{
			OrgID:      "abc",
			UserID:     "u1",
			Permission: "image:upload:group:xyz",
		}, gotBody)
	})

	t.Run("denied on 403 with reason", func(t *testing.T) {
		status, respBody = http.StatusForbidden, `{"reason": "not in group"}`

		result := client.Check(ctx, "abc", "u1", "image:upload:group:xyz")

		assert.Equal(t, OutcomeDenied, result.Outcome)
		assert.Equal(t, "not in group", result.Reason)
	})

	t.Run("denied on 403 without reason", func(t *testing.T) {
		status, respBody = http.StatusForbidden, `{}`

		result := client.Check(ctx, "abc", "u1", "image:upload:group:xyz")

		assert.Equal(t, OutcomeDenied, result.Outcome)
		assert.Equal(t, ReasonPermissionDenied, result.Reason)
	})

	t.Run("unavailable on 500", func(t *testing.T) {
		status, respBody = http.StatusInternalServerError, `boom`

		result := client.Check(ctx, "abc", "u1", "image:upload:group:xyz")

		assert.Equal(t, OutcomeUnavailable, result.Outcome)
		assert.Contains(t, result.Reason, "500")
	})

	t.Run("unavailable on 404", func(t *testing.T) {
		status, respBody = http.StatusNotFound, ``

		result := client.Check(ctx, "abc", "u1", "image:upload:group:xyz")

		assert.Equal(t, OutcomeUnavailable, result.Outcome)
	})
}

func TestAuthorityClientCheck_TransportFailure(t *testing.T) {
	logger.InitLogger(t.TempDir())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	client := NewAuthorityClient(server.URL, time.Second)
	result := client.Check(context.Background(), "abc", "u1", "image:upload")

	assert.Equal(t, OutcomeUnavailable, result.Outcome)
}

func TestAuthorityClientCheck_Timeout(t *testing.T) {
	logger.InitLogger(t.TempDir())

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client := NewAuthorityClient(server.URL, 50*time.Millisecond)
	result := client.Check(context.Background(), "abc", "u1", "image:upload")

	assert.Equal(t, OutcomeUnavailable, result.Outcome)
}
