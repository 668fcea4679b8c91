// api/controller/health_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/prismworks/prism/api/authz"
	"github.com/prismworks/prism/api/config"
	"github.com/prismworks/prism/api/controller"
	logger "github.com/prismworks/prism/api/logging"
	service_mock "github.com/prismworks/prism/api/test/mock"
)

func setupHealthRouter(accessService *service_mock.MockAccessService, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/")
	controller.NewHealthController(accessService, rdb).RegisterRoutes(api)
	return r
}

func getAuthHealth(t *testing.T, router *gin.Engine) map[string]interface{} {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health/auth", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthControllerHealth(t *testing.T) {
	logger.InitLogger(t.TempDir())
	require.NoError(t, config.InitConfig())

	router := setupHealthRouter(new(service_mock.MockAccessService), nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestHealthControllerAuthHealth(t *testing.T) {
	logger.InitLogger(t.TempDir())
	require.NoError(t, config.InitConfig())

	t.Run("healthy when redis is up and breaker closed", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		mockAccess := new(service_mock.MockAccessService)
		mockAccess.On("BreakerStatus", mock.Anything).
			Return(authz.BreakerStatus{State: authz.StateClosed}, nil)
		router := setupHealthRouter(mockAccess, rdb)

		body := getAuthHealth(t, router)
		assert.Equal(t, "healthy", body["status"])

		cache, ok := body["cache"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "healthy", cache["redis_connection"])
	})

	t.Run("degraded when redis is down", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()
		mr.Close()

		mockAccess := new(service_mock.MockAccessService)
		mockAccess.On("BreakerStatus", mock.Anything).
			Return(authz.BreakerStatus{State: authz.StateClosed}, nil)
		router := setupHealthRouter(mockAccess, rdb)

		body := getAuthHealth(t, router)
		assert.Equal(t, "degraded", body["status"])

		cache, ok := body["cache"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "down", cache["redis_connection"])
		assert.NotEmpty(t, cache["redis_error"])
	})

	t.Run("degraded when breaker is open", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		mockAccess := new(service_mock.MockAccessService)
		mockAccess.On("BreakerStatus", mock.Anything).
			Return(authz.BreakerStatus{State: authz.StateOpen, Failures: 6}, nil)
		router := setupHealthRouter(mockAccess, rdb)

		body := getAuthHealth(t, router)
		assert.Equal(t, "degraded", body["status"])

		authAPI, ok := body["auth_api"].(map[string]interface{})
		require.True(t, ok)
		breaker, ok := authAPI["circuit_breaker"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, authz.StateOpen, breaker["state"])
		assert.Equal(t, float64(6), breaker["failures"])
	})

	t.Run("store read failure reports the breaker as closed", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		mockAccess := new(service_mock.MockAccessService)
		mockAccess.On("BreakerStatus", mock.Anything).
			Return(authz.BreakerStatus{}, assert.AnError)
		router := setupHealthRouter(mockAccess, rdb)

		body := getAuthHealth(t, router)
		assert.Equal(t, "healthy", body["status"])
	})
}
