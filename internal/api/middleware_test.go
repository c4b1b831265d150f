package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httptestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	s := newTestServer(t)
	adminToken, _ := s.register("Admin", "admin@test.dev")
	userToken, _ := s.register("User", "user@test.dev")

	rec := s.do(http.MethodPost, "/api/v1/admin/exercises/seed", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/admin/exercises/seed", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"seeded":false`)
}

func TestCronAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/v1/cron/tick", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(http.MethodPost, "/api/v1/cron/tick", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/v1/cron/tick", testCronSecret, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"daily"`)
}

func TestCronClosedWithoutSecret(t *testing.T) {
	s := newTestServer(t, func(c *RouterConfig) { c.CronSecret = "" })
	rec := s.do(http.MethodPost, "/api/v1/cron/tick", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, withRateLimiter(denyLimiter{}))

	rec := s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "a@test.dev", Password: "x"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "31", rec.Header().Get("Retry-After"))

	// Unlimited routes stay reachable.
	rec = s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/ping", "", nil)

	rec := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `getsfit_test_server_request{method="GET",status="200"}`)
}
