package app

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeartbeat(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodHead, "/api/heartbeat", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"ok"}}`, w.Body.String())

	sqlDB, err := e.d.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	w = e.do(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	e := newTestEnv(t)
	e.do(http.MethodHead, "/api/heartbeat", nil, "")

	w := e.do(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "leetgym_http_request_duration_seconds")
}

func TestSecurityHeaders(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodHead, "/api/heartbeat", nil, "")
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestProblemFetchIsCached(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/problem/cached-problem", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"titleSlug":"cached-problem"`)

	w = e.do(http.MethodGet, "/api/problem/cached-problem", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), e.problemCalls.Load())
}

func TestProblemFetchErrors(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/problem/Not_A_Slug", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodGet, "/api/problem/missing-one", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBodyTooLarge(t *testing.T) {
	e := newTestEnv(t)

	big := make([]byte, maxBodySize+1)
	for i := range big {
		big[i] = 'a'
	}

	w := e.do(http.MethodPost, "/api/auth", `{"type":"login","email":"a@b.co","password":"`+string(big)+`"}`, "")
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
