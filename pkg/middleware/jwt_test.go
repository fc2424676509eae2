package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leetgym/api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer() *security.TokenIssuer {
	return security.NewTokenIssuer("0123456789abcdef0123456789abcdef", "leetgym", "leetgym")
}

func run(h gin.HandlerFunc, authorization string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)

	var userID string
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", h, func(c *gin.Context) {
		userID = c.GetString("userID")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w, userID
}

func TestJWTMiddleware(t *testing.T) {
	issuer := newIssuer()
	mw := NewJWTMiddleware(issuer)

	token, err := issuer.Issue("user1", "a@b.co")
	require.NoError(t, err)

	w, userID := run(mw, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user1", userID)

	expired, err := issuer.
		WithClock(func() time.Time { return time.Now().Add(-30 * 24 * time.Hour) }).
		Issue("user1", "a@b.co")
	require.NoError(t, err)

	for _, h := range []string{"", "Bearer", "Bearer ", "Basic " + token, token, "Bearer " + expired, "Bearer x.y.z"} {
		w, userID := run(mw, h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, h)
		assert.JSONEq(t, `{"error":"Unauthorized","requestID":"`+w.Header().Get(RequestIDHeader)+`"}`, w.Body.String())
		assert.Empty(t, userID)
	}
}

func TestOptionalJWTMiddleware(t *testing.T) {
	issuer := newIssuer()
	mw := NewOptionalJWTMiddleware(issuer)

	token, err := issuer.Issue("user1", "a@b.co")
	require.NoError(t, err)

	w, userID := run(mw, "Bearer "+token)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user1", userID)

	w, userID = run(mw, "Bearer nonsense")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, userID)

	w, userID = run(mw, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, userID)
}

func TestRateLimiterMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
