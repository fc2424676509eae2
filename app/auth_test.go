package app

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"leetgym/api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(e *testEnv, email, password string) int {
	return e.do(http.MethodPost, "/api/auth", gin.H{
		"type":     "login",
		"email":    email,
		"password": password,
	}, "").Code
}

func TestSignupAndLogin(t *testing.T) {
	e := newTestEnv(t)

	id, token := e.signup("ada@example.com", "secret1")
	require.NotEmpty(t, id)

	claims, err := e.d.Tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)

	assert.Equal(t, http.StatusOK, login(e, "ada@example.com", "secret1"))
	assert.Equal(t, http.StatusUnauthorized, login(e, "ada@example.com", "secret2"))
	assert.Equal(t, http.StatusNotFound, login(e, "nobody@example.com", "secret1"))
}

func TestSignupDuplicate(t *testing.T) {
	e := newTestEnv(t)
	e.signup("ada@example.com", "secret1")

	w := e.do(http.MethodPost, "/api/auth", gin.H{
		"type":     "signup",
		"email":    "ada@example.com",
		"password": "another1",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists", errorOf(t, w))
}

func TestAuthValidation(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/auth", gin.H{
		"type":     "register",
		"email":    "not-an-email",
		"password": "123",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var b struct {
		Error   string              `json:"error"`
		Details map[string][]string `json:"details"`
	}
	decodeJSON(t, w, &b)

	assert.Equal(t, "Validation failed", b.Error)
	assert.Contains(t, b.Details, "type")
	assert.Contains(t, b.Details, "email")
	assert.Contains(t, b.Details, "password")

	w = e.do(http.MethodPost, "/api/auth", `{"type":`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON", errorOf(t, w))
}

func resetToken(t *testing.T, link string) string {
	t.Helper()

	_, token, found := strings.Cut(link, "/reset-password?token=")
	require.True(t, found, link)
	return token
}

func TestForgotPassword(t *testing.T) {
	e := newTestEnv(t)
	e.signup("ada@example.com", "secret1")

	w := e.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "nobody@example.com"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp struct {
		Message   string `json:"message"`
		ResetLink string `json:"resetLink"`
	}

	w = e.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.ResetLink, "http://localhost:3000/reset-password?token="), resp.ResetLink)

	w = e.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ada@example.com"}, "",
		header{"X-Forwarded-Proto", "https"})
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.ResetLink, "https://example.com/reset-password?token="), resp.ResetLink)

	e.d.PublicURL = "https://leetgym.app/"
	w = e.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &resp)
	assert.True(t, strings.HasPrefix(resp.ResetLink, "https://leetgym.app/reset-password?token="), resp.ResetLink)

	var n int64
	require.NoError(t, e.d.DB.Model(&model.PasswordResetToken{}).Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestResetPasswordIsSingleUse(t *testing.T) {
	e := newTestEnv(t)
	e.signup("ada@example.com", "secret1")

	w := e.do(http.MethodPost, "/api/auth/forgot-password", gin.H{"email": "ada@example.com"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		ResetLink string `json:"resetLink"`
	}
	decodeJSON(t, w, &resp)
	token := resetToken(t, resp.ResetLink)

	w = e.do(http.MethodPost, "/api/auth/reset-password", gin.H{"token": token, "newPassword": "brandnew"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, http.StatusOK, login(e, "ada@example.com", "brandnew"))
	assert.Equal(t, http.StatusUnauthorized, login(e, "ada@example.com", "secret1"))

	w = e.do(http.MethodPost, "/api/auth/reset-password", gin.H{"token": token, "newPassword": "again123"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusOK, login(e, "ada@example.com", "brandnew"))
}

func TestResetPasswordExpired(t *testing.T) {
	e := newTestEnv(t)
	e.signup("ada@example.com", "secret1")

	require.NoError(t, e.d.DB.Create(&model.PasswordResetToken{
		Email:     "ada@example.com",
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
	}).Error)

	w := e.do(http.MethodPost, "/api/auth/reset-password", gin.H{"token": "stale", "newPassword": "brandnew"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var n int64
	require.NoError(t, e.d.DB.Model(&model.PasswordResetToken{}).Where("token = ?", "stale").Count(&n).Error)
	assert.Zero(t, n)

	assert.Equal(t, http.StatusOK, login(e, "ada@example.com", "secret1"))
}

func TestResetPasswordUnknownToken(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/auth/reset-password", gin.H{"token": "nope", "newPassword": "brandnew"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	w := e.do(http.MethodPatch, "/api/auth/password", gin.H{"currentPassword": "secret1", "newPassword": "secret2"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = e.do(http.MethodPatch, "/api/auth/password", gin.H{"currentPassword": "wrong", "newPassword": "secret2"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(http.MethodPatch, "/api/auth/password", gin.H{"currentPassword": "secret1", "newPassword": "secret2"}, token)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusOK, login(e, "ada@example.com", "secret2"))
}
