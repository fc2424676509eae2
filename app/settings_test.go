package app

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settingsView struct {
	PreferredLanguage string  `json:"preferredLanguage"`
	APIKey            *string `json:"apiKey"`
	APIKeySet         bool    `json:"apiKeySet"`
	QuickPrompts      []struct {
		Label string `json:"label"`
		Text  string `json:"text"`
	} `json:"quickPrompts"`
}

func (e *testEnv) settings(token string) settingsView {
	e.t.Helper()

	w := e.do(http.MethodGet, "/api/settings", nil, token)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var s settingsView
	decodeJSON(e.t, w, &s)
	return s
}

func (e *testEnv) patchSettings(token string, body any) string {
	e.t.Helper()

	w := e.do(http.MethodPatch, "/api/settings", body, token)
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string `json:"message"`
	}
	decodeJSON(e.t, w, &resp)
	return resp.Message
}

func TestSettingsDefaults(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	w := e.do(http.MethodGet, "/api/settings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"preferredLanguage":"cpp","apiKey":null,"apiKeySet":false,"quickPrompts":[]}`, w.Body.String())
}

func TestSettingsAPIKeyLifecycle(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	assert.Equal(t, "Settings updated", e.patchSettings(token, gin.H{"apiKey": "  gsk_abcdefghijkl  "}))

	s := e.settings(token)
	require.NotNil(t, s.APIKey)
	assert.Equal(t, "gsk_ab••••ijkl", *s.APIKey)
	assert.True(t, s.APIKeySet)

	// Updating something else leaves the key alone
	e.patchSettings(token, gin.H{"preferredLanguage": "go"})
	s = e.settings(token)
	assert.True(t, s.APIKeySet)
	assert.Equal(t, "go", s.PreferredLanguage)

	e.patchSettings(token, `{"apiKey":null}`)
	s = e.settings(token)
	assert.Nil(t, s.APIKey)
	assert.False(t, s.APIKeySet)

	e.patchSettings(token, gin.H{"apiKey": "gsk_abcdefghijkl"})
	e.patchSettings(token, gin.H{"apiKey": "   "})
	assert.False(t, e.settings(token).APIKeySet)
}

func TestSettingsQuickPrompts(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	e.patchSettings(token, gin.H{"quickPrompts": []gin.H{
		{"label": "Hint", "text": "Give me a hint"},
		{"label": "Complexity", "text": "What's the complexity?"},
	}})

	s := e.settings(token)
	require.Len(t, s.QuickPrompts, 2)
	assert.Equal(t, "Hint", s.QuickPrompts[0].Label)
	assert.Equal(t, "Complexity", s.QuickPrompts[1].Label)

	e.patchSettings(token, gin.H{"quickPrompts": []gin.H{}})
	assert.Empty(t, e.settings(token).QuickPrompts)

	w := e.do(http.MethodPatch, "/api/settings", gin.H{"quickPrompts": []gin.H{{"label": "No text"}}}, token)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var b struct {
		Details map[string][]string `json:"details"`
	}
	decodeJSON(t, w, &b)
	assert.Contains(t, b.Details, "quickPrompts[0].text")
}

func TestSettingsNoChanges(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	assert.Equal(t, "No changes", e.patchSettings(token, gin.H{}))
	assert.Equal(t, "No changes", e.patchSettings(token, gin.H{"theme": "dark"}))
}

func TestSettingsRequireAuth(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/api/settings", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodPatch, "/api/settings", gin.H{}, "").Code)
}
