package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatBody(apiKey string) gin.H {
	b := gin.H{
		"messages":       []gin.H{{"role": "user", "content": "where do I start?"}},
		"problemContext": gin.H{"title": "Two Sum", "difficulty": "Easy", "description": "Find two numbers"},
	}
	if apiKey != "" {
		b["userApiKey"] = apiKey
	}

	return b
}

func TestChatStreamsPlainText(t *testing.T) {
	e := newTestEnv(t)

	var auth string
	e.setLLM(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		streamText(w, "Try ", "a hash ", "map")
	})

	w := e.do(http.MethodPost, "/api/chat", chatBody(""), "")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "Try a hash map", w.Body.String())
	assert.Equal(t, "Bearer shared-key", auth)
	assert.True(t, w.Flushed)
}

func TestChatQuotaForAnonymousCallers(t *testing.T) {
	e := newTestEnv(t)
	xff := header{"X-Forwarded-For", "203.0.113.7, 10.0.0.1"}

	for i := 1; i <= 10; i++ {
		w := e.do(http.MethodPost, "/api/chat", chatBody(""), "", xff)
		require.Equal(t, http.StatusOK, w.Code, "call %d", i)
	}

	w := e.do(http.MethodPost, "/api/chat", chatBody(""), "", xff)
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	var b struct {
		Error        string `json:"error"`
		IsQuotaError bool   `json:"isQuotaError"`
	}
	decodeJSON(t, w, &b)
	assert.True(t, b.IsQuotaError)
	assert.Equal(t, "Daily limit reached (10/10). Add your own API key in settings!", b.Error)
	assert.Equal(t, int64(10), e.llmCalls.Load())

	// A personal key skips the quota entirely
	w = e.do(http.MethodPost, "/api/chat", chatBody("gsk_personal"), "", xff)
	assert.Equal(t, http.StatusOK, w.Code)

	// A different address has its own allowance
	w = e.do(http.MethodPost, "/api/chat", chatBody(""), "", header{"X-Forwarded-For", "198.51.100.1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatQuotaFollowsTheUser(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.signup("ada@example.com", "secret1")

	for i := range 10 {
		// The address changes every call, the user doesn't
		w := e.do(http.MethodPost, "/api/chat", chatBody(""), token, header{"X-Forwarded-For", fmt.Sprintf("10.0.0.%d", i)})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := e.do(http.MethodPost, "/api/chat", chatBody(""), token, header{"X-Forwarded-For", "10.0.1.1"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// Anonymous callers from a fresh address are unaffected
	w = e.do(http.MethodPost, "/api/chat", chatBody(""), "", header{"X-Forwarded-For", "10.0.1.1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatInvalidPersonalKey(t *testing.T) {
	e := newTestEnv(t)
	e.setLLM(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`)
	})

	w := e.do(http.MethodPost, "/api/chat", chatBody("gsk_wrong"), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid API Key provided.", errorOf(t, w))
}

func TestChatUpstreamFailure(t *testing.T) {
	e := newTestEnv(t)
	e.setLLM(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	w := e.do(http.MethodPost, "/api/chat", chatBody(""), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Server error", errorOf(t, w))
	assert.NotContains(t, w.Body.String(), "exploded")
}

func TestChatValidation(t *testing.T) {
	e := newTestEnv(t)

	bodies := []gin.H{
		{"messages": []gin.H{}, "problemContext": gin.H{"title": "x"}},
		{"messages": []gin.H{{"role": "robot", "content": "hi"}}, "problemContext": gin.H{"title": "x"}},
		{"messages": []gin.H{{"role": "user", "content": "hi"}}},
	}

	for i, b := range bodies {
		w := e.do(http.MethodPost, "/api/chat", b, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %d", i)
	}

	assert.Zero(t, e.llmCalls.Load())
}

func TestGenerateNotes(t *testing.T) {
	e := newTestEnv(t)

	var req struct {
		Messages []struct {
			Content string `json:"content"`
		} `json:"messages"`
	}
	e.setLLM(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&req)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(gin.H{
			"choices": []gin.H{{
				"index": 0,
				"message": gin.H{
					"role":    "assistant",
					"content": `{"category":"Hash Map","approach":"complements","complexity":"Time: O(n), Space: O(n)","codeSnippet":"seen[x]=i","optimalSolution":"func twoSum() {}"}`,
				},
			}},
		})
	})

	body := chatBody("")
	body["language"] = "golang"

	w := e.do(http.MethodPost, "/api/generate-notes", body, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var notes struct {
		Category        string `json:"category"`
		OptimalSolution string `json:"optimalSolution"`
	}
	decodeJSON(t, w, &notes)
	assert.Equal(t, "Hash Map", notes.Category)
	assert.Equal(t, "func twoSum() {}", notes.OptimalSolution)

	require.NotEmpty(t, req.Messages)
	assert.Contains(t, req.Messages[len(req.Messages)-1].Content, "PREFERRED LANGUAGE: golang")
}

func TestGenerateNotesUnparseable(t *testing.T) {
	e := newTestEnv(t)
	e.setLLM(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"index":0,"message":{"role":"assistant","content":"no json here"}}]}`)
	})

	w := e.do(http.MethodPost, "/api/generate-notes", chatBody(""), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
