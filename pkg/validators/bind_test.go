package validators

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Label string `json:"label" binding:"required"`
}

type sample struct {
	Email string   `json:"email" binding:"required,email"`
	Kind  string   `json:"kind" binding:"required,oneof=a b"`
	Count int      `json:"count" binding:"min=1,max=3"`
	Items []nested `json:"items" binding:"omitempty,max=2,dive"`
}

type errorBody struct {
	Error   string              `json:"error"`
	Details map[string][]string `json:"details"`
}

func serve(t *testing.T, body string) (*httptest.ResponseRecorder, *sample) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got *sample
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		data, ok := Bind[sample](c)
		if !ok {
			return
		}
		got = data
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	return w, got
}

func decode(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var b errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func TestBindValid(t *testing.T) {
	w, got := serve(t, `{"email":"a@b.co","kind":"a","count":2}`)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Count)
}

func TestBindInvalidJSON(t *testing.T) {
	w, got := serve(t, `{"email":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, got)
	assert.Equal(t, "Invalid JSON", decode(t, w).Error)
}

func TestBindFieldDetails(t *testing.T) {
	w, _ := serve(t, `{"email":"nope","kind":"c","count":7,"items":[{"label":""}]}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	b := decode(t, w)
	assert.Equal(t, "Validation failed", b.Error)
	assert.Equal(t, []string{"must be a valid email"}, b.Details["email"])
	assert.Equal(t, []string{"must be one of: a, b"}, b.Details["kind"])
	assert.Equal(t, []string{"must be at most 3"}, b.Details["count"])
	assert.Equal(t, []string{"is required"}, b.Details["items[0].label"])
}

func TestBindTypeMismatch(t *testing.T) {
	w, _ := serve(t, `{"email":"a@b.co","kind":"a","count":"two"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	b := decode(t, w)
	assert.Equal(t, "Validation failed", b.Error)
	assert.Equal(t, []string{"must be of type integer"}, b.Details["count"])
}

func TestPasswordValidator(t *testing.T) {
	assert.ErrorIs(t, PasswordValidator(""), ErrPasswordEmpty)
	assert.ErrorIs(t, PasswordValidator("12345"), ErrPasswordTooShort)
	assert.ErrorIs(t, PasswordValidator(strings.Repeat("x", 256)), ErrPasswordTooLong)
	assert.NoError(t, PasswordValidator("123456"))
}

func TestEmailValidator(t *testing.T) {
	assert.ErrorIs(t, EmailValidator(" "), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("Bob <bob@x.io>"), ErrEmailInvalid)
	assert.NoError(t, EmailValidator("bob@x.io"))
}
