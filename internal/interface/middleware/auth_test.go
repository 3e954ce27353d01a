package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/postboard/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

type envelope struct {
	Status  int    `json:"status"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newAuthEngine(tokens TokenVerifier, called *bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/protected", Auth(tokens), func(c *gin.Context) {
		*called = true
		c.String(http.StatusOK, UserID(c))
	})
	return r
}

func TestAuth_AcceptsTokenSources(t *testing.T) {
	jwt := helpers.NewJWTManager(helpers.TokenConfig{Secret: "s", TTL: time.Hour})
	tok, _, err := jwt.Issue("user-1")
	require.NoError(t, err)

	tests := []struct {
		name  string
		setup func(r *http.Request)
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+tok) }},
		{"x-auth-token header", func(r *http.Request) { r.Header.Set("x-auth-token", tok) }},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: helpers.AccessTokenCookie, Value: tok}) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			r := newAuthEngine(jwt, &called)
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.True(t, called)
			assert.Equal(t, "user-1", w.Body.String())
		})
	}
}

func TestAuth_MissingToken(t *testing.T) {
	called := false
	r := newAuthEngine(helpers.NewJWTManager(helpers.TokenConfig{Secret: "s", TTL: time.Hour}), &called)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "MISSING_TOKEN", body.Code)
	assert.False(t, body.Success)
}

// spyVerifier wraps a verifier and counts calls.
type spyVerifier struct {
	next  TokenVerifier
	calls int
}

func (s *spyVerifier) Verify(token string) (*helpers.Claims, error) {
	s.calls++
	return s.next.Verify(token)
}

func TestAuth_ExpiredTokenStopsChain(t *testing.T) {
	expired := helpers.NewJWTManager(helpers.TokenConfig{Secret: "s", TTL: -time.Minute})
	tok, _, err := expired.Issue("user-1")
	require.NoError(t, err)

	spy := &spyVerifier{next: helpers.NewJWTManager(helpers.TokenConfig{Secret: "s", TTL: time.Hour})}
	called := false
	r := newAuthEngine(spy, &called)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 1, spy.calls)
	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_TOKEN", body.Code)
	assert.Equal(t, "token is not valid", body.Message)
}

func TestAuth_WrongSecret(t *testing.T) {
	other := helpers.NewJWTManager(helpers.TokenConfig{Secret: "other", TTL: time.Hour})
	tok, _, err := other.Issue("user-1")
	require.NoError(t, err)

	called := false
	r := newAuthEngine(helpers.NewJWTManager(helpers.TokenConfig{Secret: "s", TTL: time.Hour}), &called)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("x-auth-token", tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, called)
}
