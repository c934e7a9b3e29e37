package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"items-api/middleware"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func subjectEcho(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		_, _ = w.Write([]byte("anonymous"))
		return
	}
	_, _ = w.Write([]byte(claims.Subject))
}

func TestJWTAuth_Require(t *testing.T) {
	auth := middleware.NewJWTAuth(testSecret)
	h := auth.Require(http.HandlerFunc(subjectEcho))

	token, err := auth.Issue("user-1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing", "", http.StatusUnauthorized, `"Access token required"`},
		{"malformed", "Token " + token, http.StatusUnauthorized, `"Access token required"`},
		{"garbage", "Bearer nope", http.StatusUnauthorized, `"Invalid token"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	other := middleware.NewJWTAuth("another-secret-another-secret-xx")
	token, err := other.Issue("user-1", time.Hour)
	require.NoError(t, err)

	_, err = middleware.NewJWTAuth(testSecret).Validate(token)
	assert.Error(t, err)
}

func TestJWTAuth_Expired(t *testing.T) {
	auth := middleware.NewJWTAuth(testSecret)
	token, err := auth.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	auth.Require(http.HandlerFunc(subjectEcho)).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Token expired")
}

func TestJWTAuth_Optional(t *testing.T) {
	auth := middleware.NewJWTAuth(testSecret)
	h := auth.Optional(http.HandlerFunc(subjectEcho))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "anonymous", rr.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "anonymous", rr.Body.String())
}

func TestAPIKeyAuth(t *testing.T) {
	h := middleware.APIKeyAuth("secret-key")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid API key")

	req.Header.Set("X-API-Key", "secret-key")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
}
