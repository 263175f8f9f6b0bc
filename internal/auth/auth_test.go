package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTokenFromHeader(t *testing.T) {
	tests := []struct {
		name        string
		authHeader  string
		errContains string
		wantToken   string
	}{
		{name: "empty header", authHeader: "", errContains: "authorization header is required"},
		{name: "no bearer prefix", authHeader: "token123", errContains: "must be Bearer token"},
		{name: "wrong prefix", authHeader: "Basic token123", errContains: "must be Bearer token"},
		{name: "bearer only", authHeader: "Bearer ", errContains: "must be Bearer token"},
		{name: "valid bearer token", authHeader: "Bearer mytoken123", wantToken: "mytoken123"},
		{name: "bearer mixed case", authHeader: "BEARER mytoken789", wantToken: "mytoken789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ExtractTokenFromHeader(tt.authHeader)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestGenerateToken(t *testing.T) {
	raw, configured, err := GenerateToken()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, TokenPrefix))
	assert.Len(t, raw, len(TokenPrefix)+64)
	assert.Equal(t, "sha256:"+HashToken(raw), configured)

	other, _, err := GenerateToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, other)
}

func TestTokenSet(t *testing.T) {
	set, err := NewTokenSet([]string{"alpha", " ", "sha256:" + strings.ToUpper(HashToken("beta"))})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	assert.True(t, set.Contains("alpha"))
	assert.True(t, set.Contains("beta"))
	assert.False(t, set.Contains("gamma"))
	assert.False(t, set.Contains(""))
	assert.False(t, set.Contains("sha256:"+HashToken("beta")), "digest itself is not a token")

	_, err = NewTokenSet([]string{"sha256:abc"})
	assert.Error(t, err)

	var empty *TokenSet
	assert.Zero(t, empty.Len())
	assert.False(t, empty.Contains("alpha"))
}

func TestMiddleware(t *testing.T) {
	set, err := NewTokenSet([]string{"secret"})
	require.NoError(t, err)

	var seen *Caller
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetCaller(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := Middleware(Options{Tokens: set, Public: []string{"/api/v1/health"}})(next)

	tests := []struct {
		name       string
		method     string
		path       string
		headers    map[string]string
		wantStatus int
		wantCaller bool
	}{
		{name: "public path", method: http.MethodGet, path: "/api/v1/health", wantStatus: http.StatusNoContent},
		{name: "preflight", method: http.MethodOptions, path: "/api/v1/cards", wantStatus: http.StatusNoContent},
		{name: "missing token", method: http.MethodGet, path: "/api/v1/cards", wantStatus: http.StatusUnauthorized},
		{name: "wrong token", method: http.MethodGet, path: "/api/v1/cards", headers: map[string]string{"Authorization": "Bearer nope"}, wantStatus: http.StatusUnauthorized},
		{
			name:       "bearer token",
			method:     http.MethodGet,
			path:       "/api/v1/cards",
			headers:    map[string]string{"Authorization": "Bearer secret", "X-Device-ID": "phone"},
			wantStatus: http.StatusNoContent,
			wantCaller: true,
		},
		{name: "api key header", method: http.MethodPost, path: "/api/v1/sync", headers: map[string]string{"X-API-Key": "secret"}, wantStatus: http.StatusNoContent, wantCaller: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCaller {
				require.NotNil(t, seen)
				assert.Equal(t, HashToken("secret"), seen.TokenHash)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestMiddleware_DenyHandler(t *testing.T) {
	set, err := NewTokenSet([]string{"secret"})
	require.NoError(t, err)

	var denied error
	h := Middleware(Options{
		Tokens: set,
		Deny: func(w http.ResponseWriter, _ *http.Request, err error) {
			denied = err
			w.WriteHeader(http.StatusTeapot)
		},
	})(http.NotFoundHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.ErrorIs(t, denied, ErrUnauthenticated)
}

func TestMiddleware_NoTokensDisablesCheck(t *testing.T) {
	h := Middleware(Options{})(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cards", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
