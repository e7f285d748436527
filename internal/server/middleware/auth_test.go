package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenValidator is a test implementation of TokenValidator for unit tests.
type testTokenValidator struct {
	validTokens map[string]string
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{validTokens: make(map[string]string)}
}

func (v *testTokenValidator) ValidateToken(tokenString string) (SubjectGetter, error) {
	subject, ok := v.validTokens[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return testClaims(subject), nil
}

type testClaims string

func (c testClaims) GetSubject() (string, error) {
	return string(c), nil
}

func serve(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, string, bool) {
	t.Helper()
	var subject string
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		subject, _ = GetSubject(r)
		w.WriteHeader(http.StatusOK)
	})

	w := httptest.NewRecorder()
	mw(handler).ServeHTTP(w, req)
	return w, subject, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["valid-token"] = "tpo@college.example"

	req := httptest.NewRequest(http.MethodPost, "/addCompany", nil)
	req.Header.Set("Authorization", "Bearer valid-token")

	w, subject, called := serve(t, AuthMiddleware(validator), req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tpo@college.example", subject)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["valid-token"] = "tpo"
	validator.validTokens["no-subject"] = ""

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"no token", "Bearer"},
		{"extra parts", "Bearer valid-token extra"},
		{"unknown token", "Bearer forged"},
		{"empty subject", "Bearer no-subject"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/scrapCompanyProfile?profileId=x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w, _, called := serve(t, AuthMiddleware(validator), req)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
		})
	}
}

func TestAuthMiddleware_CaseInsensitiveScheme(t *testing.T) {
	validator := newTestTokenValidator()
	validator.validTokens["tok"] = "tpo"

	req := httptest.NewRequest(http.MethodGet, "/companies", nil)
	req.Header.Set("Authorization", "bEaReR tok")

	w, _, called := serve(t, AuthMiddleware(validator), req)
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_PublicPathsAndPreflight(t *testing.T) {
	mw := AuthMiddleware(newTestTokenValidator(), "/health")

	w, subject, called := serve(t, mw, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, subject)

	_, _, called = serve(t, mw, httptest.NewRequest(http.MethodOptions, "/addCompany", nil))
	assert.True(t, called)
}

func TestGetSubject_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetSubject(req)
	require.Error(t, err)

	req = req.WithContext(context.WithValue(req.Context(), SubjectKey(), "tpo"))
	subject, err := GetSubject(req)
	require.NoError(t, err)
	assert.Equal(t, "tpo", subject)
}
