package server

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonathan/placement-portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T, expirationHours int) *JWTService {
	return NewJWTService(&config.JWTConfig{
		Secret:          testJWTSecret,
		Issuer:          config.DefaultJWTIssuer,
		ExpirationHours: expirationHours,
	})
}

func TestJWTService_GenerateToken(t *testing.T) {
	service := setupTestJWTService(t, 24)

	token, err := service.GenerateToken("tpo@college.example")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3, "JWT should have 3 parts separated by dots")

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "tpo@college.example", claims.Subject)
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "tpo@college.example", subject)
}

func TestJWTService_GenerateToken_RequiresSubject(t *testing.T) {
	_, err := setupTestJWTService(t, 24).GenerateToken("")
	assert.Error(t, err)
}

func TestJWTService_Expiration(t *testing.T) {
	service := setupTestJWTService(t, 2)

	token, err := service.GenerateToken("tpo")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestJWTService_ValidateToken_Rejects(t *testing.T) {
	service := setupTestJWTService(t, 24)
	now := time.Now()

	sign := func(method jwt.SigningMethod, key any, claims jwt.Claims) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	expired := sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "tpo",
		Issuer:    config.DefaultJWTIssuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
	}})
	wrongKey := sign(jwt.SigningMethodHS256, []byte("another-secret"), &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "tpo",
		Issuer:  config.DefaultJWTIssuer,
	}})
	wrongIssuer := sign(jwt.SigningMethodHS256, []byte(testJWTSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "tpo",
		Issuer:  "someone-else",
	}})
	wrongAlg := sign(jwt.SigningMethodHS512, []byte(testJWTSecret), &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "tpo",
		Issuer:  config.DefaultJWTIssuer,
	}})

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"empty", "", "token string is empty"},
		{"malformed", "not.a.jwt", "malformed token"},
		{"expired", expired, "token expired"},
		{"wrong key", wrongKey, "invalid token signature"},
		{"wrong issuer", wrongIssuer, "failed to parse token"},
		{"wrong algorithm", wrongAlg, "invalid token signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Nil(t, claims)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTService_AsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t, 24)
	token, err := service.GenerateToken("tpo")
	require.NoError(t, err)

	getter, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	subject, err := getter.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "tpo", subject)
}
