package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/placement-portal/internal/config"
	"github.com/jonathan/placement-portal/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-cli")
	t.Setenv("JWT_ISSUER", "")
	t.Setenv("JWT_EXPIRATION_HOURS", "")

	var out bytes.Buffer
	require.NoError(t, mintToken(&out, "tpo@college.edu"))

	cfg, err := config.NewJWTConfig()
	require.NoError(t, err)
	claims, err := server.NewJWTService(cfg).ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "tpo@college.edu", claims.Subject)
	assert.Equal(t, config.DefaultJWTIssuer, claims.Issuer)
}

func TestMintToken_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	var out bytes.Buffer
	err := mintToken(&out, "tpo@college.edu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Empty(t, out.String())
}

func TestMintToken_EmptySubject(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-for-cli")

	var out bytes.Buffer
	err := mintToken(&out, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject is required")
}
