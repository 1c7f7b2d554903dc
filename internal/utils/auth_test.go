package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Transporegistros/carga-colombia-track/internal/config"
)

func jwtConfig(secret string) *config.Config {
	return &config.Config{JWT: config.JWTConfig{Secret: secret, ExpirationHours: 1}}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("secreto123", hash))
	assert.False(t, CheckPasswordHash("otro", hash))
}

func TestJWTRoundTrip(t *testing.T) {
	cfg := jwtConfig("test-secret")
	userID := uuid.New()

	token, err := GenerateJWT(userID, "ana@flota.co", cfg)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, cfg)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "ana@flota.co", claims.Email)
	assert.NotEmpty(t, claims.ID, "every token carries a unique id for revocation")
}

func TestJWTUniqueIDs(t *testing.T) {
	cfg := jwtConfig("test-secret")
	userID := uuid.New()

	t1, err := GenerateJWT(userID, "ana@flota.co", cfg)
	require.NoError(t, err)
	t2, err := GenerateJWT(userID, "ana@flota.co", cfg)
	require.NoError(t, err)

	c1, err := ValidateJWT(t1, cfg)
	require.NoError(t, err)
	c2, err := ValidateJWT(t2, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT(uuid.New(), "ana@flota.co", jwtConfig("secret-a"))
	require.NoError(t, err)

	_, err = ValidateJWT(token, jwtConfig("secret-b"))
	assert.Error(t, err)
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ana@flota.co", NormalizeEmail("  Ana@Flota.CO "))
}

func TestNormalizePlaca(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizePlaca(" abc 123 "))
}

func TestGenerateResetCode(t *testing.T) {
	code := GenerateResetCode()
	assert.Len(t, code, 32)
	assert.NotEqual(t, code, GenerateResetCode())
}
