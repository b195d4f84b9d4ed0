package jwt

import (
	"testing"
	"time"

	"github.com/smartextemp/extemp-backend/pkg/config"
	"github.com/smartextemp/extemp-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessExpiry time.Duration) *Manager {
	return NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  accessExpiry,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "extemp-test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair(&UserInfo{
		ID:       "u-1",
		Username: "jane",
		Name:     "Jane Doe",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)

	claims, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "jane", claims.Username)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "extemp-test", claims.Issuer)

	refresh, err := m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", refresh.UserID)
	assert.Equal(t, "jane", refresh.Username)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := newTestManager(-1 * time.Minute)

	pair, err := m.GenerateTokenPair(&UserInfo{ID: "u-1", Username: "jane", Role: "staff"})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, errors.ErrTokenExpired)
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	other := NewManager(&config.JWTConfig{
		Secret:        "different-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "extemp-test",
	})

	pair, err := m.GenerateTokenPair(&UserInfo{ID: "u-1", Username: "jane", Role: "staff"})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	_, err := m.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, errors.ErrTokenInvalid)
}

func TestValidateAccessToken_RefreshTokenRejected(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair(&UserInfo{ID: "u-1", Username: "jane", Role: "staff"})
	require.NoError(t, err)

	// a refresh token parses as Claims but carries no role
	claims, err := m.ValidateAccessToken(pair.RefreshToken)
	if err == nil {
		assert.Empty(t, claims.Role)
	}
}
