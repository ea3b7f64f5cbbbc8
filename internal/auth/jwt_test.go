package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(userID, "staff@visaport.test", RoleStaff)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := svc.ValidateToken(pair.AccessToken, "access")
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, RoleStaff, claims.Role)

	// Tokens are not interchangeable across types.
	_, err = svc.ValidateToken(pair.RefreshToken, "access")
	assert.Error(t, err)

	fresh, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)
}

func TestValidateTokenRejectsForeignSecret(t *testing.T) {
	pair, err := NewJWTService("secret-a").GenerateTokenPair(uuid.New(), "a@b.c", RoleAdmin)
	require.NoError(t, err)

	_, err = NewJWTService("secret-b").ValidateToken(pair.AccessToken, "access")
	assert.Error(t, err)
}
