package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJWT_RoundTrip(t *testing.T) {
	key := []byte("test-secret")
	claims := UserClaims{ID: "user-1", Name: "Test", Email: "test@example.com", Role: "owner"}

	token, err := GenerateUserJWT(claims, time.Hour, key)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := ValidateUserJWT(token, key)
	require.NoError(t, err)
	assert.Equal(t, "user-1", got.ID)
	assert.Equal(t, "test@example.com", got.Email)
	assert.Equal(t, "owner", got.Role)
}

func TestValidateUserJWT_WrongKey(t *testing.T) {
	token, err := GenerateUserJWT(UserClaims{ID: "user-1"}, time.Hour, []byte("right-key"))
	require.NoError(t, err)

	_, err = ValidateUserJWT(token, []byte("wrong-key"))
	assert.Error(t, err)
}

func TestValidateUserJWT_Expired(t *testing.T) {
	token, err := GenerateUserJWT(UserClaims{ID: "user-1"}, -time.Minute, []byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateUserJWT(token, []byte("test-secret"))
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateUserJWT_Garbage(t *testing.T) {
	_, err := ValidateUserJWT("not-a-jwt", []byte("test-secret"))
	assert.Error(t, err)
}
