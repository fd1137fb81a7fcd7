package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret-key")

func testAdmin() Users {
	return Users{
		ID:    uuid.New(),
		Name:  "Root",
		Email: "root@example.com",
		Role:  RoleAdmin,
	}
}

func TestSignAndParseToken(t *testing.T) {
	t.Parallel()
	user := testAdmin()
	claims := BuildJWTClaims(user, 900)
	require.NotEmpty(t, claims.ID) // jti нужен для blacklist

	token, err := SignToken(claims, testSecret)
	require.NoError(t, err)

	parsed, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, parsed.UserID)
	require.Equal(t, RoleAdmin, parsed.Role)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestParseTokenWrongSecret(t *testing.T) {
	t.Parallel()
	token, err := SignToken(BuildJWTClaims(testAdmin(), 900), testSecret)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	t.Parallel()
	user := testAdmin()
	claims := BuildJWTClaims(user, 900)
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now.Add(-time.Hour))
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(-30 * time.Minute))

	token, err := SignToken(claims, testSecret)
	require.NoError(t, err)

	// Обычный парсинг отвергает просроченный токен
	_, err = ParseToken(token, testSecret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)

	// Refresh-парсинг принимает его, но проверяет подпись
	parsed, err := ParseExpiredToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, user.ID, parsed.UserID)

	_, err = ParseExpiredToken(token, []byte("other-secret"))
	require.Error(t, err)
}

func TestParseTokenRejectsUnsignedAlg(t *testing.T) {
	t.Parallel()
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, BuildJWTClaims(testAdmin(), 900))
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseToken(token, testSecret)
	require.Error(t, err)
	_, err = ParseExpiredToken(token, testSecret)
	require.Error(t, err)
}

func TestNormalizeClaimsFromSubject(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID.String(),
		"role": "employee",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	token, err := raw.SignedString(testSecret)
	require.NoError(t, err)

	parsed, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	require.Equal(t, userID, parsed.UserID)
	require.Equal(t, RoleEmployee, parsed.Role)
}
