package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eston/admissions/internal/app/models"
	"github.com/eston/admissions/internal/pkg/apperrors"
)

func newTestService(now time.Time) *JWTService {
	s := NewJWTService(JWTConfig{SecretKey: "test-secret", AccessTokenExp: 24 * time.Hour, TokenIssuer: "test"})
	s.now = func() time.Time { return now }
	return s
}

func testUser() *models.User {
	return &models.User{ID: 42, Email: "ama@example.com", Role: models.RoleStudent}
}

func TestGenerateAndValidateToken(t *testing.T) {
	now := time.Now()
	s := newTestService(now)

	token, expiresIn, err := s.GenerateAccessToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, int64(86400), expiresIn)

	claims, err := s.ValidateAndExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "ama@example.com", claims.Email)
	assert.Equal(t, "student", claims.Role)
	assert.Equal(t, "test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	issued := time.Now().Add(-48 * time.Hour)
	token, _, err := newTestService(issued).GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = newTestService(time.Now()).ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, err := newTestService(time.Now()).GenerateAccessToken(testUser())
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another-secret", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{UserID: 1, Email: "x@example.com", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestService(time.Now()).ValidateToken(token)
	assert.True(t, errors.Is(err, apperrors.ErrTokenInvalid))
}

func TestValidateAndExtractClaims_Empty(t *testing.T) {
	_, err := newTestService(time.Now()).ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{header: "Bearer abc.def", want: "abc.def"},
		{header: "bearer   abc.def  ", want: "abc.def"},
		{header: "Basic abc", wantErr: true},
		{header: "Bearer", wantErr: true},
		{header: "Bearer    ", wantErr: true},
		{header: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHashPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { BcryptCost = 12 })

	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.True(t, CheckPassword(hash, "admin123"))
	assert.False(t, CheckPassword(hash, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))

	again, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}
