package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-srs/internal/config"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func TestNewJWTService(t *testing.T) {
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := 60 * time.Minute
	userID := uuid.New()
	svc := newHMACJWTService(testSecret, lifetime, func() time.Time { return fixedTime })

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "access", claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func signClaims(t *testing.T, secret string, claims jwtCustomClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newHMACJWTService(testSecret, time.Hour, func() time.Time { return fixedTime })

	registered := func(issued time.Time, ttl time.Duration) jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		}
	}

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:  "valid token",
			token: signClaims(t, testSecret, jwtCustomClaims{UserID: userID, TokenType: "access", RegisteredClaims: registered(fixedTime, time.Hour)}),
		},
		{
			name:    "expired token",
			token:   signClaims(t, testSecret, jwtCustomClaims{UserID: userID, TokenType: "access", RegisteredClaims: registered(fixedTime.Add(-3*time.Hour), time.Hour)}),
			wantErr: ErrExpiredToken,
		},
		{
			name:  "expired within clock skew",
			token: signClaims(t, testSecret, jwtCustomClaims{UserID: userID, TokenType: "access", RegisteredClaims: registered(fixedTime.Add(-61*time.Minute), time.Hour)}),
		},
		{
			name:    "wrong secret",
			token:   signClaims(t, "wrong-secret-that-is-long-enough-for-testing", jwtCustomClaims{UserID: userID, TokenType: "access", RegisteredClaims: registered(fixedTime, time.Hour)}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "refresh token",
			token:   signClaims(t, testSecret, jwtCustomClaims{UserID: userID, TokenType: "refresh", RegisteredClaims: registered(fixedTime, time.Hour)}),
			wantErr: ErrWrongTokenType,
		},
		{
			name:    "missing user id",
			token:   signClaims(t, testSecret, jwtCustomClaims{TokenType: "access", RegisteredClaims: registered(fixedTime, time.Hour)}),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   "not.a.jwt",
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: signClaims(t, testSecret, jwtCustomClaims{UserID: userID, TokenType: "access",
				RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(fixedTime)}}),
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := svc.ValidateToken(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	svc := newHMACJWTService(testSecret, time.Hour, time.Now)
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwtCustomClaims{
		UserID:    uuid.New(),
		TokenType: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
