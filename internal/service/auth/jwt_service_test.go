package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/wordeck-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret-that-is-long-enough-for-testing"
	wrongSecret = "wrong-secret-that-is-long-enough-for-testing"
)

func newTestService(t *testing.T, secret, issuer string, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(config.AuthConfig{JWTSecret: secret, Issuer: issuer})
	require.NoError(t, err)
	impl := svc.(*hmacJWTService)
	impl.timeFunc = func() time.Time { return now }
	return impl
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.New()
	svc := newTestService(t, testSecret, "wordeck", fixedTime)

	token, err := svc.GenerateToken(context.Background(), ownerID, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ownerID, claims.OwnerID)
	assert.Equal(t, ownerID.String(), claims.Subject)
	assert.Equal(t, "wordeck", claims.Issuer)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Errors(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	ownerID := uuid.New()

	sign := func(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name:    "empty token",
			token:   func(t *testing.T) string { return "" },
			wantErr: ErrMissingToken,
		},
		{
			name:    "malformed token",
			token:   func(t *testing.T) string { return "this.is.not.a.valid.jwt.token" },
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				gen := newTestService(t, testSecret, "wordeck", fixedTime.Add(-3*time.Hour))
				tok, err := gen.GenerateToken(context.Background(), ownerID, time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				return sign(t, jwtCustomClaims{
					OwnerID: ownerID,
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "wordeck",
						NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "wrong signature",
			token: func(t *testing.T) string {
				gen := newTestService(t, wrongSecret, "wordeck", fixedTime)
				tok, err := gen.GenerateToken(context.Background(), ownerID, time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				gen := newTestService(t, testSecret, "someone-else", fixedTime)
				tok, err := gen.GenerateToken(context.Background(), ownerID, time.Hour)
				require.NoError(t, err)
				return tok
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			token: func(t *testing.T) string {
				return sign(t, jwtCustomClaims{
					OwnerID: ownerID,
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "wordeck",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS512, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing expiry",
			token: func(t *testing.T) string {
				return sign(t, jwtCustomClaims{
					OwnerID:          ownerID,
					RegisteredClaims: jwt.RegisteredClaims{Issuer: "wordeck"},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "missing uid",
			token: func(t *testing.T) string {
				return sign(t, jwtCustomClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "wordeck",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrMissingOwner,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc := newTestService(t, testSecret, "wordeck", fixedTime)
			claims, err := svc.ValidateToken(context.Background(), tc.token(t))
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, claims)
		})
	}
}

func TestNewJWTService_ShortSecret(t *testing.T) {
	t.Parallel()
	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short"})
	assert.Error(t, err)
}
