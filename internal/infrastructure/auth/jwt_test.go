package auth

import (
	"testing"
	"time"

	"github.com/erp/returns/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-at-least-32-chars",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "erp-backend",
	})
}

func signRaw(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestJWTService_PortalToken(t *testing.T) {
	svc := newTestService()
	input := TokenInput{
		TenantID:  uuid.New(),
		UserID:    uuid.New(),
		Username:  "portal-user",
		PartnerID: uuid.New(),
	}

	token, expiresAt, err := svc.GenerateAccessToken(input)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsPortalSession())

	ids, err := claims.IDs()
	require.NoError(t, err)
	assert.Equal(t, input.TenantID, ids.TenantID)
	assert.Equal(t, input.UserID, ids.UserID)
	assert.Equal(t, input.PartnerID, ids.PartnerID)
}

func TestJWTService_StaffToken(t *testing.T) {
	svc := newTestService()

	token, _, err := svc.GenerateAccessToken(TokenInput{
		TenantID:    uuid.New(),
		UserID:      uuid.New(),
		Permissions: []string{"return_order:confirm"},
	})
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsPortalSession())
	assert.True(t, claims.HasPermission("return_order:confirm"))
	assert.False(t, claims.HasPermission("return_order:cancel"))

	ids, err := claims.IDs()
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, ids.PartnerID)
}

func TestJWTService_ValidateAccessToken_Errors(t *testing.T) {
	svc := newTestService()
	now := time.Now()
	valid := func() *Claims {
		return &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "erp-backend",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
			TenantID:  uuid.NewString(),
			UserID:    uuid.NewString(),
			TokenType: TokenTypeAccess,
		}
	}

	tests := []struct {
		name   string
		token  func() string
		expect error
	}{
		{"garbage", func() string { return "not.a.token" }, ErrInvalidToken},
		{"wrong secret", func() string { return signRaw(t, valid(), "another-secret-another-secret-xx") }, ErrInvalidToken},
		{"wrong issuer", func() string {
			c := valid()
			c.Issuer = "someone-else"
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrInvalidToken},
		{"expired", func() string {
			c := valid()
			c.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrExpiredToken},
		{"not yet valid", func() string {
			c := valid()
			c.NotBefore = jwt.NewNumericDate(now.Add(time.Hour))
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrTokenNotYetValid},
		{"refresh token", func() string {
			c := valid()
			c.TokenType = "refresh"
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrInvalidTokenType},
		{"missing tenant", func() string {
			c := valid()
			c.TenantID = ""
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrMissingTenantID},
		{"missing user", func() string {
			c := valid()
			c.UserID = ""
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrMissingUserID},
		{"malformed partner", func() string {
			c := valid()
			c.PartnerID = "partner-7"
			return signRaw(t, c, "test-secret-key-that-is-at-least-32-chars")
		}, ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token())
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}
