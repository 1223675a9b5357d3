package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
)

const testSecret = "test-jwt-secret"

func testUser(role domain.Role) *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Email: "user@test.com",
		Role:  role,
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	u := testUser(domain.RoleInvestor)

	token, err := GenerateToken(u, testSecret, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, u.Email, claims.Email)
	assert.Equal(t, domain.RoleInvestor, claims.Role)
}

func TestValidateToken(t *testing.T) {
	u := testUser(domain.RoleFounder)

	validToken, err := GenerateToken(u, testSecret, 24*time.Hour)
	require.NoError(t, err)

	expiredToken, err := GenerateToken(u, testSecret, -1*time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name      string
		token     string
		secret    string
		wantErrIs error
	}{
		{
			name:      "expired token",
			token:     expiredToken,
			secret:    testSecret,
			wantErrIs: jwt.ErrTokenExpired,
		},
		{
			name:      "wrong secret",
			token:     validToken,
			secret:    "wrong-secret",
			wantErrIs: jwt.ErrTokenSignatureInvalid,
		},
		{
			name:   "malformed token",
			token:  "not.a.valid.jwt",
			secret: testSecret,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateToken(tt.token, tt.secret)
			require.Error(t, err)
			if tt.wantErrIs != nil {
				assert.ErrorIs(t, err, tt.wantErrIs)
			}
		})
	}
}

func TestValidateToken_RejectsUnknownRole(t *testing.T) {
	u := testUser("superuser")

	token, err := GenerateToken(u, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}
