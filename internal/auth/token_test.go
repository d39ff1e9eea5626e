package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	s := NewTokenService("secret", time.Hour)
	token, expiresAt, err := s.Issue(domain.Account{Username: "admin", Roles: []domain.Role{domain.RoleAdmin}})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := s.Validate(token)
	require.NoError(t, err)

	p := claims.Principal()
	assert.Equal(t, "admin", p.Username)
	assert.True(t, p.HasRole(domain.RoleAdmin))
}

func TestValidate_WrongSecret(t *testing.T) {
	token, _, err := NewTokenService("one", time.Hour).Issue(domain.Account{Username: "u"})
	require.NoError(t, err)

	_, err = NewTokenService("two", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	s := NewTokenService("secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := s.Issue(domain.Account{Username: "u"})
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Minute).Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	claims := TokenClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u", Issuer: issuer}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenService("secret", time.Hour).Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Garbage(t *testing.T) {
	_, err := NewTokenService("secret", time.Hour).Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), domain.Principal{Username: "u"})
	p, ok := PrincipalFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u", p.Username)
}
