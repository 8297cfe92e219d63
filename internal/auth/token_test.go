package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeyFetcher struct {
	key *rsa.PrivateKey
	err error
}

func (f staticKeyFetcher) FetchPrivateKey() (*rsa.PrivateKey, error) {
	return f.key, f.err
}

func TestTokenIssuer_Issue(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	issuer := NewTokenIssuer(&TokenConfig{
		KeyFetcher: staticKeyFetcher{key: privateKey},
		Issuer:     "picking-api",
		Audience:   "warehouse-devices",
		TokenTTL:   8 * time.Hour,
	})

	user := &domain.User{ID: 7, Name: "Vasyl", Active: true, Language: "uk_UA"}

	signed, err := issuer.Issue(user, "device-1")
	require.NoError(t, err)

	token, err := jwt.ParseWithClaims(signed, &Claims{}, func(_ *jwt.Token) (any, error) {
		return &privateKey.PublicKey, nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(*Claims)
	require.True(t, ok)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "Vasyl", claims.Name)
	assert.Equal(t, "device-1", claims.DeviceID)
	assert.Equal(t, "uk_UA", claims.Language)
	assert.Equal(t, "picking-api", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"warehouse-devices"}, claims.Audience)

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 8*time.Hour, ttl)
}

func TestTokenIssuer_Issue_KeyUnavailable(t *testing.T) {
	issuer := NewTokenIssuer(&TokenConfig{
		KeyFetcher: staticKeyFetcher{err: errors.New("key is not found")},
		Issuer:     "picking-api",
		Audience:   "warehouse-devices",
		TokenTTL:   time.Hour,
	})

	_, err := issuer.Issue(&domain.User{ID: 7, Name: "Vasyl"}, "device-1")
	assert.Error(t, err)
}
