package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/pkg/keyfetcher"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload: identity id in the subject, display name,
// the bound device and the worker's language.
type Claims struct {
	Name     string `json:"name"`
	DeviceID string `json:"device_id"`
	Language string `json:"lang,omitempty"`
	jwt.RegisteredClaims
}

// TokenConfig holds token issuance configuration.
type TokenConfig struct {
	KeyFetcher keyfetcher.PrivateKeyFetcher
	Issuer     string
	Audience   string
	TokenTTL   time.Duration
}

// TokenIssuer mints bearer credentials with a fixed expiry window. There
// is no revocation list; logout is client-side discard only.
type TokenIssuer struct {
	config *TokenConfig
}

// NewTokenIssuer creates a new TokenIssuer.
func NewTokenIssuer(config *TokenConfig) *TokenIssuer {
	return &TokenIssuer{config: config}
}

// Issue signs a token binding the worker identity to the device.
func (t *TokenIssuer) Issue(user *domain.User, deviceID string) (string, error) {
	privateKey, err := t.config.KeyFetcher.FetchPrivateKey()
	if err != nil {
		return "", fmt.Errorf("fetch signing key: %w", err)
	}

	now := time.Now()
	claims := Claims{
		Name:     user.Name,
		DeviceID: deviceID,
		Language: user.Language,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.config.Issuer,
			Subject:   strconv.Itoa(user.ID),
			Audience:  jwt.ClaimStrings{t.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(privateKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}
