package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/flfwms/picking-api/internal/auth"
	"github.com/flfwms/picking-api/internal/domain"
	"github.com/flfwms/picking-api/pkg/keyfetcher"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	BearerPrefix                        = "bearer"
	DefaultClockSkewTolerance           = 5 * time.Minute
	SessionContextKey        contextKey = "session"
)

// Session is the authenticated worker context carried through a request.
type Session struct {
	UserID   int
	Name     string
	DeviceID string
	Language string
}

// JWTAuthMiddleware validates bearer tokens and sets the worker session
// in the request context.
type JWTAuthMiddleware struct {
	keyFetcher keyfetcher.PublicKeyFetcher
	issuer     string
	audience   string
	clockSkew  time.Duration
}

// JWTConfig holds configuration for the authentication middleware.
type JWTConfig struct {
	KeyFetcher keyfetcher.PublicKeyFetcher
	Issuer     string
	Audience   string
	ClockSkew  time.Duration // Optional: defaults to DefaultClockSkewTolerance
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware.
func NewJWTAuthMiddleware(config JWTConfig) *JWTAuthMiddleware {
	clockSkew := config.ClockSkew
	if clockSkew == 0 {
		clockSkew = DefaultClockSkewTolerance
	}

	return &JWTAuthMiddleware{
		keyFetcher: config.KeyFetcher,
		issuer:     config.Issuer,
		audience:   config.Audience,
		clockSkew:  clockSkew,
	}
}

// Handler returns middleware that rejects requests without a valid token.
func (m *JWTAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := m.validateRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok":false,"error":"UNAUTHORIZED"}`))
			return
		}

		ctx := context.WithValue(r.Context(), SessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateRequest parses the bearer token and builds the session.
func (m *JWTAuthMiddleware) validateRequest(r *http.Request) (*Session, error) {
	tokenString, err := extractBearerToken(r)
	if err != nil {
		return nil, err
	}

	key, err := m.keyFetcher.FetchPublicKey()
	if err != nil {
		return nil, fmt.Errorf("fetch verification key: %w", err)
	}

	token, err := jwt.ParseWithClaims(tokenString, &auth.Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*auth.Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if err := m.validateClaims(claims); err != nil {
		return nil, fmt.Errorf("invalid claims: %w", err)
	}

	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject claim: %w", err)
	}

	lang := claims.Language
	if lang == "" {
		lang = domain.DefaultLanguage
	}

	return &Session{
		UserID:   userID,
		Name:     claims.Name,
		DeviceID: claims.DeviceID,
		Language: lang,
	}, nil
}

// validateClaims checks issuer, audience and timing.
func (m *JWTAuthMiddleware) validateClaims(claims *auth.Claims) error {
	if claims.Subject == "" {
		return errors.New("missing subject claim")
	}

	if claims.Issuer != m.issuer {
		return fmt.Errorf("invalid issuer: got %s, want %s", claims.Issuer, m.issuer)
	}

	if !slices.Contains(claims.Audience, m.audience) {
		return fmt.Errorf("invalid audience: missing %s", m.audience)
	}

	if claims.ExpiresAt == nil {
		return errors.New("missing expiration claim")
	}

	if claims.IssuedAt != nil && claims.IssuedAt.After(time.Now().Add(m.clockSkew)) {
		return errors.New("token issued too far in future")
	}

	return nil
}

// extractBearerToken extracts the token from the Authorization header.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], BearerPrefix) {
		return "", errors.New("invalid authorization format")
	}

	return parts[1], nil
}

// SessionFromContext extracts the worker session from the request context.
func SessionFromContext(ctx context.Context) (*Session, bool) {
	session, ok := ctx.Value(SessionContextKey).(*Session)
	return session, ok
}
