package share

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	nanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultTTL is the lifetime of a share token when none is configured.
const DefaultTTL = 7 * 24 * time.Hour

// Share-token errors.
var (
	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid share token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("share token expired")

	// ErrSecretTooShort indicates the signing secret is too short.
	ErrSecretTooShort = errors.New("share secret must be at least 32 bytes")
)

// Config holds configuration for share-token generation and validation.
type Config struct {
	// Secret is the HMAC signing key (must be at least 32 bytes).
	Secret []byte

	// Issuer is the token issuer (e.g., "voxlog").
	Issuer string

	// TTL is the lifetime of share tokens.
	// Defaults to DefaultTTL (7 days) if zero.
	TTL time.Duration
}

func (c Config) ttl() time.Duration {
	if c.TTL == 0 {
		return DefaultTTL
	}
	return c.TTL
}

// Claims are the claims carried by a share token. Subject is the
// session ID the token grants read access to.
type Claims struct {
	jwt.RegisteredClaims
}

// NewToken creates a signed share token granting read access to one session.
func NewToken(cfg Config, sessionID string) (string, error) {
	if len(cfg.Secret) < 32 {
		return "", ErrSecretTooShort
	}

	tokenID, err := nanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token ID: %w", err)
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.ttl())),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}

// Validate parses and validates a share token, returning the session ID
// it grants access to.
func Validate(cfg Config, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cfg.Secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrInvalidToken
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	// Verify issuer if configured
	if cfg.Issuer != "" {
		issuer, err := token.Claims.GetIssuer()
		if err != nil || issuer != cfg.Issuer {
			return "", ErrInvalidToken
		}
	}

	return claims.Subject, nil
}

// Link builds a shareable URL for a session by attaching the token to
// the given base URL.
func Link(baseURL string, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// HashToken creates a SHA-256 hash of a token for secure storage.
// Use this to record issued tokens without storing them verbatim.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
