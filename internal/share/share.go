// Package share issues and verifies signed tokens for read-only plan links.
package share

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const scopeExternal = "plan:read"

var (
	ErrNoSecret     = errors.New("share secret not configured")
	ErrInvalidToken = errors.New("invalid share token")
)

type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// Issuer signs share tokens with an HS256 secret.
type Issuer struct {
	Secret string
	TTL    time.Duration
	Now    func() time.Time
}

func (i Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue returns a token granting read-only access to planID.
func (i Issuer) Issue(planID string) (string, time.Time, error) {
	if strings.TrimSpace(i.Secret) == "" {
		return "", time.Time{}, ErrNoSecret
	}
	ttl := i.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	now := i.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   planID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Scope: scopeExternal,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign share token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks token and that it was issued for planID.
func (i Issuer) Verify(token, planID string) (Claims, error) {
	if strings.TrimSpace(i.Secret) == "" {
		return Claims{}, ErrNoSecret
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	claims := Claims{}
	parsed, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return []byte(i.Secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Scope != scopeExternal {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject != planID {
		return Claims{}, fmt.Errorf("%w: issued for plan %q", ErrInvalidToken, claims.Subject)
	}
	return claims, nil
}

// Link builds <baseURL>/external/<planID>?token=<token>.
func Link(baseURL, planID, token string) string {
	u := strings.TrimRight(baseURL, "/") + "/external/" + url.PathEscape(planID)
	if token != "" {
		u += "?token=" + url.QueryEscape(token)
	}
	return u
}
