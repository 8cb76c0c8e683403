// Package token implements the bearer token codec on top of HS256 JWTs.
package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/99minutos/auth-service/internal/core/domain"
	"github.com/99minutos/auth-service/internal/core/ports"
)

// ErrMissingSecret is returned by NewJWTCodec when no signing key is supplied.
var ErrMissingSecret = errors.New("token: signing secret is required")

// JWTCodec signs claims with HMAC-SHA256. The algorithm is pinned on both the
// issue and the decode path; tokens declaring any other alg are rejected.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

// Option customises a JWTCodec.
type Option func(*JWTCodec)

// WithClock overrides the time source used for exp and validation.
func WithClock(now func() time.Time) Option {
	return func(c *JWTCodec) { c.now = now }
}

// NewJWTCodec returns a codec keyed by secret. An empty secret is rejected.
func NewJWTCodec(secret []byte, opts ...Option) (*JWTCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	c := &JWTCodec{secret: secret, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue copies claims, sets exp to now+ttl (overwriting any caller value) and
// returns the signed compact token.
func (c *JWTCodec) Issue(claims ports.Claims, ttl time.Duration) (string, error) {
	mc := make(jwt.MapClaims, len(claims)+1)
	for k, v := range claims {
		mc[k] = v
	}
	mc["exp"] = c.now().Add(ttl).Unix()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, then the expiry. A token is expired once
// now >= exp.
func (c *JWTCodec) Decode(tokenString string) (ports.Claims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		// jwt/v5 only validates claims after the signature has been
		// verified, so an expiry error implies an authentic token.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}

	out := make(ports.Claims, len(claims))
	for k, v := range claims {
		out[k] = normalizeNumbers(v)
	}
	return out, nil
}

// normalizeNumbers turns json.Number values, including nested ones, into int64
// when they are integral and float64 otherwise.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, e := range t {
			t[k] = normalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = normalizeNumbers(e)
		}
		return t
	default:
		return v
	}
}
