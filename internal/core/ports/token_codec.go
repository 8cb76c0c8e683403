package ports

import (
	"fmt"
	"time"

	"github.com/99minutos/auth-service/internal/core/domain"
)

// Claims is the payload carried by a bearer token. Only "sub" and "exp" are
// interpreted; everything else is passed through untouched. After a decode,
// integral numbers are int64 and other numbers float64.
type Claims map[string]any

// Subject returns the "sub" claim, or domain.ErrMalformedToken if it is absent
// or not a non-empty string.
func (c Claims) Subject() (string, error) {
	sub, ok := c["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrMalformedToken)
	}
	return sub, nil
}

// TokenCodec issues and decodes signed, expiring bearer tokens.
type TokenCodec interface {
	// Issue merges exp = now + ttl into claims and signs the result.
	Issue(claims Claims, ttl time.Duration) (string, error)
	// Decode verifies the signature before looking at any claim and returns
	// domain.ErrMalformedToken or domain.ErrExpiredToken on rejection.
	Decode(token string) (Claims, error)
}
