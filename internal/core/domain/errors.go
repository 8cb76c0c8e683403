package domain

import "errors"

// Expected, user-facing failure kinds. Anything else returned by the core is
// an infrastructure failure.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedToken     = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token expired")
	ErrUnknownSubject     = errors.New("unknown subject")
)

// ErrCredentialNotFound is returned by repositories on a lookup miss. The
// authenticator folds it into ErrInvalidCredentials; it never reaches clients.
var ErrCredentialNotFound = errors.New("credential not found")

// IsUnauthorized reports whether err is one of the kinds that surface as an
// unauthorized response.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUnknownSubject)
}
