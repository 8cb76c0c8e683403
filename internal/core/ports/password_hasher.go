package ports

import "context"

// PasswordHasher is a salted, deliberately slow one-way hash.
type PasswordHasher interface {
	Hash(ctx context.Context, password string) (string, error)
	// Verify reports whether password matches hash. A malformed hash yields false.
	Verify(ctx context.Context, password, hash string) (bool, error)
}
