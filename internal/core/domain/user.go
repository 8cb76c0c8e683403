package domain

import "time"

// Credential is the stored record for a registered user. PasswordHash is the
// output of the password hasher and is never serialised to clients.
type Credential struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the reduced view of a Credential handed to callers once a
// login or bearer token has been accepted.
type Identity struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity returns the client-safe view of c.
func (c *Credential) Identity() *Identity {
	if c == nil {
		return nil
	}
	return &Identity{ID: c.ID, Username: c.Username, CreatedAt: c.CreatedAt}
}
