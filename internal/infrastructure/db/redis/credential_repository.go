package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/auth-service/internal/core/domain"
)

const keyPrefix = "credential:"

// CredentialRepository stores one JSON document per username.
// Key format: credential:<username>
// SETNX makes the duplicate check and the write one server-side operation.
type CredentialRepository struct {
	client *redis.Client
}

func NewCredentialRepository(client *redis.Client) *CredentialRepository {
	return &CredentialRepository{client: client}
}

type redisCredential struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    int64  `json:"created_at"`
}

func (r *CredentialRepository) Insert(ctx context.Context, cred *domain.Credential) error {
	payload, err := json.Marshal(redisCredential{
		ID:           cred.ID,
		Username:     cred.Username,
		PasswordHash: cred.PasswordHash,
		CreatedAt:    cred.CreatedAt.Unix(),
	})
	if err != nil {
		return fmt.Errorf("encode credential: %w", err)
	}

	ok, err := r.client.SetNX(ctx, r.key(cred.Username), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	if !ok {
		return domain.ErrDuplicateUsername
	}
	return nil
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	raw, err := r.client.Get(ctx, r.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}

	var rc redisCredential
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}

	cred := &domain.Credential{
		ID:           rc.ID,
		Username:     rc.Username,
		PasswordHash: rc.PasswordHash,
	}
	if rc.CreatedAt != 0 {
		cred.CreatedAt = time.Unix(rc.CreatedAt, 0).UTC()
	}
	return cred, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, username string) error {
	n, err := r.client.Del(ctx, r.key(username)).Result()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n == 0 {
		return domain.ErrCredentialNotFound
	}
	return nil
}

func (r *CredentialRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *CredentialRepository) key(username string) string {
	return keyPrefix + username
}
