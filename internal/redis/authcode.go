package redis

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pollroom_errors "pollroom/pkg/errors"
)

// AuthCodeStore holds one-time authorization codes minted during the OAuth
// callback leg. A code maps to a user id and is deleted on first use.
type AuthCodeStore struct {
	client *goredis.Client
	ttl    time.Duration
}

const authCodeKeyPrefix = "authcode:"

func NewAuthCodeStore(client *goredis.Client, ttl time.Duration) *AuthCodeStore {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &AuthCodeStore{client: client, ttl: ttl}
}

// Issue mints a fresh one-time code for the user.
func (s *AuthCodeStore) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	code := hex.EncodeToString(buf)

	if err := s.client.Set(ctx, authCodeKeyPrefix+code, userID.String(), s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Consume resolves a code to its user id and invalidates it. An unknown,
// expired or already-used code yields ErrUnauthorized.
func (s *AuthCodeStore) Consume(ctx context.Context, code string) (uuid.UUID, error) {
	if code == "" {
		return uuid.Nil, pollroom_errors.ErrUnauthorized
	}

	key := authCodeKeyPrefix + code
	raw, err := s.client.GetDel(ctx, key).Result()
	if err == goredis.Nil {
		return uuid.Nil, pollroom_errors.ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pollroom_errors.ErrUnauthorized
	}
	return userID, nil
}
