package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo stores refresh tokens in Redis, keyed by the SHA-256 hash
// of the raw token. The raw value never reaches the store. A per-client
// set tracks active hashes so one call can revoke every session.
type TokenRepo struct {
	rdb *redis.Client
}

// NewTokenRepo constructs a TokenRepo over the given Redis client.
func NewTokenRepo(rdb *redis.Client) *TokenRepo { return &TokenRepo{rdb: rdb} }

// ErrTokenInvalid is returned when a refresh token hash is unknown,
// expired or revoked.
var ErrTokenInvalid = errors.New("invalid refresh token")

// ErrTokenStoreDown is returned when no Redis client is configured.
var ErrTokenStoreDown = errors.New("token store unavailable")

func tokenKey(hash string) string { return "refresh:" + hash }
func clientKey(cid string) string { return "refresh_client:" + cid }

// StoreRefresh saves a token hash for a client until exp.
func (r *TokenRepo) StoreRefresh(ctx context.Context, clientID, hash string, exp time.Time) error {
	if r.rdb == nil {
		return ErrTokenStoreDown
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		return ErrTokenInvalid
	}
	pipe := r.rdb.TxPipeline()
	pipe.Set(ctx, tokenKey(hash), clientID, ttl)
	pipe.SAdd(ctx, clientKey(clientID), hash)
	pipe.Expire(ctx, clientKey(clientID), ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// ValidateRefresh resolves a token hash to its client ID.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, hash string) (string, error) {
	if r.rdb == nil {
		return "", ErrTokenStoreDown
	}
	cid, err := r.rdb.Get(ctx, tokenKey(hash)).Result()
	if err == redis.Nil {
		return "", ErrTokenInvalid
	}
	if err != nil {
		return "", err
	}
	return cid, nil
}

// RevokeByHash invalidates a single session.
func (r *TokenRepo) RevokeByHash(ctx context.Context, hash string) error {
	if r.rdb == nil {
		return ErrTokenStoreDown
	}
	cid, err := r.rdb.Get(ctx, tokenKey(hash)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, tokenKey(hash))
	pipe.SRem(ctx, clientKey(cid), hash)
	_, err = pipe.Exec(ctx)
	return err
}

// RevokeAllForClient invalidates every session of a client.
func (r *TokenRepo) RevokeAllForClient(ctx context.Context, clientID string) error {
	if r.rdb == nil {
		return ErrTokenStoreDown
	}
	hashes, err := r.rdb.SMembers(ctx, clientKey(clientID)).Result()
	if err != nil {
		return err
	}
	pipe := r.rdb.TxPipeline()
	for _, h := range hashes {
		pipe.Del(ctx, tokenKey(h))
	}
	pipe.Del(ctx, clientKey(clientID))
	_, err = pipe.Exec(ctx)
	return err
}
