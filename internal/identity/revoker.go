package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karlseguin/ccache/v3"
	"github.com/redis/go-redis/v9"
)

const revokedPrefix = "token:revoked:"

// Revoker çıkış yapılmış token'ları süreleri dolana kadar hatırlar.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type RedisRevoker struct {
	client redis.Cmdable
}

func NewRedisRevoker(client redis.Cmdable) *RedisRevoker {
	return &RedisRevoker{client: client}
}

func (r *RedisRevoker) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, revokedPrefix+token, "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: revoke: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisRevoker) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := r.client.Get(ctx, revokedPrefix+token).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: revocation check: %v", ErrUnavailable, err)
	}
	return true, nil
}

// MemoryRevoker redis kapalıyken tek instance için.
type MemoryRevoker struct {
	items *ccache.Cache[bool]
}

func NewMemoryRevoker() *MemoryRevoker {
	return &MemoryRevoker{items: ccache.New(ccache.Configure[bool]().MaxSize(100000))}
}

func (m *MemoryRevoker) Revoke(_ context.Context, token string, ttl time.Duration) error {
	if ttl > 0 {
		m.items.Set(revokedPrefix+token, true, ttl)
	}
	return nil
}

func (m *MemoryRevoker) IsRevoked(_ context.Context, token string) (bool, error) {
	item := m.items.Get(revokedPrefix + token)
	return item != nil && !item.Expired(), nil
}
