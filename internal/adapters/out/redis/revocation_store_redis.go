package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EthanQC/auth-center/internal/ports/out"
)

const (
	revokedKeyPrefix = "auth:revoked:"       // jti 级撤销
	chainKeyPrefix   = "auth:revoked_chain:" // 链级撤销
	rotatedKeyPrefix = "auth:rotated:"       // 轮换抢占标记
)

// RevocationStoreRedis 基于 Redis 的撤销存储。
// 所有条目的 TTL 不早于令牌自然过期时间，过期自清理，存储大小有界。
type RevocationStoreRedis struct {
	client *redis.Client
}

var _ out.RevocationStore = (*RevocationStoreRedis)(nil)

func NewRevocationStoreRedis(client *redis.Client) *RevocationStoreRedis {
	return &RevocationStoreRedis{client: client}
}

func ttlUntil(until time.Time) time.Duration {
	ttl := time.Until(until)
	if ttl < time.Minute {
		// 留出时钟偏移余量
		ttl = time.Minute
	}
	return ttl
}

func (r *RevocationStoreRedis) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	key := revokedKeyPrefix + tokenID
	// SET 覆盖写，天然幂等
	return r.client.Set(ctx, key, 1, ttlUntil(until)).Err()
}

func (r *RevocationStoreRedis) RevokeChain(ctx context.Context, chainID string, until time.Time) error {
	key := chainKeyPrefix + chainID
	return r.client.Set(ctx, key, 1, ttlUntil(until)).Err()
}

// IsRevoked 一次 pipeline 查 jti 和链两个标记，任一命中即撤销
func (r *RevocationStoreRedis) IsRevoked(ctx context.Context, tokenID, chainID string) (bool, error) {
	pipe := r.client.Pipeline()
	tokenCmd := pipe.Exists(ctx, revokedKeyPrefix+tokenID)
	chainCmd := pipe.Exists(ctx, chainKeyPrefix+chainID)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return tokenCmd.Val() > 0 || chainCmd.Val() > 0, nil
}

// TryRotate SETNX 抢占：第一个到达的刷新请求拿到轮换权，后来者视为复用
func (r *RevocationStoreRedis) TryRotate(ctx context.Context, chainID, tokenID string, ttl time.Duration) (bool, error) {
	key := rotatedKeyPrefix + chainID + ":" + tokenID
	ok, err := r.client.SetNX(ctx, key, 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}
