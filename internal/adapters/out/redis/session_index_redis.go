package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EthanQC/auth-center/internal/ports/out"
)

const sessionKeyPrefix = "auth:sessions:"

// SessionIndexRedis 共享会话索引：userID -> 活跃 sessionID 集合。
// 只做可见性，不做权威状态，权威在各节点的内存注册表。
type SessionIndexRedis struct {
	client *redis.Client
}

var _ out.SessionIndex = (*SessionIndexRedis)(nil)

func NewSessionIndexRedis(client *redis.Client) *SessionIndexRedis {
	return &SessionIndexRedis{client: client}
}

func (r *SessionIndexRedis) Add(ctx context.Context, userID, sessionID string, ttl time.Duration) error {
	key := sessionKeyPrefix + userID
	pipe := r.client.Pipeline()
	pipe.SAdd(ctx, key, sessionID)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *SessionIndexRedis) Remove(ctx context.Context, userID, sessionID string) error {
	return r.client.SRem(ctx, sessionKeyPrefix+userID, sessionID).Err()
}

func (r *SessionIndexRedis) RemoveAll(ctx context.Context, userID string) error {
	return r.client.Del(ctx, sessionKeyPrefix+userID).Err()
}
