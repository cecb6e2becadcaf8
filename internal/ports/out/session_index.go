package out

import (
	"context"
	"time"
)

// SessionIndex 共享的会话索引（Redis），让其它节点能看到某身份在本节点的活跃会话。
// 写入是尽力而为：索引失败不影响本地注册表的正确性。
type SessionIndex interface {
	Add(ctx context.Context, userID, sessionID string, ttl time.Duration) error
	Remove(ctx context.Context, userID, sessionID string) error
	RemoveAll(ctx context.Context, userID string) error
}
