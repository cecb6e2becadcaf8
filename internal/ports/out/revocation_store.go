package out

import (
	"context"
	"time"
)

// RevocationStore 记录已撤销的令牌与轮换链状态，读路径在每个请求上都会命中。
// 任何存储错误都按"服务不可用"处理，绝不隐式放行。
type RevocationStore interface {
	// Revoke 将 tokenID 标记为失效，直到 until；重复撤销是幂等的
	Revoke(ctx context.Context, tokenID string, until time.Time) error

	// RevokeChain 撤销整条轮换链，链上所有令牌随之失效
	RevokeChain(ctx context.Context, chainID string, until time.Time) error

	// IsRevoked 令牌本身或其所属链任一被撤销即返回 true
	IsRevoked(ctx context.Context, tokenID, chainID string) (bool, error)

	// TryRotate 对链上的旧令牌做一次原子抢占（SETNX 语义）：
	// 返回 true 表示本次调用赢得轮换权，false 表示该令牌已被轮换过（复用信号）
	TryRotate(ctx context.Context, chainID, tokenID string, ttl time.Duration) (bool, error)
}
