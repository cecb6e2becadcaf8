package out

import "context"

// EventPublisher 对外发布认证域事件（登录、登出、强制下线）
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}
