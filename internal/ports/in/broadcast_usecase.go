package in

import "context"

// BroadcastUseCase 向某身份的全部活跃连接推送事件，载荷不做解释
type BroadcastUseCase interface {
	// Publish 返回实际送达的连接数
	Publish(ctx context.Context, userID string, event []byte) int
}
