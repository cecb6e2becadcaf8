package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/EthanQC/auth-center/internal/ports/in"
	"github.com/EthanQC/auth-center/pkg/zlog"
)

// Broadcaster 把事件推到某身份的全部活跃连接。
// 单条连接发送失败视为隐式断开：注销该会话，继续投递其余连接。
type Broadcaster struct {
	registry *SessionRegistry
}

var _ in.BroadcastUseCase = (*Broadcaster)(nil)

func NewBroadcaster(registry *SessionRegistry) *Broadcaster {
	return &Broadcaster{registry: registry}
}

// Publish 返回实际送达的连接数
func (b *Broadcaster) Publish(ctx context.Context, userID string, event []byte) int {
	sessions := b.registry.ListSessions(userID)
	delivered := 0
	for _, s := range sessions {
		if err := s.Conn.Send(event); err != nil {
			zlog.C(ctx).Warn("push failed, dropping session",
				zap.String("user_id", userID),
				zap.String("session_id", s.ID),
				zap.Error(err))
			_ = s.Conn.Close("send failed")
			b.registry.Unregister(ctx, s.ID)
			continue
		}
		delivered++
	}
	return delivered
}
