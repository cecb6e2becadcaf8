package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/EthanQC/auth-center/internal/application/service"
	"github.com/EthanQC/auth-center/internal/domain/entity"
)

// EvictConsumer 消费认证域事件，把其它节点发起的强制下线应用到本地会话注册表。
// 没有它，登出只会踢掉发起节点上的 WebSocket 连接。
type EvictConsumer struct {
	reader   *kafka.Reader
	registry *service.SessionRegistry
}

// instanceGroupID 为当前进程生成独占的消费组 ID。
// 下线事件是广播语义：所有节点都要各自应用一遍；如果各节点共用一个消费组，
// 同一条事件只会落到组内一个成员上，其它节点的会话就漏踢了
func instanceGroupID(prefix string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "node"
	}
	return fmt.Sprintf("%s-%s-%s", prefix, host, uuid.NewString()[:8])
}

func NewEvictConsumer(brokers []string, topic, groupPrefix string, registry *service.SessionRegistry) *EvictConsumer {
	return &EvictConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: instanceGroupID(groupPrefix),
			// 新消费组从最新位点开始，历史事件对应的会话早已不在本节点
			StartOffset: kafka.LastOffset,
		}),
		registry: registry,
	}
}

// Run 阻塞消费直到 ctx 取消
func (c *EvictConsumer) Run(ctx context.Context) error {
	defer c.reader.Close()
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			zap.L().Error("read auth event failed", zap.Error(err))
			continue
		}

		var ev entity.AuthEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			zap.L().Warn("malformed auth event", zap.Error(err))
			continue
		}
		if ev.Type != entity.EventSessionEvict {
			continue
		}

		n := c.registry.EvictAll(ctx, ev.UserID)
		zap.L().Info("evict event applied",
			zap.String("user_id", ev.UserID),
			zap.String("reason", ev.Reason),
			zap.Int("closed", n))
	}
}
