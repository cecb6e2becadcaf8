package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"

	"github.com/EthanQC/auth-center/internal/ports/out"
)

// KafkaPublisher 使用 segmentio/kafka-go 实现 EventPublisher
type KafkaPublisher struct {
	Writer *kafka.Writer
}

var _ out.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, value []byte) error {
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}
