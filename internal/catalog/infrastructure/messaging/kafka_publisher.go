package messaging

import (
	"context"

	"github.com/wyfcoding/storefront/internal/catalog/domain"
	"github.com/wyfcoding/storefront/pkg/logger"
)

// MessageSender 消息发送方，由 mq.KafkaProducer 实现
type MessageSender interface {
	SendMessage(ctx context.Context, topic string, key string, value any) error
}

// kafkaPublisher 基于 Kafka 的事件发布者实现
type kafkaPublisher struct {
	sender MessageSender
}

// NewKafkaPublisher 创建一个新的 Kafka 事件发布者
func NewKafkaPublisher(sender MessageSender) domain.EventPublisher {
	return &kafkaPublisher{sender: sender}
}

// Publish 发布一个领域事件
func (p *kafkaPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	return p.sender.SendMessage(ctx, topic, key, event)
}

// logPublisher 未配置 broker 时使用，仅记录日志
type logPublisher struct{}

// NewLogPublisher 创建仅记录日志的事件发布者
func NewLogPublisher() domain.EventPublisher { return logPublisher{} }

func (logPublisher) Publish(ctx context.Context, topic string, key string, event any) error {
	logger.Debug(ctx, "Publishing event", "topic", topic, "key", key, "event", event)
	return nil
}
