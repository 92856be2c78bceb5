package domain

import (
	"context"
	"time"
)

// TopicProductCreated 商品创建事件主题
const TopicProductCreated = "product.created"

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher 领域事件发布者
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
