package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/internal/catalog/domain"
)

type recordingSender struct {
	topic, key string
	value      any
}

func (s *recordingSender) SendMessage(_ context.Context, topic, key string, value any) error {
	s.topic, s.key, s.value = topic, key, value
	return nil
}

func TestKafkaPublisher(t *testing.T) {
	sender := &recordingSender{}
	pub := NewKafkaPublisher(sender)

	ev := domain.ProductCreatedEvent{ProductID: "abc", Name: "Soap"}
	require.NoError(t, pub.Publish(context.Background(), domain.TopicProductCreated, "abc", ev))
	assert.Equal(t, domain.TopicProductCreated, sender.topic)
	assert.Equal(t, "abc", sender.key)
	assert.Equal(t, ev, sender.value)
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, NewLogPublisher().Publish(context.Background(), "t", "k", struct{}{}))
}
