package service

import (
	"context"

	"github.com/ds124wfegd/itemtexture/internal/entity"
	"github.com/ds124wfegd/itemtexture/internal/pkg/kafka"
	"github.com/ds124wfegd/itemtexture/internal/pkg/rabbitMQ"
)

// KafkaAdapter publishes texture events keyed by request id
type KafkaAdapter struct {
	producer kafka.Producer
}

func NewKafkaAdapter(p kafka.Producer) *KafkaAdapter {
	return &KafkaAdapter{producer: p}
}

func (a *KafkaAdapter) Publish(ctx context.Context, event *entity.TextureEvent) error {
	return a.producer.SendMessage(ctx, event.ID, event)
}

type RabbitMQAdapter struct {
	publisher rabbitMQ.Publisher
}

func NewRabbitMQAdapter(p rabbitMQ.Publisher) *RabbitMQAdapter {
	return &RabbitMQAdapter{publisher: p}
}

func (a *RabbitMQAdapter) Publish(ctx context.Context, event *entity.TextureEvent) error {
	return a.publisher.Publish(ctx, event)
}
