// Package events tells the outside world about completed orders.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chars3/caplink-store/models"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher emits one message per completed order.
type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaWriter returns an async writer; delivery failures are logged from
// the completion callback.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(messages)).Str("topic", topic).Msg("kafka delivery failed")
			}
		},
	}
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// OrderCompleted never fails the caller; errors are only logged.
func (p *KafkaPublisher) OrderCompleted(ctx context.Context, order *models.Order) {
	value, err := json.Marshal(order)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("failed to encode order event")
		return
	}

	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order.completed.%s", order.ID)),
		Value: value,
	}
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		log.Error().Err(err).Str("order_id", order.ID).Msg("failed to publish order event")
	}
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
