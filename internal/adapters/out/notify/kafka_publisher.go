package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"orderflow/internal/core/ports"
)

// Producer is the part of *kafka.Writer the publisher needs.
type Producer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer that waits for all in-sync replicas.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
}

// Message is the wire format consumed by the transport service.
type Message struct {
	Channel     string            `json:"channel"`
	Recipient   string            `json:"recipient"`
	TemplateKey string            `json:"templateKey"`
	Payload     map[string]string `json:"payload"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// KafkaPublisher writes one message per notification, keyed by recipient so one
// recipient's messages stay ordered.
type KafkaPublisher struct {
	producer Producer
	topic    string
	now      func() time.Time
}

func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

func (p *KafkaPublisher) Send(ctx context.Context, n ports.Notification) error {
	value, err := json.Marshal(Message{
		Channel:     string(n.Channel),
		Recipient:   n.Recipient,
		TemplateKey: n.TemplateKey,
		Payload:     n.Payload,
		CreatedAt:   p.now().UTC(),
	})
	if err != nil {
		return err
	}

	return p.producer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(n.Recipient),
		Value: value,
		Headers: []kafka.Header{
			{Key: "template", Value: []byte(n.TemplateKey)},
			{Key: "channel", Value: []byte(n.Channel)},
		},
	})
}
