package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"wayfarer/internal/app/policies"
	"wayfarer/internal/domain/shared/events"
)

type Producer struct {
	sync sarama.SyncProducer
}

func NewProducer(brokers []string, cfg *sarama.Config) (*Producer, error) {
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync}, nil
}

func (p *Producer) Publish(ctx context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// EventPublisher adapts the producer to the domain-event port. Events land on
// "<prefix>.events" keyed by aggregate id so per-aggregate ordering holds.
type EventPublisher struct {
	producer    *Producer
	topicPrefix string
}

func NewEventPublisher(producer *Producer, topicPrefix string) *EventPublisher {
	return &EventPublisher{producer: producer, topicPrefix: topicPrefix}
}

type eventEnvelope struct {
	Name        string `json:"name"`
	AggregateID string `json:"aggregateId"`
	OccurredAt  string `json:"occurredAt"`
	Payload     any    `json:"payload"`
}

func (p *EventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	envelope := eventEnvelope{
		Name:        event.EventName(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt().UTC().Format(time.RFC3339Nano),
		Payload:     event,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("kafka: encode %s: %w", event.EventName(), err)
	}
	topic := p.topicPrefix + ".events"
	headers := map[string]string{"event": event.EventName()}
	return p.producer.Publish(ctx, topic, event.AggregateID(), payload, headers)
}

var _ policies.EventPublisher = (*EventPublisher)(nil)
